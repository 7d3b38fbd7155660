package db

import (
	"testing"

	"github.com/coverlane/coverlane/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectSelectsConfiguredDriver(t *testing.T) {
	for dbType, want := range map[string]string{
		"postgres": "postgres",
		"mysql":    "mysql",
		"sqlite":   "sqlite",
	} {
		dialector, err := Dialect(config.Config{
			DBType: dbType,
			DBHost: "localhost",
			DBPort: "5432",
			DBName: "coverlane",
			DBUser: "postgres",
		})
		require.NoError(t, err, dbType)
		assert.Equal(t, want, dialector.Name())
	}
}

func TestDialectUnsupportedType(t *testing.T) {
	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type")
}
