package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contract *Contract) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contract, error)
	Update(ctx context.Context, db *gorm.DB, contract *Contract) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	ListByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]Contract, error)
	ListActiveByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID, today time.Time, modifiedAfter *time.Time) ([]Contract, error)
	SumActiveCostByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID, today time.Time) (decimal.Decimal, int64, error)
}
