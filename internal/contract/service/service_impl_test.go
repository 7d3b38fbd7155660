package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/coverlane/coverlane/internal/client/domain"
	clientrepository "github.com/coverlane/coverlane/internal/client/repository"
	"github.com/coverlane/coverlane/internal/clock"
	"github.com/coverlane/coverlane/internal/contract/domain"
	contractrepository "github.com/coverlane/coverlane/internal/contract/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq int

func setupContractService(t *testing.T, clk clock.Clock) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:contractsvc%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&clientdomain.Client{}, &domain.Contract{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Repo:    contractrepository.Provide(),
		Clients: clientrepository.Provide(),
	})
	return svc, db, node
}

func fixedClock() *clock.FakeClock {
	return clock.NewFakeClock(time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC))
}

func seedClient(t *testing.T, db *gorm.DB, node *snowflake.Node, now time.Time) snowflake.ID {
	t.Helper()

	identifier := fmt.Sprintf("ACM-%03d", testDBSeq%1000)
	client := clientdomain.Client{
		ID:                node.Generate(),
		ClientType:        clientdomain.ClientTypeCompany,
		Email:             "billing@acme.example",
		Phone:             "0041791234567",
		CompanyIdentifier: &identifier,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, db.Create(&client).Error)
	return client.ID
}

func TestCreateContractDefaultsStartDateToToday(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	created, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		CostAmount: decimal.RequireFromString("199.90"),
	})
	require.NoError(t, err)

	assert.Equal(t, clientID, created.ClientID)
	assert.Equal(t, "2025-06-15", created.StartDate)
	assert.Empty(t, created.EndDate)
	assert.True(t, created.CostAmount.Equal(decimal.RequireFromString("199.90")))
}

func TestCreateContractRoundTripsExactCost(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	created, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		CostAmount: decimal.RequireFromString("1234.56"),
	})
	require.NoError(t, err)

	fetched, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.CostAmount.Equal(decimal.RequireFromString("1234.56")),
		"got %s", fetched.CostAmount)
}

func TestCreateContractUnknownClient(t *testing.T) {
	svc, _, node := setupContractService(t, fixedClock())

	_, err := svc.Create(context.Background(), node.Generate(), domain.CreateContractRequest{
		CostAmount: decimal.RequireFromString("10.00"),
	})
	assert.ErrorIs(t, err, clientdomain.ErrNotFound)
}

func TestCreateContractUnknownClientWinsOverInvalidPayload(t *testing.T) {
	svc, _, node := setupContractService(t, fixedClock())

	// Existence is checked first, so an unknown client reads as not-found
	// even when the dates are inverted and the cost is out of range.
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), node.Generate(), domain.CreateContractRequest{
		StartDate:  &start,
		EndDate:    &end,
		CostAmount: decimal.RequireFromString("-1.00"),
	})
	assert.ErrorIs(t, err, clientdomain.ErrNotFound)
}

func TestCreateContractEndBeforeStart(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		StartDate:  &start,
		EndDate:    &end,
		CostAmount: decimal.RequireFromString("10.00"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	var count int64
	require.NoError(t, db.Model(&domain.Contract{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateContractEndEqualsStart(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		StartDate:  &day,
		EndDate:    &day,
		CostAmount: decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", created.StartDate)
	assert.Equal(t, "2025-06-10", created.EndDate)
}

func TestCreateContractCostValidation(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	for _, raw := range []string{"0", "0.00", "-5.00", "10.001"} {
		_, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
			CostAmount: decimal.RequireFromString(raw),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCostAmount, raw)
	}

	_, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		CostAmount: decimal.RequireFromString("0.01"),
	})
	assert.NoError(t, err)
}

func TestUpdateCost(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	created, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		CostAmount: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateCost(ctx, created.ID, domain.UpdateCostRequest{
		CostAmount: decimal.RequireFromString("150.50"),
	})
	require.NoError(t, err)
	assert.True(t, updated.CostAmount.Equal(decimal.RequireFromString("150.50")))

	// Repeating the same update keeps the stored value stable.
	again, err := svc.UpdateCost(ctx, created.ID, domain.UpdateCostRequest{
		CostAmount: decimal.RequireFromString("150.50"),
	})
	require.NoError(t, err)
	assert.True(t, again.CostAmount.Equal(updated.CostAmount))

	var count int64
	require.NoError(t, db.Model(&domain.Contract{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateCostValidation(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	created, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		CostAmount: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateCost(ctx, created.ID, domain.UpdateCostRequest{
		CostAmount: decimal.RequireFromString("0.001"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCostAmount)

	fetched, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.CostAmount.Equal(decimal.RequireFromString("100.00")))
}

func TestUpdateCostNotFound(t *testing.T) {
	svc, _, node := setupContractService(t, fixedClock())

	_, err := svc.UpdateCost(context.Background(), node.Generate(), domain.UpdateCostRequest{
		CostAmount: decimal.RequireFromString("10.00"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListActiveExcludesContractEndingToday(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	today := clock.Today(clk)
	tomorrow := today.AddDate(0, 0, 1)
	start := today.AddDate(0, -1, 0)

	openEnded, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		StartDate:  &start,
		CostAmount: decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)

	endsTomorrow, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		StartDate:  &start,
		EndDate:    &tomorrow,
		CostAmount: decimal.RequireFromString("20.00"),
	})
	require.NoError(t, err)

	// A contract whose end date is today is already ended.
	_, err = svc.Create(ctx, clientID, domain.CreateContractRequest{
		StartDate:  &start,
		EndDate:    &today,
		CostAmount: decimal.RequireFromString("30.00"),
	})
	require.NoError(t, err)

	active, err := svc.ListActive(ctx, clientID, nil)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, openEnded.ID, active[0].ID)
	assert.Equal(t, endsTomorrow.ID, active[1].ID)
}

func TestListActiveModifiedAfter(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	first, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		CostAmount: decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)

	clk.Advance(48 * time.Hour)
	cutoff := clk.Now().Add(-time.Hour)

	second, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		CostAmount: decimal.RequireFromString("20.00"),
	})
	require.NoError(t, err)

	filtered, err := svc.ListActive(ctx, clientID, &cutoff)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)

	// Updating the cost bumps the contract back into the window.
	_, err = svc.UpdateCost(ctx, first.ID, domain.UpdateCostRequest{
		CostAmount: decimal.RequireFromString("15.00"),
	})
	require.NoError(t, err)

	filtered, err = svc.ListActive(ctx, clientID, &cutoff)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestListActiveUnknownClient(t *testing.T) {
	svc, _, node := setupContractService(t, fixedClock())

	_, err := svc.ListActive(context.Background(), node.Generate(), nil)
	assert.ErrorIs(t, err, clientdomain.ErrNotFound)
}

func TestTotalCostSumsOnlyActiveContracts(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	today := clock.Today(clk)
	start := today.AddDate(0, -6, 0)
	pastEnd := today.AddDate(0, -1, 0)

	_, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		StartDate:  &start,
		CostAmount: decimal.RequireFromString("1000.00"),
	})
	require.NoError(t, err)

	future := today.AddDate(1, 0, 0)
	_, err = svc.Create(ctx, clientID, domain.CreateContractRequest{
		StartDate:  &start,
		EndDate:    &future,
		CostAmount: decimal.RequireFromString("1500.50"),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, clientID, domain.CreateContractRequest{
		StartDate:  &start,
		EndDate:    &pastEnd,
		CostAmount: decimal.RequireFromString("500.00"),
	})
	require.NoError(t, err)

	total, err := svc.TotalCost(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, clientID, total.ClientID)
	assert.True(t, total.TotalCost.Equal(decimal.RequireFromString("2500.50")),
		"got %s", total.TotalCost)
	assert.EqualValues(t, 2, total.ActiveContractsCount)
}

func TestTotalCostExactDecimalSum(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	// These addends are not exactly representable in binary floating point;
	// a float64 sum yields 0.6000000000000001.
	for _, raw := range []string{"0.10", "0.20", "0.30"} {
		_, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
			CostAmount: decimal.RequireFromString(raw),
		})
		require.NoError(t, err)
	}

	total, err := svc.TotalCost(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, "0.6", total.TotalCost.String())
	assert.EqualValues(t, 3, total.ActiveContractsCount)
}

func TestTotalCostExactDecimalSumRepeated(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	// Ten times 0.10 drifts to 0.9999999999999999 under float64 addition.
	for i := 0; i < 10; i++ {
		_, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
			CostAmount: decimal.RequireFromString("0.10"),
		})
		require.NoError(t, err)
	}

	total, err := svc.TotalCost(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, "1", total.TotalCost.String())
	assert.EqualValues(t, 10, total.ActiveContractsCount)
}

func TestTotalCostNoContracts(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	clientID := seedClient(t, db, node, clk.Now())

	total, err := svc.TotalCost(context.Background(), clientID)
	require.NoError(t, err)
	assert.True(t, total.TotalCost.IsZero())
	assert.Zero(t, total.ActiveContractsCount)
}

func TestDeleteContract(t *testing.T) {
	clk := fixedClock()
	svc, db, node := setupContractService(t, clk)
	ctx := context.Background()
	clientID := seedClient(t, db, node, clk.Now())

	created, err := svc.Create(ctx, clientID, domain.CreateContractRequest{
		CostAmount: decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrNotFound)
}
