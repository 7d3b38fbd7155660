package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coverlane/coverlane/internal/contract/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return db.WithContext(ctx).Create(contract).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Contract, error) {
	var contract domain.Contract
	err := db.WithContext(ctx).First(&contract, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return db.WithContext(ctx).Save(contract).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Contract{}, "id = ?", id).Error
}

func (r *repo) ListByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Where("client_id = ?", clientID).
		Order("id asc").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *repo) ListActiveByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID, today time.Time, modifiedAfter *time.Time) ([]domain.Contract, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Where("client_id = ?", clientID).
		Where("end_date IS NULL OR end_date > ?", today)
	if modifiedAfter != nil {
		stmt = stmt.Where("last_modified_date >= ?", *modifiedAfter)
	}

	var contracts []domain.Contract
	err := stmt.Order("id asc").Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

// SumActiveCostByClient totals the active cost amounts in Go with exact
// decimal arithmetic. SQL SUM is not used: sqlite's NUMERIC affinity sums in
// float64 and the rounding drift would leak into the aggregate.
func (r *repo) SumActiveCostByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID, today time.Time) (decimal.Decimal, int64, error) {
	var amounts []decimal.Decimal
	err := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Where("client_id = ?", clientID).
		Where("end_date IS NULL OR end_date > ?", today).
		Pluck("cost_amount", &amounts).Error
	if err != nil {
		return decimal.Zero, 0, err
	}

	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total, int64(len(amounts)), nil
}
