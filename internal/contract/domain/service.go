package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateContractRequest struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CostAmount decimal.Decimal
}

type UpdateCostRequest struct {
	CostAmount decimal.Decimal
}

// ContractResponse is the wire projection of a contract. Dates are calendar
// dates (no time component) per the API contract.
type ContractResponse struct {
	ID         snowflake.ID    `json:"id"`
	ClientID   snowflake.ID    `json:"clientId"`
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate,omitempty"`
	CostAmount decimal.Decimal `json:"costAmount"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type TotalCostResponse struct {
	ClientID             snowflake.ID    `json:"clientId"`
	TotalCost            decimal.Decimal `json:"totalCost"`
	ActiveContractsCount int64           `json:"activeContractsCount"`
}

type Service interface {
	Create(ctx context.Context, clientID snowflake.ID, req CreateContractRequest) (ContractResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (ContractResponse, error)
	UpdateCost(ctx context.Context, id snowflake.ID, req UpdateCostRequest) (ContractResponse, error)
	ListActive(ctx context.Context, clientID snowflake.ID, modifiedAfter *time.Time) ([]ContractResponse, error)
	TotalCost(ctx context.Context, clientID snowflake.ID) (TotalCostResponse, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound = errors.New("contract_not_found")

	ErrInvalidCostAmount = errors.New("invalid_cost_amount")
	ErrInvalidDateRange  = errors.New("invalid_date_range")
)

// NotFoundError carries the id of the missing contract; it matches ErrNotFound.
type NotFoundError struct {
	ID snowflake.ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("contract %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
