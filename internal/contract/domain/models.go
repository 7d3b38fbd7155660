package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Contract is an insurance agreement belonging to exactly one client.
type Contract struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	ClientID         snowflake.ID    `gorm:"column:client_id;not null;index" json:"client_id"`
	StartDate        time.Time       `gorm:"column:start_date;type:date;not null" json:"start_date"`
	EndDate          *time.Time      `gorm:"column:end_date;type:date" json:"end_date,omitempty"`
	CostAmount       decimal.Decimal `gorm:"column:cost_amount;type:numeric(19,2);not null" json:"cost_amount"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
	LastModifiedDate time.Time       `gorm:"column:last_modified_date;not null" json:"last_modified_date"`
}

func (Contract) TableName() string {
	return "contracts"
}

// IsActive reports whether the contract is open on the given date: no end date,
// or an end date strictly after it. An end date equal to today means ended.
// Activity is always computed, never stored.
func (c *Contract) IsActive(today time.Time) bool {
	return c.EndDate == nil || c.EndDate.After(today)
}
