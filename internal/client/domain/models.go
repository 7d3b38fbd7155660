package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ClientType discriminates the two client variants.
type ClientType string

const (
	ClientTypePerson  ClientType = "PERSON"
	ClientTypeCompany ClientType = "COMPANY"
)

// Client is a party holding insurance contracts, either a person or a company.
// Shared fields live on the envelope; variant fields are nullable columns and
// exactly one side is populated, keyed by ClientType.
type Client struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientType ClientType   `gorm:"column:client_type;not null;index" json:"client_type"`
	Email      string       `gorm:"not null" json:"email"`
	Phone      string       `gorm:"not null" json:"phone"`

	// Person variant
	FirstName *string    `gorm:"column:first_name" json:"first_name,omitempty"`
	LastName  *string    `gorm:"column:last_name" json:"last_name,omitempty"`
	BirthDate *time.Time `gorm:"column:birth_date;type:date" json:"birth_date,omitempty"`

	// Company variant
	CompanyIdentifier *string `gorm:"column:company_identifier;uniqueIndex" json:"company_identifier,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// PersonDetails is the person-side payload of the client union.
type PersonDetails struct {
	FirstName string
	LastName  string
	BirthDate time.Time
}

// CompanyDetails is the company-side payload of the client union.
type CompanyDetails struct {
	Identifier string
}

// Person returns the person payload when the discriminator says PERSON.
func (c *Client) Person() (PersonDetails, bool) {
	if c.ClientType != ClientTypePerson {
		return PersonDetails{}, false
	}
	details := PersonDetails{}
	if c.FirstName != nil {
		details.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		details.LastName = *c.LastName
	}
	if c.BirthDate != nil {
		details.BirthDate = *c.BirthDate
	}
	return details, true
}

// Company returns the company payload when the discriminator says COMPANY.
func (c *Client) Company() (CompanyDetails, bool) {
	if c.ClientType != ClientTypeCompany {
		return CompanyDetails{}, false
	}
	details := CompanyDetails{}
	if c.CompanyIdentifier != nil {
		details.Identifier = *c.CompanyIdentifier
	}
	return details, true
}
