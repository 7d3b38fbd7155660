package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreatePersonRequest struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
	BirthDate *time.Time
}

type CreateCompanyRequest struct {
	Email             string
	Phone             string
	CompanyIdentifier string
}

// UpdateClientRequest is a patch: nil fields leave the stored value unchanged.
type UpdateClientRequest struct {
	Email             *string
	Phone             *string
	FirstName         *string
	LastName          *string
	BirthDate         *time.Time
	CompanyIdentifier *string
}

// ClientResponse is the wire projection of a client. Variant fields of the
// other variant are omitted.
type ClientResponse struct {
	ID                snowflake.ID `json:"id"`
	ClientType        ClientType   `json:"clientType"`
	Email             string       `json:"email"`
	Phone             string       `json:"phone"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
	FirstName         string       `json:"firstName,omitempty"`
	LastName          string       `json:"lastName,omitempty"`
	BirthDate         string       `json:"birthDate,omitempty"`
	CompanyIdentifier string       `json:"companyIdentifier,omitempty"`
}

type Service interface {
	CreatePerson(ctx context.Context, req CreatePersonRequest) (ClientResponse, error)
	CreateCompany(ctx context.Context, req CreateCompanyRequest) (ClientResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (ClientResponse, error)
	List(ctx context.Context) ([]ClientResponse, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateClientRequest) (ClientResponse, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound               = errors.New("client_not_found")
	ErrCompanyIdentifierTaken = errors.New("company_identifier_taken")

	ErrInvalidEmail             = errors.New("invalid_email")
	ErrInvalidPhone             = errors.New("invalid_phone")
	ErrInvalidFirstName         = errors.New("invalid_first_name")
	ErrInvalidLastName          = errors.New("invalid_last_name")
	ErrInvalidBirthDate         = errors.New("invalid_birth_date")
	ErrInvalidCompanyIdentifier = errors.New("invalid_company_identifier")
)

// NotFoundError carries the id of the missing client; it matches ErrNotFound.
type NotFoundError struct {
	ID snowflake.ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("client %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
