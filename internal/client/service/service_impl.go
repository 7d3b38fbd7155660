package service

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/coverlane/coverlane/internal/client/domain"
	"github.com/coverlane/coverlane/internal/clock"
	contractdomain "github.com/coverlane/coverlane/internal/contract/domain"
	"github.com/coverlane/coverlane/internal/observability/metrics"
	"github.com/coverlane/coverlane/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	phonePattern             = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
	companyIdentifierPattern = regexp.MustCompile(`^[A-Z]{3}-[0-9]{3}$`)
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Contracts contractdomain.Repository
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	contracts contractdomain.Repository
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("client.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		contracts: p.Contracts,
		metrics:   p.Metrics,
	}
}

func (s *Service) CreatePerson(ctx context.Context, req domain.CreatePersonRequest) (domain.ClientResponse, error) {
	email, err := s.validEmail(req.Email)
	if err != nil {
		return domain.ClientResponse{}, err
	}
	phone, err := s.validPhone(req.Phone)
	if err != nil {
		return domain.ClientResponse{}, err
	}
	firstName := strings.TrimSpace(req.FirstName)
	if !validNameLength(firstName) {
		return domain.ClientResponse{}, domain.ErrInvalidFirstName
	}
	lastName := strings.TrimSpace(req.LastName)
	if !validNameLength(lastName) {
		return domain.ClientResponse{}, domain.ErrInvalidLastName
	}
	if req.BirthDate == nil {
		return domain.ClientResponse{}, domain.ErrInvalidBirthDate
	}
	birthDate := clock.DateOf(*req.BirthDate)
	if !birthDate.Before(clock.Today(s.clock)) {
		return domain.ClientResponse{}, domain.ErrInvalidBirthDate
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:         s.genID.Generate(),
		ClientType: domain.ClientTypePerson,
		Email:      email,
		Phone:      phone,
		FirstName:  &firstName,
		LastName:   &lastName,
		BirthDate:  &birthDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.ClientResponse{}, err
	}

	s.metrics.RecordClientCreated(ctx, string(domain.ClientTypePerson))
	s.log.Info("person created", zap.String("client_id", client.ID.String()))
	return mapToResponse(&client), nil
}

func (s *Service) CreateCompany(ctx context.Context, req domain.CreateCompanyRequest) (domain.ClientResponse, error) {
	email, err := s.validEmail(req.Email)
	if err != nil {
		return domain.ClientResponse{}, err
	}
	phone, err := s.validPhone(req.Phone)
	if err != nil {
		return domain.ClientResponse{}, err
	}
	identifier := strings.TrimSpace(req.CompanyIdentifier)
	if !companyIdentifierPattern.MatchString(identifier) {
		return domain.ClientResponse{}, domain.ErrInvalidCompanyIdentifier
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:                s.genID.Generate(),
		ClientType:        domain.ClientTypeCompany,
		Email:             email,
		Phone:             phone,
		CompanyIdentifier: &identifier,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ClientResponse{}, domain.ErrCompanyIdentifierTaken
		}
		return domain.ClientResponse{}, err
	}

	s.metrics.RecordClientCreated(ctx, string(domain.ClientTypeCompany))
	s.log.Info("company created",
		zap.String("client_id", client.ID.String()),
		zap.String("company_identifier", identifier),
	)
	return mapToResponse(&client), nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.ClientResponse, error) {
	client, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ClientResponse{}, err
	}
	if client == nil {
		return domain.ClientResponse{}, &domain.NotFoundError{ID: id}
	}
	return mapToResponse(client), nil
}

func (s *Service) List(ctx context.Context) ([]domain.ClientResponse, error) {
	clients, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	responses := make([]domain.ClientResponse, 0, len(clients))
	for i := range clients {
		responses = append(responses, mapToResponse(&clients[i]))
	}
	return responses, nil
}

// Update applies a partial update: only non-nil request fields overwrite the
// stored values. Variant fields are applied only to the matching variant.
func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateClientRequest) (domain.ClientResponse, error) {
	var updated domain.Client

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if client == nil {
			return &domain.NotFoundError{ID: id}
		}

		if err := s.applyPatch(client, req); err != nil {
			return err
		}

		client.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, client); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrCompanyIdentifierTaken
			}
			return err
		}
		updated = *client
		return nil
	})
	if err != nil {
		return domain.ClientResponse{}, err
	}

	return mapToResponse(&updated), nil
}

// Delete ends every active contract of the client (soft end-dating) and then
// removes the client row, all inside one transaction.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	var ended int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if client == nil {
			return &domain.NotFoundError{ID: id}
		}

		contracts, err := s.contracts.ListByClient(ctx, tx, id)
		if err != nil {
			return err
		}

		today := clock.Today(s.clock)
		now := s.clock.Now()
		for i := range contracts {
			if !contracts[i].IsActive(today) {
				continue
			}
			endDate := today
			contracts[i].EndDate = &endDate
			contracts[i].LastModifiedDate = now
			if err := s.contracts.Update(ctx, tx, &contracts[i]); err != nil {
				return err
			}
			ended++
		}

		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordClientDeleted(ctx)
	s.metrics.RecordContractsEnded(ctx, "client_deleted", ended)
	s.log.Info("client deleted",
		zap.String("client_id", id.String()),
		zap.Int64("contracts_ended", ended),
	)
	return nil
}

func (s *Service) applyPatch(client *domain.Client, req domain.UpdateClientRequest) error {
	if req.Email != nil {
		email, err := s.validEmail(*req.Email)
		if err != nil {
			return err
		}
		client.Email = email
	}
	if req.Phone != nil {
		phone, err := s.validPhone(*req.Phone)
		if err != nil {
			return err
		}
		client.Phone = phone
	}

	switch client.ClientType {
	case domain.ClientTypePerson:
		if req.FirstName != nil {
			firstName := strings.TrimSpace(*req.FirstName)
			if !validNameLength(firstName) {
				return domain.ErrInvalidFirstName
			}
			client.FirstName = &firstName
		}
		if req.LastName != nil {
			lastName := strings.TrimSpace(*req.LastName)
			if !validNameLength(lastName) {
				return domain.ErrInvalidLastName
			}
			client.LastName = &lastName
		}
		if req.BirthDate != nil {
			birthDate := clock.DateOf(*req.BirthDate)
			if !birthDate.Before(clock.Today(s.clock)) {
				return domain.ErrInvalidBirthDate
			}
			client.BirthDate = &birthDate
		}
	case domain.ClientTypeCompany:
		if req.CompanyIdentifier != nil {
			identifier := strings.TrimSpace(*req.CompanyIdentifier)
			if !companyIdentifierPattern.MatchString(identifier) {
				return domain.ErrInvalidCompanyIdentifier
			}
			client.CompanyIdentifier = &identifier
		}
	}

	return nil
}

func (s *Service) validEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

func (s *Service) validPhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if !phonePattern.MatchString(phone) {
		return "", domain.ErrInvalidPhone
	}
	return phone, nil
}

func validNameLength(name string) bool {
	length := utf8.RuneCountInString(name)
	return length >= 2 && length <= 50
}

func mapToResponse(client *domain.Client) domain.ClientResponse {
	resp := domain.ClientResponse{
		ID:         client.ID,
		ClientType: client.ClientType,
		Email:      client.Email,
		Phone:      client.Phone,
		CreatedAt:  client.CreatedAt,
		UpdatedAt:  client.UpdatedAt,
	}

	if person, ok := client.Person(); ok {
		resp.FirstName = person.FirstName
		resp.LastName = person.LastName
		resp.BirthDate = person.BirthDate.Format(time.DateOnly)
	}
	if company, ok := client.Company(); ok {
		resp.CompanyIdentifier = company.Identifier
	}

	return resp
}
