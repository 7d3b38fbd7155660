package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/coverlane/coverlane/internal/client/domain"
	"github.com/coverlane/coverlane/internal/clock"
	"github.com/coverlane/coverlane/internal/contract/domain"
	"github.com/coverlane/coverlane/internal/observability/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var minCostAmount = decimal.RequireFromString("0.01")

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Clients clientdomain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	clients clientdomain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("contract.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		clients: p.Clients,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, clientID snowflake.ID, req domain.CreateContractRequest) (domain.ContractResponse, error) {
	// The client must exist before anything else is validated, so an unknown
	// client reads as not-found even when the payload is also invalid.
	exists, err := s.clients.ExistsByID(ctx, s.db, clientID)
	if err != nil {
		return domain.ContractResponse{}, err
	}
	if !exists {
		return domain.ContractResponse{}, &clientdomain.NotFoundError{ID: clientID}
	}

	if err := validCostAmount(req.CostAmount); err != nil {
		return domain.ContractResponse{}, err
	}

	startDate := clock.Today(s.clock)
	if req.StartDate != nil {
		startDate = clock.DateOf(*req.StartDate)
	}

	var endDate *time.Time
	if req.EndDate != nil {
		normalized := clock.DateOf(*req.EndDate)
		if normalized.Before(startDate) {
			return domain.ContractResponse{}, domain.ErrInvalidDateRange
		}
		endDate = &normalized
	}

	now := s.clock.Now()
	contract := domain.Contract{
		ID:               s.genID.Generate(),
		ClientID:         clientID,
		StartDate:        startDate,
		EndDate:          endDate,
		CostAmount:       req.CostAmount,
		CreatedAt:        now,
		LastModifiedDate: now,
	}

	if err := s.repo.Insert(ctx, s.db, &contract); err != nil {
		return domain.ContractResponse{}, err
	}

	s.metrics.RecordContractCreated(ctx)
	s.log.Info("contract created",
		zap.String("contract_id", contract.ID.String()),
		zap.String("client_id", clientID.String()),
	)
	return mapToResponse(&contract), nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.ContractResponse, error) {
	contract, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ContractResponse{}, err
	}
	if contract == nil {
		return domain.ContractResponse{}, &domain.NotFoundError{ID: id}
	}
	return mapToResponse(contract), nil
}

// UpdateCost replaces the contract's cost amount and refreshes its
// last-modified timestamp. Repeated identical calls are idempotent apart from
// the timestamp.
func (s *Service) UpdateCost(ctx context.Context, id snowflake.ID, req domain.UpdateCostRequest) (domain.ContractResponse, error) {
	if err := validCostAmount(req.CostAmount); err != nil {
		return domain.ContractResponse{}, err
	}

	var updated domain.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if contract == nil {
			return &domain.NotFoundError{ID: id}
		}

		contract.CostAmount = req.CostAmount
		contract.LastModifiedDate = s.clock.Now()
		if err := s.repo.Update(ctx, tx, contract); err != nil {
			return err
		}
		updated = *contract
		return nil
	})
	if err != nil {
		return domain.ContractResponse{}, err
	}

	s.metrics.RecordCostUpdate(ctx)
	return mapToResponse(&updated), nil
}

func (s *Service) ListActive(ctx context.Context, clientID snowflake.ID, modifiedAfter *time.Time) ([]domain.ContractResponse, error) {
	exists, err := s.clients.ExistsByID(ctx, s.db, clientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &clientdomain.NotFoundError{ID: clientID}
	}

	contracts, err := s.repo.ListActiveByClient(ctx, s.db, clientID, clock.Today(s.clock), modifiedAfter)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.ContractResponse, 0, len(contracts))
	for i := range contracts {
		responses = append(responses, mapToResponse(&contracts[i]))
	}
	return responses, nil
}

// TotalCost sums the cost of the client's currently-active contracts with
// exact decimal arithmetic.
func (s *Service) TotalCost(ctx context.Context, clientID snowflake.ID) (domain.TotalCostResponse, error) {
	exists, err := s.clients.ExistsByID(ctx, s.db, clientID)
	if err != nil {
		return domain.TotalCostResponse{}, err
	}
	if !exists {
		return domain.TotalCostResponse{}, &clientdomain.NotFoundError{ID: clientID}
	}

	total, count, err := s.repo.SumActiveCostByClient(ctx, s.db, clientID, clock.Today(s.clock))
	if err != nil {
		return domain.TotalCostResponse{}, err
	}

	return domain.TotalCostResponse{
		ClientID:             clientID,
		TotalCost:            total,
		ActiveContractsCount: count,
	}, nil
}

// Delete removes the contract permanently, unlike the soft end-dating applied
// during client deletion.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if contract == nil {
			return &domain.NotFoundError{ID: id}
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

func validCostAmount(amount decimal.Decimal) error {
	if amount.Cmp(minCostAmount) < 0 {
		return domain.ErrInvalidCostAmount
	}
	if amount.Exponent() < -2 {
		return domain.ErrInvalidCostAmount
	}
	return nil
}

func mapToResponse(contract *domain.Contract) domain.ContractResponse {
	resp := domain.ContractResponse{
		ID:         contract.ID,
		ClientID:   contract.ClientID,
		StartDate:  contract.StartDate.Format(time.DateOnly),
		CostAmount: contract.CostAmount,
		CreatedAt:  contract.CreatedAt,
	}
	if contract.EndDate != nil {
		resp.EndDate = contract.EndDate.Format(time.DateOnly)
	}
	return resp
}
