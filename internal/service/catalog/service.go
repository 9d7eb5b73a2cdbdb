package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/repository"
)

type Servicer interface {
	CreateService(ctx context.Context, svc *model.Service) error
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
	UpdateService(ctx context.Context, svc *model.Service) error
	ListServices(ctx context.Context, activeOnly bool) ([]*model.Service, error)
	// PriceFor resolves a service's price, falling back to defaultFee for a
	// missing service or a non-positive price.
	PriceFor(ctx context.Context, id uuid.UUID, defaultFee decimal.Decimal) decimal.Decimal
}

// Service manages the clinic service catalog. Price lookups are cached;
// the consultation pipeline hits them on every completion.
type Service struct {
	repo  repository.ServiceRepository
	cache *gocache.Cache
}

func NewService(repo repository.ServiceRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *Service) CreateService(ctx context.Context, svc *model.Service) error {
	if err := s.repo.Create(ctx, svc); err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateService(ctx context.Context, svc *model.Service) error {
	if err := s.repo.Update(ctx, svc); err != nil {
		return err
	}
	s.cache.Delete(svc.ID.String())
	return nil
}

func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]*model.Service, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) PriceFor(ctx context.Context, id uuid.UUID, defaultFee decimal.Decimal) decimal.Decimal {
	key := id.String()
	if cached, found := s.cache.Get(key); found {
		if price, ok := cached.(decimal.Decimal); ok && price.IsPositive() {
			return price
		}
		return defaultFee
	}

	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		return defaultFee
	}

	s.cache.Set(key, svc.Price, gocache.DefaultExpiration)
	if svc.Price.IsPositive() {
		return svc.Price
	}
	return defaultFee
}
