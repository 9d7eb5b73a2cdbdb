package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagtibay/clinic-api/internal/model"
)

type fakeServiceRepo struct {
	services map[uuid.UUID]*model.Service
	gets     int
}

func (f *fakeServiceRepo) Create(_ context.Context, svc *model.Service) error {
	if f.services == nil {
		f.services = map[uuid.UUID]*model.Service{}
	}
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	f.gets++
	svc, ok := f.services[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return svc, nil
}

func (f *fakeServiceRepo) Update(_ context.Context, svc *model.Service) error {
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeServiceRepo) List(context.Context, bool) ([]*model.Service, error) {
	return nil, nil
}

func catalogService(price int64) (*Service, *fakeServiceRepo, uuid.UUID) {
	svc := &model.Service{Name: "Checkup", Price: decimal.NewFromInt(price)}
	svc.ID = uuid.New()
	repo := &fakeServiceRepo{services: map[uuid.UUID]*model.Service{svc.ID: svc}}
	return NewService(repo), repo, svc.ID
}

func TestPriceFor(t *testing.T) {
	s, _, id := catalogService(750)

	price := s.PriceFor(context.Background(), id, decimal.NewFromInt(500))
	assert.True(t, decimal.NewFromInt(750).Equal(price), "got %s", price)
}

func TestPriceForCachesLookups(t *testing.T) {
	s, repo, id := catalogService(750)
	defaultFee := decimal.NewFromInt(500)

	s.PriceFor(context.Background(), id, defaultFee)
	s.PriceFor(context.Background(), id, defaultFee)
	assert.Equal(t, 1, repo.gets, "second lookup must hit the cache")
}

func TestPriceForFallsBackToDefault(t *testing.T) {
	defaultFee := decimal.NewFromInt(500)

	// Unknown service.
	s := NewService(&fakeServiceRepo{})
	price := s.PriceFor(context.Background(), uuid.New(), defaultFee)
	assert.True(t, defaultFee.Equal(price))

	// Zero-priced service.
	s, _, id := catalogService(0)
	price = s.PriceFor(context.Background(), id, defaultFee)
	assert.True(t, defaultFee.Equal(price), "got %s", price)
}

func TestUpdateServiceInvalidatesCache(t *testing.T) {
	s, repo, id := catalogService(750)
	defaultFee := decimal.NewFromInt(500)

	s.PriceFor(context.Background(), id, defaultFee)

	updated := repo.services[id]
	updated.Price = decimal.NewFromInt(900)
	require.NoError(t, s.UpdateService(context.Background(), updated))

	price := s.PriceFor(context.Background(), id, defaultFee)
	assert.True(t, decimal.NewFromInt(900).Equal(price), "stale cache entry, got %s", price)
}
