package masterdata

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	services  map[uuid.UUID]WorkspaceService
	cities    map[uuid.UUID]City
	amenities map[uuid.UUID]Amenity
	promos    map[uuid.UUID]Promo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		services:  map[uuid.UUID]WorkspaceService{},
		cities:    map[uuid.UUID]City{},
		amenities: map[uuid.UUID]Amenity{},
		promos:    map[uuid.UUID]Promo{},
	}
}

func (m *memoryRepo) ListServices(context.Context, ListFilters) ([]WorkspaceService, error) {
	out := make([]WorkspaceService, 0, len(m.services))
	for _, svc := range m.services {
		out = append(out, svc)
	}
	return out, nil
}

func (m *memoryRepo) CreateService(_ context.Context, svc WorkspaceService) (WorkspaceService, error) {
	m.services[svc.ID] = svc
	return svc, nil
}

func (m *memoryRepo) UpdateService(_ context.Context, svc WorkspaceService) error {
	if _, ok := m.services[svc.ID]; !ok {
		return ErrNotFound
	}
	m.services[svc.ID] = svc
	return nil
}

func (m *memoryRepo) DeleteService(_ context.Context, id uuid.UUID) error {
	if _, ok := m.services[id]; !ok {
		return ErrNotFound
	}
	delete(m.services, id)
	return nil
}

func (m *memoryRepo) ListCities(context.Context, ListFilters) ([]City, error) {
	out := make([]City, 0, len(m.cities))
	for _, city := range m.cities {
		out = append(out, city)
	}
	return out, nil
}

func (m *memoryRepo) CreateCity(_ context.Context, city City) (City, error) {
	m.cities[city.ID] = city
	return city, nil
}

func (m *memoryRepo) UpdateCity(_ context.Context, city City) error {
	if _, ok := m.cities[city.ID]; !ok {
		return ErrNotFound
	}
	m.cities[city.ID] = city
	return nil
}

func (m *memoryRepo) DeleteCity(_ context.Context, id uuid.UUID) error {
	if _, ok := m.cities[id]; !ok {
		return ErrNotFound
	}
	delete(m.cities, id)
	return nil
}

func (m *memoryRepo) ListAmenities(context.Context, ListFilters) ([]Amenity, error) {
	out := make([]Amenity, 0, len(m.amenities))
	for _, amenity := range m.amenities {
		out = append(out, amenity)
	}
	return out, nil
}

func (m *memoryRepo) CreateAmenity(_ context.Context, amenity Amenity) (Amenity, error) {
	m.amenities[amenity.ID] = amenity
	return amenity, nil
}

func (m *memoryRepo) DeleteAmenity(_ context.Context, id uuid.UUID) error {
	if _, ok := m.amenities[id]; !ok {
		return ErrNotFound
	}
	delete(m.amenities, id)
	return nil
}

func (m *memoryRepo) ListPromos(context.Context, ListFilters) ([]Promo, error) {
	out := make([]Promo, 0, len(m.promos))
	for _, promo := range m.promos {
		out = append(out, promo)
	}
	return out, nil
}

func (m *memoryRepo) CreatePromo(_ context.Context, promo Promo) (Promo, error) {
	m.promos[promo.ID] = promo
	return promo, nil
}

func (m *memoryRepo) DeletePromo(_ context.Context, id uuid.UUID) error {
	if _, ok := m.promos[id]; !ok {
		return ErrNotFound
	}
	delete(m.promos, id)
	return nil
}

func TestCreateServiceTrimsAndStamps(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.CreateService(context.Background(), WorkspaceService{Name: "  Private Office  ", Description: "Dedicated room"})
	require.NoError(t, err)
	require.Equal(t, "Private Office", created.Name)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.False(t, created.CreatedAt.IsZero())
	require.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func TestCreateServiceRejectsBlankName(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.CreateService(context.Background(), WorkspaceService{Name: "   "})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateServiceRequiresID(t *testing.T) {
	svc := NewService(newMemoryRepo())

	err := svc.UpdateService(context.Background(), WorkspaceService{Name: "Hot Desk"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateServiceMissingRow(t *testing.T) {
	svc := NewService(newMemoryRepo())

	err := svc.UpdateService(context.Background(), WorkspaceService{ID: uuid.New(), Name: "Hot Desk"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCityRejectsBlankName(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.CreateCity(context.Background(), City{Name: ""})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreatePromoUppercasesCode(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.CreatePromo(context.Background(), Promo{
		Code:            "  welcome10 ",
		DiscountPercent: decimal.NewFromInt(10),
		ValidUntil:      time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, "WELCOME10", created.Code)
}

func TestCreatePromoRejectsPercentOutOfRange(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.CreatePromo(context.Background(), Promo{Code: "BAD", DiscountPercent: decimal.NewFromInt(101)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePromo(context.Background(), Promo{Code: "BAD", DiscountPercent: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteAmenityMissing(t *testing.T) {
	svc := NewService(newMemoryRepo())

	err := svc.DeleteAmenity(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
