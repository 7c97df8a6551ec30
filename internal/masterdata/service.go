package masterdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates the entity does not exist.
	ErrNotFound = errors.New("masterdata: not found")
	// ErrInvalidInput indicates an entity failing validation.
	ErrInvalidInput = errors.New("masterdata: invalid input")
)

// Repository defines data access for reference entities.
type Repository interface {
	ListServices(ctx context.Context, filters ListFilters) ([]WorkspaceService, error)
	CreateService(ctx context.Context, svc WorkspaceService) (WorkspaceService, error)
	UpdateService(ctx context.Context, svc WorkspaceService) error
	DeleteService(ctx context.Context, id uuid.UUID) error

	ListCities(ctx context.Context, filters ListFilters) ([]City, error)
	CreateCity(ctx context.Context, city City) (City, error)
	UpdateCity(ctx context.Context, city City) error
	DeleteCity(ctx context.Context, id uuid.UUID) error

	ListAmenities(ctx context.Context, filters ListFilters) ([]Amenity, error)
	CreateAmenity(ctx context.Context, amenity Amenity) (Amenity, error)
	DeleteAmenity(ctx context.Context, id uuid.UUID) error

	ListPromos(ctx context.Context, filters ListFilters) ([]Promo, error)
	CreatePromo(ctx context.Context, promo Promo) (Promo, error)
	DeletePromo(ctx context.Context, id uuid.UUID) error
}

// Service handles master data business logic.
type Service struct {
	repo Repository
}

// NewService creates a master data service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListServices returns workspace services matching the filters.
func (s *Service) ListServices(ctx context.Context, filters ListFilters) ([]WorkspaceService, error) {
	return s.repo.ListServices(ctx, normalizeFilters(filters))
}

// CreateService validates and persists a workspace service.
func (s *Service) CreateService(ctx context.Context, svc WorkspaceService) (WorkspaceService, error) {
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return WorkspaceService{}, fmt.Errorf("%w: service name required", ErrInvalidInput)
	}
	svc.ID = uuid.New()
	svc.CreatedAt = time.Now().UTC()
	svc.UpdatedAt = svc.CreatedAt
	return s.repo.CreateService(ctx, svc)
}

// UpdateService validates and rewrites a workspace service.
func (s *Service) UpdateService(ctx context.Context, svc WorkspaceService) error {
	if svc.ID == uuid.Nil {
		return fmt.Errorf("%w: service id required", ErrInvalidInput)
	}
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return fmt.Errorf("%w: service name required", ErrInvalidInput)
	}
	svc.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateService(ctx, svc)
}

// DeleteService removes a workspace service.
func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteService(ctx, id)
}

// ListCities returns cities matching the filters.
func (s *Service) ListCities(ctx context.Context, filters ListFilters) ([]City, error) {
	return s.repo.ListCities(ctx, normalizeFilters(filters))
}

// CreateCity validates and persists a city.
func (s *Service) CreateCity(ctx context.Context, city City) (City, error) {
	city.Name = strings.TrimSpace(city.Name)
	if city.Name == "" {
		return City{}, fmt.Errorf("%w: city name required", ErrInvalidInput)
	}
	city.ID = uuid.New()
	city.CreatedAt = time.Now().UTC()
	city.UpdatedAt = city.CreatedAt
	return s.repo.CreateCity(ctx, city)
}

// UpdateCity validates and rewrites a city.
func (s *Service) UpdateCity(ctx context.Context, city City) error {
	if city.ID == uuid.Nil {
		return fmt.Errorf("%w: city id required", ErrInvalidInput)
	}
	city.Name = strings.TrimSpace(city.Name)
	if city.Name == "" {
		return fmt.Errorf("%w: city name required", ErrInvalidInput)
	}
	city.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateCity(ctx, city)
}

// DeleteCity removes a city.
func (s *Service) DeleteCity(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCity(ctx, id)
}

// ListAmenities returns amenities matching the filters.
func (s *Service) ListAmenities(ctx context.Context, filters ListFilters) ([]Amenity, error) {
	return s.repo.ListAmenities(ctx, normalizeFilters(filters))
}

// CreateAmenity validates and persists an amenity.
func (s *Service) CreateAmenity(ctx context.Context, amenity Amenity) (Amenity, error) {
	amenity.Name = strings.TrimSpace(amenity.Name)
	if amenity.Name == "" {
		return Amenity{}, fmt.Errorf("%w: amenity name required", ErrInvalidInput)
	}
	amenity.ID = uuid.New()
	amenity.CreatedAt = time.Now().UTC()
	amenity.UpdatedAt = amenity.CreatedAt
	return s.repo.CreateAmenity(ctx, amenity)
}

// DeleteAmenity removes an amenity.
func (s *Service) DeleteAmenity(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAmenity(ctx, id)
}

// ListPromos returns promos matching the filters.
func (s *Service) ListPromos(ctx context.Context, filters ListFilters) ([]Promo, error) {
	return s.repo.ListPromos(ctx, normalizeFilters(filters))
}

// CreatePromo validates and persists a promo. The discount percent shares
// the invoice rate bound of [0,100].
func (s *Service) CreatePromo(ctx context.Context, promo Promo) (Promo, error) {
	promo.Code = strings.ToUpper(strings.TrimSpace(promo.Code))
	if promo.Code == "" {
		return Promo{}, fmt.Errorf("%w: promo code required", ErrInvalidInput)
	}
	if promo.DiscountPercent.IsNegative() || promo.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return Promo{}, fmt.Errorf("%w: discount percent must be between 0 and 100", ErrInvalidInput)
	}
	promo.ID = uuid.New()
	promo.CreatedAt = time.Now().UTC()
	promo.UpdatedAt = promo.CreatedAt
	return s.repo.CreatePromo(ctx, promo)
}

// DeletePromo removes a promo.
func (s *Service) DeletePromo(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeletePromo(ctx, id)
}

func normalizeFilters(filters ListFilters) ListFilters {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	filters.Search = strings.TrimSpace(filters.Search)
	return filters
}
