package masterdata

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgRepository provides PostgreSQL backed persistence.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// ListServices returns workspace services, optionally filtered by search.
func (r *PgRepository) ListServices(ctx context.Context, filters ListFilters) ([]WorkspaceService, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at, updated_at FROM services
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%') ORDER BY name LIMIT $2 OFFSET $3`,
		filters.Search, filters.Limit, (filters.Page-1)*filters.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var services []WorkspaceService
	for rows.Next() {
		var svc WorkspaceService
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

// CreateService inserts a workspace service.
func (r *PgRepository) CreateService(ctx context.Context, svc WorkspaceService) (WorkspaceService, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO services (id, name, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`, svc.ID, svc.Name, svc.Description, svc.CreatedAt, svc.UpdatedAt)
	if err != nil {
		return WorkspaceService{}, err
	}
	return svc, nil
}

// UpdateService rewrites a workspace service.
func (r *PgRepository) UpdateService(ctx context.Context, svc WorkspaceService) error {
	tag, err := r.pool.Exec(ctx, `UPDATE services SET name=$2, description=$3, updated_at=$4 WHERE id=$1`,
		svc.ID, svc.Name, svc.Description, svc.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteService removes a workspace service.
func (r *PgRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "services", id)
}

// ListCities returns cities, optionally filtered by search.
func (r *PgRepository) ListCities(ctx context.Context, filters ListFilters) ([]City, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, province, created_at, updated_at FROM cities
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%') ORDER BY name LIMIT $2 OFFSET $3`,
		filters.Search, filters.Limit, (filters.Page-1)*filters.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cities []City
	for rows.Next() {
		var city City
		if err := rows.Scan(&city.ID, &city.Name, &city.Province, &city.CreatedAt, &city.UpdatedAt); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

// CreateCity inserts a city.
func (r *PgRepository) CreateCity(ctx context.Context, city City) (City, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO cities (id, name, province, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`, city.ID, city.Name, city.Province, city.CreatedAt, city.UpdatedAt)
	if err != nil {
		return City{}, err
	}
	return city, nil
}

// UpdateCity rewrites a city.
func (r *PgRepository) UpdateCity(ctx context.Context, city City) error {
	tag, err := r.pool.Exec(ctx, `UPDATE cities SET name=$2, province=$3, updated_at=$4 WHERE id=$1`,
		city.ID, city.Name, city.Province, city.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCity removes a city.
func (r *PgRepository) DeleteCity(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "cities", id)
}

// ListAmenities returns amenities, optionally filtered by search.
func (r *PgRepository) ListAmenities(ctx context.Context, filters ListFilters) ([]Amenity, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, icon, created_at, updated_at FROM amenities
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%') ORDER BY name LIMIT $2 OFFSET $3`,
		filters.Search, filters.Limit, (filters.Page-1)*filters.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var amenities []Amenity
	for rows.Next() {
		var amenity Amenity
		if err := rows.Scan(&amenity.ID, &amenity.Name, &amenity.Icon, &amenity.CreatedAt, &amenity.UpdatedAt); err != nil {
			return nil, err
		}
		amenities = append(amenities, amenity)
	}
	return amenities, rows.Err()
}

// CreateAmenity inserts an amenity.
func (r *PgRepository) CreateAmenity(ctx context.Context, amenity Amenity) (Amenity, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO amenities (id, name, icon, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`, amenity.ID, amenity.Name, amenity.Icon, amenity.CreatedAt, amenity.UpdatedAt)
	if err != nil {
		return Amenity{}, err
	}
	return amenity, nil
}

// DeleteAmenity removes an amenity.
func (r *PgRepository) DeleteAmenity(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "amenities", id)
}

// ListPromos returns promos, optionally filtered by search on code.
func (r *PgRepository) ListPromos(ctx context.Context, filters ListFilters) ([]Promo, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, description, discount_percent::text, valid_until, created_at, updated_at FROM promos
WHERE ($1 = '' OR code ILIKE '%' || $1 || '%') ORDER BY code LIMIT $2 OFFSET $3`,
		filters.Search, filters.Limit, (filters.Page-1)*filters.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var promos []Promo
	for rows.Next() {
		var promo Promo
		var percent string
		if err := rows.Scan(&promo.ID, &promo.Code, &promo.Description, &percent, &promo.ValidUntil, &promo.CreatedAt, &promo.UpdatedAt); err != nil {
			return nil, err
		}
		if promo.DiscountPercent, err = decimal.NewFromString(percent); err != nil {
			return nil, err
		}
		promos = append(promos, promo)
	}
	return promos, rows.Err()
}

// CreatePromo inserts a promo.
func (r *PgRepository) CreatePromo(ctx context.Context, promo Promo) (Promo, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO promos (id, code, description, discount_percent, valid_until, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		promo.ID, promo.Code, promo.Description, promo.DiscountPercent.String(), promo.ValidUntil, promo.CreatedAt, promo.UpdatedAt)
	if err != nil {
		return Promo{}, err
	}
	return promo, nil
}

// DeletePromo removes a promo.
func (r *PgRepository) DeletePromo(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "promos", id)
}

func (r *PgRepository) deleteByID(ctx context.Context, table string, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, table), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
