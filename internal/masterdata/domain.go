// Package masterdata manages the reference entities backing the console
// screens: workspace services, cities, amenities, and promos. Service and
// city names double as the grouping dimensions of the finance reports.
package masterdata

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
}

// WorkspaceService represents a rentable workspace offering.
type WorkspaceService struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// City represents a city where workspaces operate.
type City struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Province  string    `json:"province"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Amenity represents a bookable workspace amenity.
type Amenity struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Promo represents a promotional discount. Its percent feeds the invoice
// discount rate, so it carries the same [0,100] bound.
type Promo struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	ValidUntil      time.Time       `json:"valid_until"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
