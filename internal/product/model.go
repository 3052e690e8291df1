package product

import "time"

// Product types, ordered by service tier.
const (
	TypeSimple      = "simple"
	TypeComfortable = "comfortable"
	TypeElite       = "elite"
)

// Product is a bookable service offering.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	BasePrice   float64        `json:"base_price"`
	Description string         `json:"description,omitempty"`
	Features    map[string]any `json:"features"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ValidType reports whether t is one of the known product types.
func ValidType(t string) bool {
	switch t {
	case TypeSimple, TypeComfortable, TypeElite:
		return true
	default:
		return false
	}
}
