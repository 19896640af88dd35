package domain

import "time"

// Category is a simple reference entity grouping assets by kind.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Supplier is a simple reference entity for asset vendors.
type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// User is consumed, not owned, by this service. Read-only lookup data
// except where checkout/checkin mutate an asset's assignment reference.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle"`
	Active      bool   `json:"active"`
	Role        string `json:"role"`
}
