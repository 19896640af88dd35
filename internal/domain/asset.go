// Package domain provides domain models for Stockroom.
//
// Store and transport layers exchange these types only; rows and JSON
// payloads are mapped at the edges.
package domain

import "time"

// Status represents the lifecycle state of an asset.
type Status string

const (
	StatusInStock  Status = "IN_STOCK"  // available for checkout
	StatusAssigned Status = "ASSIGNED"  // checked out to a user
	StatusInRepair Status = "IN_REPAIR" // under maintenance
	StatusRetired  Status = "RETIRED"   // end of life, kept for records
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusAssigned, StatusInRepair, StatusRetired:
		return true
	}
	return false
}

// DisplayName returns the human-readable label for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusInStock:
		return "In Stock"
	case StatusAssigned:
		return "Assigned"
	case StatusInRepair:
		return "In Repair"
	case StatusRetired:
		return "Retired"
	}
	return string(s)
}

// Asset represents one tracked device.
type Asset struct {
	ID             string     `json:"id"`
	Tag            string     `json:"tag"`
	CategoryID     *string    `json:"category_id,omitempty"`
	SupplierID     *string    `json:"supplier_id,omitempty"`
	Model          string     `json:"model"`
	Serial         string     `json:"serial,omitempty"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	WarrantyExpiry *time.Time `json:"warranty_expiry,omitempty"`
	AssignedUserID *string    `json:"assigned_user_id,omitempty"`
	Status         Status     `json:"status"`
	ImageName      string     `json:"image_name,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AssignmentConsistent reports whether status and assigned user satisfy the
// coupling invariant: status == Assigned iff an assigned user is set.
func AssignmentConsistent(status Status, assignedUserID *string) bool {
	assigned := assignedUserID != nil && *assignedUserID != ""
	if status == StatusAssigned {
		return assigned
	}
	return !assigned
}

// ConsistentAssignment reports whether the asset itself satisfies the
// coupling invariant.
func (a *Asset) ConsistentAssignment() bool {
	return AssignmentConsistent(a.Status, a.AssignedUserID)
}

// AssetListItem is an asset row joined with human-readable labels for
// list/search surfaces.
type AssetListItem struct {
	Asset
	CategoryName string `json:"category_name,omitempty"`
	SupplierName string `json:"supplier_name,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
}

// BulkAction is a multi-asset mutation applied atomically.
type BulkAction string

const (
	BulkDelete BulkAction = "DELETE"
	BulkRetire BulkAction = "SET_RETIRED"
	BulkRepair BulkAction = "SET_REPAIR"
)

// Valid reports whether the bulk action is known.
func (a BulkAction) Valid() bool {
	switch a {
	case BulkDelete, BulkRetire, BulkRepair:
		return true
	}
	return false
}

// TargetStatus returns the status a non-delete bulk action moves assets to.
func (a BulkAction) TargetStatus() (Status, bool) {
	switch a {
	case BulkRetire:
		return StatusRetired, true
	case BulkRepair:
		return StatusInRepair, true
	}
	return "", false
}

// PageInfo describes one page of a filtered result set. Page is the
// normalized (clamped) page number actually used for the query.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalRows  int64 `json:"total_rows"`
	TotalPages int   `json:"total_pages"`
}
