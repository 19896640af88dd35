package domain

import "time"

// Action is an audit action label. The set is closed; free-form detail text
// belongs in the entry's Detail field.
type Action string

const (
	ActionCreated    Action = "Created"
	ActionUpdated    Action = "Updated"
	ActionDeleted    Action = "Deleted"
	ActionCheckedOut Action = "CheckedOut"
	ActionCheckedIn  Action = "CheckedIn"
)

// AssetEvent is one append-only history entry for an asset. AssetID survives
// asset deletion: history is retained by policy, so there is no foreign key.
type AssetEvent struct {
	ID        string    `json:"id"`
	AssetID   string    `json:"asset_id"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// SystemEvent is one append-only global administrative entry.
type SystemEvent struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	Category   string    `json:"category"`
	Detail     string    `json:"detail"`
	OriginAddr string    `json:"origin_addr,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
