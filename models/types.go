package models

import "time"

// Collection names
const (
	CollectionEvents      = "events"
	CollectionMenuItems   = "menuItems"
	CollectionAssignments = "assignments"
	CollectionAdmins      = "admins"
	CollectionUsers       = "users"
	CollectionPresetLists = "presetLists"
)

// Claim pointer fields cached on a menu item
const (
	FieldAssignedTo     = "assigned_to"
	FieldAssignedToName = "assigned_to_name"
	FieldAssignedAt     = "assigned_at"
)

// Menu item category constants
const (
	CategoryStarter = "starter"
	CategoryMain    = "main"
	CategoryDessert = "dessert"
	CategoryDrink   = "drink"
	CategoryOther   = "other"
)

// Assignment status constants
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
)

// Preset list type constants
const (
	PresetDefault      = "default"
	PresetParticipants = "participants"
	PresetSalon        = "salon"
)

// Quantity bounds for claims and items
const (
	MinQuantity = 1
	MaxQuantity = 100
)

// IsValidCategory reports whether c is one of the menu categories
func IsValidCategory(c string) bool {
	switch c {
	case CategoryStarter, CategoryMain, CategoryDessert, CategoryDrink, CategoryOther:
		return true
	}
	return false
}

func IsValidPresetType(t string) bool {
	switch t {
	case PresetDefault, PresetParticipants, PresetSalon:
		return true
	}
	return false
}

// IsValidStatus reports whether s is an assignment status
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

// Request types

type CreateSessionRequest struct {
	DisplayName string `json:"display_name"`
}

type CreateEventRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type UpdateEventRequest struct {
	Name        *string `json:"name,omitempty"`
	Date        *string `json:"date,omitempty"`
	Time        *string `json:"time,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type AddMenuItemRequest struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Quantity   int    `json:"quantity"`
	IsRequired bool   `json:"is_required"`
	Notes      string `json:"notes"`
	// Participant self-service only: claim the new item right away
	AssignToMe bool   `json:"assign_to_me"`
	Phone      string `json:"phone"`
}

type UpdateMenuItemRequest struct {
	Name       *string `json:"name,omitempty"`
	Category   *string `json:"category,omitempty"`
	Quantity   *int    `json:"quantity,omitempty"`
	IsRequired *bool   `json:"is_required,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

type ClaimItemRequest struct {
	// Omitted means 1; an explicit value must be within [1,100]
	Quantity *int   `json:"quantity,omitempty"`
	Notes    string `json:"notes"`
	Phone    string `json:"phone"`
	UserName string `json:"user_name"`
}

type UpdateAssignmentRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

type ReplaceClaimantRequest struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

type CreatePresetListRequest struct {
	Name  string       `json:"name"`
	Type  string       `json:"type"`
	Items []PresetItem `json:"items"`
}

// Response types

type CreateSessionResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type AddMenuItemResponse struct {
	Item         MenuItem `json:"item"`
	AssignmentID string   `json:"assignment_id,omitempty"`
}

type ClaimItemResponse struct {
	AssignmentID string `json:"assignment_id"`
}

type EventDetails struct {
	Event       Event        `json:"event"`
	Items       []MenuItem   `json:"items"`
	Assignments []Assignment `json:"assignments"`
}

type MyAssignment struct {
	Assignment
	ItemName    string `json:"item_name"`
	AssignedAgo string `json:"assigned_ago"`
}

type MyAssignmentsResponse struct {
	Assignments []MyAssignment `json:"assignments"`
}

type RefreshResponse struct {
	Events      int `json:"events"`
	Items       int `json:"items"`
	Assignments int `json:"assignments"`
}

type CleanupResponse struct {
	Removed    int      `json:"removed"`
	RemovedIDs []string `json:"removed_ids"`
}

type ReconcileResponse struct {
	ClearedPointers []string `json:"cleared_pointers"`
	RemovedOrphans  []string `json:"removed_orphans"`
}

// Domain types

type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Date        string    `json:"date"`
	Time        string    `json:"time,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	ShareSlug   string    `json:"share_slug,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type MenuItem struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	IsRequired  bool      `json:"is_required"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CreatorID   string    `json:"creator_id,omitempty"`
	CreatorName string    `json:"creator_name,omitempty"`

	// Claim pointer, absent when unclaimed
	AssignedTo     *string    `json:"assigned_to,omitempty"`
	AssignedToName *string    `json:"assigned_to_name,omitempty"`
	AssignedAt     *time.Time `json:"assigned_at,omitempty"`
}

// ClaimedBy returns the claimant id, or "" when unclaimed
func (m MenuItem) ClaimedBy() string {
	if m.AssignedTo == nil {
		return ""
	}
	return *m.AssignedTo
}

type Assignment struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	MenuItemID string    `json:"menu_item_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Phone      string    `json:"phone,omitempty"`
	Quantity   int       `json:"quantity"`
	Notes      string    `json:"notes,omitempty"`
	Status     string    `json:"status"`
	AssignedAt time.Time `json:"assigned_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Admin struct {
	UserID      string    `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	IsAnonymous bool      `json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
}

type PresetItem struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Quantity   int    `json:"quantity"`
	IsRequired bool   `json:"is_required"`
	Notes      string `json:"notes,omitempty"`
}

type PresetList struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	Items     []PresetItem `json:"items"`
	CreatedBy string       `json:"created_by,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
