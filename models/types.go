// ABOUTME: Data models for sales dashboard entities
// ABOUTME: Defines LeadRecord, ActionRecord, NoteRecord, EntityState, ReadinessRecord, and User structs
package models

import (
	"time"

	"github.com/google/uuid"
)

// LeadRecord is one row of the loaded snapshot plus fields derived at load
// time. Snapshot columns stay raw text in Fields; derived values are never
// written back to the snapshot.
type LeadRecord struct {
	EntityID string            `json:"entity_id"`
	Fields   map[string]string `json:"fields"`

	DisplayName  string   `json:"display_name"`
	PrimaryPhone string   `json:"primary_phone,omitempty"`
	AllPhones    []string `json:"all_phones,omitempty"`
	PrimaryEmail string   `json:"primary_email,omitempty"`
	AllEmails    []string `json:"all_emails,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	Zip          string   `json:"zip,omitempty"`
	Owner        string   `json:"owner,omitempty"`

	ValueProxy float64    `json:"value_proxy_num"`
	LastCallAt *time.Time `json:"last_call_dt,omitempty"`
	LastTextAt *time.Time `json:"last_text_dt,omitempty"`

	ReadinessLevel string   `json:"readiness_level,omitempty"`
	ReadinessScore *float64 `json:"readiness_score,omitempty"`
}

// Field returns a raw snapshot column, or "" when the column is absent.
func (r *LeadRecord) Field(name string) string {
	return r.Fields[name]
}

type ActionRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"ts"`
	UserID    string    `json:"user_id"`
	EntityID  string    `json:"entity_id"`
	Type      string    `json:"action_type"`
	Payload   string    `json:"payload,omitempty"` // JSON object
}

type NoteRecord struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"ts"`
	UserID       string    `json:"user_id"`
	EntityID     string    `json:"entity_id"`
	Text         string    `json:"note_text"`
	FollowUpDate string    `json:"follow_up_date,omitempty"` // YYYY-MM-DD
}

type EntityState struct {
	EntityID     string     `json:"entity_id"`
	Skipped      bool       `json:"skipped"`
	LastActionAt *time.Time `json:"last_action_ts,omitempty"`
}

// ReadinessRecord holds the latest questionnaire answers for an entity.
// One row per entity, replaced wholesale on every save.
type ReadinessRecord struct {
	EntityID  string            `json:"entity_id"`
	Timestamp time.Time         `json:"ts"`
	Answers   map[string]string `json:"answers"`
	Score     float64           `json:"score"`
	Level     string            `json:"level"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	OwnerValue   string    `json:"owner_value"`
	RepPhone     string    `json:"rep_phone"`
	Salt         string    `json:"salt,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
}

// IsManager reports whether the user may override owner scoping.
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// Role constants.
const (
	RoleManager = "manager"
	RoleRep     = "wolf_rep"
)

// SharedPoolOwner is the sentinel owner value for unassigned leads; every
// rep sees these rows in addition to their own.
const SharedPoolOwner = "Wolf Carports"

// ActionType constants.
const (
	ActionCall        = "call"
	ActionPreCallSMS  = "pre_call_sms"
	ActionPostCallSMS = "post_call_sms"
	ActionFinanceSMS  = "finance_sms"
	ActionBulkSMS     = "bulk_sms"
)

// ExcludedStages are lead/customer stages removed from every view. The
// exclusion applies before any caller-supplied filter and cannot be turned
// off.
var ExcludedStages = map[string]bool{
	"Cold Lead":                 true,
	"Payment confirmed":         true,
	"Partial payment confirmed": true,
	"Direct purchase":           true,
}
