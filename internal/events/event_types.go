package events

import (
	"time"

	"github.com/spec-kit/permit-service/internal/domain"
)

// EventType enumerates permit event tags.
type EventType string

const (
	EventPermitCreated   EventType = "created"
	EventPermitApproved  EventType = "approved"
	EventPermitRejected  EventType = "rejected"
	EventPermitActivated EventType = "activated"
	EventPermitCompleted EventType = "completed"
	EventPermitCancelled EventType = "cancelled"
	EventPermitIncident  EventType = "incident"
)

// AllEventTypes lists every tag a sink may subscribe to.
var AllEventTypes = []EventType{
	EventPermitCreated,
	EventPermitApproved,
	EventPermitRejected,
	EventPermitActivated,
	EventPermitCompleted,
	EventPermitCancelled,
	EventPermitIncident,
}

// Actor identifies who triggered an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// PermitSnapshot carries the permit fields a notification needs. The full
// aggregate (histories included) stays out of the event payload.
type PermitSnapshot struct {
	ID           string              `json:"id"`
	PermitNumber string              `json:"permit_number"`
	MallID       string              `json:"mall_id"`
	TenantID     *string             `json:"tenant_id,omitempty"`
	Type         domain.PermitType   `json:"type"`
	RiskLevel    domain.RiskLevel    `json:"risk_level"`
	Status       domain.PermitStatus `json:"status"`
	Location     string              `json:"location,omitempty"`
}

// Event represents a permit lifecycle event emitted by the engine. Exactly
// one is published per successful transition.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	PermitID  string         `json:"permit_id"`
	Actor     Actor          `json:"actor"`
	Timestamp time.Time      `json:"timestamp"`
	Permit    PermitSnapshot `json:"permit"`
	Payload   interface{}    `json:"payload,omitempty"`
}

// StatusChangedPayload accompanies every transition event.
type StatusChangedPayload struct {
	OldStatus domain.PermitStatus `json:"old_status"`
	NewStatus domain.PermitStatus `json:"new_status"`
	Reason    string              `json:"reason,omitempty"`
}

// IncidentPayload accompanies incident events.
type IncidentPayload struct {
	Severity    domain.IncidentSeverity `json:"severity"`
	Description string                  `json:"description"`
	ReportedBy  string                  `json:"reported_by"`
}

// Snapshot builds a PermitSnapshot from the aggregate.
func Snapshot(permit *domain.WorkPermit) PermitSnapshot {
	return PermitSnapshot{
		ID:           permit.ID,
		PermitNumber: permit.PermitNumber,
		MallID:       permit.MallID,
		TenantID:     permit.TenantID,
		Type:         permit.Type,
		RiskLevel:    permit.RiskLevel,
		Status:       permit.Status,
		Location:     permit.Location,
	}
}
