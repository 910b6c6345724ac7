package dto

import (
	"time"

	"github.com/spec-kit/permit-service/internal/domain"
)

// CreatePermitRequest payload.
type CreatePermitRequest struct {
	MallID         string            `json:"mall_id"`
	TenantID       *string           `json:"tenant_id"`
	Type           domain.PermitType `json:"type"`
	RiskLevel      domain.RiskLevel  `json:"risk_level"`
	Description    string            `json:"description"`
	Location       string            `json:"location"`
	ScheduledStart time.Time         `json:"scheduled_start"`
	ScheduledEnd   time.Time         `json:"scheduled_end"`
}

// UpdatePermitRequest patches descriptive fields of a pending permit.
type UpdatePermitRequest struct {
	Description    *string    `json:"description"`
	Location       *string    `json:"location"`
	ScheduledStart *time.Time `json:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end"`
}

// ApproveRequest payload.
type ApproveRequest struct {
	Comments string `json:"comments"`
}

// RejectRequest payload.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// CompleteRequest payload.
type CompleteRequest struct {
	Notes string `json:"notes"`
}

// CancelRequest payload.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// InspectionRequest payload.
type InspectionRequest struct {
	Inspector string                  `json:"inspector"`
	Type      domain.InspectionType   `json:"type"`
	Findings  []string                `json:"findings"`
	Status    domain.InspectionResult `json:"status"`
	Comments  string                  `json:"comments"`
}

// IncidentRequest payload.
type IncidentRequest struct {
	Description string                  `json:"description"`
	Severity    domain.IncidentSeverity `json:"severity"`
	Injuries    string                  `json:"injuries"`
	Damage      string                  `json:"damage"`
	Actions     string                  `json:"actions"`
	ReportedBy  string                  `json:"reported_by"`
}

// TokenRequest payload for the bootstrap token endpoint.
type TokenRequest struct {
	ActorID string      `json:"actor_id"`
	Role    domain.Role `json:"role"`
	Secret  string      `json:"secret"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PermitResponse is the external representation of a work permit.
type PermitResponse struct {
	ID                 string                 `json:"id"`
	PermitNumber       string                 `json:"permit_number"`
	MallID             string                 `json:"mall_id"`
	TenantID           *string                `json:"tenant_id,omitempty"`
	Type               domain.PermitType      `json:"type"`
	Category           string                 `json:"category"`
	RiskLevel          domain.RiskLevel       `json:"risk_level"`
	Status             domain.PermitStatus    `json:"status"`
	Description        string                 `json:"description"`
	Location           string                 `json:"location"`
	ScheduledStart     time.Time              `json:"scheduled_start"`
	ScheduledEnd       time.Time              `json:"scheduled_end"`
	ActualStart        *time.Time             `json:"actual_start,omitempty"`
	ApprovalHistory    []domain.ApprovalEntry `json:"approval_history"`
	Inspections        []domain.Inspection    `json:"inspections"`
	Incidents          []domain.Incident      `json:"incidents"`
	CompletionNotes    *string                `json:"completion_notes,omitempty"`
	CancellationReason *string                `json:"cancellation_reason,omitempty"`
	RejectionReason    *string                `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}
