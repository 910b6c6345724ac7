package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/permit-service/internal/domain"
	"github.com/spec-kit/permit-service/internal/events"
	"github.com/spec-kit/permit-service/internal/repository"
	"github.com/spec-kit/permit-service/internal/workflow"
)

// maxPageSize bounds list queries to prevent unbounded scans.
const maxPageSize = 100

// PermitService is the work permit engine. It owns the state machine, checks
// the authorization guard before any mutation, persists through the
// repository's conditional write and emits exactly one notification event per
// successful transition.
type PermitService struct {
	permits    repository.PermitRepository
	machine    *workflow.Machine
	guard      *workflow.Guard
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PermitDependencies bundles collaborators for the permit engine.
type PermitDependencies struct {
	PermitRepo repository.PermitRepository
	Machine    *workflow.Machine
	Guard      *workflow.Guard
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewPermitService constructs the engine.
func NewPermitService(deps PermitDependencies) *PermitService {
	return &PermitService{
		permits:    deps.PermitRepo,
		machine:    deps.Machine,
		guard:      deps.Guard,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// PermitCreateInput describes permit creation payload.
type PermitCreateInput struct {
	MallID         string
	TenantID       *string
	Type           domain.PermitType
	RiskLevel      domain.RiskLevel
	Description    string
	Location       string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
}

// PermitUpdateInput patches descriptive fields while a permit is pending.
type PermitUpdateInput struct {
	Description    *string
	Location       *string
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
}

// InspectionInput describes an inspection record payload.
type InspectionInput struct {
	Inspector string
	Type      domain.InspectionType
	Findings  []string
	Status    domain.InspectionResult
	Comments  string
}

// IncidentInput describes an incident record payload.
type IncidentInput struct {
	Description string
	Severity    domain.IncidentSeverity
	Injuries    string
	Damage      string
	Actions     string
	ReportedBy  string
}

// PermitListFilter describes listing filters. Page is 1-indexed.
type PermitListFilter struct {
	Status    *domain.PermitStatus
	Type      *domain.PermitType
	RiskLevel *domain.RiskLevel
	TenantID  *string
	MallID    *string
	Search    *string
	Page      int
	Limit     int
}

// Pagination describes a result page.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PermitStats aggregates count-only statistics.
type PermitStats struct {
	Total       int64                        `json:"total"`
	ByStatus    map[domain.PermitStatus]int64 `json:"by_status"`
	ByType      map[domain.PermitType]int64   `json:"by_type"`
	ByRiskLevel map[domain.RiskLevel]int64    `json:"by_risk_level"`
	ByCategory  map[string]int64              `json:"by_category"`
}

// Create validates the payload, assigns id and permit number, persists the
// permit in PENDING_APPROVAL and emits a created event.
func (s *PermitService) Create(ctx context.Context, actorID string, role domain.Role, input PermitCreateInput) (*domain.WorkPermit, error) {
	if err := s.guard.Check(role, workflow.OpCreate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.MallID) == "" {
		return nil, domain.NewValidationError("mall_id is required")
	}
	if input.ScheduledStart.IsZero() || input.ScheduledEnd.IsZero() {
		return nil, domain.NewValidationError("scheduled_start and scheduled_end are required")
	}
	if !input.ScheduledEnd.After(input.ScheduledStart) {
		return nil, domain.NewValidationError("scheduled_end must be after scheduled_start")
	}
	if !domain.ValidType(input.Type) {
		return nil, domain.NewValidationError("unknown permit type %q", input.Type)
	}
	risk := input.RiskLevel
	if risk == "" {
		risk = domain.DefaultRiskLevel(input.Type)
	}
	if !domain.ValidRiskLevel(risk) {
		return nil, domain.NewValidationError("unknown risk level %q", risk)
	}
	if risk == domain.RiskLevelCritical && !domain.CriticalRiskAllowed(input.Type) {
		return nil, domain.NewValidationError("a %s permit cannot carry CRITICAL risk", input.Type)
	}

	now := time.Now()
	permit := &domain.WorkPermit{
		ID:             uuid.NewString(),
		PermitNumber:   generatePermitNumber(),
		MallID:         strings.TrimSpace(input.MallID),
		TenantID:       input.TenantID,
		Type:           input.Type,
		RiskLevel:      risk,
		Status:         domain.PermitStatusPendingApproval,
		Description:    strings.TrimSpace(input.Description),
		Location:       strings.TrimSpace(input.Location),
		ScheduledStart: input.ScheduledStart,
		ScheduledEnd:   input.ScheduledEnd,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.permits.Create(ctx, permit); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventPermitCreated, permit, actorID, role, nil)
	return permit, nil
}

// GetByID fetches a single permit.
func (s *PermitService) GetByID(ctx context.Context, id string) (*domain.WorkPermit, error) {
	return s.permits.GetByID(ctx, id)
}

// List returns a page of permits matching the filter, newest first.
func (s *PermitService) List(ctx context.Context, filter PermitListFilter) ([]domain.WorkPermit, Pagination, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, total, err := s.permits.ListWithFilter(ctx, repository.PermitFilter{
		Status:    filter.Status,
		Type:      filter.Type,
		RiskLevel: filter.RiskLevel,
		TenantID:  filter.TenantID,
		MallID:    filter.MallID,
		Search:    filter.Search,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	})
	if err != nil {
		return nil, Pagination{}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return items, Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}, nil
}

// Stats aggregates permit counts without loading histories. The category
// breakdown is derived from the per-type counts.
func (s *PermitService) Stats(ctx context.Context) (*PermitStats, error) {
	counts, err := s.permits.CountByDimensions(ctx)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[string]int64)
	for permitType, count := range counts.ByType {
		byCategory[permitType.Category()] += count
	}
	return &PermitStats{
		Total:       counts.Total,
		ByStatus:    counts.ByStatus,
		ByType:      counts.ByType,
		ByRiskLevel: counts.ByRiskLevel,
		ByCategory:  byCategory,
	}, nil
}

// Update patches descriptive fields. Only a pending permit is mutable;
// everything is frozen once review starts.
func (s *PermitService) Update(ctx context.Context, id, actorID string, role domain.Role, input PermitUpdateInput) (*domain.WorkPermit, error) {
	if err := s.guard.Check(role, workflow.OpUpdate); err != nil {
		return nil, err
	}
	permit, err := s.permits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if permit.Status != domain.PermitStatusPendingApproval {
		return nil, &domain.InvalidTransitionError{Event: "update", Current: permit.Status}
	}
	if input.Description != nil {
		permit.Description = strings.TrimSpace(*input.Description)
	}
	if input.Location != nil {
		permit.Location = strings.TrimSpace(*input.Location)
	}
	if input.ScheduledStart != nil {
		permit.ScheduledStart = *input.ScheduledStart
	}
	if input.ScheduledEnd != nil {
		permit.ScheduledEnd = *input.ScheduledEnd
	}
	if !permit.ScheduledEnd.After(permit.ScheduledStart) {
		return nil, domain.NewValidationError("scheduled_end must be after scheduled_start")
	}
	permit.UpdatedAt = time.Now()
	if err := s.permits.Update(ctx, permit, domain.PermitStatusPendingApproval); err != nil {
		return nil, err
	}
	return permit, nil
}

// Approve moves a pending permit to APPROVED and records the decision.
func (s *PermitService) Approve(ctx context.Context, id, actorID string, role domain.Role, comments string) (*domain.WorkPermit, error) {
	if err := s.guard.Check(role, workflow.OpApprove); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, actorID, role, domain.EventApprove, events.EventPermitApproved, "", func(permit *domain.WorkPermit, now time.Time) {
		permit.ApprovalHistory = append(permit.ApprovalHistory, domain.ApprovalEntry{
			ActorID:   actorID,
			Decision:  domain.DecisionApprove,
			Comments:  strings.TrimSpace(comments),
			Timestamp: now,
		})
	})
}

// Reject terminally declines a pending permit. A non-empty reason is mandatory.
func (s *PermitService) Reject(ctx context.Context, id, actorID string, role domain.Role, reason string) (*domain.WorkPermit, error) {
	if err := s.guard.Check(role, workflow.OpReject); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("rejection reason is required")
	}
	return s.transition(ctx, id, actorID, role, domain.EventReject, events.EventPermitRejected, reason, func(permit *domain.WorkPermit, now time.Time) {
		permit.RejectionReason = &reason
		permit.ApprovalHistory = append(permit.ApprovalHistory, domain.ApprovalEntry{
			ActorID:   actorID,
			Decision:  domain.DecisionReject,
			Comments:  reason,
			Timestamp: now,
		})
	})
}

// Activate starts the approved work window.
func (s *PermitService) Activate(ctx context.Context, id, actorID string, role domain.Role) (*domain.WorkPermit, error) {
	if err := s.guard.Check(role, workflow.OpActivate); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, actorID, role, domain.EventActivate, events.EventPermitActivated, "", func(permit *domain.WorkPermit, now time.Time) {
		permit.ActualStart = &now
	})
}

// Complete closes out active work, recording optional completion notes.
func (s *PermitService) Complete(ctx context.Context, id, actorID string, role domain.Role, notes string) (*domain.WorkPermit, error) {
	if err := s.guard.Check(role, workflow.OpComplete); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, actorID, role, domain.EventComplete, events.EventPermitCompleted, "", func(permit *domain.WorkPermit, now time.Time) {
		notes = strings.TrimSpace(notes)
		if notes != "" {
			permit.CompletionNotes = &notes
		}
	})
}

// Cancel terminates a permit from any non-terminal state. A non-empty reason
// is mandatory.
func (s *PermitService) Cancel(ctx context.Context, id, actorID string, role domain.Role, reason string) (*domain.WorkPermit, error) {
	if err := s.guard.Check(role, workflow.OpCancel); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("cancellation reason is required")
	}
	return s.transition(ctx, id, actorID, role, domain.EventCancel, events.EventPermitCancelled, reason, func(permit *domain.WorkPermit, now time.Time) {
		permit.CancellationReason = &reason
	})
}

// AddInspection appends an inspection record. A failed inspection escalates
// the permit's risk level to HIGH when it was below; escalation never lowers
// an already CRITICAL rating.
func (s *PermitService) AddInspection(ctx context.Context, id, actorID string, role domain.Role, input InspectionInput) (*domain.WorkPermit, error) {
	if err := s.guard.Check(role, workflow.OpAddInspection); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Inspector) == "" {
		return nil, domain.NewValidationError("inspector is required")
	}
	if !domain.ValidInspectionType(input.Type) {
		return nil, domain.NewValidationError("unknown inspection type %q", input.Type)
	}
	if !domain.ValidInspectionResult(input.Status) {
		return nil, domain.NewValidationError("unknown inspection status %q", input.Status)
	}

	permit, err := s.permits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if permit.Status.IsTerminal() {
		return nil, &domain.InvalidTransitionError{Event: "add_inspection", Current: permit.Status}
	}

	now := time.Now()
	permit.Inspections = append(permit.Inspections, domain.Inspection{
		Inspector: strings.TrimSpace(input.Inspector),
		Type:      input.Type,
		Findings:  input.Findings,
		Status:    input.Status,
		Comments:  strings.TrimSpace(input.Comments),
		Timestamp: now,
	})
	if input.Status == domain.InspectionFail && permit.RiskLevel.Below(domain.RiskLevelHigh) {
		permit.RiskLevel = domain.RiskLevelHigh
	}
	permit.UpdatedAt = now

	if err := s.permits.Update(ctx, permit, permit.Status); err != nil {
		return nil, err
	}
	return permit, nil
}

// AddIncident appends an incident record and always notifies. Terminal
// permits accept no further incident writes.
func (s *PermitService) AddIncident(ctx context.Context, id, actorID string, role domain.Role, input IncidentInput) (*domain.WorkPermit, error) {
	if err := s.guard.Check(role, workflow.OpAddIncident); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, domain.NewValidationError("incident description is required")
	}
	if !domain.ValidIncidentSeverity(input.Severity) {
		return nil, domain.NewValidationError("unknown incident severity %q", input.Severity)
	}
	if strings.TrimSpace(input.ReportedBy) == "" {
		return nil, domain.NewValidationError("reported_by is required")
	}

	permit, err := s.permits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if permit.Status.IsTerminal() {
		return nil, &domain.InvalidTransitionError{Event: "add_incident", Current: permit.Status}
	}

	now := time.Now()
	incident := domain.Incident{
		Description: strings.TrimSpace(input.Description),
		Severity:    input.Severity,
		Injuries:    strings.TrimSpace(input.Injuries),
		Damage:      strings.TrimSpace(input.Damage),
		Actions:     strings.TrimSpace(input.Actions),
		ReportedBy:  strings.TrimSpace(input.ReportedBy),
		Timestamp:   now,
	}
	permit.Incidents = append(permit.Incidents, incident)
	permit.UpdatedAt = now

	if err := s.permits.Update(ctx, permit, permit.Status); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventPermitIncident, permit, actorID, role, events.IncidentPayload{
		Severity:    incident.Severity,
		Description: incident.Description,
		ReportedBy:  incident.ReportedBy,
	})
	return permit, nil
}

// Delete hard-deletes a permit, bypassing the state machine. Admin only,
// logged, irreversible.
func (s *PermitService) Delete(ctx context.Context, id, actorID string, role domain.Role) error {
	if err := s.guard.Check(role, workflow.OpDelete); err != nil {
		return err
	}
	if err := s.permits.Delete(ctx, id); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Warn("permit hard-deleted",
			zap.String("permit_id", id),
			zap.String("actor_id", actorID))
	}
	return nil
}

// transition runs the shared read-validate-write cycle for a lifecycle
// operation: load, validate the edge against the state machine, apply the
// operation's field effects, write conditionally on the status that was read,
// then publish the event.
func (s *PermitService) transition(ctx context.Context, id, actorID string, role domain.Role, event domain.TransitionEvent, eventType events.EventType, reason string, apply func(*domain.WorkPermit, time.Time)) (*domain.WorkPermit, error) {
	permit, err := s.permits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := permit.Status
	newStatus, err := s.machine.Apply(ctx, oldStatus, event)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	permit.Status = newStatus
	permit.UpdatedAt = now
	apply(permit, now)

	if err := s.permits.Update(ctx, permit, oldStatus); err != nil {
		return nil, err
	}

	s.publish(ctx, eventType, permit, actorID, role, events.StatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Reason:    reason,
	})
	return permit, nil
}

func (s *PermitService) publish(ctx context.Context, eventType events.EventType, permit *domain.WorkPermit, actorID string, role domain.Role, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		PermitID:  permit.ID,
		Actor:     events.Actor{ID: actorID, Role: role},
		Timestamp: time.Now(),
		Permit:    events.Snapshot(permit),
		Payload:   payload,
	})
}

func generatePermitNumber() string {
	return "WP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
