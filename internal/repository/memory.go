package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/permit-service/internal/domain"
)

// memoryPermitRepository keeps permits in process memory. It backs the
// service when no POSTGRES_DSN is configured and is the store used in tests.
// Update carries the same compare-and-swap semantics as the postgres
// implementation.
type memoryPermitRepository struct {
	mu      sync.RWMutex
	permits map[string]domain.WorkPermit
}

// NewMemoryPermitRepository instantiates the in-memory repository.
func NewMemoryPermitRepository() PermitRepository {
	return &memoryPermitRepository{permits: make(map[string]domain.WorkPermit)}
}

func (r *memoryPermitRepository) Create(ctx context.Context, permit *domain.WorkPermit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.permits[permit.ID] = clonePermit(permit)
	return nil
}

func (r *memoryPermitRepository) GetByID(ctx context.Context, id string) (*domain.WorkPermit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.permits[id]
	if !ok {
		return nil, &domain.NotFoundError{PermitID: id}
	}
	cloned := clonePermit(&stored)
	return &cloned, nil
}

func (r *memoryPermitRepository) Update(ctx context.Context, permit *domain.WorkPermit, expectedStatus domain.PermitStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.permits[permit.ID]
	if !ok || stored.Status != expectedStatus {
		return &domain.ConflictError{PermitID: permit.ID, Expected: expectedStatus}
	}
	r.permits[permit.ID] = clonePermit(permit)
	return nil
}

func (r *memoryPermitRepository) ListWithFilter(ctx context.Context, filter PermitFilter) ([]domain.WorkPermit, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.WorkPermit, 0)
	for _, permit := range r.permits {
		if matchesFilter(&permit, filter) {
			matched = append(matched, clonePermit(&permit))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []domain.WorkPermit{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memoryPermitRepository) CountByDimensions(ctx context.Context) (*PermitCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := &PermitCounts{
		ByStatus:    make(map[domain.PermitStatus]int64),
		ByType:      make(map[domain.PermitType]int64),
		ByRiskLevel: make(map[domain.RiskLevel]int64),
	}
	for _, permit := range r.permits {
		counts.Total++
		counts.ByStatus[permit.Status]++
		counts.ByType[permit.Type]++
		counts.ByRiskLevel[permit.RiskLevel]++
	}
	return counts, nil
}

func (r *memoryPermitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.permits[id]; !ok {
		return &domain.NotFoundError{PermitID: id}
	}
	delete(r.permits, id)
	return nil
}

func matchesFilter(permit *domain.WorkPermit, filter PermitFilter) bool {
	if filter.Status != nil && permit.Status != *filter.Status {
		return false
	}
	if filter.Type != nil && permit.Type != *filter.Type {
		return false
	}
	if filter.RiskLevel != nil && permit.RiskLevel != *filter.RiskLevel {
		return false
	}
	if filter.TenantID != nil {
		if permit.TenantID == nil || *permit.TenantID != *filter.TenantID {
			return false
		}
	}
	if filter.MallID != nil && permit.MallID != *filter.MallID {
		return false
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		needle := strings.ToLower(strings.TrimSpace(*filter.Search))
		number := strings.ToLower(permit.PermitNumber)
		description := strings.ToLower(permit.Description)
		if !strings.Contains(number, needle) && !strings.Contains(description, needle) {
			return false
		}
	}
	return true
}

func clonePermit(permit *domain.WorkPermit) domain.WorkPermit {
	cloned := *permit
	if permit.TenantID != nil {
		tenant := *permit.TenantID
		cloned.TenantID = &tenant
	}
	if permit.ActualStart != nil {
		start := *permit.ActualStart
		cloned.ActualStart = &start
	}
	cloned.ApprovalHistory = append([]domain.ApprovalEntry(nil), permit.ApprovalHistory...)
	cloned.Inspections = make([]domain.Inspection, len(permit.Inspections))
	for i, inspection := range permit.Inspections {
		cloned.Inspections[i] = inspection
		cloned.Inspections[i].Findings = append([]string(nil), inspection.Findings...)
	}
	cloned.Incidents = append([]domain.Incident(nil), permit.Incidents...)
	if permit.CompletionNotes != nil {
		notes := *permit.CompletionNotes
		cloned.CompletionNotes = &notes
	}
	if permit.CancellationReason != nil {
		reason := *permit.CancellationReason
		cloned.CancellationReason = &reason
	}
	if permit.RejectionReason != nil {
		reason := *permit.RejectionReason
		cloned.RejectionReason = &reason
	}
	return cloned
}
