package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/permit-service/internal/domain"
)

// PermitFilter captures listing parameters. All fields combine conjunctively.
type PermitFilter struct {
	Status    *domain.PermitStatus
	Type      *domain.PermitType
	RiskLevel *domain.RiskLevel
	TenantID  *string
	MallID    *string
	Search    *string
	Limit     int
	Offset    int
}

// PermitCounts aggregates count-only statistics over the store. Histories are
// never loaded for these.
type PermitCounts struct {
	Total       int64
	ByStatus    map[domain.PermitStatus]int64
	ByType      map[domain.PermitType]int64
	ByRiskLevel map[domain.RiskLevel]int64
}

// PermitRepository encapsulates work permit persistence. Update is a
// conditional write keyed on the previously read status; implementations
// without that guarantee would exhibit a lost-update race.
type PermitRepository interface {
	Create(ctx context.Context, permit *domain.WorkPermit) error
	GetByID(ctx context.Context, id string) (*domain.WorkPermit, error)
	Update(ctx context.Context, permit *domain.WorkPermit, expectedStatus domain.PermitStatus) error
	ListWithFilter(ctx context.Context, filter PermitFilter) ([]domain.WorkPermit, int64, error)
	CountByDimensions(ctx context.Context) (*PermitCounts, error)
	Delete(ctx context.Context, id string) error
}

type permitRepository struct {
	pool *pgxpool.Pool
}

// NewPermitRepository instantiates the postgres-backed repository.
func NewPermitRepository(pool *pgxpool.Pool) PermitRepository {
	return &permitRepository{pool: pool}
}

const permitColumns = `id, permit_number, mall_id, tenant_id, type, risk_level, status,
               description, location, scheduled_start, scheduled_end, actual_start,
               approval_history, inspections, incidents,
               completion_notes, cancellation_reason, rejection_reason,
               created_at, updated_at`

func (r *permitRepository) Create(ctx context.Context, permit *domain.WorkPermit) error {
	history, inspections, incidents, err := marshalSubRecords(permit)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO work_permits (id, permit_number, mall_id, tenant_id, type, risk_level, status,
            description, location, scheduled_start, scheduled_end,
            approval_history, inspections, incidents, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	_, err = r.pool.Exec(ctx, query,
		permit.ID,
		permit.PermitNumber,
		permit.MallID,
		permit.TenantID,
		permit.Type,
		permit.RiskLevel,
		permit.Status,
		permit.Description,
		permit.Location,
		permit.ScheduledStart,
		permit.ScheduledEnd,
		history,
		inspections,
		incidents,
		permit.CreatedAt,
		permit.UpdatedAt,
	)
	return err
}

func (r *permitRepository) GetByID(ctx context.Context, id string) (*domain.WorkPermit, error) {
	query := fmt.Sprintf(`SELECT %s FROM work_permits WHERE id=$1`, permitColumns)
	permit, err := scanPermit(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{PermitID: id}
		}
		return nil, err
	}
	return permit, nil
}

// Update writes the full aggregate conditionally on the status the engine
// read. Zero affected rows means another caller won the race.
func (r *permitRepository) Update(ctx context.Context, permit *domain.WorkPermit, expectedStatus domain.PermitStatus) error {
	history, inspections, incidents, err := marshalSubRecords(permit)
	if err != nil {
		return err
	}
	const query = `
        UPDATE work_permits SET risk_level=$1, status=$2, description=$3, location=$4,
            scheduled_start=$5, scheduled_end=$6, actual_start=$7,
            approval_history=$8, inspections=$9, incidents=$10,
            completion_notes=$11, cancellation_reason=$12, rejection_reason=$13, updated_at=$14
        WHERE id=$15 AND status=$16`
	cmd, err := r.pool.Exec(ctx, query,
		permit.RiskLevel,
		permit.Status,
		permit.Description,
		permit.Location,
		permit.ScheduledStart,
		permit.ScheduledEnd,
		permit.ActualStart,
		history,
		inspections,
		incidents,
		permit.CompletionNotes,
		permit.CancellationReason,
		permit.RejectionReason,
		permit.UpdatedAt,
		permit.ID,
		expectedStatus,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &domain.ConflictError{PermitID: permit.ID, Expected: expectedStatus}
	}
	return nil
}

func (r *permitRepository) ListWithFilter(ctx context.Context, filter PermitFilter) ([]domain.WorkPermit, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if filter.RiskLevel != nil {
		args = append(args, *filter.RiskLevel)
		clauses = append(clauses, fmt.Sprintf("risk_level=$%d", len(args)))
	}
	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		clauses = append(clauses, fmt.Sprintf("tenant_id=$%d", len(args)))
	}
	if filter.MallID != nil {
		args = append(args, *filter.MallID)
		clauses = append(clauses, fmt.Sprintf("mall_id=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(permit_number) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM work_permits WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM work_permits WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		permitColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	permits, err := scanPermits(rows)
	if err != nil {
		return nil, 0, err
	}
	return permits, total, nil
}

func (r *permitRepository) CountByDimensions(ctx context.Context) (*PermitCounts, error) {
	counts := &PermitCounts{
		ByStatus:    make(map[domain.PermitStatus]int64),
		ByType:      make(map[domain.PermitType]int64),
		ByRiskLevel: make(map[domain.RiskLevel]int64),
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM work_permits GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status domain.PermitStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts.ByStatus[status] = count
		counts.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	typeRows, err := r.pool.Query(ctx, `SELECT type, COUNT(*) FROM work_permits GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var pt domain.PermitType
		var count int64
		if err := typeRows.Scan(&pt, &count); err != nil {
			return nil, err
		}
		counts.ByType[pt] = count
	}
	if err := typeRows.Err(); err != nil {
		return nil, err
	}

	riskRows, err := r.pool.Query(ctx, `SELECT risk_level, COUNT(*) FROM work_permits GROUP BY risk_level`)
	if err != nil {
		return nil, err
	}
	defer riskRows.Close()
	for riskRows.Next() {
		var rl domain.RiskLevel
		var count int64
		if err := riskRows.Scan(&rl, &count); err != nil {
			return nil, err
		}
		counts.ByRiskLevel[rl] = count
	}
	if err := riskRows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *permitRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM work_permits WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{PermitID: id}
	}
	return nil
}

func marshalSubRecords(permit *domain.WorkPermit) ([]byte, []byte, []byte, error) {
	history, err := json.Marshal(emptyIfNilApprovals(permit.ApprovalHistory))
	if err != nil {
		return nil, nil, nil, err
	}
	inspections, err := json.Marshal(emptyIfNilInspections(permit.Inspections))
	if err != nil {
		return nil, nil, nil, err
	}
	incidents, err := json.Marshal(emptyIfNilIncidents(permit.Incidents))
	if err != nil {
		return nil, nil, nil, err
	}
	return history, inspections, incidents, nil
}

func emptyIfNilApprovals(entries []domain.ApprovalEntry) []domain.ApprovalEntry {
	if entries == nil {
		return []domain.ApprovalEntry{}
	}
	return entries
}

func emptyIfNilInspections(entries []domain.Inspection) []domain.Inspection {
	if entries == nil {
		return []domain.Inspection{}
	}
	return entries
}

func emptyIfNilIncidents(entries []domain.Incident) []domain.Incident {
	if entries == nil {
		return []domain.Incident{}
	}
	return entries
}

func scanPermit(row pgx.Row) (*domain.WorkPermit, error) {
	var permit domain.WorkPermit
	var history, inspections, incidents []byte
	if err := row.Scan(
		&permit.ID,
		&permit.PermitNumber,
		&permit.MallID,
		&permit.TenantID,
		&permit.Type,
		&permit.RiskLevel,
		&permit.Status,
		&permit.Description,
		&permit.Location,
		&permit.ScheduledStart,
		&permit.ScheduledEnd,
		&permit.ActualStart,
		&history,
		&inspections,
		&incidents,
		&permit.CompletionNotes,
		&permit.CancellationReason,
		&permit.RejectionReason,
		&permit.CreatedAt,
		&permit.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &permit.ApprovalHistory); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(inspections, &permit.Inspections); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(incidents, &permit.Incidents); err != nil {
		return nil, err
	}
	return &permit, nil
}

func scanPermits(rows pgx.Rows) ([]domain.WorkPermit, error) {
	var result []domain.WorkPermit
	for rows.Next() {
		permit, err := scanPermit(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *permit)
	}
	return result, rows.Err()
}
