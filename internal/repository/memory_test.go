package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/permit-service/internal/domain"
	"github.com/spec-kit/permit-service/internal/repository"
)

func seedPermit(id string, status domain.PermitStatus, createdAt time.Time) *domain.WorkPermit {
	tenant := "tenant-1"
	return &domain.WorkPermit{
		ID:             id,
		PermitNumber:   "WP-" + id,
		MallID:         "mall-1",
		TenantID:       &tenant,
		Type:           domain.PermitTypeGeneral,
		RiskLevel:      domain.RiskLevelLow,
		Status:         status,
		Description:    "fit-out works",
		Location:       "unit 1-001",
		ScheduledStart: createdAt.Add(time.Hour),
		ScheduledEnd:   createdAt.Add(2 * time.Hour),
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

func TestMemoryRepo_CreateAndGet(t *testing.T) {
	repo := repository.NewMemoryPermitRepository()
	ctx := context.Background()

	permit := seedPermit("a", domain.PermitStatusPendingApproval, time.Now())
	require.NoError(t, repo.Create(ctx, permit))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, permit.PermitNumber, got.PermitNumber)
	require.Equal(t, permit.Status, got.Status)

	_, err = repo.GetByID(ctx, "missing")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestMemoryRepo_UpdateCompareAndSwap(t *testing.T) {
	repo := repository.NewMemoryPermitRepository()
	ctx := context.Background()

	permit := seedPermit("a", domain.PermitStatusPendingApproval, time.Now())
	require.NoError(t, repo.Create(ctx, permit))

	permit.Status = domain.PermitStatusApproved
	require.NoError(t, repo.Update(ctx, permit, domain.PermitStatusPendingApproval))

	// Second writer still holds the stale status; the swap must fail.
	stale := seedPermit("a", domain.PermitStatusApproved, permit.CreatedAt)
	err := repo.Update(ctx, stale, domain.PermitStatusPendingApproval)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "a", conflict.PermitID)
	require.Equal(t, domain.PermitStatusPendingApproval, conflict.Expected)

	err = repo.Update(ctx, seedPermit("missing", domain.PermitStatusApproved, time.Now()), domain.PermitStatusPendingApproval)
	require.ErrorAs(t, err, &conflict)
}

func TestMemoryRepo_ClonesIsolateCallers(t *testing.T) {
	repo := repository.NewMemoryPermitRepository()
	ctx := context.Background()

	permit := seedPermit("a", domain.PermitStatusActive, time.Now())
	permit.Inspections = []domain.Inspection{{
		Inspector: "insp-1",
		Type:      domain.InspectionPreWork,
		Findings:  []string{"clear"},
		Status:    domain.InspectionPass,
		Timestamp: time.Now(),
	}}
	require.NoError(t, repo.Create(ctx, permit))

	// Mutating what the caller holds must not leak into the store.
	permit.Description = "tampered"
	permit.Inspections[0].Findings[0] = "tampered"

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "fit-out works", got.Description)
	require.Equal(t, "clear", got.Inspections[0].Findings[0])

	// Nor must mutating a fetched copy affect later reads.
	got.Status = domain.PermitStatusCancelled
	again, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, domain.PermitStatusActive, again.Status)
}

func TestMemoryRepo_ListFiltersSortsAndPaginates(t *testing.T) {
	repo := repository.NewMemoryPermitRepository()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		permit := seedPermit(fmt.Sprintf("p%d", i), domain.PermitStatusPendingApproval, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, permit))
	}
	hot := seedPermit("hot", domain.PermitStatusApproved, base.Add(time.Hour))
	hot.Type = domain.PermitTypeHotWork
	hot.RiskLevel = domain.RiskLevelHigh
	hot.Description = "weld railing"
	require.NoError(t, repo.Create(ctx, hot))

	items, total, err := repo.ListWithFilter(ctx, repository.PermitFilter{Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 6, total)
	require.Len(t, items, 6)
	require.Equal(t, "hot", items[0].ID, "newest first")
	for i := 1; i < len(items); i++ {
		require.False(t, items[i].CreatedAt.After(items[i-1].CreatedAt))
	}

	status := domain.PermitStatusApproved
	items, total, err = repo.ListWithFilter(ctx, repository.PermitFilter{Status: &status, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "hot", items[0].ID)

	risk := domain.RiskLevelHigh
	items, _, err = repo.ListWithFilter(ctx, repository.PermitFilter{RiskLevel: &risk, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)

	search := "WELD"
	items, _, err = repo.ListWithFilter(ctx, repository.PermitFilter{Search: &search, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1, "search is case-insensitive over number and description")

	search = "WP-P3"
	items, _, err = repo.ListWithFilter(ctx, repository.PermitFilter{Search: &search, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "p3", items[0].ID)

	items, total, err = repo.ListWithFilter(ctx, repository.PermitFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.EqualValues(t, 6, total)
	require.Len(t, items, 2)

	items, total, err = repo.ListWithFilter(ctx, repository.PermitFilter{Limit: 2, Offset: 10})
	require.NoError(t, err)
	require.EqualValues(t, 6, total)
	require.Empty(t, items)
}

func TestMemoryRepo_FilterByTenantAndMall(t *testing.T) {
	repo := repository.NewMemoryPermitRepository()
	ctx := context.Background()

	a := seedPermit("a", domain.PermitStatusPendingApproval, time.Now())
	require.NoError(t, repo.Create(ctx, a))

	b := seedPermit("b", domain.PermitStatusPendingApproval, time.Now())
	otherTenant := "tenant-2"
	b.TenantID = &otherTenant
	b.MallID = "mall-2"
	require.NoError(t, repo.Create(ctx, b))

	managerInitiated := seedPermit("c", domain.PermitStatusPendingApproval, time.Now())
	managerInitiated.TenantID = nil
	require.NoError(t, repo.Create(ctx, managerInitiated))

	tenant := "tenant-2"
	items, _, err := repo.ListWithFilter(ctx, repository.PermitFilter{TenantID: &tenant, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "b", items[0].ID)

	mall := "mall-1"
	items, _, err = repo.ListWithFilter(ctx, repository.PermitFilter{MallID: &mall, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestMemoryRepo_CountByDimensions(t *testing.T) {
	repo := repository.NewMemoryPermitRepository()
	ctx := context.Background()

	base := time.Now()
	pending := seedPermit("a", domain.PermitStatusPendingApproval, base)
	require.NoError(t, repo.Create(ctx, pending))

	active := seedPermit("b", domain.PermitStatusActive, base)
	active.Type = domain.PermitTypeHotWork
	active.RiskLevel = domain.RiskLevelHigh
	require.NoError(t, repo.Create(ctx, active))

	counts, err := repo.CountByDimensions(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, counts.Total)
	require.EqualValues(t, 1, counts.ByStatus[domain.PermitStatusPendingApproval])
	require.EqualValues(t, 1, counts.ByStatus[domain.PermitStatusActive])
	require.EqualValues(t, 1, counts.ByType[domain.PermitTypeHotWork])
	require.EqualValues(t, 1, counts.ByRiskLevel[domain.RiskLevelHigh])
}

func TestMemoryRepo_Delete(t *testing.T) {
	repo := repository.NewMemoryPermitRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, seedPermit("a", domain.PermitStatusPendingApproval, time.Now())))
	require.NoError(t, repo.Delete(ctx, "a"))

	var notFound *domain.NotFoundError
	require.ErrorAs(t, repo.Delete(ctx, "a"), &notFound)
	_, err := repo.GetByID(ctx, "a")
	require.ErrorAs(t, err, &notFound)
}
