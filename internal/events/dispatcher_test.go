package events_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/permit-service/internal/domain"
	"github.com/spec-kit/permit-service/internal/events"
)

func TestDispatcher_FansOutToSubscribers(t *testing.T) {
	d := events.NewInMemoryDispatcher()

	var mu sync.Mutex
	received := make(map[string]int)
	done := make(chan struct{}, 3)

	handler := func(name string) events.EventHandler {
		return func(ctx context.Context, event events.Event) error {
			mu.Lock()
			received[name]++
			mu.Unlock()
			done <- struct{}{}
			return nil
		}
	}
	d.Subscribe(events.EventPermitApproved, handler("a"))
	d.Subscribe(events.EventPermitApproved, handler("b"))
	d.Subscribe(events.EventPermitRejected, handler("c"))

	d.Publish(context.Background(), events.Event{
		ID:       "e-1",
		Type:     events.EventPermitApproved,
		PermitID: "p-1",
	})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler did not run")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, received["a"])
	require.Equal(t, 1, received["b"])
	require.Zero(t, received["c"], "only matching subscriptions fire")
}

func TestDispatcher_PublishDoesNotBlockOnSlowHandler(t *testing.T) {
	d := events.NewInMemoryDispatcher()

	release := make(chan struct{})
	d.Subscribe(events.EventPermitCreated, func(ctx context.Context, event events.Event) error {
		<-release
		return nil
	})

	start := time.Now()
	d.Publish(context.Background(), events.Event{Type: events.EventPermitCreated})
	require.Less(t, time.Since(start), 200*time.Millisecond)
	close(release)
}

func TestDispatcher_HandlerOutlivesCancelledRequest(t *testing.T) {
	d := events.NewInMemoryDispatcher()

	errCh := make(chan error, 1)
	d.Subscribe(events.EventPermitCancelled, func(ctx context.Context, event events.Event) error {
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case <-time.After(50 * time.Millisecond):
			errCh <- nil
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	d.Publish(ctx, events.Event{Type: events.EventPermitCancelled})
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err, "handler context must not inherit cancellation")
	case <-time.After(time.Second):
		t.Fatal("handler did not finish")
	}
}

func TestSnapshot(t *testing.T) {
	tenant := "tenant-1"
	permit := &domain.WorkPermit{
		ID:           "p-1",
		PermitNumber: "WP-ABCDEF01",
		MallID:       "mall-1",
		TenantID:     &tenant,
		Type:         domain.PermitTypeHotWork,
		RiskLevel:    domain.RiskLevelHigh,
		Status:       domain.PermitStatusActive,
		Location:     "roof level 3",
		ApprovalHistory: []domain.ApprovalEntry{
			{ActorID: "manager-1", Decision: domain.DecisionApprove},
		},
	}

	snap := events.Snapshot(permit)
	require.Equal(t, "p-1", snap.ID)
	require.Equal(t, "WP-ABCDEF01", snap.PermitNumber)
	require.Equal(t, domain.PermitStatusActive, snap.Status)
	require.Equal(t, &tenant, snap.TenantID)
}
