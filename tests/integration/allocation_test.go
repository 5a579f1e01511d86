package integration

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apptramite "github.com/tramites/backend/internal/application/tramite"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tramite"
	"github.com/tramites/backend/internal/infrastructure/persistence"
	"github.com/tramites/backend/tests/testutil"
	"gorm.io/gorm"
)

func TestCounterStore_ConcurrentNextIsGapFree(t *testing.T) {
	tdb := NewSharedTestDB(t)
	f := tdb.CreateFixture("CL")
	store := persistence.NewGormCounterStore(tdb.DB, 5*time.Second)
	key := radicacion.CounterKey{TenantID: f.Tenant.ID, CategoryCode: "CL", Year: 2024}

	const workers = 50
	values := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			values[i], errs[i] = store.Next(context.Background(), key, nil)
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for i, v := range values {
		assert.Equal(t, int64(i+1), v)
	}

	snapshots, err := store.Snapshots(context.Background(), f.Tenant.ID, 2024)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, int64(workers), snapshots[0].LastValue)
}

func TestCounterStore_HeldLockTimesOutWithoutGap(t *testing.T) {
	tdb := NewSharedTestDB(t)
	f := tdb.CreateFixture("CL")
	ctx := context.Background()
	store := persistence.NewGormCounterStore(tdb.DB, 300*time.Millisecond)

	keyA := radicacion.CounterKey{TenantID: f.Tenant.ID, CategoryCode: "CL", Year: 2024}
	keyB := radicacion.CounterKey{TenantID: f.Tenant.ID, CategoryCode: "CL", Year: 2025}

	first, err := store.Next(ctx, keyA, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), first)

	locked := make(chan struct{})
	release := make(chan struct{})
	holderDone := make(chan error, 1)
	go func() {
		holderDone <- tdb.DB.Transaction(func(tx *gorm.DB) error {
			var lastValue int64
			if err := tx.Raw(`SELECT last_value FROM sequence_counters
				WHERE tenant_id = ? AND category_code = ? AND year = ? FOR UPDATE`,
				keyA.TenantID, keyA.CategoryCode, keyA.Year).Scan(&lastValue).Error; err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	t.Run("other key is not delayed", func(t *testing.T) {
		begin := time.Now()
		v, err := store.Next(ctx, keyB, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
		assert.Less(t, time.Since(begin), 250*time.Millisecond)
	})

	t.Run("locked key times out", func(t *testing.T) {
		_, err := store.Next(ctx, keyA, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, radicacion.ErrAllocationTimeout), "got %v", err)
	})

	close(release)
	require.NoError(t, <-holderDone)

	next, err := store.Next(ctx, keyA, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next, "a timed out attempt must not consume a number")
}

func TestService_ConcurrentCreateNumbersAreConsecutive(t *testing.T) {
	tdb := NewSharedTestDB(t)
	f := tdb.CreateFixture("CL")
	env := newServiceEnv(tdb, fixedClock(2024))
	ctx := testutil.ActorContext(t, f.Requester.ID, &f.Tenant.ID, f.Requester.Role)

	const filings = 50
	numbers := make([]string, filings)
	errs := make([]error, filings)

	var wg sync.WaitGroup
	for i := 0; i < filings; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := env.service.Create(ctx, apptramite.CreateTramiteRequest{
				CategoryID: f.Category.ID,
				Subject:    "Obra nueva",
			})
			errs[i] = err
			if err == nil {
				numbers[i] = resp.FilingNumber
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "filing %d", i)
	}

	expected := make([]string, filings)
	for i := range expected {
		expected[i] = radicacion.Number{
			TenantCode:   f.Tenant.Code,
			CategoryCode: "CL",
			Year:         2024,
			Counter:      int64(i + 1),
		}.String()
	}
	sort.Strings(numbers)
	assert.Equal(t, expected, numbers)
}

func TestCounterStore_FailedIssueRollsBackNumber(t *testing.T) {
	tdb := NewSharedTestDB(t)
	f := tdb.CreateFixture("CL")
	store := persistence.NewGormCounterStore(tdb.DB, 5*time.Second)
	repo := persistence.NewGormTramiteRepository(tdb.DB)
	ctx := testutil.ActorContext(t, f.Requester.ID, &f.Tenant.ID, f.Requester.Role)
	key := radicacion.CounterKey{TenantID: f.Tenant.ID, CategoryCode: "CL", Year: 2024}

	insert := func(ctx context.Context, value int64) error {
		number := radicacion.Number{TenantCode: f.Tenant.Code, CategoryCode: "CL", Year: 2024, Counter: value}.String()
		tr, err := tramite.NewTramite(f.Tenant.ID, number, f.Category.ID, f.Requester.ID,
			tramite.Details{Subject: "Obra nueva"}, time.Now())
		if err != nil {
			return err
		}
		return repo.Create(ctx, tr)
	}

	rejected := errors.New("rejected after insert")
	_, err := store.Next(ctx, key, func(ctx context.Context, value int64) error {
		if err := insert(ctx, value); err != nil {
			return err
		}
		return rejected
	})
	require.ErrorIs(t, err, rejected)

	number := radicacion.Number{TenantCode: f.Tenant.Code, CategoryCode: "CL", Year: 2024, Counter: 1}.String()
	_, err = repo.FindByFilingNumber(ctx, number)
	assert.ErrorIs(t, err, shared.ErrNotFound, "the insert must roll back with the counter")

	v, err := store.Next(ctx, key, insert)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	_, err = repo.FindByFilingNumber(ctx, number)
	assert.NoError(t, err)
}
