package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoachLocker_MutualExclusion(t *testing.T) {
	l := newCoachLocker()
	coach := uuid.New()
	ctx := context.Background()

	release, err := l.Lock(ctx, []uuid.UUID{coach})
	require.NoError(t, err)

	// A second acquisition for the same coach blocks until released.
	acquired := make(chan struct{})
	go func() {
		r2, err := l.Lock(ctx, []uuid.UUID{coach})
		if err == nil {
			close(acquired)
			r2()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first is held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired after release")
	}
}

func TestCoachLocker_DisjointCoachesDoNotBlock(t *testing.T) {
	l := newCoachLocker()
	ctx := context.Background()

	releaseA, err := l.Lock(ctx, []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := l.Lock(ctx, []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	releaseB()
}

func TestCoachLocker_ContextCancellation(t *testing.T) {
	l := newCoachLocker()
	coach := uuid.New()

	release, err := l.Lock(context.Background(), []uuid.UUID{coach})
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, []uuid.UUID{coach})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCoachLocker_PartialAcquisitionReleasedOnAbort(t *testing.T) {
	l := newCoachLocker()
	coachA, coachB := uuid.New(), uuid.New()

	// Hold B so a multi-coach lock on {A, B} stalls partway.
	releaseB, err := l.Lock(context.Background(), []uuid.UUID{coachB})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, []uuid.UUID{coachA, coachB})
	require.Error(t, err)

	// A must have been let go during the abort.
	releaseA, err := l.Lock(context.Background(), []uuid.UUID{coachA})
	require.NoError(t, err)
	releaseA()
	releaseB()
}

func TestCoachLocker_OverlappingSetsNoDeadlock(t *testing.T) {
	l := newCoachLocker()
	coachA, coachB, coachC := uuid.New(), uuid.New(), uuid.New()
	ctx := context.Background()

	// Opposite acquisition orders would deadlock without sorted locking.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release, err := l.Lock(ctx, []uuid.UUID{coachA, coachB, coachC})
			if err == nil {
				release()
			}
		}()
		go func() {
			defer wg.Done()
			release, err := l.Lock(ctx, []uuid.UUID{coachC, coachB, coachA})
			if err == nil {
				release()
			}
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lockers deadlocked")
	}
}
