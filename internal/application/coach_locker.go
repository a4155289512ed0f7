package application

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// coachLocker serializes the validate-then-write step of booking creation per
// coach. Operations on different coaches proceed without blocking each other;
// two creates touching the same coach are forced into sequence so the second
// one revalidates against the first one's committed write.
//
// Semaphore channels are used instead of sync.Mutex so acquisition can honour
// context cancellation and surface the create time budget as a Timeout error.
type coachLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]chan struct{}
}

func newCoachLocker() *coachLocker {
	return &coachLocker{locks: make(map[uuid.UUID]chan struct{})}
}

// Lock acquires the lock for every listed coach and returns a release
// function. Locks are always taken in sorted ID order so two multi-coach
// creates with overlapping coach sets cannot deadlock each other.
func (l *coachLocker) Lock(ctx context.Context, coachIDs []uuid.UUID) (func(), error) {
	ids := sortedUniqueIDs(coachIDs)

	held := make([]chan struct{}, 0, len(ids))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, id := range ids {
		sem := l.sem(id)
		select {
		case sem <- struct{}{}:
			held = append(held, sem)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

func (l *coachLocker) sem(id uuid.UUID) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.locks[id]
	if !ok {
		sem = make(chan struct{}, 1)
		l.locks[id] = sem
	}
	return sem
}

func sortedUniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}
