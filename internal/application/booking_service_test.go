package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/coachbook/service-scheduling/internal/domain/booking"
	"github.com/coachbook/service-scheduling/internal/domain/schedule"
	"github.com/coachbook/service-scheduling/internal/events"
	"github.com/coachbook/service-scheduling/internal/platform/domain"
	"github.com/coachbook/service-scheduling/internal/platform/kafka"
)

// --- In-memory fakes ---

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking

	// findActiveHook, when set, replaces FindActiveInRange.
	findActiveHook func(ctx context.Context, coachID uuid.UUID, start, end time.Time) ([]*bookingDomain.Booking, error)
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByCoachID(_ context.Context, coachID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if containsUUID(bk.CoachIDs(), coachID) {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByClientID(_ context.Context, clientID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if containsUUID(bk.ClientIDs(), clientID) {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindActiveInRange(ctx context.Context, coachID uuid.UUID, start, end time.Time) ([]*bookingDomain.Booking, error) {
	if r.findActiveHook != nil {
		return r.findActiveHook(ctx, coachID, start, end)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	candidate := schedule.TimeRange{Start: start, End: end}
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.IsActive() && containsUUID(bk.CoachIDs(), coachID) && bk.Range().Overlaps(candidate) {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[bk.Status().String()]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

type fakeBlackoutRepo struct {
	mu        sync.Mutex
	blackouts map[uuid.UUID]*schedule.Blackout
}

func newFakeBlackoutRepo() *fakeBlackoutRepo {
	return &fakeBlackoutRepo{blackouts: make(map[uuid.UUID]*schedule.Blackout)}
}

func (r *fakeBlackoutRepo) FindByID(_ context.Context, id uuid.UUID) (*schedule.Blackout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bo, ok := r.blackouts[id]
	if !ok {
		return nil, domain.NewNotFoundError("Blackout", id.String())
	}
	return bo, nil
}

func (r *fakeBlackoutRepo) FindByCoachID(_ context.Context, coachID uuid.UUID, page, limit int) ([]*schedule.Blackout, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*schedule.Blackout
	for _, bo := range r.blackouts {
		if bo.CoachID() == coachID {
			out = append(out, bo)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBlackoutRepo) FindByCoachInRange(_ context.Context, coachID uuid.UUID, start, end time.Time) ([]*schedule.Blackout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidate := schedule.TimeRange{Start: start, End: end}
	var out []*schedule.Blackout
	for _, bo := range r.blackouts {
		if bo.CoachID() == coachID && bo.Range().Overlaps(candidate) {
			out = append(out, bo)
		}
	}
	return out, nil
}

func (r *fakeBlackoutRepo) Save(_ context.Context, bo *schedule.Blackout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blackouts[bo.ID()] = bo
	return nil
}

func (r *fakeBlackoutRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blackouts[id]; !ok {
		return domain.NewNotFoundError("Blackout", id.String())
	}
	delete(r.blackouts, id)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// --- Test fixtures ---

type serviceFixture struct {
	svc       *BookingService
	repo      *fakeBookingRepo
	blackouts *fakeBlackoutRepo
	publisher *fakePublisher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	repo := newFakeBookingRepo()
	blackouts := newFakeBlackoutRepo()
	publisher := &fakePublisher{}
	svc := NewBookingService(repo, blackouts, schedule.DefaultWorkingWindow(), 5*time.Second, publisher, zap.NewNop())
	return &serviceFixture{svc: svc, repo: repo, blackouts: blackouts, publisher: publisher}
}

func sessionTimes() (time.Time, time.Time) {
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	return start, start.Add(time.Hour)
}

func createRequest(coaches, clients []uuid.UUID) CreateBookingRequest {
	start, end := sessionTimes()
	return CreateBookingRequest{
		CoachIDs:  coaches,
		ClientIDs: clients,
		Start:     start,
		End:       end,
		Location:  "Court 2",
	}
}

// --- Tests ---

func TestCreateBooking(t *testing.T) {
	f := newServiceFixture(t)
	coach := uuid.New()
	client := uuid.New()

	dto, err := f.svc.CreateBooking(context.Background(), createRequest([]uuid.UUID{coach}, []uuid.UUID{client}))
	require.NoError(t, err)

	assert.Equal(t, "requested", dto.Status)
	assert.Equal(t, []uuid.UUID{coach}, dto.CoachIDs)
	assert.Equal(t, []uuid.UUID{client}, dto.ClientIDs)
	assert.Equal(t, "unpaid", dto.PaymentStatus)
	assert.Equal(t, []string{events.BookingRequested}, f.publisher.typesSeen())
}

func TestCreateBooking_SnapsToGranularity(t *testing.T) {
	f := newServiceFixture(t)
	start, end := sessionTimes()

	req := createRequest([]uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()})
	req.Start = start.Add(4 * time.Minute)
	req.End = end.Add(-7 * time.Minute)

	dto, err := f.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, start, dto.Start)
	assert.Equal(t, end, dto.End)
}

func TestCreateBooking_InvalidRange(t *testing.T) {
	f := newServiceFixture(t)
	req := createRequest([]uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()})
	req.End = req.Start

	_, err := f.svc.CreateBooking(context.Background(), req)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidTimeRange))
}

func TestCreateBooking_ConflictWithActiveBooking(t *testing.T) {
	f := newServiceFixture(t)
	coach := uuid.New()

	_, err := f.svc.CreateBooking(context.Background(), createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()}))
	require.NoError(t, err)

	// Second request for an overlapping range on the same coach loses.
	req := createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()})
	req.Start = req.Start.Add(30 * time.Minute)
	req.End = req.End.Add(30 * time.Minute)

	_, err = f.svc.CreateBooking(context.Background(), req)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeSlotUnavailable))
}

func TestCreateBooking_RejectedBookingDoesNotBlock(t *testing.T) {
	f := newServiceFixture(t)
	coach := uuid.New()

	first, err := f.svc.CreateBooking(context.Background(), createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()}))
	require.NoError(t, err)
	_, err = f.svc.CoachReject(context.Background(), first.ID, coach, "sick")
	require.NoError(t, err)

	// The slot is immediately reusable.
	_, err = f.svc.CreateBooking(context.Background(), createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()}))
	assert.NoError(t, err)
}

func TestCreateBooking_ConflictWithBlackout(t *testing.T) {
	f := newServiceFixture(t)
	coach := uuid.New()
	start, end := sessionTimes()

	bo, err := schedule.NewBlackout(coach, start, end, "dentist")
	require.NoError(t, err)
	require.NoError(t, f.blackouts.Save(context.Background(), bo))

	_, err = f.svc.CreateBooking(context.Background(), createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()}))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeSlotUnavailable))
}

func TestCreateBooking_TouchingBookingDoesNotConflict(t *testing.T) {
	f := newServiceFixture(t)
	coach := uuid.New()

	_, err := f.svc.CreateBooking(context.Background(), createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()}))
	require.NoError(t, err)

	// Back-to-back session starting exactly when the first ends.
	req := createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()})
	req.Start = req.Start.Add(time.Hour)
	req.End = req.End.Add(time.Hour)

	_, err = f.svc.CreateBooking(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateBooking_ConcurrentRequestsOneWins(t *testing.T) {
	f := newServiceFixture(t)
	coach := uuid.New()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateBooking(context.Background(), createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()}))
		}(i)
	}
	wg.Wait()

	succeeded, unavailable := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case domain.IsCode(err, domain.CodeSlotUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent request may commit")
	assert.Equal(t, attempts-1, unavailable)
}

func TestCreateBooking_StoreTimeout(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.findActiveHook = func(ctx context.Context, _ uuid.UUID, _, _ time.Time) ([]*bookingDomain.Booking, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	svc := NewBookingService(repo, newFakeBlackoutRepo(), schedule.DefaultWorkingWindow(),
		50*time.Millisecond, &fakePublisher{}, zap.NewNop())

	_, err := svc.CreateBooking(context.Background(), createRequest([]uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()}))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeTimeout))
}

func TestBookingLifecycleThroughService(t *testing.T) {
	f := newServiceFixture(t)
	coach := uuid.New()
	client := uuid.New()
	ctx := context.Background()

	created, err := f.svc.CreateBooking(ctx, createRequest([]uuid.UUID{coach}, []uuid.UUID{client}))
	require.NoError(t, err)

	accepted, err := f.svc.CoachAccept(ctx, created.ID, coach)
	require.NoError(t, err)
	assert.Equal(t, "pending_client_confirmation", accepted.Status)
	assert.Equal(t, created.Version+1, accepted.Version)

	confirmed, err := f.svc.ClientConfirm(ctx, created.ID, client)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)

	assert.Equal(t, []string{
		events.BookingRequested,
		events.BookingAccepted,
		events.BookingConfirmed,
	}, f.publisher.typesSeen())
}

func TestCoachReject_PublishesEvent(t *testing.T) {
	f := newServiceFixture(t)
	coach := uuid.New()
	ctx := context.Background()

	created, err := f.svc.CreateBooking(ctx, createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()}))
	require.NoError(t, err)

	rejected, err := f.svc.CoachReject(ctx, created.ID, coach, "injured")
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "injured", rejected.RejectNote)

	types := f.publisher.typesSeen()
	require.Len(t, types, 2)
	assert.Equal(t, events.BookingRejected, types[1])

	var evt events.BookingRejectedEvent
	require.NoError(t, f.publisher.events[1].ParseData(&evt))
	assert.Equal(t, created.ID, evt.BookingID)
	assert.Equal(t, "injured", evt.Reason)
}

func TestCoachAccept_UnknownBooking(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.CoachAccept(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestMarkBookingPaid(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateBooking(ctx, createRequest([]uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()}))
	require.NoError(t, err)

	paid, err := f.svc.MarkBookingPaid(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.PaymentStatus)
	assert.Equal(t, "requested", paid.Status, "payment does not touch the lifecycle")
}

func TestGetBookingStats(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	coach := uuid.New()

	created, err := f.svc.CreateBooking(ctx, createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()}))
	require.NoError(t, err)
	_, err = f.svc.CoachReject(ctx, created.ID, coach, "")
	require.NoError(t, err)

	// The freed slot takes a second booking.
	_, err = f.svc.CreateBooking(ctx, createRequest([]uuid.UUID{coach}, []uuid.UUID{uuid.New()}))
	require.NoError(t, err)

	stats, err := f.svc.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["rejected"])
	assert.Equal(t, int64(1), stats.ByStatus["requested"])
}
