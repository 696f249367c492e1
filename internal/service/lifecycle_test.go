package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvehq/studyspace/internal/model"
	"github.com/evolvehq/studyspace/internal/queue"
	"github.com/evolvehq/studyspace/internal/repository"
)

// In-memory fakes for the store interfaces.

type fakeSeats struct {
	byID map[uint64]*model.Seat
}

func newFakeSeats(count int) *fakeSeats {
	f := &fakeSeats{byID: map[uint64]*model.Seat{}}
	for i := 1; i <= count; i++ {
		id := uint64(i)
		f.byID[id] = &model.Seat{ID: id, SeatNumber: uint32(i), Status: model.SeatVacant}
	}
	return f
}

func (f *fakeSeats) GetByNumber(_ context.Context, n uint32) (*model.Seat, error) {
	for _, s := range f.byID {
		if s.SeatNumber == n {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSeatNotFound
}

func (f *fakeSeats) GetByID(_ context.Context, id uint64) (*model.Seat, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrSeatNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSeats) Occupy(_ context.Context, seatID, memberID, subID uint64) error {
	s, ok := f.byID[seatID]
	if !ok || s.Status != model.SeatVacant {
		return repository.ErrSeatUnavailable
	}
	s.Status = model.SeatOccupied
	s.MemberID = &memberID
	s.SubscriptionID = &subID
	return nil
}

func (f *fakeSeats) Vacate(_ context.Context, seatID uint64) error {
	s, ok := f.byID[seatID]
	if !ok {
		return repository.ErrSeatNotFound
	}
	s.Status = model.SeatVacant
	s.MemberID = nil
	s.SubscriptionID = nil
	return nil
}

type fakeSubs struct {
	byID   map[uint64]*model.Subscription
	nextID uint64
}

func newFakeSubs() *fakeSubs { return &fakeSubs{byID: map[uint64]*model.Subscription{}} }

func (f *fakeSubs) Create(_ context.Context, s *model.Subscription) error {
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeSubs) GetByID(_ context.Context, id uint64) (*model.Subscription, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrSubscriptionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubs) MarkExpired(_ context.Context, id uint64) error {
	s, ok := f.byID[id]
	if !ok {
		return repository.ErrSubscriptionNotFound
	}
	s.Status = model.SubscriptionExpired
	return nil
}

func (f *fakeSubs) UpdateSeat(_ context.Context, id, seatID uint64) error {
	s, ok := f.byID[id]
	if !ok {
		return repository.ErrSubscriptionNotFound
	}
	s.SeatID = seatID
	return nil
}

type fakePays struct {
	payments []model.Payment
}

func (f *fakePays) Create(_ context.Context, p *model.Payment) error {
	p.ID = uint64(len(f.payments) + 1)
	f.payments = append(f.payments, *p)
	return nil
}

type fakeWaiting struct {
	entries []model.WaitingEntry
}

func (f *fakeWaiting) Earliest(_ context.Context) (*model.WaitingEntry, error) {
	if len(f.entries) == 0 {
		return nil, repository.ErrWaitingNotFound
	}
	cp := f.entries[0]
	return &cp, nil
}

func (f *fakeWaiting) Delete(_ context.Context, id uint64) error {
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrWaitingNotFound
}

type fakeCodes struct {
	seq map[string]int64
}

func (f *fakeCodes) Next(_ context.Context, scope string, now time.Time) (string, error) {
	if f.seq == nil {
		f.seq = map[string]int64{}
	}
	f.seq[scope]++
	return repository.FormatCode(now, f.seq[scope]), nil
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Append(_ context.Context, action, entity, entityID, details, performedBy string) error {
	f.actions = append(f.actions, fmt.Sprintf("%s %s %s", action, entity, entityID))
	return nil
}

type fakeEvents struct {
	published []queue.LifecycleEvent
}

func (f *fakeEvents) Publish(_ context.Context, ev queue.LifecycleEvent) error {
	f.published = append(f.published, ev)
	return nil
}

// fixture bundles the fakes behind a coordinator with a frozen clock.
type fixture struct {
	lc      *Lifecycle
	seats   *fakeSeats
	subs    *fakeSubs
	pays    *fakePays
	waiting *fakeWaiting
	events  *fakeEvents
	audit   *fakeAudit
	now     time.Time
}

func newFixture(t *testing.T, seatCount int) *fixture {
	t.Helper()
	f := &fixture{
		seats:   newFakeSeats(seatCount),
		subs:    newFakeSubs(),
		pays:    &fakePays{},
		waiting: &fakeWaiting{},
		events:  &fakeEvents{},
		audit:   &fakeAudit{},
		now:     time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC),
	}
	f.lc = NewLifecycle(f.seats, f.subs, f.pays, f.waiting, &fakeCodes{}, f.audit, f.events)
	f.lc.now = func() time.Time { return f.now }
	return f
}

// assertSeatInvariant checks that occupied seats carry both references
// and vacant seats carry neither.
func assertSeatInvariant(t *testing.T, seats *fakeSeats) {
	t.Helper()
	for _, s := range seats.byID {
		if s.Status == model.SeatOccupied {
			assert.NotNil(t, s.MemberID, "occupied seat %d missing member ref", s.SeatNumber)
			assert.NotNil(t, s.SubscriptionID, "occupied seat %d missing subscription ref", s.SeatNumber)
		} else {
			assert.Nil(t, s.MemberID, "vacant seat %d has member ref", s.SeatNumber)
			assert.Nil(t, s.SubscriptionID, "vacant seat %d has subscription ref", s.SeatNumber)
		}
	}
}

func createInput(memberID uint64, seatNumber uint32) CreateInput {
	return CreateInput{
		MemberID:    memberID,
		LocationID:  1,
		SeatNumber:  seatNumber,
		StartDate:   time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Duration:    "1 month",
		Amount:      decimal.NewFromInt(1500),
		Method:      model.PaymentCash,
		PerformedBy: "admin@example.com",
	}
}

func TestCreateAssignsSeatAndRecordsPayment(t *testing.T) {
	f := newFixture(t, 3)

	sub, err := f.lc.Create(context.Background(), createInput(7, 2))
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.Equal(t, model.SubscriptionActive, sub.Status)
	assert.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), sub.EndDate)

	seat, err := f.seats.GetByNumber(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, model.SeatOccupied, seat.Status)
	require.NotNil(t, seat.MemberID)
	assert.Equal(t, uint64(7), *seat.MemberID)
	assertSeatInvariant(t, f.seats)

	require.Len(t, f.pays.payments, 1)
	p := f.pays.payments[0]
	assert.Equal(t, sub.ID, p.SubscriptionID)
	assert.Regexp(t, `^EVOLVE\d{6}\d{3}$`, p.UniqueCode)
	assert.Equal(t, model.PaymentCash, p.Method)
	assert.Empty(t, p.UPICode)

	require.Len(t, f.events.published, 1)
	assert.Equal(t, queue.EventSubscriptionCreated, f.events.published[0].Type)
}

func TestCreateKeepsUPICodeForUPIPayments(t *testing.T) {
	f := newFixture(t, 1)

	in := createInput(1, 1)
	in.Method = model.PaymentUPI
	in.UPICode = "evolve@upi/123"
	_, err := f.lc.Create(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, f.pays.payments, 1)
	assert.Equal(t, "evolve@upi/123", f.pays.payments[0].UPICode)
}

func TestCreateRejectsPastStartDate(t *testing.T) {
	f := newFixture(t, 1)

	in := createInput(1, 1)
	in.StartDate = time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC)
	_, err := f.lc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrPastStartDate)
	assert.Empty(t, f.subs.byID)
	assertSeatInvariant(t, f.seats)
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t, 1)

	in := createInput(1, 1)
	in.Amount = decimal.Zero
	_, err := f.lc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Empty(t, f.pays.payments)
}

func TestCreateOnOccupiedSeatLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, 2)

	first, err := f.lc.Create(context.Background(), createInput(1, 1))
	require.NoError(t, err)

	_, err = f.lc.Create(context.Background(), createInput(2, 1))
	assert.ErrorIs(t, err, repository.ErrSeatUnavailable)

	// The first assignment is untouched.
	seat, err := f.seats.GetByNumber(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, seat.MemberID)
	assert.Equal(t, uint64(1), *seat.MemberID)
	assert.Equal(t, first.ID, *seat.SubscriptionID)
	assert.Len(t, f.subs.byID, 1)
	assert.Len(t, f.pays.payments, 1)
	assertSeatInvariant(t, f.seats)
}

func TestCreateUnknownSeatNumber(t *testing.T) {
	f := newFixture(t, 2)

	_, err := f.lc.Create(context.Background(), createInput(1, 99))
	assert.ErrorIs(t, err, repository.ErrSeatUnavailable)
}

func TestChangeSeatMovesReferences(t *testing.T) {
	f := newFixture(t, 3)

	sub, err := f.lc.Create(context.Background(), createInput(5, 1))
	require.NoError(t, err)

	require.NoError(t, f.lc.ChangeSeat(context.Background(), sub.ID, 3, "admin@example.com"))

	oldSeat, _ := f.seats.GetByNumber(context.Background(), 1)
	newSeat, _ := f.seats.GetByNumber(context.Background(), 3)
	assert.Equal(t, model.SeatVacant, oldSeat.Status)
	assert.Equal(t, model.SeatOccupied, newSeat.Status)
	require.NotNil(t, newSeat.MemberID)
	assert.Equal(t, uint64(5), *newSeat.MemberID)

	moved, err := f.subs.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, newSeat.ID, moved.SeatID)
	assertSeatInvariant(t, f.seats)
}

func TestChangeSeatToOccupiedSeatRejected(t *testing.T) {
	f := newFixture(t, 2)

	a, err := f.lc.Create(context.Background(), createInput(1, 1))
	require.NoError(t, err)
	_, err = f.lc.Create(context.Background(), createInput(2, 2))
	require.NoError(t, err)

	err = f.lc.ChangeSeat(context.Background(), a.ID, 2, "admin@example.com")
	assert.ErrorIs(t, err, repository.ErrSeatUnavailable)

	seat, _ := f.seats.GetByNumber(context.Background(), 1)
	assert.Equal(t, model.SeatOccupied, seat.Status)
	assertSeatInvariant(t, f.seats)
}

func TestEndWithEmptyWaitingListLeavesSeatVacant(t *testing.T) {
	f := newFixture(t, 2)

	sub, err := f.lc.Create(context.Background(), createInput(1, 1))
	require.NoError(t, err)

	res, err := f.lc.End(context.Background(), sub.ID, "admin@example.com")
	require.NoError(t, err)
	assert.Nil(t, res.Promoted)

	ended, _ := f.subs.GetByID(context.Background(), sub.ID)
	assert.Equal(t, model.SubscriptionExpired, ended.Status)

	seat, _ := f.seats.GetByNumber(context.Background(), 1)
	assert.Equal(t, model.SeatVacant, seat.Status)
	assertSeatInvariant(t, f.seats)

	last := f.events.published[len(f.events.published)-1]
	assert.Equal(t, queue.EventSeatAvailable, last.Type)
}

func TestEndPromotesEarliestEntrantExactlyOnce(t *testing.T) {
	f := newFixture(t, 1)

	sub, err := f.lc.Create(context.Background(), createInput(1, 1))
	require.NoError(t, err)

	f.waiting.entries = []model.WaitingEntry{
		{
			ID:            10,
			MemberID:      2,
			RequestedAt:   f.now.Add(-2 * time.Hour),
			StartDate:     time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
			Duration:      "2 months",
			Amount:        decimal.NewFromInt(2800),
			PaymentMethod: model.PaymentUPI,
			UPICode:       "member2@upi",
		},
		{
			ID:          11,
			MemberID:    3,
			RequestedAt: f.now.Add(-time.Hour),
			StartDate:   time.Date(2024, time.January, 21, 0, 0, 0, 0, time.UTC),
			Duration:    "1 month",
			Amount:      decimal.NewFromInt(1500),
		},
	}

	res, err := f.lc.End(context.Background(), sub.ID, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, res.Promoted)

	// The earliest entrant got the seat with their requested terms.
	assert.Equal(t, uint64(2), res.Promoted.MemberID)
	assert.Equal(t, model.SubscriptionActive, res.Promoted.Status)
	assert.Equal(t, time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), res.Promoted.EndDate)

	seat, _ := f.seats.GetByNumber(context.Background(), 1)
	assert.Equal(t, model.SeatOccupied, seat.Status)
	require.NotNil(t, seat.MemberID)
	assert.Equal(t, uint64(2), *seat.MemberID)
	assertSeatInvariant(t, f.seats)

	// Entry 10 removed exactly once, entry 11 still queued.
	require.Len(t, f.waiting.entries, 1)
	assert.Equal(t, uint64(11), f.waiting.entries[0].ID)

	// The promotion payment continues the code sequence and carries
	// the entry's UPI details.
	require.Len(t, f.pays.payments, 2)
	promoPay := f.pays.payments[1]
	assert.Equal(t, res.Promoted.ID, promoPay.SubscriptionID)
	assert.Equal(t, model.PaymentUPI, promoPay.Method)
	assert.Equal(t, "member2@upi", promoPay.UPICode)
	assert.NotEqual(t, f.pays.payments[0].UniqueCode, promoPay.UniqueCode)

	last := f.events.published[len(f.events.published)-1]
	assert.Equal(t, queue.EventSeatReassigned, last.Type)
	assert.Equal(t, uint64(2), last.MemberID)
}

func TestEndPublishesExpiryEvent(t *testing.T) {
	f := newFixture(t, 1)

	sub, err := f.lc.Create(context.Background(), createInput(1, 1))
	require.NoError(t, err)

	_, err = f.lc.End(context.Background(), sub.ID, "admin@example.com")
	require.NoError(t, err)

	// created, expired, available; the expiry event fires once the
	// seat is released, regardless of the waiting-list outcome.
	require.Len(t, f.events.published, 3)
	exp := f.events.published[1]
	assert.Equal(t, queue.EventSubscriptionExpired, exp.Type)
	assert.Equal(t, sub.ID, exp.SubscriptionID)
	assert.Equal(t, uint64(1), exp.MemberID)
	assert.Equal(t, uint32(1), exp.SeatNumber)
	assert.Equal(t, sub.EndDate.Format("2006-01-02"), exp.EndDate)
}

func TestEndPublishesExpiryBeforePromotion(t *testing.T) {
	f := newFixture(t, 1)

	sub, err := f.lc.Create(context.Background(), createInput(1, 1))
	require.NoError(t, err)
	f.waiting.entries = []model.WaitingEntry{{
		ID:        10,
		MemberID:  2,
		StartDate: time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
		Duration:  "1 month",
		Amount:    decimal.NewFromInt(1500),
	}}

	_, err = f.lc.End(context.Background(), sub.ID, "admin@example.com")
	require.NoError(t, err)

	require.Len(t, f.events.published, 3)
	assert.Equal(t, queue.EventSubscriptionExpired, f.events.published[1].Type)
	assert.Equal(t, sub.ID, f.events.published[1].SubscriptionID)
	assert.Equal(t, queue.EventSeatReassigned, f.events.published[2].Type)
}

func TestEndUnknownSubscription(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.lc.End(context.Background(), 42, "admin@example.com")
	assert.ErrorIs(t, err, repository.ErrSubscriptionNotFound)
}

func TestEndIsTerminalForTheOldSubscription(t *testing.T) {
	f := newFixture(t, 1)

	sub, err := f.lc.Create(context.Background(), createInput(1, 1))
	require.NoError(t, err)

	_, err = f.lc.End(context.Background(), sub.ID, "admin@example.com")
	require.NoError(t, err)

	// Ending again expires nothing new and frees nothing; the seat
	// stays vacant and no second promotion happens.
	res, err := f.lc.End(context.Background(), sub.ID, "admin@example.com")
	require.NoError(t, err)
	assert.Nil(t, res.Promoted)

	ended, _ := f.subs.GetByID(context.Background(), sub.ID)
	assert.Equal(t, model.SubscriptionExpired, ended.Status)
	assertSeatInvariant(t, f.seats)
}
