package service

// The lifecycle coordinator is the only place where seats,
// subscriptions, payments and the waiting list change together. Every
// operation is a short sequence of independent writes against the
// store interfaces below. There is no transaction spanning them, so a
// failure partway leaves the earlier writes in place. That window is
// inherited from the system this replaces and is kept observable on
// purpose; see DESIGN.md.

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evolvehq/studyspace/internal/model"
	"github.com/evolvehq/studyspace/internal/queue"
	"github.com/evolvehq/studyspace/internal/repository"
)

// Validation failures surfaced to handlers as 400s.
var (
	ErrPastStartDate = errors.New("start date cannot be in the past")
	ErrInvalidAmount = errors.New("amount must be positive")
)

// SeatStore is the slice of the seat registry the coordinator needs.
type SeatStore interface {
	GetByNumber(ctx context.Context, seatNumber uint32) (*model.Seat, error)
	GetByID(ctx context.Context, id uint64) (*model.Seat, error)
	Occupy(ctx context.Context, seatID, memberID, subscriptionID uint64) error
	Vacate(ctx context.Context, seatID uint64) error
}

// SubscriptionStore persists subscription rows.
type SubscriptionStore interface {
	Create(ctx context.Context, s *model.Subscription) error
	GetByID(ctx context.Context, id uint64) (*model.Subscription, error)
	MarkExpired(ctx context.Context, id uint64) error
	UpdateSeat(ctx context.Context, id, seatID uint64) error
}

// PaymentStore persists payment rows.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
}

// WaitingStore exposes the FIFO waiting list.
type WaitingStore interface {
	Earliest(ctx context.Context) (*model.WaitingEntry, error)
	Delete(ctx context.Context, id uint64) error
}

// CodeIssuer mints EVOLVE codes from the monthly counters.
type CodeIssuer interface {
	Next(ctx context.Context, scope string, now time.Time) (string, error)
}

// AuditSink receives best-effort audit records.
type AuditSink interface {
	Append(ctx context.Context, action, entity, entityID, details, performedBy string) error
}

// EventPublisher pushes lifecycle events to the broker. May be nil
// when messaging is not configured.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.LifecycleEvent) error
}

// Lifecycle coordinates seat assignment, release and waiting-list
// promotion across the stores. Construct it with NewLifecycle; the
// repositories satisfy the store interfaces directly.
type Lifecycle struct {
	Seats         SeatStore
	Subscriptions SubscriptionStore
	Payments      PaymentStore
	Waiting       WaitingStore
	Codes         CodeIssuer
	Audit         AuditSink
	Events        EventPublisher

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// NewLifecycle wires a coordinator. events may be nil.
func NewLifecycle(seats SeatStore, subs SubscriptionStore, pays PaymentStore,
	waiting WaitingStore, codes CodeIssuer, audit AuditSink, events EventPublisher) *Lifecycle {
	if seats == nil || subs == nil || pays == nil || waiting == nil || codes == nil || audit == nil {
		panic("nil store passed to NewLifecycle")
	}
	return &Lifecycle{
		Seats:         seats,
		Subscriptions: subs,
		Payments:      pays,
		Waiting:       waiting,
		Codes:         codes,
		Audit:         audit,
		Events:        events,
		now:           time.Now,
	}
}

// CreateInput carries everything needed to open a subscription.
type CreateInput struct {
	MemberID    uint64
	LocationID  uint64
	SeatNumber  uint32
	StartDate   time.Time
	Duration    string
	Amount      decimal.Decimal
	Method      string // cash | UPI
	UPICode     string // required when Method is UPI
	PerformedBy string
}

// Create opens an active subscription on a vacant seat, records the
// first payment and occupies the seat. Writes happen in that order.
func (l *Lifecycle) Create(ctx context.Context, in CreateInput) (*model.Subscription, error) {
	now := l.now()
	if DateOnly(in.StartDate).Before(DateOnly(now)) {
		return nil, ErrPastStartDate
	}
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	seat, err := l.Seats.GetByNumber(ctx, in.SeatNumber)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return nil, repository.ErrSeatUnavailable
		}
		return nil, err
	}
	if seat.Status != model.SeatVacant {
		return nil, repository.ErrSeatUnavailable
	}

	sub := &model.Subscription{
		MemberID:    in.MemberID,
		SeatID:      seat.ID,
		LocationID:  in.LocationID,
		StartDate:   in.StartDate,
		EndDate:     EndDate(in.StartDate, in.Duration),
		Duration:    in.Duration,
		TotalAmount: in.Amount,
		Status:      model.SubscriptionActive,
	}
	if err := l.Subscriptions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	if err := l.recordPayment(ctx, sub.ID, in.Amount, in.Method, in.UPICode, now); err != nil {
		return nil, err
	}
	if err := l.Seats.Occupy(ctx, seat.ID, in.MemberID, sub.ID); err != nil {
		return nil, err
	}

	l.publish(ctx, queue.LifecycleEvent{
		Type:           queue.EventSubscriptionCreated,
		SubscriptionID: sub.ID,
		MemberID:       in.MemberID,
		SeatNumber:     seat.SeatNumber,
		EndDate:        sub.EndDate.Format("2006-01-02"),
		OccurredAt:     now.UTC().Format(time.RFC3339),
	})
	l.audit(ctx, "CREATE", "Subscription", fmt.Sprintf("%d", sub.ID),
		fmt.Sprintf("Subscribed member %d to seat %d for %s", in.MemberID, seat.SeatNumber, in.Duration),
		in.PerformedBy)
	return sub, nil
}

// ChangeSeat moves a subscription onto a different vacant seat. The
// subscription's status is deliberately not checked; moving an expired
// subscription is a no-op for occupancy but the references still move.
func (l *Lifecycle) ChangeSeat(ctx context.Context, subscriptionID uint64, newSeatNumber uint32, performedBy string) error {
	sub, err := l.Subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	newSeat, err := l.Seats.GetByNumber(ctx, newSeatNumber)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return repository.ErrSeatUnavailable
		}
		return err
	}
	if newSeat.Status != model.SeatVacant {
		return repository.ErrSeatUnavailable
	}

	// Vacate the old seat first; a missing old seat is tolerated.
	if oldSeat, err := l.Seats.GetByID(ctx, sub.SeatID); err == nil {
		if err := l.Seats.Vacate(ctx, oldSeat.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, repository.ErrSeatNotFound) {
		return err
	}
	if err := l.Seats.Occupy(ctx, newSeat.ID, sub.MemberID, sub.ID); err != nil {
		return err
	}
	if err := l.Subscriptions.UpdateSeat(ctx, sub.ID, newSeat.ID); err != nil {
		return err
	}

	l.audit(ctx, "UPDATE", "Subscription", fmt.Sprintf("%d", sub.ID),
		fmt.Sprintf("Moved member %d to seat %d", sub.MemberID, newSeat.SeatNumber), performedBy)
	return nil
}

// EndResult reports what happened to the freed seat.
type EndResult struct {
	// Promoted is the subscription synthesized for the earliest
	// waiting-list entrant, or nil when the list was empty and the
	// seat stayed vacant.
	Promoted *model.Subscription
}

// End expires a subscription, frees its seat and promotes the earliest
// waiting-list entrant onto it, if any. Expired is terminal: a new
// subscription row is always created for the entrant instead of
// reactivating the old one.
func (l *Lifecycle) End(ctx context.Context, subscriptionID uint64, performedBy string) (*EndResult, error) {
	now := l.now()
	sub, err := l.Subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if err := l.Subscriptions.MarkExpired(ctx, sub.ID); err != nil {
		return nil, err
	}

	seat, err := l.Seats.GetByID(ctx, sub.SeatID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			// Nothing to free or promote onto.
			l.audit(ctx, "END", "Subscription", fmt.Sprintf("%d", sub.ID), "Subscription ended", performedBy)
			return &EndResult{}, nil
		}
		return nil, err
	}
	if err := l.Seats.Vacate(ctx, seat.ID); err != nil {
		return nil, err
	}
	l.publish(ctx, queue.LifecycleEvent{
		Type:           queue.EventSubscriptionExpired,
		SubscriptionID: sub.ID,
		MemberID:       sub.MemberID,
		SeatNumber:     seat.SeatNumber,
		EndDate:        sub.EndDate.Format("2006-01-02"),
		OccurredAt:     now.UTC().Format(time.RFC3339),
	})

	entry, err := l.Waiting.Earliest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrWaitingNotFound) {
			l.publish(ctx, queue.LifecycleEvent{
				Type:       queue.EventSeatAvailable,
				SeatNumber: seat.SeatNumber,
				OccurredAt: now.UTC().Format(time.RFC3339),
			})
			l.audit(ctx, "END", "Subscription", fmt.Sprintf("%d", sub.ID),
				fmt.Sprintf("Subscription ended, seat %d now vacant", seat.SeatNumber), performedBy)
			return &EndResult{}, nil
		}
		return nil, err
	}

	promoted := &model.Subscription{
		MemberID:    entry.MemberID,
		SeatID:      seat.ID,
		LocationID:  sub.LocationID,
		StartDate:   entry.StartDate,
		EndDate:     EndDate(entry.StartDate, entry.Duration),
		Duration:    entry.Duration,
		TotalAmount: entry.Amount,
		Status:      model.SubscriptionActive,
	}
	if err := l.Subscriptions.Create(ctx, promoted); err != nil {
		return nil, fmt.Errorf("promote waiting entry %d: %w", entry.ID, err)
	}
	upi := ""
	if entry.PaymentMethod == model.PaymentUPI {
		upi = entry.UPICode
	}
	if err := l.recordPayment(ctx, promoted.ID, entry.Amount, entry.PaymentMethod, upi, now); err != nil {
		return nil, err
	}
	if err := l.Seats.Occupy(ctx, seat.ID, entry.MemberID, promoted.ID); err != nil {
		return nil, err
	}
	if err := l.Waiting.Delete(ctx, entry.ID); err != nil {
		return nil, err
	}

	l.publish(ctx, queue.LifecycleEvent{
		Type:           queue.EventSeatReassigned,
		SubscriptionID: promoted.ID,
		MemberID:       entry.MemberID,
		SeatNumber:     seat.SeatNumber,
		EndDate:        promoted.EndDate.Format("2006-01-02"),
		OccurredAt:     now.UTC().Format(time.RFC3339),
	})
	l.audit(ctx, "END", "Subscription", fmt.Sprintf("%d", sub.ID),
		fmt.Sprintf("Subscription ended, seat %d reassigned to member %d", seat.SeatNumber, entry.MemberID),
		performedBy)
	return &EndResult{Promoted: promoted}, nil
}

// recordPayment mints the next payment code and appends the payment.
func (l *Lifecycle) recordPayment(ctx context.Context, subscriptionID uint64,
	amount decimal.Decimal, method, upiCode string, now time.Time) error {
	code, err := l.Codes.Next(ctx, repository.ScopePayment, now)
	if err != nil {
		return fmt.Errorf("mint payment code: %w", err)
	}
	if method != model.PaymentUPI {
		upiCode = ""
	}
	p := &model.Payment{
		SubscriptionID: subscriptionID,
		Amount:         amount,
		Method:         method,
		UPICode:        upiCode,
		PaidAt:         now,
		UniqueCode:     code,
	}
	if err := l.Payments.Create(ctx, p); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}

// audit appends a record, logging and moving on when the sink fails.
func (l *Lifecycle) audit(ctx context.Context, action, entity, entityID, details, performedBy string) {
	if err := l.Audit.Append(ctx, action, entity, entityID, details, performedBy); err != nil {
		log.Printf("lifecycle: audit append failed: %v", err)
	}
}

// publish sends an event when a publisher is configured; failures are
// logged and ignored.
func (l *Lifecycle) publish(ctx context.Context, ev queue.LifecycleEvent) {
	if l.Events == nil {
		return
	}
	if err := l.Events.Publish(ctx, ev); err != nil {
		log.Printf("lifecycle: publish %s failed: %v", ev.Type, err)
	}
}
