package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codigix/Furnituredemo/internal/domain"
)

const idemScope = "orders"

// Orders orchestrates order placement and fulfillment-status
// tracking. All writes go through the repositories' atomic units;
// the service itself holds no state between calls.
type Orders struct {
	repo   OrderRepo
	carts  CartRepo
	users  UserRepo
	notify Notifier
	events EventPublisher
	idem   IdempotencyStore
	cache  StatusCache
	log    *slog.Logger
}

func NewOrders(repo OrderRepo, carts CartRepo, users UserRepo, notify Notifier,
	events EventPublisher, idem IdempotencyStore, cache StatusCache, log *slog.Logger) *Orders {
	return &Orders{
		repo:   repo,
		carts:  carts,
		users:  users,
		notify: notify,
		events: events,
		idem:   idem,
		cache:  cache,
		log:    log,
	}
}

type PlaceOrderInput struct {
	UserID         string
	IdempotencyKey string // optional; replays the prior result when repeated
	Lines          []DraftLine
	Shipping       domain.ShippingAddress
}

type PlaceOrderOutput struct {
	OrderID string
	Total   string
	Status  domain.Status
}

var ErrDuplicate = errors.New("duplicate idempotency key")

// PlaceOrder validates the request, persists the order atomically
// (header, lines and stock decrement commit together or not at all)
// and fires the confirmation side effects after commit. A write
// conflict retries the whole unit once before surfacing.
func (s *Orders) PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlaceOrderOutput, error) {
	if err := validateDraft(in.Lines, in.Shipping); err != nil {
		return PlaceOrderOutput{}, err
	}

	scope := idemScope + ":" + in.UserID
	if in.IdempotencyKey != "" {
		if id, ok, _ := s.idem.Recall(ctx, scope, in.IdempotencyKey); ok {
			prior, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return PlaceOrderOutput{}, err
			}
			return PlaceOrderOutput{OrderID: prior.ID, Total: prior.Total.StringFixed(2), Status: prior.Status}, nil
		}
		ok, err := s.idem.TryLock(ctx, scope, in.IdempotencyKey)
		if err != nil {
			return PlaceOrderOutput{}, fmt.Errorf("idempotency lock: %w", err)
		}
		if !ok {
			return PlaceOrderOutput{}, ErrDuplicate
		}
	}

	order, err := s.place(ctx, OrderDraft{UserID: in.UserID, Lines: in.Lines, Shipping: in.Shipping})
	if err != nil {
		// A rejection consumes nothing; free the key so the client
		// can retry with it.
		if in.IdempotencyKey != "" {
			if rerr := s.idem.Release(ctx, scope, in.IdempotencyKey); rerr != nil {
				s.log.Warn("idempotency release failed", "user_id", in.UserID, "err", rerr)
			}
		}
		return PlaceOrderOutput{}, err
	}

	if in.IdempotencyKey != "" {
		if err := s.idem.Remember(ctx, scope, in.IdempotencyKey, order.ID); err != nil {
			s.log.Warn("idempotency remember failed", "order_id", order.ID, "err", err)
		}
	}
	s.afterPlaced(ctx, order)

	return PlaceOrderOutput{OrderID: order.ID, Total: order.Total.StringFixed(2), Status: order.Status}, nil
}

// PlaceOrderFromCart builds the draft from the caller's cart and
// clears the cart inside the same atomic unit as the order writes.
func (s *Orders) PlaceOrderFromCart(ctx context.Context, userID string, shipping domain.ShippingAddress) (PlaceOrderOutput, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return PlaceOrderOutput{}, err
	}
	lines := make([]DraftLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, DraftLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if err := validateDraft(lines, shipping); err != nil {
		return PlaceOrderOutput{}, err
	}

	order, err := s.place(ctx, OrderDraft{UserID: userID, Lines: lines, Shipping: shipping, ClearCart: true})
	if err != nil {
		return PlaceOrderOutput{}, err
	}
	s.afterPlaced(ctx, order)

	return PlaceOrderOutput{OrderID: order.ID, Total: order.Total.StringFixed(2), Status: order.Status}, nil
}

// place runs the atomic unit, retrying once on a write conflict.
func (s *Orders) place(ctx context.Context, d OrderDraft) (*domain.Order, error) {
	order, err := s.repo.Place(ctx, d)
	if errors.Is(err, domain.ErrConflict) {
		s.log.Info("order placement conflict, retrying once", "user_id", d.UserID)
		order, err = s.repo.Place(ctx, d)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// afterPlaced fires the post-commit side effects. Exactly one
// notification per order; every failure here is logged, never
// surfaced or rolled back.
func (s *Orders) afterPlaced(ctx context.Context, o *domain.Order) {
	if owner, err := s.users.GetByID(ctx, o.UserID); err != nil {
		s.log.Warn("owner lookup for confirmation failed", "order_id", o.ID, "err", err)
	} else {
		subject := "Your order " + o.ID
		body := fmt.Sprintf("Hi %s,\n\nwe received your order %s. Total: %s.\n\nThank you for shopping with us.",
			owner.Name, o.ID, o.Total.StringFixed(2))
		s.notify.Notify(ctx, owner.Email, subject, body)
	}

	if err := s.events.OrderCreated(ctx, OrderCreatedEvent{
		OrderID: o.ID,
		UserID:  o.UserID,
		Total:   o.Total.StringFixed(2),
		Lines:   len(o.Lines),
	}); err != nil {
		s.log.Warn("order.created publish failed", "order_id", o.ID, "err", err)
	}
	if s.cache != nil {
		if err := s.cache.SetStatus(ctx, o.ID, StatusEntry{OwnerID: o.UserID, Status: o.Status}); err != nil {
			s.log.Warn("status cache set failed", "order_id", o.ID, "err", err)
		}
	}
}

// GetOrder returns the aggregate to its owner or an admin.
func (s *Orders) GetOrder(ctx context.Context, orderID string, caller Caller) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin && o.UserID != caller.UserID {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

// GetOrderStatus answers status polls from the cache when it can.
// A cached entry carries the owner, so the authorization check runs
// without touching storage; a miss falls back to the repository and
// refills the cache.
func (s *Orders) GetOrderStatus(ctx context.Context, orderID string, caller Caller) (domain.Status, error) {
	if s.cache != nil {
		if e, ok, err := s.cache.GetStatus(ctx, orderID); err != nil {
			s.log.Warn("status cache get failed", "order_id", orderID, "err", err)
		} else if ok {
			if !caller.IsAdmin && e.OwnerID != caller.UserID {
				return "", domain.ErrForbidden
			}
			return e.Status, nil
		}
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !caller.IsAdmin && o.UserID != caller.UserID {
		return "", domain.ErrForbidden
	}
	if s.cache != nil {
		if err := s.cache.SetStatus(ctx, orderID, StatusEntry{OwnerID: o.UserID, Status: o.Status}); err != nil {
			s.log.Warn("status cache set failed", "order_id", orderID, "err", err)
		}
	}
	return o.Status, nil
}

func (s *Orders) ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Orders) ListAllOrders(ctx context.Context, caller Caller) ([]domain.Order, error) {
	if !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListAll(ctx)
}

// SetOrderStatus applies one legal step of the fulfillment state
// machine. The transition is guarded in storage, so a concurrent
// change can never double-apply or skip a state.
func (s *Orders) SetOrderStatus(ctx context.Context, orderID, newStatus string, caller Caller) (*domain.Order, error) {
	if !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	to, ok := domain.ParseStatus(newStatus)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrIllegalTransition, newStatus)
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, from, to)
	}

	applied, err := s.repo.UpdateStatusIf(ctx, orderID, from, to)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Someone moved the order between our read and write.
		return nil, fmt.Errorf("%w: status changed concurrently", domain.ErrIllegalTransition)
	}

	if s.cache != nil {
		if err := s.cache.SetStatus(ctx, orderID, StatusEntry{OwnerID: o.UserID, Status: to}); err != nil {
			s.log.Warn("status cache set failed", "order_id", orderID, "err", err)
		}
	}
	if err := s.events.OrderStatusChanged(ctx, OrderStatusChangedEvent{
		OrderID: orderID,
		From:    string(from),
		To:      string(to),
	}); err != nil {
		s.log.Warn("order.status_changed publish failed", "order_id", orderID, "err", err)
	}

	o.Status = to
	return o, nil
}

func validateDraft(lines []DraftLine, shipping domain.ShippingAddress) error {
	if len(lines) == 0 {
		return &domain.ValidationError{Field: "lines", Reason: "order must have at least one line"}
	}
	for _, l := range lines {
		if l.ProductID == "" {
			return &domain.ValidationError{Field: "lines.productId", Reason: "required"}
		}
		if l.Quantity <= 0 {
			return &domain.ValidationError{Field: "lines.quantity", Reason: "must be positive"}
		}
	}
	return shipping.Validate()
}
