package usecase

import (
	"context"

	"github.com/codigix/Furnituredemo/internal/domain"
)

// Caller identifies the authenticated principal behind a request.
type Caller struct {
	UserID  string
	IsAdmin bool
}

// DraftLine is what the client may supply: a product reference and a
// quantity. Price, name and image are snapshotted server-side.
type DraftLine struct {
	ProductID string
	Quantity  int
}

// OrderDraft is the input to the atomic placement unit of work.
type OrderDraft struct {
	UserID   string
	Lines    []DraftLine
	Shipping domain.ShippingAddress
	// ClearCart empties the owner's cart inside the same unit of
	// work when the order was built from it.
	ClearCart bool
}

type OrderRepo interface {
	// Place validates product existence and stock, snapshots line
	// data, computes the total, writes header + lines and decrements
	// stock, all inside one atomic unit.
	Place(ctx context.Context, d OrderDraft) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	// UpdateStatusIf performs a guarded transition: the write only
	// lands if the stored status still equals from.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error)
}

type ProductRepo interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, category string) ([]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type CartRepo interface {
	// Upsert adds quantity to an existing (user, product) line or
	// inserts a new one.
	Upsert(ctx context.Context, userID, productID string, quantity int) error
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error
	Remove(ctx context.Context, userID, itemID string) error
}

// Notifier is fire-and-forget: implementations absorb every failure
// internally. Order placement must never fail because of it.
type Notifier interface {
	Notify(ctx context.Context, dest, subject, body string)
}

// EventPublisher emits order lifecycle events for downstream
// consumers. Publish failures are logged by the caller, not surfaced.
type EventPublisher interface {
	OrderCreated(ctx context.Context, ev OrderCreatedEvent) error
	OrderStatusChanged(ctx context.Context, ev OrderStatusChangedEvent) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
	// Release drops an unconsumed lock so the key can be retried
	// after a rejected attempt.
	Release(ctx context.Context, scope, key string) error
}

// StatusEntry is what the status cache stores per order. The owner
// rides along so polls can be authorized without a storage read.
type StatusEntry struct {
	OwnerID string        `json:"ownerId"`
	Status  domain.Status `json:"status"`
}

// StatusCache is a best-effort read-through cache for order status
// polling. Misses and errors fall back to storage.
type StatusCache interface {
	SetStatus(ctx context.Context, orderID string, e StatusEntry) error
	GetStatus(ctx context.Context, orderID string) (StatusEntry, bool, error)
}
