package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codigix/Furnituredemo/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeOrderRepo mimics the transactional repository: each Place call
// either fully succeeds (snapshot, total, stock decrement) or leaves
// every product untouched.
type fakeOrderRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	orders   map[string]*domain.Order

	placeCalls int
	getCalls   int
	placeErrs  []error // consumed first, one per call
}

func newFakeOrderRepo(products ...*domain.Product) *fakeOrderRepo {
	f := &fakeOrderRepo{
		products: make(map[string]*domain.Product),
		orders:   make(map[string]*domain.Order),
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeOrderRepo) Place(_ context.Context, d OrderDraft) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placeCalls++

	if len(f.placeErrs) > 0 {
		err := f.placeErrs[0]
		f.placeErrs = f.placeErrs[1:]
		return nil, err
	}

	// Check everything before touching anything.
	for i, ln := range d.Lines {
		p, ok := f.products[ln.ProductID]
		if !ok {
			return nil, &domain.UnknownProductError{Line: i, ProductID: ln.ProductID}
		}
		if p.Stock < ln.Quantity {
			return nil, &domain.InsufficientStockError{
				Line: i, ProductID: ln.ProductID,
				Requested: ln.Quantity, Available: p.Stock,
			}
		}
	}

	o := &domain.Order{
		ID:       uuid.NewString(),
		UserID:   d.UserID,
		Shipping: d.Shipping,
		Status:   domain.StatusPending,
	}
	for _, ln := range d.Lines {
		p := f.products[ln.ProductID]
		p.Stock -= ln.Quantity
		o.Lines = append(o.Lines, domain.OrderLine{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  ln.Quantity,
			Image:     p.Image,
		})
	}
	o.Total = o.LineTotal()
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatusIf(_ context.Context, id string, from, to domain.Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (f *fakeOrderRepo) stock(productID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[productID].Stock
}

func (f *fakeOrderRepo) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by id
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.users {
		if other.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

type fakeCartRepo struct {
	mu    sync.Mutex
	items map[string][]domain.CartItem // by user
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[string][]domain.CartItem)}
}

func (f *fakeCartRepo) Upsert(_ context.Context, userID, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items[userID] {
		if it.ProductID == productID {
			f.items[userID][i].Quantity += quantity
			return nil
		}
	}
	f.items[userID] = append(f.items[userID], domain.CartItem{
		ID: uuid.NewString(), UserID: userID, ProductID: productID, Quantity: quantity,
	})
	return nil
}

func (f *fakeCartRepo) ListByUser(_ context.Context, userID string) ([]domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.CartItem(nil), f.items[userID]...), nil
}

func (f *fakeCartRepo) UpdateQuantity(_ context.Context, userID, itemID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items[userID] {
		if it.ID == itemID {
			f.items[userID][i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeCartRepo) Remove(_ context.Context, userID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items[userID] {
		if it.ID == itemID {
			f.items[userID] = append(f.items[userID][:i], f.items[userID][i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type notifyCall struct {
	dest, subject, body string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (f *fakeNotifier) Notify(_ context.Context, dest, subject, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{dest, subject, body})
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeEvents struct {
	mu      sync.Mutex
	created []OrderCreatedEvent
	changed []OrderStatusChangedEvent
	err     error // returned from every publish when set
}

func (f *fakeEvents) OrderCreated(_ context.Context, ev OrderCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, ev)
	return nil
}

func (f *fakeEvents) OrderStatusChanged(_ context.Context, ev OrderStatusChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.changed = append(f.changed, ev)
	return nil
}

type fakeIdem struct {
	mu      sync.Mutex
	locks   map[string]bool
	results map[string]string
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{locks: make(map[string]bool), results: make(map[string]string)}
}

func (f *fakeIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := scope + "/" + key
	if f.locks[k] {
		return false, nil
	}
	f.locks[k] = true
	return true, nil
}

func (f *fakeIdem) Remember(_ context.Context, scope, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[scope+"/"+key] = value
	return nil
}

func (f *fakeIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.results[scope+"/"+key]
	return v, ok, nil
}

func (f *fakeIdem) Release(_ context.Context, scope, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, scope+"/"+key)
	return nil
}

type fakeStatusCache struct {
	mu      sync.Mutex
	entries map[string]StatusEntry
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{entries: make(map[string]StatusEntry)}
}

func (f *fakeStatusCache) SetStatus(_ context.Context, orderID string, e StatusEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[orderID] = e
	return nil
}

func (f *fakeStatusCache) GetStatus(_ context.Context, orderID string) (StatusEntry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[orderID]
	return e, ok, nil
}

func (f *fakeStatusCache) drop(orderID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, orderID)
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }
