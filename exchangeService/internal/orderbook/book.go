package orderbook

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
	repositoryErrors "github.com/gridcert/exchange/shared/errors/repository"
)

type Book struct {
	mu sync.RWMutex

	asks *bookSide
	bids *bookSide
	// active indexes orders resting in asks or bids.
	active map[uuid.UUID]*models.Order
	// pending holds orders whose ValidFrom has not passed yet.
	pending map[uuid.UUID]*models.Order

	sequence uint64
	store    Store
	now      func() time.Time
}

type Option func(*Book)

func WithClock(now func() time.Time) Option {
	return func(b *Book) {
		b.now = now
	}
}

func NewBook(store Store, options ...Option) *Book {
	book := &Book{
		asks:    newBookSide(false),
		bids:    newBookSide(true),
		active:  make(map[uuid.UUID]*models.Order, 1024),
		pending: make(map[uuid.UUID]*models.Order),
		store:   store,
		now:     time.Now,
	}

	for _, option := range options {
		option(book)
	}

	return book
}

// Submit validates the order, stores it and matches it against the opposite
// side. Orders valid from a future instant wait for Activate.
//
// When the store fails mid-match the trades executed so far are returned
// together with the error.
func (b *Book) Submit(ctx context.Context, order models.Order) (models.Order, []models.Trade, error) {
	const op = "Book.Submit"

	if err := validateOrder(order); err != nil {
		return models.Order{}, nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now().UTC()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if _, found := b.active[order.ID]; found {
		return models.Order{}, nil, reject("duplicate order id")
	}
	if _, found := b.pending[order.ID]; found {
		return models.Order{}, nil, reject("duplicate order id")
	}
	if order.ValidFrom.IsZero() {
		order.ValidFrom = now
	}
	if order.IsDirectBuy() {
		if err := b.checkDirectBuy(order, now); err != nil {
			return models.Order{}, nil, err
		}
	}

	b.sequence++
	order.Sequence = b.sequence
	order.CurrentVolume = order.StartVolume
	order.CreatedAt = now
	order.Status = models.StatusActive

	if order.ValidFrom.After(now) {
		order.Status = models.StatusPendingActivation
		if err := b.store.Set(ctx, order); err != nil {
			return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
		}

		pending := order
		b.pending[pending.ID] = &pending
		return order, nil, nil
	}

	if err := b.store.Set(ctx, order); err != nil {
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	incoming := order
	trades, err := b.execute(ctx, &incoming, now)
	if err != nil {
		return incoming, trades, fmt.Errorf("%s: %w", op, err)
	}

	return incoming, trades, nil
}

// execute matches an order that is already stored and rests what is left.
func (b *Book) execute(ctx context.Context, incoming *models.Order, now time.Time) ([]models.Trade, error) {
	trades, err := b.attemptMatch(ctx, incoming, now)
	if err != nil {
		return trades, b.abandon(ctx, incoming, err)
	}

	switch {
	case incoming.CurrentVolume.IsZero():
		incoming.Status = models.StatusFilled
	case incoming.IsDirectBuy():
		incoming.Status = models.StatusCancelled
	}

	if len(trades) > 0 || incoming.Status.Terminal() {
		if err := b.store.Set(ctx, *incoming); err != nil {
			return trades, b.abandon(ctx, incoming, err)
		}
	}

	if !incoming.Status.Terminal() {
		resting := *incoming
		b.sideOf(resting.Side).insert(&resting)
		b.active[resting.ID] = &resting
	}

	return trades, nil
}

// abandon keeps a half-executed order out of the book. Whatever volume is
// left is cancelled and written back so a later Restore does not trade the
// already executed part again.
func (b *Book) abandon(ctx context.Context, incoming *models.Order, cause error) error {
	if !incoming.CurrentVolume.IsZero() {
		incoming.Status = models.StatusCancelled
	}
	if err := b.store.Set(context.WithoutCancel(ctx), *incoming); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func validateOrder(order models.Order) error {
	switch {
	case order.Price <= 0:
		return reject("price must be positive")
	case !order.StartVolume.IsPositive():
		return reject("volume must be positive")
	case order.UserID == uuid.Nil:
		return reject("order must have an owner")
	case order.Side == models.SideAsk && order.AssetID == uuid.Nil:
		return reject("ask must reference an asset")
	case order.Side == models.SideAsk && order.IsDirectBuy():
		return reject("direct buy must be a bid")
	case order.Side != models.SideAsk && order.Side != models.SideBid:
		return reject("unknown side")
	}
	return nil
}

func (b *Book) checkDirectBuy(order models.Order, now time.Time) error {
	ask, found := b.active[order.DirectBuyID]
	if !found || ask.Side != models.SideAsk {
		return errors.Wrap(ErrOrderNotFound, "direct buy target")
	}
	if order.ValidFrom.After(now) {
		return reject("direct buy cannot be scheduled")
	}
	if order.Price < ask.Price {
		return reject("direct buy price is below the ask price")
	}
	if order.StartVolume.GreaterThan(ask.CurrentVolume) {
		return reject("direct buy volume exceeds the ask volume")
	}
	return nil
}

func (b *Book) sideOf(side models.Side) *bookSide {
	if side == models.SideBid {
		return b.bids
	}
	return b.asks
}

// Cancel removes an active or pending order owned by userID.
func (b *Book) Cancel(ctx context.Context, orderID, userID uuid.UUID) (models.Order, error) {
	const op = "Book.Cancel"

	b.mu.Lock()
	defer b.mu.Unlock()

	order, isPending := b.pending[orderID]
	if !isPending {
		var found bool
		if order, found = b.active[orderID]; !found {
			return models.Order{}, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
	}

	if order.UserID != userID {
		return models.Order{}, fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	cancelled := *order
	cancelled.Status = models.StatusCancelled
	if err := b.store.Set(ctx, cancelled); err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	if isPending {
		delete(b.pending, orderID)
	} else {
		b.sideOf(order.Side).remove(order)
		delete(b.active, orderID)
	}

	return cancelled, nil
}

// Activate moves pending orders whose ValidFrom is not after now into the
// book, oldest sequence first, matching each on the way in.
func (b *Book) Activate(ctx context.Context, now time.Time) ([]models.Order, []models.Trade, error) {
	const op = "Book.Activate"

	b.mu.Lock()
	defer b.mu.Unlock()

	due := make([]*models.Order, 0)
	for _, order := range b.pending {
		if !order.ValidFrom.After(now) {
			due = append(due, order)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].Sequence < due[j].Sequence
	})

	var (
		activated []models.Order
		trades    []models.Trade
	)
	for _, order := range due {
		// Time priority starts when the order enters the book.
		b.sequence++
		incoming := *order
		incoming.Sequence = b.sequence
		incoming.Status = models.StatusActive
		if err := b.store.Set(ctx, incoming); err != nil {
			return activated, trades, fmt.Errorf("%s: %w", op, err)
		}
		delete(b.pending, order.ID)

		executed, err := b.execute(ctx, &incoming, now.UTC())
		trades = append(trades, executed...)
		activated = append(activated, incoming)
		if err != nil {
			return activated, trades, fmt.Errorf("%s: %w", op, err)
		}
	}

	return activated, trades, nil
}

// Snapshot is a point-in-time copy of the matching orders on both sides.
type Snapshot struct {
	Asks []models.Order
	Bids []models.Order
}

// Search returns active orders whose product satisfies filter. Asks come
// cheapest first and bids highest first.
func (b *Book) Search(filter product.Filter) Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshot := Snapshot{
		Asks: make([]models.Order, 0),
		Bids: make([]models.Order, 0),
	}

	collect := func(into *[]models.Order) func(order *models.Order) bool {
		return func(order *models.Order) bool {
			if order.CurrentVolume.IsPositive() && product.Matches(order.Product, filter) {
				*into = append(*into, *order)
			}
			return true
		}
	}

	b.asks.each(collect(&snapshot.Asks))
	b.bids.each(collect(&snapshot.Bids))

	return snapshot
}

// Get looks the order up in memory first and falls back to the store for
// terminal orders.
func (b *Book) Get(ctx context.Context, orderID uuid.UUID) (models.Order, error) {
	const op = "Book.Get"

	b.mu.RLock()
	if order, found := b.active[orderID]; found {
		b.mu.RUnlock()
		return *order, nil
	}
	if order, found := b.pending[orderID]; found {
		b.mu.RUnlock()
		return *order, nil
	}
	b.mu.RUnlock()

	order, err := b.store.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositoryErrors.ErrOrderNotFound) {
			return models.Order{}, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}

// UserOrders returns every stored order of userID ordered by sequence. A
// scheduled order takes its sequence when it is activated.
func (b *Book) UserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	const op = "Book.UserOrders"

	all, err := b.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders := make([]models.Order, 0)
	for _, order := range all {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Sequence < orders[j].Sequence
	})

	return orders, nil
}

// Restore rebuilds memory from the store. Stored orders are not re-matched.
func (b *Book) Restore(ctx context.Context) (int, error) {
	const op = "Book.Restore"

	all, err := b.store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.asks = newBookSide(false)
	b.bids = newBookSide(true)
	b.active = make(map[uuid.UUID]*models.Order, len(all))
	b.pending = make(map[uuid.UUID]*models.Order)

	sort.Slice(all, func(i, j int) bool {
		return all[i].Sequence < all[j].Sequence
	})

	restored := 0
	for i := range all {
		order := all[i]
		if order.Sequence > b.sequence {
			b.sequence = order.Sequence
		}

		switch order.Status {
		case models.StatusActive:
			if !order.CurrentVolume.IsPositive() {
				return restored, errors.Wrapf(ErrInvariantViolation, "stored active order %s has no volume", order.ID)
			}
			b.sideOf(order.Side).insert(&order)
			b.active[order.ID] = &order
			restored++
		case models.StatusPendingActivation:
			b.pending[order.ID] = &order
			restored++
		}
	}

	return restored, nil
}

// Purge deletes terminal orders created before cutoff from the store.
func (b *Book) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	const op = "Book.Purge"

	all, err := b.store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	purged := 0
	for _, order := range all {
		if !order.Status.Terminal() || !order.CreatedAt.Before(cutoff) {
			continue
		}
		if err := b.store.Delete(ctx, order.ID); err != nil {
			return purged, fmt.Errorf("%s: %w", op, err)
		}
		purged++
	}

	return purged, nil
}

type Depth struct {
	AskLevels int
	AskOrders int
	BidLevels int
	BidOrders int
	Pending   int
}

func (b *Book) Depth() Depth {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var depth Depth
	depth.AskLevels, depth.AskOrders = b.asks.depth()
	depth.BidLevels, depth.BidOrders = b.bids.depth()
	depth.Pending = len(b.pending)

	return depth
}
