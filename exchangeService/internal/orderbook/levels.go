package orderbook

import (
	"sort"

	"github.com/google/uuid"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
)

type priceLevel struct {
	price  int64
	orders []*models.Order
}

// enqueue keeps the level ordered by sequence.
func (l *priceLevel) enqueue(order *models.Order) {
	i := sort.Search(len(l.orders), func(i int) bool {
		return l.orders[i].Sequence > order.Sequence
	})

	l.orders = append(l.orders, nil)
	copy(l.orders[i+1:], l.orders[i:])
	l.orders[i] = order
}

func (l *priceLevel) unlink(id uuid.UUID) bool {
	for i, order := range l.orders {
		if order.ID == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			return true
		}
	}
	return false
}

// bookSide is one side of the book with levels sorted best price first.
type bookSide struct {
	levels []*priceLevel
	// descending is true for bids.
	descending bool
}

func newBookSide(descending bool) *bookSide {
	return &bookSide{descending: descending}
}

func (s *bookSide) better(a, b int64) bool {
	if s.descending {
		return a > b
	}
	return a < b
}

// search returns the index of the first level not better than price.
func (s *bookSide) search(price int64) int {
	return sort.Search(len(s.levels), func(i int) bool {
		return !s.better(s.levels[i].price, price)
	})
}

func (s *bookSide) insert(order *models.Order) {
	i := s.search(order.Price)
	if i < len(s.levels) && s.levels[i].price == order.Price {
		s.levels[i].enqueue(order)
		return
	}

	level := &priceLevel{price: order.Price, orders: []*models.Order{order}}
	s.levels = append(s.levels, nil)
	copy(s.levels[i+1:], s.levels[i:])
	s.levels[i] = level
}

func (s *bookSide) remove(order *models.Order) bool {
	i := s.search(order.Price)
	if i >= len(s.levels) || s.levels[i].price != order.Price {
		return false
	}

	level := s.levels[i]
	if !level.unlink(order.ID) {
		return false
	}
	if len(level.orders) == 0 {
		s.levels = append(s.levels[:i], s.levels[i+1:]...)
	}
	return true
}

// each visits orders best price first, then by sequence, until visit
// returns false.
func (s *bookSide) each(visit func(order *models.Order) bool) {
	for _, level := range s.levels {
		for _, order := range level.orders {
			if !visit(order) {
				return
			}
		}
	}
}

func (s *bookSide) depth() (levels, orders int) {
	for _, level := range s.levels {
		orders += len(level.orders)
	}
	return len(s.levels), orders
}
