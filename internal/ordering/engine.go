// Package ordering implements order placement and lifecycle: catalog
// validation, price snapshots, monotonic id assignment and status updates.
package ordering

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/randcc/cashcarry/internal/domain"
	"github.com/randcc/cashcarry/internal/store"
)

var (
	ErrNoItems       = errors.New("no items in order")
	ErrInvalidStatus = errors.New("invalid status")
	ErrOrderNotFound = errors.New("order not found")
)

// UnknownProductError reports an order line referencing a product id that is
// not in the catalog. This is a structured validation failure: no order is
// created when any line carries one.
type UnknownProductError struct {
	ProductID int
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("invalid productId: %d", e.ProductID)
}

// ItemRequest is one incoming order line as sent by the client.
type ItemRequest struct {
	ProductID int `json:"productId"`
	Qty       int `json:"qty"`
}

// PlaceRequest carries everything the client may supply when placing an
// order. CustomerName, Note and Location are optional.
type PlaceRequest struct {
	Items        []ItemRequest `json:"items"`
	CustomerName string        `json:"customerName"`
	Note         string        `json:"note"`
	Location     *string       `json:"location"`
}

// Engine owns the order collection. The id counter is seeded once from the
// persisted maximum and is memory-authoritative from then on: ids keep
// increasing even if the backing file is edited out-of-band.
type Engine struct {
	products *store.Store[domain.Product]
	orders   *store.Store[domain.Order]
	nextID   int
}

func NewEngine(products *store.Store[domain.Product], orders *store.Store[domain.Order]) *Engine {
	next := 1
	for _, o := range orders.All() {
		if o.ID >= next {
			next = o.ID + 1
		}
	}
	return &Engine{
		products: products,
		orders:   orders,
		nextID:   next,
	}
}

// Place validates the request against the catalog, prices each line with the
// product's current price, and appends the order. Validation is all-or-
// nothing: one unknown product id fails the whole request before anything is
// written. Quantities are taken as given, zero and negative included.
func (e *Engine) Place(req PlaceRequest, actor *domain.User) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}

	catalog := make(map[int]domain.Product)
	for _, p := range e.products.All() {
		catalog[p.ID] = p
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	var total float64
	for _, it := range req.Items {
		p, ok := catalog[it.ProductID]
		if !ok {
			return nil, &UnknownProductError{ProductID: it.ProductID}
		}
		lineTotal := p.Price * float64(it.Qty)
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       it.Qty,
			Price:     p.Price,
			LineTotal: lineTotal,
		})
		total += lineTotal
	}

	customerName := req.CustomerName
	var snapshot *domain.UserInfo
	if actor != nil {
		info := actor.Info()
		snapshot = &info
		if customerName == "" {
			customerName = actor.Name
		}
	}
	if customerName == "" {
		customerName = "Unknown customer"
	}

	order := domain.Order{
		Status:       domain.OrderPending,
		CustomerName: customerName,
		Note:         req.Note,
		Location:     req.Location,
		User:         snapshot,
		Items:        items,
		Total:        total,
		CreatedAt:    time.Now().UTC(),
	}

	// Id assignment happens inside the store's critical section so two
	// concurrent placements can never draw the same id.
	e.orders.Update(func(recs *[]domain.Order) bool {
		order.ID = e.nextID
		e.nextID++
		*recs = append(*recs, order)
		return true
	})

	zap.L().Info("order placed",
		zap.Int("order_id", order.ID),
		zap.String("customer", order.CustomerName),
		zap.Int("lines", len(order.Items)),
		zap.Float64("total", order.Total))

	return &order, nil
}

// UpdateStatus overwrites the status of an existing order and persists.
func (e *Engine) UpdateStatus(orderID int, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var updated *domain.Order
	e.orders.Update(func(recs *[]domain.Order) bool {
		for i := range *recs {
			if (*recs)[i].ID == orderID {
				(*recs)[i].Status = status
				o := (*recs)[i]
				updated = &o
				return true
			}
		}
		return false
	})
	if updated == nil {
		return nil, ErrOrderNotFound
	}

	zap.L().Info("order status updated",
		zap.Int("order_id", orderID), zap.String("status", string(status)))
	return updated, nil
}

// ListAll returns every order in insertion order.
func (e *Engine) ListAll() []domain.Order {
	return e.orders.All()
}

// ListForUser returns the orders whose snapshotted user id matches userID,
// oldest first. Guest orders never match.
func (e *Engine) ListForUser(userID int) []domain.Order {
	var out []domain.Order
	for _, o := range e.orders.All() {
		if o.User != nil && o.User.ID == userID {
			out = append(out, o)
		}
	}
	return out
}
