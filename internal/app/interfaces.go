package app

import (
	"github.com/randcc/cashcarry/internal/domain"
	"github.com/randcc/cashcarry/internal/ordering"
	"github.com/randcc/cashcarry/internal/session"
	"github.com/randcc/cashcarry/internal/store"
)

// DataProvider exposes the entity stores.
type DataProvider interface {
	ProductStore() *store.Store[domain.Product]
	UserStore() *store.Store[domain.User]
	OrderStore() *store.Store[domain.Order]
}

// SessionProvider exposes the token registry.
type SessionProvider interface {
	Sessions() *session.Registry
}

// OrderProvider exposes the order engine.
type OrderProvider interface {
	Orders() *ordering.Engine
}
