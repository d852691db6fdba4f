// Package api implements the JSON endpoints of the ordering backend.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/randcc/cashcarry/internal/domain"
	"github.com/randcc/cashcarry/internal/ordering"
	"github.com/randcc/cashcarry/internal/session"
	"github.com/randcc/cashcarry/internal/store"
	"github.com/randcc/cashcarry/internal/webserver"
)

// Owner is what the handlers need from the application.
type Owner interface {
	ProductStore() *store.Store[domain.Product]
	UserStore() *store.Store[domain.User]
	Sessions() *session.Registry
	Orders() *ordering.Engine
}

var app Owner

// InitRouter registers every API route. Call after webserver.Init.
func InitRouter(owner Owner) {
	app = owner
	registerIndexRoutes()
	registerAuthRoutes()
	registerProductRoutes()
	registerOrderRoutes()
}

func ok(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, data)
}

func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, echo.Map{"message": message})
}

func registerIndexRoutes() {
	webserver.ApiGET("/", func(c echo.Context) error {
		return ok(c, http.StatusOK, echo.Map{"message": "Rand Cash & Carry API is running"})
	})
}
