package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/randcc/cashcarry/internal/domain"
	"github.com/randcc/cashcarry/internal/ordering"
	"github.com/randcc/cashcarry/internal/webserver"
)

type statusPayload struct {
	Status string `json:"status"`
}

func registerOrderRoutes() {
	webserver.ApiPOST("/orders", placeOrder)
	webserver.ApiGET("/orders", listOrders, webserver.AdminOrRep())
	webserver.ApiGET("/my-orders", listMyOrders, webserver.RequireAuth())
	webserver.ApiPATCH("/admin/orders/:id/status", patchOrderStatus, webserver.AdminOnly())
}

// placeOrder accepts orders from anyone; a valid token attaches the caller
// to the order, no token makes it a guest order.
func placeOrder(c echo.Context) error {
	var req ordering.PlaceRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse order")
	}

	actor, _ := webserver.ResolveUser(c)

	order, err := app.Orders().Place(req, actor)
	if err != nil {
		var unknown *ordering.UnknownProductError
		switch {
		case errors.Is(err, ordering.ErrNoItems):
			return fail(c, http.StatusBadRequest, "No items in order")
		case errors.As(err, &unknown):
			return fail(c, http.StatusBadRequest, unknown.Error())
		default:
			return fail(c, http.StatusInternalServerError, "Failed to place order")
		}
	}
	return ok(c, http.StatusCreated, order)
}

func listOrders(c echo.Context) error {
	return ok(c, http.StatusOK, app.Orders().ListAll())
}

func listMyOrders(c echo.Context) error {
	user := webserver.CurrentUser(c)
	orders := app.Orders().ListForUser(user.ID)
	if orders == nil {
		orders = []domain.Order{}
	}
	return ok(c, http.StatusOK, orders)
}

func patchOrderStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusNotFound, "Order not found")
	}

	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse status")
	}

	order, err := app.Orders().UpdateStatus(id, domain.OrderStatus(payload.Status))
	switch {
	case errors.Is(err, ordering.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "Invalid status",
			"valid":   domain.OrderStatuses(),
		})
	case errors.Is(err, ordering.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "Order not found")
	case err != nil:
		return fail(c, http.StatusInternalServerError, "Failed to update order")
	}
	return ok(c, http.StatusOK, order)
}
