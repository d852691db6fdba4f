package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/randcc/cashcarry/internal/domain"
	"github.com/randcc/cashcarry/internal/webserver"
)

type productPayload struct {
	Name      string   `json:"name"`
	PackSize  string   `json:"pack_size"`
	Price     *float64 `json:"price"`
	IsSpecial bool     `json:"isSpecial"`
}

// productPatchPayload carries the mutable fields. Price is loosely typed:
// the admin page sends it as a string, the app as a number, and a blank
// value means "leave unchanged".
type productPatchPayload struct {
	Price     interface{} `json:"price"`
	IsSpecial *bool       `json:"isSpecial"`
}

// publicProduct is the catalog projection served to the app. Only these
// fields ever leave the server on the public route.
type publicProduct struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	PackSize  string  `json:"pack_size"`
	Price     float64 `json:"price"`
	IsSpecial bool    `json:"isSpecial"`
}

func registerProductRoutes() {
	webserver.ApiGET("/products", listPublicProducts)
	webserver.ApiGET("/admin/products", listProducts, webserver.AdminOnly())
	webserver.ApiPOST("/admin/products", createProduct, webserver.AdminOnly())
	webserver.ApiPATCH("/admin/products/:id", patchProduct, webserver.AdminOnly())
}

func listPublicProducts(c echo.Context) error {
	products := app.ProductStore().All()
	out := make([]publicProduct, 0, len(products))
	for _, p := range products {
		out = append(out, publicProduct{
			ID:        p.ID,
			Name:      p.Name,
			PackSize:  p.PackSize,
			Price:     p.Price,
			IsSpecial: p.IsSpecial,
		})
	}
	return ok(c, http.StatusOK, out)
}

func listProducts(c echo.Context) error {
	return ok(c, http.StatusOK, app.ProductStore().All())
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse product")
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.PackSize = strings.TrimSpace(payload.PackSize)
	if payload.Name == "" || payload.PackSize == "" || payload.Price == nil {
		return fail(c, http.StatusBadRequest, "name, pack_size and price are required")
	}

	var created domain.Product
	app.ProductStore().Update(func(recs *[]domain.Product) bool {
		nextID := 1
		for _, p := range *recs {
			if p.ID >= nextID {
				nextID = p.ID + 1
			}
		}
		created = domain.Product{
			ID:        nextID,
			Name:      payload.Name,
			PackSize:  payload.PackSize,
			Price:     *payload.Price,
			IsSpecial: payload.IsSpecial,
		}
		*recs = append(*recs, created)
		return true
	})
	return ok(c, http.StatusCreated, created)
}

func patchProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusNotFound, "Product not found")
	}

	var payload productPatchPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse product")
	}

	var updated *domain.Product
	app.ProductStore().Update(func(recs *[]domain.Product) bool {
		for i := range *recs {
			if (*recs)[i].ID != id {
				continue
			}
			if price, set := patchPrice(payload.Price); set {
				(*recs)[i].Price = price
			}
			if payload.IsSpecial != nil {
				(*recs)[i].IsSpecial = *payload.IsSpecial
			}
			p := (*recs)[i]
			updated = &p
			return true
		}
		return false
	})
	if updated == nil {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	return ok(c, http.StatusOK, updated)
}

// patchPrice coerces the loosely typed price field. Absent, blank, or
// unparseable values leave the stored price unchanged.
func patchPrice(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return 0, false
	}
	price, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return price, true
}
