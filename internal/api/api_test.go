package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randcc/cashcarry/config"
	"github.com/randcc/cashcarry/internal/api"
	"github.com/randcc/cashcarry/internal/app"
	"github.com/randcc/cashcarry/internal/domain"
	"github.com/randcc/cashcarry/internal/webserver"
)

type env struct {
	app     *app.Application
	handler http.Handler
}

// newEnv boots a full application against a temp workdir and wires the
// router, so tests exercise the real middleware chain.
func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Admin.Name = "Boss"
	cfg.Admin.Phone = "27110000000"
	cfg.Admin.Password = "admin-pass"

	application := app.NewApplication(cfg)
	application.Init(cfg)
	t.Cleanup(application.Shutdown)

	webserver.Init(cfg, application)
	api.InitRouter(application)

	return &env{app: application, handler: webserver.Handler()}
}

func (e *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(webserver.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func (e *env) adminToken(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"phone": "27110000000", "password": "admin-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	return resp.Token
}

func (e *env) register(t *testing.T, name, phone string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "phone": phone, "password": "pw-" + phone,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	return resp.Token
}

func (e *env) seedProduct(t *testing.T, token string, name string, price float64) domain.Product {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/admin/products", token, map[string]interface{}{
		"name": name, "pack_size": "1kg", "price": price,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var p domain.Product
	decode(t, rec, &p)
	return p
}

func TestLiveness(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rand Cash & Carry API is running")
}

func TestRegisterAssignsIncreasingIDs(t *testing.T) {
	e := newEnv(t)

	for i, phone := range []string{"27821", "27822", "27823"} {
		rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
			"name": "u", "phone": phone, "password": "pw",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			User domain.UserInfo `json:"user"`
		}
		decode(t, rec, &resp)
		// the seeded admin holds id 1
		assert.Equal(t, i+2, resp.User.ID)
		assert.Equal(t, domain.RoleCustomer, resp.User.Role)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "no phone", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicatePhoneLeavesStoreUntouched(t *testing.T) {
	e := newEnv(t)
	e.register(t, "first", "27825550001")
	before := e.app.UserStore().Len()

	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "second", "phone": "27825550001", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, before, e.app.UserStore().Len())
}

func TestRegisterResponseOmitsPassword(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "u", "phone": "27825550002", "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLoginRoundTrip(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Thandi", "27825550003")

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"phone": "27825550003", "password": "pw-27825550003",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string          `json:"token"`
		User  domain.UserInfo `json:"user"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)

	// the token resolves back to the same account
	user, ok := e.app.UserFromToken(resp.Token)
	require.True(t, ok)
	assert.Equal(t, resp.User.ID, user.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Thandi", "27825550004")

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"phone": "27825550004", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "token")
}

func TestLoginMissingFields(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"phone": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicProductProjection(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)
	e.seedProduct(t, token, "Maize Meal", 10)

	rec := e.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []map[string]interface{}
	decode(t, rec, &out)
	require.Len(t, out, 1)
	for key := range out[0] {
		assert.Contains(t, []string{"id", "name", "pack_size", "price", "isSpecial"}, key)
	}
}

func TestAdminGuardCollapsesAllFailures(t *testing.T) {
	e := newEnv(t)
	customer := e.register(t, "c", "27825550005")

	for name, token := range map[string]string{
		"missing token": "",
		"garbage token": "garbage",
		"customer role": customer,
	} {
		rec := e.do(t, http.MethodGet, "/admin/products", token, nil)
		assert.Equalf(t, http.StatusForbidden, rec.Code, "case %s", name)
	}
}

func TestRepCannotUseAdminRoutes(t *testing.T) {
	e := newEnv(t)
	admin := e.adminToken(t)
	repToken := e.register(t, "Rep", "27825550006")
	// promote via the store, registration only mints customers
	e.app.UserStore().Update(func(recs *[]domain.User) bool {
		for i := range *recs {
			if (*recs)[i].Phone == "27825550006" {
				(*recs)[i].Role = domain.RoleRep
			}
		}
		return true
	})

	rec := e.do(t, http.MethodGet, "/admin/products", repToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// but the staff route admits both
	rec = e.do(t, http.MethodGet, "/orders", repToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodGet, "/orders", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateProductValidation(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)

	rec := e.do(t, http.MethodPost, "/admin/products", token, map[string]interface{}{
		"name": "No price", "pack_size": "1kg",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchProduct(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)
	p := e.seedProduct(t, token, "Sugar", 20)

	rec := e.do(t, http.MethodPatch, fmt.Sprintf("/admin/products/%d", p.ID), token,
		map[string]interface{}{"price": "25.50", "isSpecial": true})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.Product
	decode(t, rec, &updated)
	assert.Equal(t, 25.50, updated.Price)
	assert.True(t, updated.IsSpecial)
}

func TestPatchProductBlankFieldsUnchanged(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)
	p := e.seedProduct(t, token, "Sugar", 20)

	rec := e.do(t, http.MethodPatch, fmt.Sprintf("/admin/products/%d", p.ID), token,
		map[string]interface{}{"price": ""})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.Product
	decode(t, rec, &updated)
	assert.Equal(t, 20.0, updated.Price)
	assert.False(t, updated.IsSpecial)
}

func TestPatchProductUnknownID(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)
	rec := e.do(t, http.MethodPatch, "/admin/products/999", token,
		map[string]interface{}{"price": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrderFlow(t *testing.T) {
	e := newEnv(t)
	admin := e.adminToken(t)
	p := e.seedProduct(t, admin, "Maize Meal", 10)
	customer := e.register(t, "Thandi", "27825550007")

	rec := e.do(t, http.MethodPost, "/orders", customer, map[string]interface{}{
		"items": []map[string]interface{}{{"productId": p.ID, "qty": 3}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var order domain.Order
	decode(t, rec, &order)
	assert.Equal(t, 30.0, order.Total)
	assert.Equal(t, "Thandi", order.CustomerName)
	require.NotNil(t, order.User)
	assert.Equal(t, domain.OrderPending, order.Status)
}

func TestPlaceOrderEmptyItems(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/orders", "", map[string]interface{}{
		"items": []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderUnknownProductIsStructured400(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/orders", "", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": 424242, "qty": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "424242")
	assert.Equal(t, 0, e.app.OrderStore().Len())
}

func TestMyOrdersRequiresToken(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/my-orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(t, http.MethodGet, "/my-orders", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMyOrdersFiltersByIdentity(t *testing.T) {
	e := newEnv(t)
	admin := e.adminToken(t)
	p := e.seedProduct(t, admin, "Oil", 50)
	thandi := e.register(t, "Thandi", "27825550008")
	sipho := e.register(t, "Sipho", "27825550009")

	items := map[string]interface{}{
		"items": []map[string]interface{}{{"productId": p.ID, "qty": 1}},
	}
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/orders", thandi, items).Code)
	// Sipho orders under Thandi's display name
	withName := map[string]interface{}{
		"items":        []map[string]interface{}{{"productId": p.ID, "qty": 1}},
		"customerName": "Thandi",
	}
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/orders", sipho, withName).Code)

	rec := e.do(t, http.MethodGet, "/my-orders", thandi, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []domain.Order
	decode(t, rec, &mine)
	require.Len(t, mine, 1)

	user, _ := e.app.UserFromToken(thandi)
	assert.Equal(t, user.ID, mine[0].User.ID)
}

func TestPatchOrderStatus(t *testing.T) {
	e := newEnv(t)
	admin := e.adminToken(t)
	p := e.seedProduct(t, admin, "Oil", 50)

	rec := e.do(t, http.MethodPost, "/orders", "", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": p.ID, "qty": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order domain.Order
	decode(t, rec, &order)

	rec = e.do(t, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", order.ID), admin,
		map[string]string{"status": "packed"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Order
	decode(t, rec, &updated)
	assert.Equal(t, domain.OrderPacked, updated.Status)
}

func TestPatchOrderStatusInvalidValue(t *testing.T) {
	e := newEnv(t)
	admin := e.adminToken(t)
	p := e.seedProduct(t, admin, "Oil", 50)

	rec := e.do(t, http.MethodPost, "/orders", "", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": p.ID, "qty": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order domain.Order
	decode(t, rec, &order)

	rec = e.do(t, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", order.ID), admin,
		map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "out_for_delivery")

	// order keeps its previous status
	assert.Equal(t, domain.OrderPending, e.app.Orders().ListAll()[0].Status)
}

func TestPatchOrderStatusUnknownOrder(t *testing.T) {
	e := newEnv(t)
	admin := e.adminToken(t)
	rec := e.do(t, http.MethodPatch, "/admin/orders/999/status", admin,
		map[string]string{"status": "packed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
