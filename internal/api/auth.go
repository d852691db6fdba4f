package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/randcc/cashcarry/internal/domain"
	"github.com/randcc/cashcarry/internal/webserver"
)

type registerPayload struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginPayload struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  domain.UserInfo `json:"user"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/auth/register", registerUser)
	webserver.ApiPOST("/auth/login", login)
}

// registerUser creates a customer account. Phone uniqueness and id
// assignment happen in one pass under the store lock, so a duplicate phone
// leaves the collection untouched.
func registerUser(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse request")
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Phone = strings.TrimSpace(payload.Phone)
	if payload.Name == "" || payload.Phone == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "name, phone, password are required")
	}

	var created domain.User
	duplicate := false
	app.UserStore().Update(func(recs *[]domain.User) bool {
		nextID := 1
		for _, u := range *recs {
			if u.Phone == payload.Phone {
				duplicate = true
				return false
			}
			if u.ID >= nextID {
				nextID = u.ID + 1
			}
		}
		created = domain.User{
			ID:       nextID,
			Name:     payload.Name,
			Phone:    payload.Phone,
			Password: payload.Password,
			Role:     domain.RoleCustomer,
		}
		*recs = append(*recs, created)
		return true
	})
	if duplicate {
		return fail(c, http.StatusBadRequest, "Phone already registered")
	}

	token := app.Sessions().Create(created.ID)
	return ok(c, http.StatusCreated, authResponse{Token: token, User: created.Info()})
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse request")
	}
	if payload.Phone == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "phone and password required")
	}

	for _, u := range app.UserStore().All() {
		if u.Phone == payload.Phone && u.Password == payload.Password {
			token := app.Sessions().Create(u.ID)
			return ok(c, http.StatusOK, authResponse{Token: token, User: u.Info()})
		}
	}
	return fail(c, http.StatusUnauthorized, "Invalid phone or password")
}
