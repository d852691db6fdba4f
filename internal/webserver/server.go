// Package webserver owns the Echo instance: middleware, static admin pages,
// route registration helpers and the token/role guards.
package webserver

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/randcc/cashcarry/config"
	"github.com/randcc/cashcarry/internal/domain"
)

// TokenHeader is the bearer-style auth header issued by register/login.
const TokenHeader = "x-auth-token"

// UserResolver turns a request token into an account. The Application
// implements it on top of the session registry and the user store.
type UserResolver interface {
	UserFromToken(token string) (*domain.User, bool)
}

type WebServer struct {
	root      *echo.Echo
	appConfig *config.AppConfig
	resolver  UserResolver
}

var server *WebServer

// Init builds the package server. Must run before any route registration.
func Init(appConfig *config.AppConfig, resolver UserResolver) *WebServer {
	root := echo.New()
	root.HideBanner = true
	root.HidePort = true
	root.Use(middleware.Recover())
	root.Use(middleware.CORS())
	root.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	server = &WebServer{
		root:      root,
		appConfig: appConfig,
		resolver:  resolver,
	}
	server.initStaticPages()
	return server
}

// initStaticPages wires the admin HTML pages when a webroot is configured.
// The API itself does not depend on them.
func (s *WebServer) initStaticPages() {
	webroot := s.appConfig.Web.Webroot
	if webroot == "" {
		return
	}
	s.root.File("/admin", filepath.Join(webroot, "admin.html"))
	s.root.File("/admin/products-page", filepath.Join(webroot, "admin_products.html"))
	s.root.File("/admin/rep", filepath.Join(webroot, "admin_rep.html"))
}

// Listen starts serving and blocks until the listener stops.
func Listen() error {
	addr := fmt.Sprintf("%s:%d", server.appConfig.Web.Host, server.appConfig.Web.Port)
	zap.S().Infof("http server listening on %s", addr)
	return server.root.Start(addr)
}

// Shutdown stops the server gracefully.
func Shutdown(ctx context.Context) error {
	return server.root.Shutdown(ctx)
}

// Handler exposes the root handler for tests.
func Handler() http.Handler {
	return server.root
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.POST(path, h, m...)
}

func ApiPATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.PATCH(path, h, m...)
}
