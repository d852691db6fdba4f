package app

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/randcc/cashcarry/config"
	"github.com/randcc/cashcarry/internal/domain"
	"github.com/randcc/cashcarry/internal/ordering"
	"github.com/randcc/cashcarry/internal/session"
	"github.com/randcc/cashcarry/internal/store"
	"github.com/randcc/cashcarry/internal/webserver"
)

type Application struct {
	appConfig *config.AppConfig
	products  *store.Store[domain.Product]
	users     *store.Store[domain.User]
	orders    *store.Store[domain.Order]
	sessions  *session.Registry
	engine    *ordering.Engine
	sched     *cron.Cron
}

// Ensure Application implements all interfaces
var (
	_ DataProvider           = (*Application)(nil)
	_ SessionProvider        = (*Application)(nil)
	_ OrderProvider          = (*Application)(nil)
	_ webserver.UserResolver = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) ProductStore() *store.Store[domain.Product] {
	return a.products
}

func (a *Application) UserStore() *store.Store[domain.User] {
	return a.users
}

func (a *Application) OrderStore() *store.Store[domain.Order] {
	return a.orders
}

func (a *Application) Sessions() *session.Registry {
	return a.sessions
}

func (a *Application) Orders() *ordering.Engine {
	return a.engine
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	if err := os.MkdirAll(cfg.System.Workdir, 0o755); err != nil {
		zap.S().Errorf("workdir create failed: %v", err)
	}

	a.products = store.New[domain.Product](cfg.ProductsFile())
	a.users = store.New[domain.User](cfg.UsersFile())
	a.orders = store.New[domain.Order](cfg.OrdersFile())
	a.sessions = session.NewRegistry(time.Duration(cfg.Session.TTL) * time.Second)
	a.engine = ordering.NewEngine(a.products, a.orders)

	zap.S().Infof("stores loaded: %d products, %d users, %d orders",
		a.products.Len(), a.users.Len(), a.orders.Len())

	a.checkAdminUser()
	a.initJob()
}

// Shutdown stops background jobs.
func (a *Application) Shutdown() {
	if a.sched != nil {
		a.sched.Stop()
	}
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// checkAdminUser seeds the bootstrap admin account from config when the
// users file carries no admin yet. Without it a fresh deployment has no way
// into the admin surface.
func (a *Application) checkAdminUser() {
	admin := a.appConfig.Admin
	if admin.Phone == "" || admin.Password == "" {
		return
	}

	created := false
	a.users.Update(func(recs *[]domain.User) bool {
		nextID := 1
		for _, u := range *recs {
			if u.Role == domain.RoleAdmin {
				return false
			}
			if u.ID >= nextID {
				nextID = u.ID + 1
			}
		}
		name := admin.Name
		if name == "" {
			name = "Administrator"
		}
		*recs = append(*recs, domain.User{
			ID:       nextID,
			Name:     name,
			Phone:    admin.Phone,
			Password: admin.Password,
			Role:     domain.RoleAdmin,
		})
		created = true
		return true
	})
	if created {
		zap.S().Infof("bootstrap admin user created, phone=%s", admin.Phone)
	}
}

// UserFromToken resolves a session token to its account. False when the
// token is unknown, expired, or the account has since vanished.
func (a *Application) UserFromToken(token string) (*domain.User, bool) {
	userID, ok := a.sessions.Resolve(token)
	if !ok {
		return nil, false
	}
	for _, u := range a.users.All() {
		if u.ID == userID {
			user := u
			return &user, true
		}
	}
	return nil, false
}
