package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"bizdesk/cmd/fx/account_fx"
	"bizdesk/cmd/fx/cache_fx"
	"bizdesk/cmd/fx/controllers_fx"
	"bizdesk/cmd/fx/dashboard"
	"bizdesk/cmd/fx/db_fx"
	"bizdesk/cmd/fx/logger_fx"
	"bizdesk/cmd/fx/mail_fx"
	"bizdesk/cmd/fx/memcache_fx"
	"bizdesk/cmd/fx/payment_service_fx"
	"bizdesk/cmd/fx/storage_fx"
	"bizdesk/cmd/fx/support_fx"
	"bizdesk/cmd/fx/upload_fx"
	"bizdesk/internal/api/controllers"
	"bizdesk/pkg/middleware"
	"bizdesk/pkg/utils"
)

func main() {
	// a missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	app := fx.New(
		logger_fx.Module,
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),

		db_fx.Module,
		memcache_fx.Module,
		cache_fx.Module,
		storage_fx.Module,
		mail_fx.Module,
		account_fx.Module,
		payment_service_fx.Module,
		dashboard.Module,
		support_fx.Module,
		upload_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + utils.GetEnv("PORT", "8080"),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping http server")
			return srv.Shutdown(ctx)
		},
	})
}

type routerParams struct {
	fx.In

	Logger    *zap.Logger
	Verifier  middleware.TokenVerifier
	Accounts  *controllers.AccountController
	Payments  *controllers.PaymentController
	Dashboard *controllers.DashboardController
	Support   *controllers.SupportController
	Messages  *controllers.MessageController
	Uploads   *controllers.UploadController
}

func ProvideRouter(p routerParams) (*gin.Engine, error) {
	if err := utils.RegisterValidators(); err != nil {
		return nil, err
	}
	if utils.GetEnv("APP_ENV", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(p.Logger))
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, p)
	return r, nil
}
