// @title                       Product API
// @version                     1.0
// @description                 Product catalogue with JWT authentication and role-based access.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/product-api/internal/api"
	"github.com/99minutos/product-api/internal/api/handler"
	"github.com/99minutos/product-api/internal/core/ports"
	"github.com/99minutos/product-api/internal/core/service"
	"github.com/99minutos/product-api/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/product-api/internal/infrastructure/db/mongo"
	"github.com/99minutos/product-api/internal/infrastructure/db/postgres"
	redisdb "github.com/99minutos/product-api/internal/infrastructure/db/redis"
	"github.com/99minutos/product-api/internal/infrastructure/queue"
	"github.com/99minutos/product-api/internal/pkg/config"
	"github.com/99minutos/product-api/pkg/logger"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

// stores groups the repositories of the selected driver.
type stores struct {
	credentials ports.CredentialStore
	products    ports.ProductRepository
	audit       ports.AuditRepository
	checks      map[string]handler.Check
	close       func(context.Context) error
}

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "product-api",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	var throttle ports.LoginThrottle
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, Timeout: connectTimeout})
		if err != nil {
			return err
		}
		defer rdb.Close()
		throttle = redisdb.NewLoginThrottle(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)
		st.checks["redis"] = redisdb.Ping(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttle enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttle disabled")
	}

	tokenCfg := service.TokenConfig{
		SigningKey: []byte(cfg.Auth.JWTSecret),
		Issuer:     cfg.Auth.JWTIssuer,
		Lifetime:   cfg.Auth.TokenTTL,
	}
	issuer, err := service.NewTokenIssuer(tokenCfg)
	if err != nil {
		return err
	}
	verifier, err := service.NewTokenVerifier(tokenCfg)
	if err != nil {
		return err
	}

	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	registration := service.NewRegistrationService(st.credentials, hasher, log)
	authenticator, err := service.NewAuthenticator(st.credentials, hasher)
	if err != nil {
		return err
	}

	// The dispatcher outlives the request context so queued events are
	// flushed after the server has stopped accepting requests.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, st.audit, log)
	dispatcher.Start(dispatchCtx)
	defer func() {
		stopDispatch()
		dispatcher.Wait()
	}()

	authService := service.NewAuthService(service.AuthDeps{
		Registration:  registration,
		Authenticator: authenticator,
		Issuer:        issuer,
		Verifier:      verifier,
		Throttle:      throttle,
		Audit:         dispatcher,
		Log:           log,
	})

	if err := registration.BootstrapAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Products: service.NewProductService(st.products, log),
		Checks:   st.checks,
		Log:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, Timeout: connectTimeout})
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return &stores{
			credentials: postgres.NewCredentialRepository(db),
			products:    postgres.NewProductRepository(db),
			audit:       postgres.NewAuditRepository(db),
			checks:      map[string]handler.Check{"postgres": db.PingContext},
			close:       func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return &stores{
			credentials: memory.NewCredentialStore(),
			products:    memory.NewProductStore(),
			audit:       memory.NewAuditStore(),
			checks:      map[string]handler.Check{},
			close:       func(context.Context) error { return nil },
		}, nil

	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, Timeout: connectTimeout})
		if err != nil {
			return nil, err
		}
		credentials := mongodb.NewCredentialRepository(db)
		if err := mongodb.EnsureIndexes(ctx, credentials); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &stores{
			credentials: credentials,
			products:    mongodb.NewProductRepository(db),
			audit:       mongodb.NewAuditRepository(db),
			checks: map[string]handler.Check{
				"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			},
			close: client.Disconnect,
		}, nil
	}
}
