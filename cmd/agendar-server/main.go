package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/agendarbrasil/agendar/internal/config"
	"github.com/agendarbrasil/agendar/internal/domain/dashboard"
	"github.com/agendarbrasil/agendar/internal/domain/identity"
	"github.com/agendarbrasil/agendar/internal/domain/onboarding"
	"github.com/agendarbrasil/agendar/internal/domain/pages"
	"github.com/agendarbrasil/agendar/internal/domain/profile"
	"github.com/agendarbrasil/agendar/internal/platform/auth"
	"github.com/agendarbrasil/agendar/internal/platform/db"
	"github.com/agendarbrasil/agendar/internal/platform/events"
	"github.com/agendarbrasil/agendar/internal/platform/middleware"
	"github.com/agendarbrasil/agendar/internal/platform/phi"
	"github.com/agendarbrasil/agendar/internal/platform/websocket"
	"github.com/agendarbrasil/agendar/migrations"
)

const (
	requestTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
	bodyLimit       = "64K"
	pageMaxAge      = 300
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "agendar-server",
		Short: "AgendarBrasil onboarding server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withMigrator(dir, func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("dir", "", "Migrations directory (default: embedded migrations)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withMigrator(dir, func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				fmt.Println("---------- ---------------------------------------- ---------- --------------------")
				for _, s := range statuses {
					status := "pending"
					appliedAt := ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	}
	statusCmd.Flags().String("dir", "", "Migrations directory (default: embedded migrations)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func withMigrator(dir string, fn func(context.Context, *db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, migrationSource(dir)))
}

// migrationSource returns dir on disk, or the embedded migrations when dir is
// empty.
func migrationSource(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	logger := newLogger(os.Getenv("ENV"))

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load config")
		return err
	}
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid config")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	var pool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
	}

	// Firebase
	var app *firebase.App
	if cfg.NeedsFirebase() {
		var opts []option.ClientOption
		if cfg.FirebaseCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
		}
		app, err = firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
		if err != nil {
			return fmt.Errorf("init firebase: %w", err)
		}
		logger.Info().Str("project", cfg.FirebaseProjectID).Msg("firebase initialized")
	}

	// Profile store
	var store profile.Store
	switch cfg.ProfileBackend {
	case config.BackendFirestore:
		fsClient, err := app.Firestore(ctx)
		if err != nil {
			return fmt.Errorf("init firestore: %w", err)
		}
		defer fsClient.Close()
		store = profile.NewStoreFirestore(fsClient)
	default:
		cipher, err := phi.NewFieldCipher(cfg.PHIKey())
		if err != nil {
			return fmt.Errorf("init field cipher: %w", err)
		}
		if cfg.PHIKey() == nil {
			logger.Warn().Msg("PHI_ENCRYPTION_KEY not set; medical history is stored in plaintext")
		}
		store = profile.NewStorePG(pool, cipher)
	}

	broker := events.NewBroker()

	// Identity gateway
	var gateway identity.Gateway
	switch cfg.IdentityBackend {
	case config.BackendFirebase:
		authClient, err := app.Auth(ctx)
		if err != nil {
			return fmt.Errorf("init firebase auth: %w", err)
		}
		verifier, err := identity.NewToolkitVerifier(ctx, cfg.FirebaseWebAPIKey)
		if err != nil {
			return fmt.Errorf("init identity toolkit: %w", err)
		}
		gateway = identity.NewFirebaseGateway(authClient, verifier, broker)
	default:
		gateway = identity.NewLocalGateway(identity.NewAccountRepo(pool), identity.GoogleTokenValidator{}, cfg.GoogleClientID, broker)
	}

	// Sessions, revocation and the cross-replica relay
	health := map[string]db.Pinger{}
	var access []middleware.AccessRecorder
	if pool != nil {
		health["postgres"] = pool
		access = append(access, middleware.NewPGAccessRecorder(pool))
	}
	var revoked auth.RevocationStore
	var relay *events.Relay
	if cfg.RedisURL != "" {
		rdb, err := newRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		revoked = auth.NewRedisRevocationStore(rdb)
		relay = events.NewRelay(rdb, broker, logger)
		health["redis"] = db.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		mem := auth.NewMemoryRevocationStore()
		defer mem.Close()
		revoked = mem
	}

	issuer, err := auth.NewIssuer([]byte(cfg.SessionSigningKey), cfg.SessionTTL)
	if err != nil {
		return err
	}

	identitySvc := identity.NewService(gateway, issuer, revoked, logger)
	onboardingSvc := onboarding.NewService(identitySvc, store, logger)
	defer identitySvc.OnStateChange(onboardingSvc.OnIdentityChange)()

	hub := websocket.NewHub(logger)
	defer broker.Subscribe(hub.OnIdentityEvent)()

	e := newRouter(routerDeps{
		cfg:        cfg,
		logger:     logger,
		issuer:     issuer,
		revoked:    revoked,
		identity:   identitySvc,
		onboarding: onboardingSvc,
		dashboard:  dashboard.NewService(store, logger),
		hub:        hub,
		health:     db.HealthHandler(pool, health),
		access:     access,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).
			Str("identity_backend", cfg.IdentityBackend).
			Str("profile_backend", cfg.ProfileBackend).
			Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	if relay != nil {
		defer relay.Forward()()
		g.Go(func() error { return relay.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

type routerDeps struct {
	cfg        *config.Config
	logger     zerolog.Logger
	issuer     *auth.Issuer
	revoked    auth.RevocationStore
	identity   *identity.Service
	onboarding *onboarding.Service
	dashboard  *dashboard.Service
	hub        *websocket.Hub
	health     echo.HandlerFunc
	access     []middleware.AccessRecorder
}

func newRouter(d routerDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.HTTPErrorHandler(d.logger)

	e.Use(middleware.Recovery(d.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(d.logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize(d.logger))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     d.cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID", "If-None-Match"},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestTimeout(requestTimeout))
	e.Use(auth.SessionMiddleware(d.issuer, d.revoked, d.logger, d.cfg.IsProduction()))
	e.Use(middleware.ProfileAccessAudit(d.logger, d.access...))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: d.cfg.RateLimitRPS,
		BurstSize:         d.cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	rateLimitCfg.Skipper = auth.InfraSkipper
	e.Use(middleware.RateLimit(rateLimitCfg))

	secure := d.cfg.IsProduction()
	pages.NewHandler(d.logger).RegisterRoutes(e, middleware.PageCache(pageMaxAge))
	identity.NewHandler(d.identity, secure).RegisterRoutes(e)
	onboarding.NewHandler(d.onboarding, secure).RegisterRoutes(e, middleware.RateLimit(middleware.CredentialRateLimitConfig()))
	dashboard.NewHandler(d.dashboard).RegisterRoutes(e, auth.RequireIdentity(onboarding.LoginPath))
	websocket.NewHandler(d.hub, d.cfg.CORSOrigins).RegisterRoutes(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", d.health)

	return e
}
