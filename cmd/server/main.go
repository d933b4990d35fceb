package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sitetree/internal/auth"
	"sitetree/internal/config"
	"sitetree/internal/domain/repositories"
	sitetreeRepo "sitetree/internal/domain/repositories/sitetree"
	"sitetree/internal/handler"
	"sitetree/internal/metrics"
	"sitetree/internal/middleware"
	"sitetree/internal/pagetypes"
	"sitetree/internal/repository/memory"
	"sitetree/internal/repository/postgres"
	postgresSitetree "sitetree/internal/repository/postgres/sitetree"
	serviceSitetree "sitetree/internal/service/sitetree"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run owns every resource the server opens so deferred cleanup happens before main exits
func run() error {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logWriter, closeLog, err := config.LogWriter(cfg)
	if err != nil {
		return fmt.Errorf("set up log file: %w", err)
	}
	defer closeLog()

	logger := config.NewLogger(cfg, logWriter)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Page type table
	registry, err := loadPageTypes(cfg)
	if err != nil {
		return fmt.Errorf("load page types: %w", err)
	}
	logger.Info("page type registry initialized",
		"source", cfg.PageTypesFile,
		"types", len(registry.List()),
	)

	// Page store
	pageRepo, txManager, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open page store: %w", err)
	}
	defer closeStore()

	collectors := metrics.New()

	// Services
	hierarchy := serviceSitetree.NewHierarchy(pageRepo, registry, logger)
	childLister := serviceSitetree.NewExcludeChildren(hierarchy, registry, logger,
		serviceSitetree.WithExclusionRecorder(collectors),
	)
	treeService := serviceSitetree.NewTreeService(pageRepo, childLister, serviceSitetree.DefaultRootType, cfg.TreeMaxDepth, logger)
	pageService := serviceSitetree.NewPageService(pageRepo, txManager, registry, logger)
	pageTypeService := serviceSitetree.NewPageTypeService(registry, logger)

	// Handlers
	treeHandler := handler.NewTreeHandler(treeService, logger)
	pageHandler := handler.NewPageHandler(pageService, treeService, logger)
	pageTypeHandler := handler.NewPageTypeHandler(pageTypeService, logger)

	logger.Info("services initialized")

	mux := newRouter(treeHandler, pageHandler, pageTypeHandler)
	mux.Handle("GET /metrics", collectors.Handler())

	// Debug routes
	if cfg.Debug {
		debugHandler := handler.NewDebugHandler(childLister)
		mux.HandleFunc("GET /debug/pagetypes/{name}/excluded", debugHandler.GetExcludedTypes)
		logger.Warn("DEBUG MODE: debug endpoints enabled (NEVER use in production!)")
	}

	// Build middleware chain
	var h http.Handler = mux

	// Order: CORS → Recovery → Auth → Metrics → Routes
	// Metrics sits next to the mux so it sees the matched route pattern
	h = collectors.Middleware(h)
	if cfg.JWKSURL != "" {
		jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			return fmt.Errorf("create JWT verifier: %w", err)
		}
		defer jwtVerifier.Close()

		h = middleware.AuthMiddleware(jwtVerifier, logger, "/admin/", "/debug/")(h)
	} else if cfg.IsProduction() {
		return errors.New("JWKS_URL is required in production")
	} else {
		logger.Warn("admin authentication disabled (JWKS_URL not set)")
	}
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newRouter registers the page routes. Everything under /admin/ sits behind auth;
// /api/ is the anonymous surface and only ever reads the live stage.
func newRouter(treeHandler *handler.TreeHandler, pageHandler *handler.PageHandler, pageTypeHandler *handler.PageTypeHandler) *http.ServeMux {
	// Go 1.22+ enhanced patterns
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", pageHandler.HealthCheck)

	// CMS tree routes
	mux.HandleFunc("GET /admin/pages/treeview", treeHandler.TreeView)
	mux.HandleFunc("GET /admin/pages/{id}/getsubtree", treeHandler.GetSubtree)
	mux.HandleFunc("GET /admin/pages/{id}/children", pageHandler.GetChildren)

	// Page routes
	mux.HandleFunc("POST /admin/pages", pageHandler.CreatePage)
	mux.HandleFunc("GET /admin/pages/{id}", pageHandler.GetPage)
	mux.HandleFunc("PATCH /admin/pages/{id}", pageHandler.UpdatePage)
	mux.HandleFunc("DELETE /admin/pages/{id}", pageHandler.DeletePage)
	mux.HandleFunc("POST /admin/pages/{id}/publish", pageHandler.PublishPage)
	mux.HandleFunc("POST /admin/pages/{id}/unpublish", pageHandler.UnpublishPage)

	// Page type routes
	mux.HandleFunc("GET /admin/pagetypes", pageTypeHandler.ListPageTypes)
	mux.HandleFunc("PATCH /admin/pagetypes/{name}", pageTypeHandler.UpdatePageType)

	// Public child listing
	mux.HandleFunc("GET /api/pages/{id}/children", pageHandler.GetPublishedChildren)

	return mux
}

// loadPageTypes reads PAGETYPES_FILE when set, the embedded table otherwise
func loadPageTypes(cfg *config.Config) (*pagetypes.Registry, error) {
	if cfg.PageTypesFile != "" {
		return pagetypes.LoadFile(cfg.PageTypesFile)
	}
	return pagetypes.NewRegistry()
}

// openStore connects to Postgres, or falls back to the in-memory store outside production
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (sitetreeRepo.PageRepository, repositories.TransactionManager, func(), error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			return nil, nil, nil, errors.New("DATABASE_URL is required in production")
		}
		logger.Warn("DATABASE_URL not set, using in-memory page store (data is lost on restart)")
		return memory.NewPageRepository(), memory.NewTransactionManager(), func() {}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	logger.Info("database connected",
		"pages_table", tables.Pages,
		"pages_live_table", tables.PagesLive,
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return postgresSitetree.NewPageRepository(repoConfig), postgres.NewTransactionManager(pool, logger), pool.Close, nil
}
