package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"

	"stormcenter/internal/auth"
	"stormcenter/internal/cache"
	"stormcenter/internal/config"
	"stormcenter/internal/data"
	"stormcenter/internal/handler"
	"stormcenter/internal/logger"
	"stormcenter/internal/middleware"
	"stormcenter/internal/service"
	"stormcenter/internal/view"
	"stormcenter/web"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, nil)

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB.DSN, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(data.DBConfig{DSN: cfg.DB.DSN})
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := scs.New()
	sessionManager.Store = mysqlstore.New(db.DB)
	sessionManager.Lifetime = time.Duration(cfg.Session.Lifetime) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	authenticator, err := auth.NewAuthenticator(&cfg.OIDC)
	if err != nil {
		log.Fatal(err, "Failed to initialize authenticator")
	}
	enforcer, err := auth.NewEnforcer("mysql", cfg.DB.DSN, "auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	log.Info("Initializing view templates...")
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}
	log.Info("View templates initialized.")

	// --- Cache Initialization ---
	log.Info("Initializing SQLite cache...")
	statsCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer statsCache.Close()
	log.Info("Cache initialized.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	settingsRepository := data.NewSettingsRepository(db)
	postRepository := data.NewPostRepository(db)
	categoryRepository := data.NewCategoryRepository(db)
	commentRepository := data.NewCommentRepository(db)
	threatRepository := data.NewThreatRepository(db)
	authorRepository := data.NewAuthorRepository(db)

	blogService := service.NewBlogService(postRepository, categoryRepository, commentRepository)
	threatService := service.NewThreatService(threatRepository, statsCache)
	feedService := service.NewFeedService(postRepository, settingsRepository, cfg.Site.BaseURL)

	handlers := handler.Handlers{
		Site:    handler.NewSiteHandler(blogService, threatService, authorRepository, viewService, log),
		Blog:    handler.NewBlogHandler(blogService, viewService, log),
		Threats: handler.NewThreatHandler(threatService, viewService, log),
		Feeds:   handler.NewFeedHandler(feedService, log),
		Seo:     handler.NewSeoHandler(blogService, cfg.Site.BaseURL),
		Admin:   handler.NewAdminHandler(blogService, threatService, settingsRepository, sessionManager, viewService, log),
		Auth:    handler.NewAuthHandler(authenticator, sessionManager, authorRepository),
	}

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager)
	errorMiddleware := middleware.Error(log, viewService)
	settingsMiddleware := middleware.Settings(settingsRepository, log)

	// --- Router Setup ---
	// The router is the central hub that directs incoming requests to the correct handlers.
	router := handler.NewRouter(handlers, authzMiddleware, errorMiddleware, settingsMiddleware, sessionManager, web.StaticFS)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}
