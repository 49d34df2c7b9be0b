package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pnid-studio/backend/internal/advisor"
	"github.com/pnid-studio/backend/internal/api"
	"github.com/pnid-studio/backend/internal/catalog"
	"github.com/pnid-studio/backend/internal/config"
	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/models"
	"github.com/pnid-studio/backend/internal/session"
	"github.com/pnid-studio/backend/internal/storage"
	"github.com/pnid-studio/backend/internal/store"
	"github.com/pnid-studio/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "PnidStudio.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Check if running in embedded mode (frontend built into binary)
	embeddedMode := web.HasEmbeddedFiles()

	// Symbol catalog with the builtin ISA set
	cat := catalog.New()

	// Validation rules: builtin unless a rules file is configured
	rules := diagram.DefaultRules()
	rulesSource := "builtin"
	if cfg.Drawing.RulesFile != "" {
		loaded, err := diagram.LoadRulesFile(cfg.Drawing.RulesFile)
		if err != nil {
			fmt.Printf("Warning: failed to load rules file: %v\n", err)
		} else {
			rules = loaded
			rulesSource = filepath.Base(cfg.Drawing.RulesFile)
			fmt.Printf("Validation rules loaded from %s\n", cfg.Drawing.RulesFile)
		}
	}

	// Drawing defaults for new sessions
	defaults := diagram.Options{
		Sheet:         models.SheetSize(cfg.Drawing.SheetSize),
		GridSpacingMM: cfg.Drawing.GridSpacingMM,
		MarginMM:      cfg.Drawing.MarginMM,
		Crossing:      diagram.CrossingPolicy(cfg.Drawing.CrossingPolicy),
		MaxExpansions: cfg.Drawing.MaxRouteExpansions,
	}

	// Initialize session manager
	sessionMgr := session.NewManager(cat, defaults)

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Drawing.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(time.Duration(cfg.Drawing.SessionTimeoutMinutes) * time.Minute)
		}
	}()

	// Drawing revision store, skipped when persistence is off
	var drawingStore *store.DrawingStore
	if cfg.Storage.EnablePersistence {
		drawingStore, err = store.NewDrawingStore(cfg.GetDataDir(),
			cfg.Advanced.DuckDBThreads, cfg.Advanced.DuckDBMemoryLimit)
		if err != nil {
			fmt.Printf("Failed to open drawing store: %v\n", err)
			os.Exit(1)
		}
		defer drawingStore.Close()
	}

	// Export artifact archive
	archive, err := storage.NewArchive(cfg.GetExportDir(), cfg.Advanced.ExportRetainCount)
	if err != nil {
		fmt.Printf("Failed to initialize export archive: %v\n", err)
		os.Exit(1)
	}

	// Advisor client, disabled without an endpoint
	adv := advisor.NewClient(cfg.Advisor.Endpoint, cfg.Advisor.APIKey,
		time.Duration(cfg.Advisor.TimeoutSeconds)*time.Second)
	if adv.Enabled() {
		fmt.Printf("Advisor enabled at %s\n", cfg.Advisor.Endpoint)
	}

	handlers := api.NewHandlers(&api.Dependencies{
		Catalog:     cat,
		SessionMgr:  sessionMgr,
		Store:       drawingStore,
		Archive:     archive,
		Advisor:     adv,
		Rules:       rules,
		RulesSource: rulesSource,
		Version:     Version,
	})

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e)

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/keepalive") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			// Rendering large sheets can outlast the request timeout
			path := c.Request().URL.Path
			return strings.Contains(path, "/export/") ||
				strings.HasPrefix(path, "/api/exports")
		},
		ErrorMessage: "Request timeout - operation took too long",
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			// PNG artifacts are already compressed
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/export/png") ||
				strings.HasPrefix(path, "/api/exports/")
		},
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		if embeddedMode {
			// In embedded mode, use config settings
			origins := strings.Split(cfg.Server.AllowOrigins, ",")
			for i := range origins {
				origins[i] = strings.TrimSpace(origins[i])
			}
			if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
				origins = []string{"*"}
			}
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: origins,
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			}))
		} else {
			// Development mode - only allow localhost
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: []string{
					"http://localhost:5173", "http://127.0.0.1:5173",
					"http://localhost:5174", "http://127.0.0.1:5174",
					"http://localhost:3000", "http://127.0.0.1:3000",
				},
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			}))
		}
	}

	// API routes
	api.RegisterRoutes(e, handlers)

	// Register embedded frontend if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		} else {
			fmt.Println("Serving embedded frontend from binary")
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	mode := "Development"
	if embeddedMode {
		mode = "Air-Gapped (Embedded)"
	}
	persistence := "disabled"
	if drawingStore != nil {
		persistence = "DuckDB"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           P&ID Studio Server                              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:      %-44s║\n", configPath)
	fmt.Printf("║  Listen:      http://%-37s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:    %-44s║\n", cfg.GetDataDir())
	fmt.Printf("║  Sheet:       %-44s║\n", cfg.Drawing.SheetSize)
	fmt.Printf("║  Persistence: %-44s║\n", persistence)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	e.Logger.Fatal(e.StartServer(s))
}
