// Command rp-game-server starts the Spirits & Villagers session server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the player WebSocket, the REST API, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (an optional .env file is loaded first)
// and can be overridden with flags: host/port, roster directory, default
// roster, log level, session retention, and optional ngrok tunneling.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/ekincelikten/rp-game-server/api"
	"github.com/ekincelikten/rp-game-server/game/config"
	"github.com/ekincelikten/rp-game-server/game/service"
	"github.com/ekincelikten/rp-game-server/game/session"
	"github.com/ekincelikten/rp-game-server/logger"
	"github.com/ekincelikten/rp-game-server/transport/mcp"
	"github.com/ekincelikten/rp-game-server/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Spirits & Villagers Server"
)

// application holds the wired components shared by every mode
type application struct {
	cfg      *config.AppConfig
	hub      *websocket.Hub
	sessions *session.Manager
	configs  *config.Manager
	service  service.GameService
}

// newFlagSet binds command-line flags onto cfg. Values already in cfg (from
// the environment) become the flag defaults, so flags win over env.
func newFlagSet(cfg *config.AppConfig) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "HTTP server host")
	fs.StringVar(&cfg.ConfigDir, "config-dir", cfg.ConfigDir, "Directory containing roster files")
	fs.StringVar(&cfg.DefaultRoster, "roster", cfg.DefaultRoster, "Roster used for new sessions")
	fs.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "Directory with static assets and avatars")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Remove sessions idle for longer than this")
	fs.DurationVar(&cfg.CleanupInterval, "cleanup-interval", cfg.CleanupInterval, "How often ended and idle sessions are removed")
	fs.BoolVar(&cfg.NgrokEnabled, "ngrok", cfg.NgrokEnabled, "Enable ngrok tunnel")
	fs.StringVar(&cfg.NgrokAuthToken, "ngrok-auth", cfg.NgrokAuthToken, "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	fs.StringVar(&cfg.NgrokDomain, "ngrok-domain", cfg.NgrokDomain, "Custom ngrok domain (optional)")
	version := fs.Bool("version", false, "Show version information")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(out, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(out, "Available modes:\n")
		fmt.Fprintf(out, "  server, http     Run HTTP server with WebSocket, API, and MCP endpoint (default)\n")
		fmt.Fprintf(out, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(out, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(out, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(out, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  %s                      # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(out, "  %s -port 9090           # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(out, "  %s -roster large        # Start new sessions with configs/large.yaml\n", os.Args[0])
		fmt.Fprintf(out, "  %s stdio-mcp            # Run MCP stdio server\n", os.Args[0])
	}

	return fs, version
}

// main parses settings, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.LoadAppConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid environment: %v\n", err)
		os.Exit(1)
	}

	fs, version := newFlagSet(cfg)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	logger.InitLogger(cfg.EffectiveLogLevel())
	defer zap.L().Sync()
	log := zap.L()

	if envErr == nil {
		log.Info("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		log.Warn("error loading .env file", zap.Error(envErr))
	}

	mode := "server"
	if args := fs.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.Info("starting", zap.String("app", AppName), zap.String("version", Version), zap.String("mode", mode))

	app, err := initializeServices(cfg)
	if err != nil {
		log.Fatal("failed to initialize services", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessionCleanupRoutine(ctx, app.sessions, cfg.CleanupInterval, cfg.SessionTTL)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(app)

	case "server", "http":
		runHTTPServer(ctx, app)

	default:
		log.Fatal("unknown mode, use 'server' (default) or 'stdio-mcp'", zap.String("mode", mode))
	}
}

// initializeServices wires the roster catalogue, the session manager, the
// WebSocket hub and the game service. The hub loop is started here because
// sessions notify through it from their first join.
func initializeServices(cfg *config.AppConfig) (*application, error) {
	configManager, err := config.NewManager(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	if cfg.DefaultRoster != "" {
		if err := configManager.SetDefault(cfg.DefaultRoster); err != nil {
			zap.L().Warn("default roster unavailable, using fallback",
				zap.String("roster", cfg.DefaultRoster),
				zap.String("fallback", configManager.GetDefault().Name),
				zap.Error(err))
		}
	}

	hub := websocket.NewHub()
	go hub.Run()

	sessionManager := session.NewManager()

	return &application{
		cfg:      cfg,
		hub:      hub,
		sessions: sessionManager,
		configs:  configManager,
		service:  service.NewGameService(sessionManager, configManager, hub),
	}, nil
}

// newRouter combines the API server with the /mcp endpoint
func newRouter(app *application, mcpClient *mcp.Client) http.Handler {
	apiServer := api.NewServer(app.service, app.hub, app.cfg.StaticDir)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer serves players and the admin surfaces until a shutdown
// signal arrives. If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, app *application) {
	log := zap.L()
	cfg := app.cfg
	addr := cfg.Addr()

	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(app, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws", addr)),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg, mainRouter)
		}()
	}

	sig := <-stop
	log.Info("shutting down", zap.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	log.Info("server stopped")
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx ends
func runNgrokTunnel(ctx context.Context, cfg *config.AppConfig, handler http.Handler) {
	log := zap.L()

	if cfg.NgrokAuthToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Info("using custom ngrok domain", zap.String("domain", cfg.NgrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuthToken))
	if err != nil {
		log.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	url := tun.URL()
	log.Info("ngrok tunnel established",
		zap.String("url", url),
		zap.String("websocket", url+"/ws"),
		zap.String("mcp", url+"/mcp"))

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Info("ngrok tunnel closed", zap.Error(err))
	}
}

// sessionCleanupRoutine periodically disposes of ended sessions and of
// sessions nobody touched within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration) {
	if interval <= 0 {
		zap.L().Warn("session cleanup disabled", zap.Duration("interval", interval))
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupSessions(manager, ttl)
		}
	}
}

// cleanupSessions runs one cleanup pass and returns the number of sessions removed
func cleanupSessions(manager *session.Manager, ttl time.Duration) int {
	ended := manager.CleanupEndedSessions()
	expired := manager.CleanupExpiredSessions(ttl)

	if ended+expired > 0 {
		zap.L().Info("cleaned up sessions",
			zap.Int("ended", ended),
			zap.Int("expired", expired),
			zap.Int("remaining", manager.Count()))
	}
	return ended + expired
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at the configured address; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(app *application) {
	log := zap.L()
	externalURL := fmt.Sprintf("http://%s", app.cfg.Addr())
	baseURL := externalURL

	log.Info("checking for external API server", zap.String("url", externalURL))

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil {
		resp.Body.Close()
	}
	if err == nil && resp.StatusCode < 500 {
		log.Info("external API server found, using it for MCP", zap.String("url", externalURL))
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatal("failed to get available port", zap.Error(err))
		}

		internalAddr := listener.Addr().String()
		baseURL = fmt.Sprintf("http://%s", internalAddr)
		log.Info("starting internal HTTP server for MCP stdio", zap.String("addr", internalAddr))

		httpServer := &http.Server{
			Handler: api.NewServer(app.service, app.hub, app.cfg.StaticDir),
		}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error("internal HTTP server error", zap.Error(err))
			}
		}()
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready", zap.String("api", baseURL))

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatal("MCP stdio server error", zap.Error(err))
	}
}
