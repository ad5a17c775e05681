// Command snake-server runs the Snake game server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" – runs an MCP stdio server against an in-process game registry
//
// Flags control host/port, ruleset directory, logging, the session cookie
// secret, idle game eviction, and optional ngrok tunneling for external
// access during development. Every flag can also be set from the
// environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/snake-game-server/api"
	"github.com/wricardo/snake-game-server/game/config"
	"github.com/wricardo/snake-game-server/game/service"
	"github.com/wricardo/snake-game-server/game/session"
	"github.com/wricardo/snake-game-server/transport/mcp"
	"github.com/wricardo/snake-game-server/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Snake Game Server"
)

const (
	defaultSessionTTL = 24 * time.Hour
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	envErr := godotenv.Load()

	cmd := newRootCommand()
	err := cmd.Run(context.Background(), os.Args)

	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warn().Err(envErr).Msg("error loading .env file")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("exit")
	}
}

// newRootCommand builds the CLI. Running it without a subcommand serves HTTP.
func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "snake-server",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing rulesets", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level (debug, info, warn, error)", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.BoolFlag{Name: "pretty", Usage: "Human readable console logs", Sources: cli.EnvVars("LOG_PRETTY")},
			&cli.StringFlag{Name: "session-key", Value: api.DefaultSessionSecret, Usage: "Secret signing the session cookie", Sources: cli.EnvVars("SESSION_KEY")},
			&cli.BoolFlag{Name: "secure-cookies", Usage: "Mark session cookies Secure (HTTPS only)", Sources: cli.EnvVars("SECURE_COOKIES")},
			&cli.DurationFlag{Name: "session-ttl", Value: defaultSessionTTL, Usage: "Evict games idle for longer than this (0 disables)", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.String("log-level"), cmd.Bool("debug"), cmd.Bool("pretty"))
			return ctx, nil
		},
		Action: runHTTPServer,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with REST API, WebSocket, and MCP endpoint",
				Action:  runHTTPServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server",
				Action:  runStdioMCP,
			},
		},
	}
}

// setupLogging configures the global zerolog logger
func setupLogging(level string, debug, pretty bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	// stdout belongs to the MCP protocol in stdio mode, so logs always go to stderr
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// initializeServices wires session/config managers and the game service
func initializeServices(configDir string) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configManager)

	return gameService, sessionManager, nil
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and the /mcp endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", Version).Str("mode", "serve").Msg("starting " + AppName)

	gameService, sessionManager, err := initializeServices(cmd.String("config-dir"))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	sessions := api.NewSessionStore(cmd.String("session-key"), 0)
	sessions.SetSecure(cmd.Bool("secure-cookies"))
	if cmd.String("session-key") == api.DefaultSessionSecret {
		log.Warn().Msg("SESSION_KEY not set, session cookies are signed with the default secret")
	}

	apiServer := api.NewServer(gameService, hub, sessions)
	apiServer.Mount("/mcp", mcp.NewServer(gameService, hub, Version), http.MethodPost)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	if ttl := cmd.Duration("session-ttl"); ttl > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sessionCleanupRoutine(ctx, sessionManager, ttl)
		}()
	}

	serveErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/snake", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?game_id=<game_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), apiServer)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-serveErr:
		log.Error().Err(runErr).Msg("HTTP server failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is cancelled
func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/snake").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// cleanupInterval sweeps a few times per TTL, at most hourly and at least every minute
func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Hour {
		interval = time.Hour
	}
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

// sessionCleanupRoutine periodically removes games that have not been
// moved within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	ticker := time.NewTicker(cleanupInterval(ttl))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Info().Int("removed", removed).Int("remaining", manager.Count()).Msg("cleaned up expired games")
			}
		}
	}
}

// runStdioMCP serves the MCP tools over stdin/stdout. Games live in this
// process only.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	log.Info().Str("version", Version).Str("mode", "mcp").Msg("starting " + AppName)

	gameService, sessionManager, err := initializeServices(cmd.String("config-dir"))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if ttl := cmd.Duration("session-ttl"); ttl > 0 {
		go sessionCleanupRoutine(ctx, sessionManager, ttl)
	}

	log.Info().Msg("MCP stdio server ready")
	if err := server.ServeStdio(mcp.NewServer(gameService, nil, Version).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
