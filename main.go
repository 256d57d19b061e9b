// Command arcade runs the arcade game portal.
//
// Commands:
//  1. "serve" (default) – HTTP server with the REST API, WebSocket hub and an /mcp endpoint
//  2. "mcp" – MCP stdio server backed by an existing API or an internal one
//  3. "play" – play one game in the terminal
//  4. "export" – write recorded results to a parquet file
//
// Flags can also be set from the environment or a .env file, including the
// optional ngrok tunnel for easy external access during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/arcade/api"
	"github.com/wricardo/mcp-training/arcade/game/config"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/service"
	"github.com/wricardo/mcp-training/arcade/game/session"
	"github.com/wricardo/mcp-training/arcade/stats"
	"github.com/wricardo/mcp-training/arcade/transport/mcp"
	"github.com/wricardo/mcp-training/arcade/transport/tui"
	"github.com/wricardo/mcp-training/arcade/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Arcade"
)

const (
	shutdownTimeout = 10 * time.Second
	probeTimeout    = 2 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("arcade failed")
		os.Exit(1)
	}
}

// Flags hold parse state, so each command gets its own copy
func configDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config-dir",
		Value:   "configs",
		Usage:   "directory containing per-game JSON configurations",
		Sources: cli.EnvVars("CONFIG_DIR"),
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Value:   "arcade.db",
		Usage:   "SQLite stats database",
		Sources: cli.EnvVars("ARCADE_DB"),
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "arcade",
		Usage:          "arcade game portal: Tetris, Snake, Flippy Bird, Memory and Sliding Puzzle",
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			exportCommand(),
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return err
				},
			},
		},
	}
}

func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			configDirFlag(),
			dbFlag(),
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "remove sessions idle for longer than this"},
			&cli.DurationFlag{Name: "cleanup-interval", Value: time.Hour, Usage: "how often idle sessions are removed"},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: runServe,
	}
}

// stack is the wired application behind every HTTP entry point
type stack struct {
	service  service.GameService
	sessions *session.Manager
	store    *stats.Store
	hub      *websocket.Hub
}

// newStack wires stats, configs, sessions and the game service. The hub
// receives every state change and forwards input frames to the service.
func newStack(ctx context.Context, configDir, dbPath string, logger zerolog.Logger) (*stack, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	store, err := stats.Open(dbPath, logger.With().Str("component", "stats").Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to open stats store: %w", err)
	}

	configManager, err := config.NewManager(configDir, logger.With().Str("component", "config").Logger())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessions := session.NewManager(session.WithLogger(logger.With().Str("component", "session").Logger()))
	hub := websocket.NewHub(logger.With().Str("component", "websocket").Logger())

	svc := service.NewGameService(ctx, sessions, configManager, store,
		service.WithNotifier(hub.BroadcastUpdate),
		service.WithLogger(logger.With().Str("component", "service").Logger()),
	)
	hub.SetInputHandler(func(ctx context.Context, sessionID, action string) (any, error) {
		return svc.Act(ctx, sessionID, action)
	})

	return &stack{service: svc, sessions: sessions, store: store, hub: hub}, nil
}

func (s *stack) Close() error {
	for _, sess := range s.sessions.List() {
		if sess.Runner != nil {
			sess.Runner.Close()
		}
	}
	return s.store.Close()
}

// handler serves the API, with the MCP endpoint proxying to baseURL
func (s *stack) handler(baseURL string, logger zerolog.Logger) http.Handler {
	mcpClient := mcp.NewClient(baseURL)
	return api.NewServer(s.service, s.hub,
		api.WithMCP(mcpClient.Handler()),
		api.WithLogger(logger.With().Str("component", "api").Logger()),
	)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	logger := log.Logger

	st, err := newStack(ctx, cmd.String("config-dir"), cmd.String("db"), logger)
	if err != nil {
		return err
	}
	defer st.Close()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	handler := st.handler("http://"+addr, logger)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		st.hub.Run(gctx)
		return nil
	})

	grp.Go(func() error {
		logger.Info().
			Str("addr", addr).
			Str("api", "http://"+addr+"/api").
			Str("ws", "ws://"+addr+"/ws?session=<session_id>").
			Str("mcp", "http://"+addr+"/mcp").
			Msgf("%s v%s listening", AppName, Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	grp.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	grp.Go(func() error {
		sessionCleanupRoutine(gctx, st.sessions, cmd.Duration("cleanup-interval"), cmd.Duration("session-ttl"), logger)
		return nil
	})

	if cmd.Bool("ngrok") {
		grp.Go(func() error {
			return runNgrok(gctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler, logger)
		})
	}

	err = grp.Wait()
	logger.Info().Msg("server stopped")
	return err
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration, logger zerolog.Logger) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				logger.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx ends. A missing
// token only disables the tunnel.
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler, logger zerolog.Logger) error {
	if authToken == "" {
		logger.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return nil
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info().Str("domain", domain).Msg("using custom ngrok domain")
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error().Err(err).Msg("failed to start ngrok tunnel")
		return nil
	}

	url := tun.URL()
	logger.Info().
		Str("api", url+"/api").
		Str("ws", url+"/ws?session=<session_id>").
		Str("mcp", url+"/mcp").
		Msgf("ngrok tunnel established: %s", url)

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("ngrok server error")
	}
	logger.Info().Msg("ngrok tunnel closed")
	return nil
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server; starts an internal API when none is reachable",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "existing API server to proxy to", Sources: cli.EnvVars("ARCADE_API_URL")},
			configDirFlag(),
			dbFlag(),
		},
		Action: runStdioMCP,
	}
}

// apiReachable reports whether an arcade API answers at baseURL
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	logger := log.Logger
	baseURL := cmd.String("api-url")

	if apiReachable(ctx, baseURL) {
		logger.Info().Str("url", baseURL).Msg("using external API server for MCP")
	} else {
		logger.Info().Msg("no external API server found, starting internal HTTP server")

		st, err := newStack(ctx, cmd.String("config-dir"), cmd.String("db"), logger)
		if err != nil {
			return err
		}
		defer st.Close()
		go st.hub.Run(ctx)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		httpServer := &http.Server{Handler: st.handler(baseURL, logger)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()
	}

	logger.Info().Str("api", baseURL).Msg("MCP stdio server ready")
	return server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer())
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "play a game in the terminal",
		ArgsUsage: "<game>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "player", Value: "guest", Usage: "player name for stats", Sources: cli.EnvVars("ARCADE_PLAYER")},
			&cli.Int64Flag{Name: "seed", Usage: "random seed (0 picks one)"},
			configDirFlag(),
			dbFlag(),
		},
		Action: runPlay,
	}
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one game, one of %v", engine.AllGames)
	}
	game, err := engine.ParseGameID(cmd.Args().First())
	if err != nil {
		return err
	}

	// The terminal belongs to the game
	quiet := zerolog.Nop()

	configManager, err := config.NewManager(cmd.String("config-dir"), quiet)
	if err != nil {
		return err
	}
	cfg, err := configManager.LoadConfig(game)
	if err != nil {
		return err
	}

	store, err := stats.Open(cmd.String("db"), quiet)
	if err != nil {
		return err
	}
	defer store.Close()

	player := cmd.String("player")
	return tui.Run(ctx, tui.Options{
		Game:   game,
		Config: cfg,
		Sink:   store.SinkFor(player),
		HighScore: func(ctx context.Context) (int, error) {
			return store.HighScore(ctx, player, game)
		},
		Seed: cmd.Int64("seed"),
		Log:  quiet,
	})
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "export recorded results of a game to a parquet file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "game", Usage: "game to export", Required: true},
			&cli.StringFlag{Name: "out", Usage: "output file (default <game>-results.parquet)"},
			&cli.DurationFlag{Name: "since", Usage: "only results newer than this, e.g. 24h (0 exports all)"},
			dbFlag(),
		},
		Action: runExport,
	}
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	game, err := engine.ParseGameID(cmd.String("game"))
	if err != nil {
		return err
	}

	out := cmd.String("out")
	if out == "" {
		out = game.Slug() + "-results.parquet"
	}

	var since time.Time
	if d := cmd.Duration("since"); d > 0 {
		since = time.Now().Add(-d)
	}

	store, err := stats.Open(cmd.String("db"), log.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ExportParquet(ctx, out, game, since)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	_, err = fmt.Fprintf(cmd.Root().Writer, "Exported %d %s results to %s\n", n, game, out)
	return err
}
