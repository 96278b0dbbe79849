// Command recminimap turns recorded games into rotated minimap PNGs and
// localized match reports.
//
// Subcommands:
//  1. "render" (default) – processes every recorded game of the replay directory
//  2. "report" – prints the match report of one recorded game as JSON
//  3. "server" – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  4. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Every flag can also be set through its environment variable or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/recminimap/api"
	"github.com/wricardo/mcp-training/recminimap/game/locale"
	"github.com/wricardo/mcp-training/recminimap/game/minimap"
	"github.com/wricardo/mcp-training/recminimap/game/replay"
	"github.com/wricardo/mcp-training/recminimap/game/report"
	"github.com/wricardo/mcp-training/recminimap/game/service"
	"github.com/wricardo/mcp-training/recminimap/game/store"
	"github.com/wricardo/mcp-training/recminimap/logger"
	"github.com/wricardo/mcp-training/recminimap/transport/mcp"
	"github.com/wricardo/mcp-training/recminimap/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Recorded Game Minimaps"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCommand builds the root command with its global flags and subcommands.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:           "recminimap",
		Usage:          "render recorded game minimaps and match reports",
		Version:        Version,
		DefaultCommand: "render",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "replay-dir",
				Value:   "recs",
				Usage:   "directory containing recorded games",
				Sources: cli.EnvVars("REPLAY_DIR"),
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Value:   "minimaps",
				Usage:   "directory receiving minimap PNGs and reports",
				Sources: cli.EnvVars("OUTPUT_DIR"),
			},
			&cli.StringFlag{
				Name:    "locale-dir",
				Value:   "locales",
				Usage:   "directory containing locale files",
				Sources: cli.EnvVars("LOCALE_DIR"),
			},
			&cli.StringFlag{
				Name:    "locale",
				Value:   locale.DefaultLocale,
				Usage:   "locale used for match reports",
				Sources: cli.EnvVars("LOCALE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (trace, debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "log format (text or json)",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "process every recorded game of the replay directory",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Value:   1,
						Usage:   "number of recorded games processed concurrently",
						Sources: cli.EnvVars("WORKERS"),
					},
				},
				Action: runRender,
			},
			{
				Name:      "report",
				Usage:     "print the match report of one recorded game as JSON",
				ArgsUsage: "<recorded game>",
				Action:    runReport,
			},
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run HTTP server with API, WebSocket, and MCP endpoint",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "host",
						Value:   "localhost",
						Usage:   "HTTP server host",
						Sources: cli.EnvVars("HOST"),
					},
					&cli.IntFlag{
						Name:    "port",
						Value:   8080,
						Usage:   "HTTP server port",
						Sources: cli.EnvVars("PORT"),
					},
					&cli.BoolFlag{
						Name:    "ngrok",
						Usage:   "enable ngrok tunnel",
						Sources: cli.EnvVars("NGROK_ENABLED"),
					},
					&cli.StringFlag{
						Name:    "ngrok-auth",
						Usage:   "ngrok auth token",
						Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
					},
					&cli.StringFlag{
						Name:    "ngrok-domain",
						Usage:   "custom ngrok domain (optional)",
						Sources: cli.EnvVars("NGROK_DOMAIN"),
					},
				},
				Action: runServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run MCP stdio server with internal HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "external API reused when reachable",
						Sources: cli.EnvVars("API_URL"),
					},
				},
				Action: runStdioMCP,
			},
		},
	}
}

// app holds the collaborators shared by every subcommand.
type app struct {
	log       *logrus.Logger
	replayDir string
	outputDir string
	locale    string
	locales   *locale.Manager
	store     *store.FileStore
	service   service.ReplayService
}

// newApp wires locale manager, report store, renderer and replay service.
// notifier may be nil.
func newApp(cmd *cli.Command, notifier service.Notifier) (*app, error) {
	log := logger.New(logger.Options{
		Level:  cmd.String("log-level"),
		Format: cmd.String("log-format"),
	})

	a := &app{
		log:       log,
		replayDir: cmd.String("replay-dir"),
		outputDir: cmd.String("output-dir"),
		locale:    cmd.String("locale"),
	}

	locales, err := locale.NewManager(cmd.String("locale-dir"), a.locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load locales: %w", err)
	}
	a.locales = locales

	a.store, err = store.NewFileStore(filepath.Join(a.outputDir, "reports"))
	if err != nil {
		return nil, fmt.Errorf("failed to create report store: %w", err)
	}

	cfg := service.Config{
		ReplayDir: a.replayDir,
		Parser:    replay.JSONParser{},
		Renderer: minimap.NewRenderer(minimap.Options{
			OutputDir: a.outputDir,
			Logger:    log,
		}),
		Locales: locales,
		Store:   a.store,
		Logger:  log,
	}
	if notifier != nil {
		cfg.Notifier = notifier
	}
	a.service = service.NewReplayService(cfg)

	log.WithFields(logrus.Fields{
		"replay_dir": a.replayDir,
		"output_dir": a.outputDir,
		"locale":     a.locale,
	}).Debug("services initialized")
	return a, nil
}

// runRender processes the whole replay directory and prints one line per game.
func runRender(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}

	batch, err := a.service.ProcessAll(ctx, service.ProcessOptions{
		Locale:  a.locale,
		Workers: cmd.Int("workers"),
	})
	if err != nil {
		return err
	}

	printBatch(cmd.Root().Writer, batch)

	if batch.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d recorded games failed", batch.Failed, batch.Failed+batch.Processed), 1)
	}
	return nil
}

func printBatch(w io.Writer, batch *service.BatchResult) {
	if w == nil {
		w = os.Stdout
	}
	for _, rec := range batch.Records {
		if rec.OK() {
			fmt.Fprintf(w, "✓ %s -> %s\n", rec.Replay, rec.Minimap)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", rec.Replay)
		for _, e := range rec.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	fmt.Fprintf(w, "%d processed, %d failed in %s\n", batch.Processed, batch.Failed, batch.Duration.Round(time.Millisecond))
}

// runReport builds the report of a single recorded game without rendering.
func runReport(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return cli.Exit("usage: recminimap report <recorded game>", 2)
	}
	path := cmd.Args().First()
	if !replay.IsReplay(path) {
		return cli.Exit(fmt.Sprintf("%s is not a recorded game", path), 2)
	}

	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	loc, err := a.locales.Load(a.locale)
	if err != nil {
		return err
	}

	summary, err := replay.JSONParser{}.Parse(path)
	if err != nil {
		return err
	}
	rep, err := report.NewBuilder(loc).Build(filepath.Base(path), summary)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rep)
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	log := logger.New(logger.Options{
		Level:  cmd.String("log-level"),
		Format: cmd.String("log-format"),
	})

	// Create WebSocket hub
	hub := websocket.NewHub(log)
	go hub.Run()

	a, err := newApp(cmd, hub)
	if err != nil {
		return err
	}
	log = a.log

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(api.NewServer(a.service, hub, a.outputDir), mcpClient)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     mainRouter,
		ReadTimeout: 15 * time.Second,
		// Batch processing answers only when the whole directory is done
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("%s v%s listening on %s", AppName, Version, addr)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?topic=<run_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, log, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
		}()
	}

	select {
	case sig := <-stop:
		log.Infof("Received signal: %v. Shutting down...", sig)
	case err := <-serveErr:
		log.WithError(err).Error("HTTP server failed")
		cancel()
		wg.Wait()
		return err
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled.
func runNgrok(ctx context.Context, log logrus.FieldLogger, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Infof("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx,
		tunnel,
		ngrok.WithAuthtoken(authToken),
	)
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	// Closing the tunnel unblocks http.Serve
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Infof("Ngrok tunnel established: %s", ngrokURL)
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?topic=<run_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.WithError(err).Warn("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// newRouter mounts the API at the root and the MCP proxy at /mcp.
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// mcpHandler answers JSON-RPC MCP messages posted over HTTP.
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
	}
}

// runStdioMCP runs an MCP stdio server.
// It tries to reuse an external API at --api-url; if unavailable, it starts a
// minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	log := a.log

	externalURL := cmd.String("api-url")
	baseURL, err := externalAPI(externalURL)
	if err != nil {
		log.WithError(err).Infof("No external API server at %s, starting internal HTTP server", externalURL)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())

		httpServer := &http.Server{
			Handler: api.NewServer(a.service, nil, a.outputDir),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		log.Infof("MCP stdio server ready (internal HTTP server on %s)", baseURL)
	} else {
		log.Infof("MCP stdio server ready (using external HTTP server %s)", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// externalAPI returns baseURL when a healthy API server answers there.
func externalAPI(baseURL string) (string, error) {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err != nil {
		return "", err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return baseURL, nil
}
