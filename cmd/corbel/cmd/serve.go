package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corbelhq/corbel/internal/httpserver"
	"github.com/corbelhq/corbel/pkg/config"
	"github.com/corbelhq/corbel/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the demo server",
	Long: `Start an HTTP server whose handlers exercise the request facade:
form input with a flash round trip, file upload, content negotiation,
and conditional responses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	cfg := config.NewStore(configDir)
	if err := cfg.Sync(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Get("server.logLevel", "info")),
	}))

	// The cookie driver needs a signing key. Generate an ephemeral one when
	// the config carries none; sessions then reset on restart.
	if cfg.Get("app.key") == nil {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("failed to generate app key: %w", err)
		}
		cfg.Set("app.key", hex.EncodeToString(key))
		logger.Warn("app.key not configured, using an ephemeral session key")
	}

	sessions, err := session.New(cfg)
	if err != nil {
		return err
	}

	addr, _ := cfg.Get("server.addr", "127.0.0.1:8080").(string)
	srv := httpserver.New(cfg, sessions,
		httpserver.WithAddr(addr),
		httpserver.WithLogger(logger),
	)
	registerRoutes(srv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info("corbel stopped")
	return nil
}

// registerRoutes wires the demo handlers. Each one goes through the facade
// rather than the raw request.
func registerRoutes(srv *httpserver.Server) {
	router := srv.Router()

	// Route parameters plus content negotiation.
	router.HandleFunc("/greet/{name}", func(w http.ResponseWriter, r *http.Request) {
		req := srv.Facade(w, r)
		name := req.Param("name", "stranger")
		switch req.Accepts("json", "html") {
		case "json":
			writeJSON(w, http.StatusOK, map[string]any{"greeting": "hello " + name})
		case "html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, "<h1>hello %s</h1>", html.EscapeString(name))
		default:
			http.Error(w, "Not Acceptable", http.StatusNotAcceptable)
		}
	}).Methods(http.MethodGet)

	// Flash round trip, read side: values flashed by POST /profile show up
	// here exactly once after the redirect.
	router.HandleFunc("/form", func(w http.ResponseWriter, r *http.Request) {
		req := srv.Facade(w, r)
		username, err := req.Old("username", "")
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<form method="post" action="/profile">
  <input name="username" value="%s">
  <input name="password" type="password">
  <button>Save</button>
</form>`, html.EscapeString(fmt.Sprint(username)))
	}).Methods(http.MethodGet)

	// Flash round trip, write side: keep everything but the password for
	// the redirected-to form.
	router.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		req := srv.Facade(w, r)
		if err := req.FlashExcept("password"); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/form", http.StatusSeeOther)
	}).Methods(http.MethodPost)

	// File upload.
	router.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		req := srv.Facade(w, r)
		avatar := req.File("avatar")
		if !avatar.Exists() {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "avatar is required"})
			return
		}
		if err := avatar.Move("./uploads", ""); err != nil {
			httpserver.LoggerFromContext(r.Context()).Error("failed to store upload", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"name": avatar.ClientName,
			"size": avatar.Size,
			"type": avatar.ContentType,
		})
	}).Methods(http.MethodPost)

	// Request metadata behind a conditional response: repeat clients get 304.
	router.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		req := srv.Facade(w, r)
		body, err := json.Marshal(map[string]any{
			"ip":         req.IP(),
			"ips":        req.IPs(),
			"hostname":   req.Hostname(),
			"subdomains": req.Subdomains(),
			"ajax":       req.AJAX(),
			"secure":     req.Secure(),
		})
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		httpserver.WriteConditional(req, http.StatusOK, "application/json", body)
	}).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// parseLogLevel converts a config value to a slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level any) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
