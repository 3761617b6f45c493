package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wower3/image-edit/internal/asset"
	"github.com/wower3/image-edit/internal/auth"
	"github.com/wower3/image-edit/internal/collab"
	"github.com/wower3/image-edit/internal/config"
	"github.com/wower3/image-edit/internal/document"
	"github.com/wower3/image-edit/internal/export"
	mw "github.com/wower3/image-edit/internal/middleware"
	"github.com/wower3/image-edit/internal/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.New(pool)

	authService := auth.NewService(st, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	documentService := document.NewService(st)
	documentHandler := document.NewHandler(documentService)

	// Scene loader for the collaboration hub. Background context: this runs
	// in the hub goroutine, not tied to any request.
	docLoader := func(documentID string) ([]byte, error) {
		return documentService.LoadSnapshot(context.Background(), documentID)
	}

	// Scene saver for the collaboration hub.
	docSaver := func(documentID string, payload []byte) error {
		return documentService.SaveSnapshot(context.Background(), documentID, payload)
	}

	hub := collab.NewHub(docLoader, docSaver, cfg.HistoryLimit, time.Duration(cfg.CommitDebounceMs)*time.Millisecond)
	go hub.Run()

	assetHandler := asset.NewHandler(cfg.AssetDir)
	exportHandler := export.NewHandler(documentService)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS)

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Asset endpoints (public — the image tool uploads before placing)
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/documents", documentHandler.List).Methods("GET")
	api.HandleFunc("/documents", documentHandler.Create).Methods("POST")
	api.HandleFunc("/documents/{documentId}", documentHandler.Get).Methods("GET")
	api.HandleFunc("/documents/{documentId}", documentHandler.Rename).Methods("PATCH")
	api.HandleFunc("/documents/{documentId}", documentHandler.Delete).Methods("DELETE")
	api.HandleFunc("/documents/{documentId}/snapshots/latest", documentHandler.GetLatestSnapshot).Methods("GET")
	api.HandleFunc("/export/documents/{documentId}", exportHandler.ExportDocument).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/document/{documentId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, documentService, cfg)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty documents
		slog.Info("saving all documents...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, docs *document.Service, cfg *config.Config) {
	vars := mux.Vars(r)
	documentID := vars["documentId"]

	var userID string
	var displayName string

	// The scratchpad document allows anonymous access
	const scratchpadDocumentID = "doc_scratchpad"
	if documentID == scratchpadDocumentID {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		// Auth via query param for real documents
		token := auth.RequestToken(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		var err error
		userID, err = authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		owner, err := docs.IsOwner(r.Context(), documentID, userID)
		if err != nil {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		if !owner {
			http.Error(w, "not the document owner", http.StatusForbidden)
			return
		}

		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(cfg.AllowedOrigins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, userID, displayName, documentID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// originPatterns strips schemes from the configured origins; websocket.Accept
// matches host patterns, not URLs.
func originPatterns(origins string) []string {
	var patterns []string
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}
