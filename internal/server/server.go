// Package server provides HTTP server initialization and lifecycle
// management for the sale process API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/scrypster/saleflow/internal/config"
	"github.com/scrypster/saleflow/internal/engine"
	"github.com/scrypster/saleflow/web/handlers"
)

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start initializes and starts the HTTP server. It wires the engine's
// commit callback into the WebSocket hub so every committed transition is
// broadcast to connected clients.
//
// Returns the actual address being listened on (useful for testing with
// port 0) and the hub. The server shuts down when ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, eng *engine.Engine) (string, *handlers.WebSocketHub, error) {
	mux := http.NewServeMux()

	wsHub := handlers.NewWebSocketHub()
	go wsHub.Run()
	eng.SetOnCommitted(wsHub.BroadcastTransition)

	// 10 req/sec sustained, burst of 20
	rateLimiter := handlers.NewRateLimiter(10.0, 20)

	processHandlers := handlers.NewProcessHandlers(eng)

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/processes/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			processHandlers.GetProcess(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/processes/{id}/advance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			processHandlers.Advance(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/processes/{id}/retreat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			processHandlers.Retreat(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/processes/{id}/jump", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			processHandlers.Jump(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/processes/{id}/finalize", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			processHandlers.Finalize(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/processes/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			processHandlers.History(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Health endpoint — no auth required, used by monitoring
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		processHandlers.Health(w, r)
	})

	// Wrap API routes with auth middleware
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoint (no auth required — origin validation handles security)
	mux.Handle("/ws", wsHub)

	// Wrap entire server with rate limiting, then security headers
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = securityHeadersMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("server: failed to listen on %s: %w", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("server: serve error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server: shutdown error: %v", err)
		}
		wsHub.Stop()
	}()

	return actualAddr, wsHub, nil
}
