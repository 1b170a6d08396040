package api

import (
	"log"
	"net/http"

	"github.com/example/homeware-storefront/internal/api/middleware"
	"github.com/example/homeware-storefront/internal/auth"
)

// RouterConfig wires handlers and services into the router.
type RouterConfig struct {
	AuthHandlers *AuthHandlers
	JWTService   *auth.JWTService
	WebDir       string // static storefront files, empty disables
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	// Static files (storefront pages)
	if cfg.WebDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.WebDir)))
	}

	requireAuth := middleware.AuthMiddleware(cfg.JWTService)

	mux.HandleFunc("/api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		cfg.AuthHandlers.Signup(w, r)
	})

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		cfg.AuthHandlers.Login(w, r)
	})

	mux.Handle("/api/auth/logout", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		cfg.AuthHandlers.Logout(w, r)
	})))

	mux.Handle("/api/auth/profile", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.AuthHandlers.Profile(w, r)
		case http.MethodPut:
			cfg.AuthHandlers.UpdateProfile(w, r)
		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	mux.Handle("/api/auth/change-password", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		cfg.AuthHandlers.ChangePassword(w, r)
	})))

	return withLogging(mux)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
