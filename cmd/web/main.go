package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"evantra-web/internal/api"
	"evantra-web/internal/config"
	"evantra-web/internal/handlers"
	"evantra-web/internal/identity"
	"evantra-web/internal/payment"

	"github.com/gorilla/sessions"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Backend API client
	apiClient := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)

	// Create session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
	}

	// Identity provider and session manager
	provider := identity.NewKeycloakProvider(
		cfg.OIDC.IssuerURL,
		cfg.OIDC.ClientID,
		cfg.OIDC.ClientSecret,
		cfg.OIDC.RedirectURL,
	)
	manager := identity.NewManager(sessionStore, provider)

	// Payment gateway
	gateway := payment.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)

	// The issuer sends the browser back here after sign-out.
	baseURL := strings.TrimSuffix(cfg.OIDC.RedirectURL, "/callback")
	if baseURL == cfg.OIDC.RedirectURL {
		baseURL = fmt.Sprintf("http://%s", cfg.Server.Addr())
	}

	router := handlers.NewRouter(apiClient, manager, gateway, baseURL)

	log.Printf("Server starting on http://%s", cfg.Server.Addr())
	log.Printf("Backend API: %s", cfg.Backend.BaseURL)
	log.Printf("Identity issuer: %s", cfg.OIDC.IssuerURL)
	if err := http.ListenAndServe(cfg.Server.Addr(), router); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
