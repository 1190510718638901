package handlers

import (
	"net/http"

	"evantra-web/internal/api"
	"evantra-web/internal/identity"
	"evantra-web/internal/middleware"
	"evantra-web/internal/payment"
	"evantra-web/internal/purchase"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every page route with its middleware stack. Anonymous
// browsing stays open; everything under the guard requires a signed-in
// session, with role checks inside the pages.
func NewRouter(apiClient *api.Client, manager *identity.Manager, gateway payment.Gateway, baseURL string) http.Handler {
	publicHandler := NewPublicHandler(apiClient)
	authHandler := NewAuthHandler(manager, baseURL)
	purchaseHandler := NewPurchaseHandler(apiClient, gateway, purchase.NewRegistry())
	dashboardHandler := NewDashboardHandler(apiClient)
	organizerHandler := NewOrganizerHandler(apiClient)
	staffHandler := NewStaffHandler(apiClient)

	sessionLoader := middleware.NewSessionLoader(manager)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(sessionLoader.LoadSession)
	r.Use(middleware.LoggingMiddleware)

	// Static assets
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static/"))))

	// Anonymous browsing
	r.Get("/", publicHandler.HomePage)
	r.Get("/events", publicHandler.EventsPage)
	r.Get("/events/{id}", publicHandler.EventDetailPage)

	// Sign-in flow
	r.Get("/login", authHandler.LoginPage)
	r.Get("/login/start", authHandler.BeginLogin)
	r.Get("/callback", authHandler.Callback)
	r.Get("/logout", authHandler.Logout)

	// Authenticated pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/events/{eventId}/purchase/{ticketTypeId}", purchaseHandler.StartPurchase)
		r.Get("/purchase/{txnId}", purchaseHandler.ShowPurchase)
		r.Post("/purchase/{txnId}/pay", purchaseHandler.Pay)
		r.Post("/purchase/{txnId}/callback", purchaseHandler.GatewayCallback)
		r.Post("/purchase/{txnId}/retry", purchaseHandler.Retry)
		r.Get("/purchase/{txnId}/cancel", purchaseHandler.CancelPurchase)

		r.Get("/dashboard", dashboardHandler.DashboardPage)
		r.Get("/dashboard/profile", dashboardHandler.ProfilePage)
		r.Get("/dashboard/tickets", dashboardHandler.TicketsPage)
		r.Get("/dashboard/tickets/{id}", dashboardHandler.TicketPage)

		r.Get("/dashboard/events", organizerHandler.EventsPage)
		r.Get("/dashboard/events/create", organizerHandler.NewEventPage)
		r.Post("/dashboard/events/create", organizerHandler.CreateEvent)
		r.Get("/dashboard/events/update/{id}", organizerHandler.EditEventPage)
		r.Post("/dashboard/events/update/{id}", organizerHandler.UpdateEvent)
		r.Post("/dashboard/events/delete/{id}", organizerHandler.DeleteEvent)
		r.Get("/organizers/analytics", organizerHandler.AnalyticsPage)

		r.Get("/dashboard/validate", staffHandler.ValidatePage)
		r.Post("/dashboard/validate", staffHandler.ValidateTicket)
	})

	return r
}
