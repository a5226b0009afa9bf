package handlers

import (
	"net/http"
	"time"
)

// Routes registers every console page on a new mux. The returned handler
// resolves the browser session before dispatching.
func Routes(mw *Middleware, pages *Pages, sessionTTL time.Duration) http.Handler {
	authHandler := NewAuthHandler(pages, sessionTTL)
	dashboardHandler := NewDashboardHandler(pages)
	userHandler := NewUserHandler(pages)
	slotHandler := NewParkingSlotHandler(pages)
	orderHandler := NewOrderHandler(pages)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", mw.RateLimit(mw.CSRFProtect(authHandler.Login)))
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", mw.RateLimit(mw.CSRFProtect(authHandler.Register)))
	mux.HandleFunc("POST /logout", mw.CSRFProtect(authHandler.Logout))
	mux.HandleFunc("GET /forgot-password", authHandler.ShowForgotPassword)
	mux.HandleFunc("POST /forgot-password", mw.RateLimit(mw.CSRFProtect(authHandler.ForgotPassword)))
	mux.HandleFunc("GET /reset-password/{token}", authHandler.ShowResetPassword)
	mux.HandleFunc("POST /reset-password/{token}", mw.RateLimit(mw.CSRFProtect(authHandler.ResetPassword)))
	mux.HandleFunc("GET /verify-email", authHandler.ShowVerifyEmail)
	mux.HandleFunc("POST /verify-email", mw.RateLimit(mw.CSRFProtect(authHandler.ResendVerification)))

	mux.HandleFunc("GET /dashboard", mw.RequireAuth(dashboardHandler.Show))

	mux.HandleFunc("GET /users", mw.RequireAuth(userHandler.List))
	mux.HandleFunc("POST /users/create", mw.RequireAuth(mw.CSRFProtect(userHandler.Create)))
	mux.HandleFunc("POST /users/{id}/update", mw.RequireAuth(mw.CSRFProtect(userHandler.Update)))
	mux.HandleFunc("POST /users/{id}/delete", mw.RequireAuth(mw.CSRFProtect(userHandler.Delete)))

	mux.HandleFunc("GET /parking-slots", mw.RequireAuth(slotHandler.List))
	mux.HandleFunc("POST /parking-slots/create", mw.RequireAuth(mw.CSRFProtect(slotHandler.Create)))
	mux.HandleFunc("POST /parking-slots/create-many", mw.RequireAuth(mw.CSRFProtect(slotHandler.CreateMany)))
	mux.HandleFunc("POST /parking-slots/{id}/update", mw.RequireAuth(mw.CSRFProtect(slotHandler.Update)))
	mux.HandleFunc("POST /parking-slots/{id}/delete", mw.RequireAuth(mw.CSRFProtect(slotHandler.Delete)))

	mux.HandleFunc("GET /orders", mw.RequireAuth(orderHandler.List))
	mux.HandleFunc("POST /orders/create", mw.RequireAuth(mw.CSRFProtect(orderHandler.Create)))
	mux.HandleFunc("POST /orders/{id}/update", mw.RequireAuth(mw.CSRFProtect(orderHandler.Update)))
	mux.HandleFunc("POST /orders/{id}/status", mw.RequireAuth(mw.CSRFProtect(orderHandler.UpdateStatus)))
	mux.HandleFunc("POST /orders/{id}/delete", mw.RequireAuth(mw.CSRFProtect(orderHandler.Delete)))

	return mw.LoadSession(mux)
}
