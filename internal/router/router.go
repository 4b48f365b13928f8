package router

import (
	"context"
	"net/http"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/handlers"
	"storefront-api/internal/metrics"
	"storefront-api/internal/middleware"
	"storefront-api/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// SetupRouter wires services, handlers and middleware. CORS wraps the router
// from outside so preflight requests are answered before route matching.
func SetupRouter(store *db.Store, cfg config.Config, logger zerolog.Logger) http.Handler {
	authService := services.NewAuthService(cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost, logger)
	userService := services.NewUserService(store, authService, logger)
	productService := services.NewProductService(store, logger)
	cartService := services.NewCartService(store, logger)
	orderService := services.NewOrderService(store, cfg.OrderPrefix, logger)
	accountService := services.NewAccountService(store, logger)
	adminService := services.NewAdminService(store, logger)

	authHandler := handlers.NewAuthHandler(userService, authService,
		handlers.CookieSettings{Name: cfg.CookieName, Secure: cfg.CookieSecure}, logger)
	userHandler := handlers.NewUserHandler(userService, adminService, logger)
	accountHandler := handlers.NewAccountHandler(accountService, logger)
	productHandler := handlers.NewProductHandler(productService, logger)
	cartHandler := handlers.NewCartHandler(cartService, logger)
	orderHandler := handlers.NewOrderHandler(orderService, logger)
	adminHandler := handlers.NewAdminHandler(adminService, logger)

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.Metrics(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Session(authService, cfg.CookieName, logger))

	api := r.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	limitedAuth := auth.PathPrefix("").Subrouter()
	limitedAuth.Use(rateLimiter.Middleware())
	limitedAuth.HandleFunc("/register", authHandler.Register).Methods("POST")
	limitedAuth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	auth.Handle("/me", middleware.RequireAuth(http.HandlerFunc(authHandler.Me))).Methods("GET")

	api.HandleFunc("/products", productHandler.List).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}", productHandler.Get).Methods("GET")

	// Guest checkout; the session middleware links the order when signed in.
	api.HandleFunc("/orders", orderHandler.Create).Methods("POST")

	api.HandleFunc("/feedback", adminHandler.SubmitFeedback).Methods("POST")
	api.HandleFunc("/newsletter", adminHandler.Subscribe).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/products", productHandler.List).Methods("GET")
	admin.HandleFunc("/products", productHandler.Create).Methods("POST")
	admin.HandleFunc("/products/{id:[0-9]+}", productHandler.Get).Methods("GET")
	admin.HandleFunc("/products/{id:[0-9]+}", productHandler.Update).Methods("PUT")
	admin.HandleFunc("/products/{id:[0-9]+}", productHandler.Delete).Methods("DELETE")
	admin.HandleFunc("/orders", orderHandler.ListAll).Methods("GET")
	admin.HandleFunc("/orders/{id:[0-9]+}", orderHandler.Get).Methods("GET")
	admin.HandleFunc("/orders/{id:[0-9]+}", orderHandler.Update).Methods("PUT")
	admin.HandleFunc("/orders/{id:[0-9]+}", orderHandler.Delete).Methods("DELETE")
	admin.HandleFunc("/users", userHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{id:[0-9]+}", userHandler.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/feedback", adminHandler.ListFeedback).Methods("GET")
	admin.HandleFunc("/feedback/{id:[0-9]+}", adminHandler.DeleteFeedback).Methods("DELETE")
	admin.HandleFunc("/subscribers", adminHandler.ListSubscribers).Methods("GET")
	admin.HandleFunc("/subscribers/{id:[0-9]+}", adminHandler.DeleteSubscriber).Methods("DELETE")
	admin.HandleFunc("/stats", adminHandler.Stats).Methods("GET")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.RequireAuth)

	protected.HandleFunc("/cart", cartHandler.Get).Methods("GET")
	protected.HandleFunc("/cart", cartHandler.AddItem).Methods("POST")
	protected.HandleFunc("/cart", cartHandler.Clear).Methods("DELETE")
	protected.HandleFunc("/cart/items", cartHandler.AddItem).Methods("POST")
	protected.HandleFunc("/cart/items/{id:[0-9]+}", cartHandler.UpdateItem).Methods("PUT")
	protected.HandleFunc("/cart/items/{id:[0-9]+}", cartHandler.RemoveItem).Methods("DELETE")

	protected.HandleFunc("/orders", orderHandler.ListMine).Methods("GET")
	protected.HandleFunc("/orders/{id:[0-9]+}", orderHandler.Get).Methods("GET")
	protected.HandleFunc("/orders/{id:[0-9]+}", orderHandler.Update).Methods("PUT")
	protected.HandleFunc("/orders/{id:[0-9]+}", orderHandler.Delete).Methods("DELETE")

	user := protected.PathPrefix("/user").Subrouter()
	user.HandleFunc("/profile", userHandler.GetProfile).Methods("GET")
	user.HandleFunc("/profile", userHandler.UpdateProfile).Methods("PUT")
	user.HandleFunc("/password", userHandler.ChangePassword).Methods("PUT")
	user.HandleFunc("/addresses", accountHandler.ListAddresses).Methods("GET")
	user.HandleFunc("/addresses", accountHandler.CreateAddress).Methods("POST")
	user.HandleFunc("/addresses/{id:[0-9]+}", accountHandler.UpdateAddress).Methods("PUT")
	user.HandleFunc("/addresses/{id:[0-9]+}", accountHandler.DeleteAddress).Methods("DELETE")
	user.HandleFunc("/addresses/{id:[0-9]+}/default", accountHandler.SetDefaultAddress).Methods("PUT")
	user.HandleFunc("/payment-methods", accountHandler.ListPaymentMethods).Methods("GET")
	user.HandleFunc("/payment-methods", accountHandler.CreatePaymentMethod).Methods("POST")
	user.HandleFunc("/payment-methods/{id:[0-9]+}", accountHandler.UpdatePaymentMethod).Methods("PUT")
	user.HandleFunc("/payment-methods/{id:[0-9]+}", accountHandler.DeletePaymentMethod).Methods("DELETE")
	user.HandleFunc("/payment-methods/{id:[0-9]+}/default", accountHandler.SetDefaultPaymentMethod).Methods("PUT")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := store.Ping(ctx); err != nil {
			logger.Error().Err(err).Msg("Health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	return middleware.CORS(cfg.CORSOrigins)(r)
}
