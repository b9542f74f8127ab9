// Package wishlistrest provides REST API utilities with CORS support and common middleware.
package wishlistrest

import (
	"fmt"
	"net/http"

	wishlistcli "github.com/shared-wishlist/wishlist-backend/wishlist-cli"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/savaki/apigateway"
)

func Middlewares(service wishlistcli.Service, routes chi.Router) chi.Router {
	routes.Use(
		withCORS(),
		withLogger(wishlistcli.Logger(service)),
		middleware.Recoverer,
	)
	return routes
}

func Webserver(service wishlistcli.Service, routes chi.Router) error {
	logger := wishlistcli.Logger(service)

	if wishlistcli.CommonOpts.Console {
		logger.Info().Int("port", wishlistcli.CommonOpts.Port).Msg("starting http server")
		addr := fmt.Sprintf(":%v", wishlistcli.CommonOpts.Port)
		return http.ListenAndServe(addr, routes)
	}

	lambda.Start(apigateway.Wrap(routes, wishlistcli.CommonOpts.Env))
	return nil
}

func withCORS() func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
	})
}

func withLogger(logger zerolog.Logger) func(handler http.Handler) http.Handler {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := logger.WithContext(req.Context())
			req = req.WithContext(ctx)
			handler.ServeHTTP(w, req)
		})
	}
}
