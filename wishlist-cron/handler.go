// Package wishlistcron provides utilities for building scheduled Lambda functions.
package wishlistcron

import (
	"context"
	"encoding/json"

	wishlistcli "github.com/shared-wishlist/wishlist-backend/wishlist-cli"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
)

type RunCallback func(ctx context.Context) error

type Handler struct {
	service wishlistcli.Service
	logger  zerolog.Logger

	runOnce RunCallback
}

func NewHandler(
	service wishlistcli.Service,
	runOnce RunCallback,
) *Handler {
	return &Handler{
		service: service,
		logger:  wishlistcli.Logger(service),
		runOnce: runOnce,
	}
}

func (h *Handler) RunOnce(ctx context.Context, _ json.RawMessage) error {
	h.logger.Info().Msg("running scheduled task")
	return h.runOnce(ctx)
}

func (h *Handler) Start() error {
	switch {
	case wishlistcli.CommonOpts.Console:
		return h.runOnce(context.Background())

	default:
		lambda.Start(h.RunOnce)
	}
	return nil
}
