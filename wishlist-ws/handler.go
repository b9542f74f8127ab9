package wishlistws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shared-wishlist/wishlist-backend/wishlist-ws/connectiondao"
	"github.com/shared-wishlist/wishlist-backend/wishlist-ws/subscriptiondao"
	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
)

// ConnectionStore is the connection registry surface the handler needs.
type ConnectionStore interface {
	Put(ctx context.Context, conn connectiondao.Connection) error
	Get(ctx context.Context, connectionID string) (*connectiondao.Connection, error)
	Delete(ctx context.Context, connectionID string) error
}

// SubscriptionStore is the subscription registry surface the handler needs.
type SubscriptionStore interface {
	Put(ctx context.Context, sub subscriptiondao.Subscription) error
	Delete(ctx context.Context, connectionID, topic string) error
	DeleteByConnection(ctx context.Context, connectionID string) error
}

// ReadAuthorizer reports whether a principal may read a wishlist. Returns
// ErrNotFound if the wishlist does not exist and ErrForbidden if the
// principal is neither owner nor invited. Consulted once, at subscribe time.
type ReadAuthorizer interface {
	AuthorizeRead(ctx context.Context, wishlistID, principal string) error
}

// TokenVerifier validates a bearer token and returns the principal it was
// issued to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Handler handles API Gateway WebSocket events for the wishlist
// subscription protocol.
type Handler struct {
	Connections ConnectionStore
	Subs        SubscriptionStore
	Authorizer  ReadAuthorizer
	Tokens      TokenVerifier
	Sender      Sender
	Logger      zerolog.Logger
	ConnTTL     time.Duration // TTL for connection records (default 2 hours)
}

// HandleEvent routes an API Gateway WebSocket event to the appropriate handler.
func (h *Handler) HandleEvent(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := h.Logger.With().
		Str("connection_id", req.RequestContext.ConnectionID).
		Str("route", req.RequestContext.RouteKey).
		Logger()

	switch req.RequestContext.RouteKey {
	case "$connect":
		return h.handleConnect(ctx, logger, req)
	case "$disconnect":
		return h.handleDisconnect(ctx, logger, req)
	case "$default":
		return h.handleMessage(ctx, logger, req)
	default:
		logger.Warn().Str("route", req.RequestContext.RouteKey).Msg("unknown route")
		return events.APIGatewayProxyResponse{StatusCode: 400}, nil
	}
}

func (h *Handler) handleConnect(ctx context.Context, logger zerolog.Logger, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	token := req.QueryStringParameters["token"]
	if token == "" {
		logger.Warn().Msg("missing token on connect")
		return events.APIGatewayProxyResponse{StatusCode: 401}, nil
	}

	principal, err := h.Tokens.Verify(token)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid token on connect")
		return events.APIGatewayProxyResponse{StatusCode: 401}, nil
	}

	connID := req.RequestContext.ConnectionID
	endpoint := callbackEndpoint(req)

	ttl := h.ConnTTL
	if ttl == 0 {
		ttl = 2 * time.Hour
	}

	now := time.Now()
	conn := connectiondao.NewConnection(connID, principal, endpoint, now.Unix(), now.Add(ttl).Unix())
	if err := h.Connections.Put(ctx, conn); err != nil {
		logger.Error().Err(err).Msg("failed to store connection")
		return events.APIGatewayProxyResponse{StatusCode: 500}, nil
	}

	logger.Info().Str("principal", principal).Msg("connection established")
	return events.APIGatewayProxyResponse{StatusCode: 200}, nil
}

func (h *Handler) handleDisconnect(ctx context.Context, logger zerolog.Logger, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connID := req.RequestContext.ConnectionID

	if err := h.Subs.DeleteByConnection(ctx, connID); err != nil {
		logger.Error().Err(err).Msg("failed to delete subscriptions")
	}

	if err := h.Connections.Delete(ctx, connID); err != nil {
		logger.Error().Err(err).Msg("failed to delete connection")
	}

	logger.Info().Msg("connection closed")
	return events.APIGatewayProxyResponse{StatusCode: 200}, nil
}

func (h *Handler) handleMessage(ctx context.Context, logger zerolog.Logger, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	msg, err := ParseClientMessage(req.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid message")
		return events.APIGatewayProxyResponse{StatusCode: 400}, nil
	}

	connID := req.RequestContext.ConnectionID
	endpoint := callbackEndpoint(req)

	switch msg.Action {
	case ActionSubscribe:
		return h.handleSubscribe(ctx, logger, connID, endpoint, msg)
	case ActionUnsubscribe:
		return h.handleUnsubscribe(ctx, logger, connID, endpoint, msg)
	case ActionPing:
		if err := h.Sender.Send(ctx, endpoint, connID, PongMessage()); err != nil {
			logger.Error().Err(err).Msg("failed to send pong")
		}
		return events.APIGatewayProxyResponse{StatusCode: 200}, nil
	default:
		logger.Warn().Str("action", msg.Action).Msg("unhandled message action")
		return events.APIGatewayProxyResponse{StatusCode: 200}, nil
	}
}

func (h *Handler) handleSubscribe(ctx context.Context, logger zerolog.Logger, connID, endpoint string, msg *ClientMessage) (events.APIGatewayProxyResponse, error) {
	if msg.WishlistID == "" {
		h.reply(ctx, logger, endpoint, connID, ErrorMessage("missing wishlistId"))
		return events.APIGatewayProxyResponse{StatusCode: 400}, nil
	}

	conn, err := h.Connections.Get(ctx, connID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load connection")
		return events.APIGatewayProxyResponse{StatusCode: 500}, nil
	}
	if conn == nil {
		logger.Warn().Msg("subscribe from unregistered connection")
		return events.APIGatewayProxyResponse{StatusCode: 401}, nil
	}

	if err := h.Authorizer.AuthorizeRead(ctx, msg.WishlistID, conn.Principal); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			logger.Warn().Str("wishlist_id", msg.WishlistID).Msg("subscribe to unknown wishlist")
			h.reply(ctx, logger, endpoint, connID, ErrorMessage("wishlist not found"))
			return events.APIGatewayProxyResponse{StatusCode: 404}, nil
		case errors.Is(err, ErrForbidden):
			logger.Warn().
				Str("wishlist_id", msg.WishlistID).
				Str("principal", conn.Principal).
				Msg("subscribe denied")
			h.reply(ctx, logger, endpoint, connID, ErrorMessage("not authorized"))
			return events.APIGatewayProxyResponse{StatusCode: 403}, nil
		default:
			logger.Error().Err(err).Msg("authorization check failed")
			return events.APIGatewayProxyResponse{StatusCode: 500}, nil
		}
	}

	ttl := h.ConnTTL
	if ttl == 0 {
		ttl = 2 * time.Hour
	}

	now := time.Now()
	topic := WishlistTopic(msg.WishlistID)
	sub := subscriptiondao.NewSubscription(connID, topic, conn.Principal, endpoint, now.Unix(), now.Add(ttl).Unix())
	if err := h.Subs.Put(ctx, sub); err != nil {
		logger.Error().Err(err).Msg("failed to store subscription")
		h.reply(ctx, logger, endpoint, connID, ErrorMessage("internal error"))
		return events.APIGatewayProxyResponse{StatusCode: 500}, nil
	}

	logger.Info().
		Str("wishlist_id", msg.WishlistID).
		Str("topic", topic).
		Msg("subscription created")

	h.reply(ctx, logger, endpoint, connID, AckMessage("subscribed", msg.WishlistID))
	return events.APIGatewayProxyResponse{StatusCode: 200}, nil
}

func (h *Handler) handleUnsubscribe(ctx context.Context, logger zerolog.Logger, connID, endpoint string, msg *ClientMessage) (events.APIGatewayProxyResponse, error) {
	if msg.WishlistID == "" {
		h.reply(ctx, logger, endpoint, connID, ErrorMessage("missing wishlistId"))
		return events.APIGatewayProxyResponse{StatusCode: 400}, nil
	}

	topic := WishlistTopic(msg.WishlistID)
	if err := h.Subs.Delete(ctx, connID, topic); err != nil {
		logger.Error().Err(err).Str("topic", topic).Msg("failed to delete subscription")
		return events.APIGatewayProxyResponse{StatusCode: 500}, nil
	}

	logger.Info().Str("topic", topic).Msg("subscription removed")
	h.reply(ctx, logger, endpoint, connID, AckMessage("unsubscribed", msg.WishlistID))
	return events.APIGatewayProxyResponse{StatusCode: 200}, nil
}

func (h *Handler) reply(ctx context.Context, logger zerolog.Logger, endpoint, connID string, data []byte) {
	if err := h.Sender.Send(ctx, endpoint, connID, data); err != nil {
		logger.Error().Err(err).Msg("failed to send reply")
	}
}

func callbackEndpoint(req events.APIGatewayWebsocketProxyRequest) string {
	return fmt.Sprintf("https://%s/%s", req.RequestContext.DomainName, req.RequestContext.Stage)
}
