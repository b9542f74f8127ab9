package wishlistws

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi/apigatewaymanagementapiiface"
)

// Sender pushes a payload to one connection. A returned error wrapping
// ErrGone means the connection permanently no longer exists; any other
// error is transient.
type Sender interface {
	Send(ctx context.Context, endpoint, connectionID string, data []byte) error
}

// APIGatewaySender delivers payloads through the API Gateway Management
// API, caching one client per callback endpoint.
type APIGatewaySender struct {
	Timeout time.Duration // per-send deadline (default 10s)

	mu      sync.RWMutex
	clients map[string]apigatewaymanagementapiiface.ApiGatewayManagementApiAPI
}

func NewSender(timeout time.Duration) *APIGatewaySender {
	return &APIGatewaySender{Timeout: timeout}
}

func (s *APIGatewaySender) Send(ctx context.Context, endpoint, connectionID string, data []byte) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := s.getManagementClient(endpoint)
	_, err := client.PostToConnectionWithContext(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         data,
	})
	if err != nil {
		if isGoneException(err) {
			return fmt.Errorf("posting to connection %v: %w", connectionID, ErrGone)
		}
		return fmt.Errorf("posting to connection %v: %w", connectionID, err)
	}
	return nil
}

func (s *APIGatewaySender) getManagementClient(endpoint string) apigatewaymanagementapiiface.ApiGatewayManagementApiAPI {
	s.mu.RLock()
	if client, ok := s.clients[endpoint]; ok {
		s.mu.RUnlock()
		return client
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if client, ok := s.clients[endpoint]; ok {
		return client
	}

	if s.clients == nil {
		s.clients = make(map[string]apigatewaymanagementapiiface.ApiGatewayManagementApiAPI)
	}

	sess := session.Must(session.NewSession(aws.NewConfig().WithEndpoint(endpoint)))
	client := apigatewaymanagementapi.New(sess)
	s.clients[endpoint] = client
	return client
}

// isGoneException checks if the error is a GoneException (HTTP 410),
// indicating the WebSocket connection no longer exists.
func isGoneException(err error) bool {
	return strings.Contains(err.Error(), "GoneException") ||
		strings.Contains(err.Error(), "410")
}
