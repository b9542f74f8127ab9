package wishlistws

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shared-wishlist/wishlist-backend/wishlist-ws/connectiondao"
	"github.com/shared-wishlist/wishlist-backend/wishlist-ws/subscriptiondao"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/rs/zerolog"
	"github.com/savaki/ddb"
	"github.com/tj/assert"
)

type fakeConnStore struct {
	mu    sync.Mutex
	conns map[string]connectiondao.Connection
}

func (f *fakeConnStore) Put(_ context.Context, conn connectiondao.Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conns == nil {
		f.conns = map[string]connectiondao.Connection{}
	}
	f.conns[conn.ConnectionID] = conn
	return nil
}

func (f *fakeConnStore) Get(_ context.Context, connectionID string) (*connectiondao.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conn, ok := f.conns[connectionID]; ok {
		return &conn, nil
	}
	return nil, nil
}

func (f *fakeConnStore) Delete(_ context.Context, connectionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.conns, connectionID)
	return nil
}

// fakeRegistry backs both the handler's subscription store and the
// broadcaster's fan-out lookups, keyed like the real table.
type fakeRegistry struct {
	mu   sync.Mutex
	subs map[string]subscriptiondao.Subscription // key: pk+"/"+sk
}

func (f *fakeRegistry) Put(_ context.Context, sub subscriptiondao.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = map[string]subscriptiondao.Subscription{}
	}
	f.subs[sub.PK+"/"+sub.SK] = sub
	return nil
}

func (f *fakeRegistry) Delete(_ context.Context, connectionID, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, sub := range f.subs {
		if sub.ConnectionID == connectionID && sub.Topic == topic {
			delete(f.subs, key)
		}
	}
	return nil
}

func (f *fakeRegistry) DeleteByConnection(_ context.Context, connectionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, sub := range f.subs {
		if sub.ConnectionID == connectionID {
			delete(f.subs, key)
		}
	}
	return nil
}

func (f *fakeRegistry) QueryByTopic(_ context.Context, topic string) ([]subscriptiondao.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []subscriptiondao.Subscription
	for _, sub := range f.subs {
		if sub.Topic == topic {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeRegistry) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type fakeAuthorizer struct {
	errs map[string]error // key: wishlistID+"/"+principal
}

func (f *fakeAuthorizer) AuthorizeRead(_ context.Context, wishlistID, principal string) error {
	if err, ok := f.errs[wishlistID+"/"+principal]; ok {
		return err
	}
	return nil
}

type fakeVerifier struct {
	principals map[string]string // token -> principal
}

func (f *fakeVerifier) Verify(token string) (string, error) {
	if principal, ok := f.principals[token]; ok {
		return principal, nil
	}
	return "", errors.New("invalid token")
}

func wsRequest(route, connectionID, body string, query map[string]string) events.APIGatewayWebsocketProxyRequest {
	req := events.APIGatewayWebsocketProxyRequest{
		Body:                  body,
		QueryStringParameters: query,
	}
	req.RequestContext.RouteKey = route
	req.RequestContext.ConnectionID = connectionID
	req.RequestContext.DomainName = "ws.example.com"
	req.RequestContext.Stage = "dev"
	return req
}

func newTestHandler(conns *fakeConnStore, registry *fakeRegistry, authz *fakeAuthorizer, sender *fakeSender) *Handler {
	return &Handler{
		Connections: conns,
		Subs:        registry,
		Authorizer:  authz,
		Tokens:      &fakeVerifier{principals: map[string]string{"alice-token": "alice@example.com", "bob-token": "bob@example.com"}},
		Sender:      sender,
		Logger:      zerolog.Nop(),
	}
}

func TestHandlerConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("missing token is rejected", func(t *testing.T) {
		h := newTestHandler(&fakeConnStore{}, &fakeRegistry{}, &fakeAuthorizer{}, &fakeSender{})
		resp, err := h.HandleEvent(ctx, wsRequest("$connect", "conn-1", "", nil))
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		h := newTestHandler(&fakeConnStore{}, &fakeRegistry{}, &fakeAuthorizer{}, &fakeSender{})
		resp, err := h.HandleEvent(ctx, wsRequest("$connect", "conn-1", "", map[string]string{"token": "bogus"}))
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("valid token registers the connection", func(t *testing.T) {
		conns := &fakeConnStore{}
		h := newTestHandler(conns, &fakeRegistry{}, &fakeAuthorizer{}, &fakeSender{})
		resp, err := h.HandleEvent(ctx, wsRequest("$connect", "conn-1", "", map[string]string{"token": "alice-token"}))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		conn, err := conns.Get(ctx, "conn-1")
		assert.NoError(t, err)
		assert.NotNil(t, conn)
		assert.Equal(t, "alice@example.com", conn.Principal)
		assert.Equal(t, "https://ws.example.com/dev", conn.Endpoint)
	})
}

func TestHandlerSubscribe(t *testing.T) {
	ctx := context.Background()

	connect := func(t *testing.T, h *Handler, connID, token string) {
		resp, err := h.HandleEvent(ctx, wsRequest("$connect", connID, "", map[string]string{"token": token}))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}

	t.Run("unknown wishlist yields 404 and no registration", func(t *testing.T) {
		registry := &fakeRegistry{}
		authz := &fakeAuthorizer{errs: map[string]error{"ghost/alice@example.com": ErrNotFound}}
		h := newTestHandler(&fakeConnStore{}, registry, authz, &fakeSender{})
		connect(t, h, "conn-1", "alice-token")

		resp, err := h.HandleEvent(ctx, wsRequest("$default", "conn-1", `{"action":"subscribe","wishlistId":"ghost"}`, nil))
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, 0, registry.size())
	})

	t.Run("forbidden wishlist yields 403 and no registration", func(t *testing.T) {
		registry := &fakeRegistry{}
		authz := &fakeAuthorizer{errs: map[string]error{"private/alice@example.com": ErrForbidden}}
		h := newTestHandler(&fakeConnStore{}, registry, authz, &fakeSender{})
		connect(t, h, "conn-1", "alice-token")

		resp, err := h.HandleEvent(ctx, wsRequest("$default", "conn-1", `{"action":"subscribe","wishlistId":"private"}`, nil))
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode)
		assert.Equal(t, 0, registry.size())
	})

	t.Run("subscribe twice leaves one record", func(t *testing.T) {
		registry := &fakeRegistry{}
		h := newTestHandler(&fakeConnStore{}, registry, &fakeAuthorizer{}, &fakeSender{})
		connect(t, h, "conn-1", "alice-token")

		for i := 0; i < 2; i++ {
			resp, err := h.HandleEvent(ctx, wsRequest("$default", "conn-1", `{"action":"subscribe","wishlistId":"abc"}`, nil))
			assert.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		}
		assert.Equal(t, 1, registry.size())
	})

	t.Run("subscribe from unregistered connection yields 401", func(t *testing.T) {
		registry := &fakeRegistry{}
		h := newTestHandler(&fakeConnStore{}, registry, &fakeAuthorizer{}, &fakeSender{})

		resp, err := h.HandleEvent(ctx, wsRequest("$default", "conn-unknown", `{"action":"subscribe","wishlistId":"abc"}`, nil))
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, 0, registry.size())
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		registry := &fakeRegistry{}
		h := newTestHandler(&fakeConnStore{}, registry, &fakeAuthorizer{}, &fakeSender{})
		connect(t, h, "conn-1", "alice-token")

		resp, err := h.HandleEvent(ctx, wsRequest("$default", "conn-1", `{"action":"unsubscribe","wishlistId":"abc"}`, nil))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("disconnect removes connection and subscriptions", func(t *testing.T) {
		conns := &fakeConnStore{}
		registry := &fakeRegistry{}
		h := newTestHandler(conns, registry, &fakeAuthorizer{}, &fakeSender{})
		connect(t, h, "conn-1", "alice-token")

		for _, id := range []string{"abc", "def"} {
			_, err := h.HandleEvent(ctx, wsRequest("$default", "conn-1", `{"action":"subscribe","wishlistId":"`+id+`"}`, nil))
			assert.NoError(t, err)
		}
		assert.Equal(t, 2, registry.size())

		resp, err := h.HandleEvent(ctx, wsRequest("$disconnect", "conn-1", "", nil))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 0, registry.size())

		conn, err := conns.Get(ctx, "conn-1")
		assert.NoError(t, err)
		assert.Nil(t, conn)
	})

	t.Run("ping answers pong", func(t *testing.T) {
		sender := &fakeSender{}
		h := newTestHandler(&fakeConnStore{}, &fakeRegistry{}, &fakeAuthorizer{}, sender)

		resp, err := h.HandleEvent(ctx, wsRequest("$default", "conn-1", `{"action":"ping"}`, nil))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 1, sender.sentTo("conn-1"))
	})
}

// Two users share a wishlist; a change reaches both subscribers and nobody
// else, exercising the handler and broadcaster against the same registry.
func TestSubscribeAndBroadcast(t *testing.T) {
	ctx := context.Background()

	registry := &fakeRegistry{}
	sender := &fakeSender{}
	h := newTestHandler(&fakeConnStore{}, registry, &fakeAuthorizer{}, sender)

	_, err := h.HandleEvent(ctx, wsRequest("$connect", "conn-alice", "", map[string]string{"token": "alice-token"}))
	assert.NoError(t, err)
	_, err = h.HandleEvent(ctx, wsRequest("$connect", "conn-bob", "", map[string]string{"token": "bob-token"}))
	assert.NoError(t, err)

	_, err = h.HandleEvent(ctx, wsRequest("$default", "conn-alice", `{"action":"subscribe","wishlistId":"abc"}`, nil))
	assert.NoError(t, err)
	_, err = h.HandleEvent(ctx, wsRequest("$default", "conn-bob", `{"action":"subscribe","wishlistId":"abc"}`, nil))
	assert.NoError(t, err)
	_, err = h.HandleEvent(ctx, wsRequest("$default", "conn-bob", `{"action":"subscribe","wishlistId":"bob-only"}`, nil))
	assert.NoError(t, err)

	sender.mu.Lock()
	sender.sent = nil // drop the subscribe acks
	sender.mu.Unlock()

	b := &Broadcaster{Subs: registry, Sender: sender, Logger: zerolog.Nop()}
	record := ddb.Record{
		EventID:   "evt-1",
		EventName: "INSERT",
		Change: ddb.Change{
			NewImage: map[string]*dynamodb.AttributeValue{
				"pk":   {S: aws.String("WISHLIST#abc")},
				"sk":   {S: aws.String("PRODUCT#p1")},
				"name": {S: aws.String("socks")},
			},
		},
	}
	assert.NoError(t, b.HandleStreamEvent(ctx, ddb.Event{Records: []ddb.Record{record}}))

	assert.Equal(t, 1, sender.sentTo("conn-alice"))
	assert.Equal(t, 1, sender.sentTo("conn-bob"))

	// bob's other subscription saw nothing for this topic
	bobOnly, err := registry.QueryByTopic(ctx, WishlistTopic("bob-only"))
	assert.NoError(t, err)
	assert.Len(t, bobOnly, 1)
}
