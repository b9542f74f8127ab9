package wishlistws

import (
	"context"
	"errors"
	"fmt"
	"time"

	wishlistcli "github.com/shared-wishlist/wishlist-backend/wishlist-cli"
	wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"
	"github.com/shared-wishlist/wishlist-backend/wishlist-ws/subscriptiondao"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/rs/zerolog"
	"github.com/savaki/ddb"
	"golang.org/x/sync/errgroup"
)

// SubscriptionSource is the registry surface the broadcaster needs: fan-out
// lookups plus the single pruning path for gone connections.
type SubscriptionSource interface {
	QueryByTopic(ctx context.Context, topic string) ([]subscriptiondao.Subscription, error)
	Delete(ctx context.Context, connectionID, topic string) error
}

// Broadcaster fans out table change records to websocket subscribers.
type Broadcaster struct {
	Subs        SubscriptionSource
	Sender      Sender
	Logger      zerolog.Logger
	Metrics     *wishlistcli.Metrics
	Concurrency int // max concurrent deliveries per record (default 50)
}

// HandleStreamEvent processes one batch of stream records in arrival order.
// A registry failure aborts the batch with an error so the stream redelivers
// it; every registry mutation is an idempotent upsert or delete, so
// reprocessing a record is safe. Delivery failures never fail the batch.
func (b *Broadcaster) HandleStreamEvent(ctx context.Context, event ddb.Event) error {
	for _, record := range event.Records {
		if err := b.processRecord(ctx, record); err != nil {
			b.Logger.Error().Err(err).
				Str("event_id", record.EventID).
				Msg("failed to process stream record")
			return fmt.Errorf("processing record %v: %w", record.EventID, err)
		}
	}
	return nil
}

func (b *Broadcaster) processRecord(ctx context.Context, record ddb.Record) error {
	pk, sk := recordKeys(record)
	topic, ok := ResolveTopic(pk, sk)
	if !ok {
		// Not a wishlist or product change; nothing to fan out.
		return nil
	}

	action, ok := changeAction(record.EventName)
	if !ok {
		b.Logger.Warn().Str("event_name", record.EventName).Msg("unrecognized stream event name, skipping")
		return nil
	}

	subs, err := b.Subs.QueryByTopic(ctx, topic)
	if err != nil {
		return fmt.Errorf("querying subscriptions for topic %v: %w", topic, err)
	}
	if len(subs) == 0 {
		return nil
	}

	wishlistID, _ := wishlistkeys.ParseWishlist(pk)
	msg, err := encodeRecord(action, wishlistID, record)
	if err != nil {
		b.Logger.Warn().Err(err).Str("topic", topic).Msg("unable to encode change, skipping")
		return nil
	}

	b.Logger.Debug().
		Str("topic", topic).
		Str("action", action).
		Int("subscribers", len(subs)).
		Msg("dispatching change")

	if b.Metrics != nil {
		b.Metrics.Gauge(ctx, wishlistcli.FanoutSizeMetric, float64(len(subs)))
		defer b.Metrics.Timing(ctx, wishlistcli.DispatchTimeMetric, time.Now())
	}

	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = 50
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			return b.deliver(ctx, sub, msg)
		})
	}

	return g.Wait()
}

// deliver sends the message to one subscriber. Only registry failures are
// returned; a transient delivery failure is logged and dropped (the next
// change on the topic reaches the connection if it is still viable), and a
// gone connection is pruned from the registry.
func (b *Broadcaster) deliver(ctx context.Context, sub subscriptiondao.Subscription, msg []byte) error {
	sendErr := b.Sender.Send(ctx, sub.Endpoint, sub.ConnectionID, msg)
	if sendErr == nil {
		return nil
	}

	if errors.Is(sendErr, ErrGone) {
		b.Logger.Info().
			Str("connection_id", sub.ConnectionID).
			Str("topic", sub.Topic).
			Msg("connection gone, pruning subscription")
		if b.Metrics != nil {
			b.Metrics.Event(ctx, wishlistcli.GoneConnectionCount)
		}
		if err := b.Subs.Delete(ctx, sub.ConnectionID, sub.Topic); err != nil {
			return fmt.Errorf("pruning subscription for gone connection %v: %w", sub.ConnectionID, err)
		}
		return nil
	}

	b.Logger.Warn().Err(sendErr).
		Str("connection_id", sub.ConnectionID).
		Str("topic", sub.Topic).
		Msg("transient delivery failure, dropping")
	return nil
}

func recordKeys(record ddb.Record) (pk, sk string) {
	image := record.Change.NewImage
	if len(image) == 0 {
		image = record.Change.OldImage
	}
	return stringAttr(image, "pk"), stringAttr(image, "sk")
}

func stringAttr(image map[string]*dynamodb.AttributeValue, name string) string {
	if av, ok := image[name]; ok && av != nil && av.S != nil {
		return *av.S
	}
	return ""
}

func changeAction(eventName string) (string, bool) {
	switch eventName {
	case "INSERT":
		return ChangeInsert, true
	case "MODIFY":
		return ChangeModify, true
	case "REMOVE":
		return ChangeRemove, true
	default:
		return "", false
	}
}

func encodeRecord(action, wishlistID string, record ddb.Record) ([]byte, error) {
	newImage, err := unmarshalImage(record.Change.NewImage)
	if err != nil {
		return nil, err
	}
	oldImage, err := unmarshalImage(record.Change.OldImage)
	if err != nil {
		return nil, err
	}
	return EncodeChangeMessage(action, wishlistID, ChangePayload{New: newImage, Old: oldImage})
}

func unmarshalImage(image map[string]*dynamodb.AttributeValue) (map[string]interface{}, error) {
	if len(image) == 0 {
		return nil, nil
	}
	var out map[string]interface{}
	if err := dynamodbattribute.UnmarshalMap(image, &out); err != nil {
		return nil, fmt.Errorf("unable to unmarshal change image: %w", err)
	}
	return out, nil
}
