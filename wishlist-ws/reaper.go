package wishlistws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/rs/zerolog"
)

// Reaper sweeps connection and subscription records whose TTL has lapsed.
// DynamoDB's own TTL deletion can lag by hours; the sweep keeps the fan-out
// set tight so stale connections stop costing delivery attempts.
type Reaper struct {
	API       dynamodbiface.DynamoDBAPI
	TableName string
	Grace     time.Duration // slack past the record TTL before sweeping (default 1h)
	Logger    zerolog.Logger
}

func (r *Reaper) Run(ctx context.Context) error {
	grace := r.Grace
	if grace <= 0 {
		grace = time.Hour
	}
	cutoff := time.Now().Add(-grace).Unix()

	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.TableName),
		FilterExpression: aws.String("(begins_with(pk, :conn) or begins_with(pk, :sub)) and #ttl < :cutoff"),
		ExpressionAttributeNames: map[string]*string{
			"#ttl": aws.String("ttl"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":conn":   {S: aws.String("CONNECTION#")},
			":sub":    {S: aws.String("SUBSCRIPTION#")},
			":cutoff": {N: aws.String(fmt.Sprintf("%d", cutoff))},
		},
		ProjectionExpression: aws.String("pk, sk"),
	}

	var keys []map[string]*dynamodb.AttributeValue
	err := r.API.ScanPagesWithContext(ctx, input, func(page *dynamodb.ScanOutput, _ bool) bool {
		for _, item := range page.Items {
			keys = append(keys, map[string]*dynamodb.AttributeValue{
				"pk": item["pk"],
				"sk": item["sk"],
			})
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("scanning for expired records: %w", err)
	}

	if len(keys) == 0 {
		r.Logger.Info().Msg("no expired records to sweep")
		return nil
	}

	if err := r.batchDelete(ctx, keys); err != nil {
		return err
	}

	r.Logger.Info().Int("swept", len(keys)).Msg("swept expired records")
	return nil
}

func (r *Reaper) batchDelete(ctx context.Context, keys []map[string]*dynamodb.AttributeValue) error {
	const batchSize = 25
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[i:end]

		writeRequests := make([]*dynamodb.WriteRequest, len(chunk))
		for j, key := range chunk {
			writeRequests[j] = &dynamodb.WriteRequest{
				DeleteRequest: &dynamodb.DeleteRequest{Key: key},
			}
		}

		unprocessed := map[string][]*dynamodb.WriteRequest{
			r.TableName: writeRequests,
		}

		const maxRetries = 5
		for attempt := 0; attempt < maxRetries; attempt++ {
			output, err := r.API.BatchWriteItemWithContext(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: unprocessed,
			})
			if err != nil {
				return fmt.Errorf("batch deleting expired records: %w", err)
			}
			if len(output.UnprocessedItems) == 0 {
				break
			}
			unprocessed = output.UnprocessedItems
			if attempt < maxRetries-1 {
				backoff := time.Duration(1<<attempt) * 100 * time.Millisecond
				timer := time.NewTimer(backoff)
				select {
				case <-ctx.Done():
					timer.Stop()
					return fmt.Errorf("context cancelled during sweep retry: %w", ctx.Err())
				case <-timer.C:
				}
			} else {
				return fmt.Errorf("failed to sweep all expired records: %d unprocessed after %d retries", len(unprocessed[r.TableName]), maxRetries)
			}
		}
	}
	return nil
}
