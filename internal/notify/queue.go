package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type QueueNotifier struct {
	client *redis.Client
	stream string
}

func NewQueueNotifier(client *redis.Client, stream string) *QueueNotifier {
	return &QueueNotifier{client: client, stream: stream}
}

func (q *QueueNotifier) Notify(ctx context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: 100000,
		Approx: true,
		Values: n.Values(),
	}).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", n.Kind, err)
	}
	return nil
}
