// Package redis 基于 Redis Pub/Sub 的事件总线实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"leavedesk/internal/shared/eventbus"
)

// channel 事件广播使用的 Pub/Sub 频道
const channel = "leavedesk:events"

// Bus Redis Pub/Sub 事件总线
type Bus struct {
	client *redis.Client
}

// NewBus 创建 Redis 事件总线
func NewBus(url string) (*Bus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("eventbus: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("eventbus: ping failed: %w", err)
	}

	return &Bus{client: client}, nil
}

func (b *Bus) Publish(ctx context.Context, event *eventbus.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventbus: marshal event: %w", err)
	}
	return b.client.Publish(ctx, channel, data).Err()
}

func (b *Bus) Subscribe(ctx context.Context) (<-chan *eventbus.Event, func(), error) {
	sub := b.client.Subscribe(ctx, channel)
	// 确认订阅建立
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("eventbus: subscribe failed: %w", err)
	}

	out := make(chan *eventbus.Event, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			event := &eventbus.Event{}
			if err := json.Unmarshal([]byte(msg.Payload), event); err != nil {
				log.Printf("[eventbus] drop malformed event: %v", err)
				continue
			}
			select {
			case out <- event:
			default: // 慢消费者，丢弃
			}
		}
	}()

	cancel := func() { sub.Close() }
	return out, cancel, nil
}

func (b *Bus) Close() error {
	return b.client.Close()
}

var _ eventbus.Bus = (*Bus)(nil)
