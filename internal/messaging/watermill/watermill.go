// Package watermill adapts Watermill publishers and subscribers to the
// messaging interfaces. The in-memory GoChannel backend serves single
// process deployments and tests; the Kafka backend uses Sarama.
package watermill

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	wm "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/egannguyen/sales-orders/internal/messaging"
)

const keyMetadata = "partition_key"

// Broker wraps a Watermill publisher and subscriber pair.
type Broker struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	closers    []func() error
}

var (
	_ messaging.Publisher  = (*Broker)(nil)
	_ messaging.Subscriber = (*Broker)(nil)
)

// NewInMemoryBroker returns a broker backed by a GoChannel pub/sub.
func NewInMemoryBroker(logger *slog.Logger) *Broker {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, wm.NewSlogLogger(logger))
	return &Broker{
		publisher:  pubSub,
		subscriber: pubSub,
		closers:    []func() error{pubSub.Close},
	}
}

// NewKafkaBroker returns a broker backed by watermill-kafka. Messages are
// partitioned by the event key. consumerGroup applies to every subscription.
func NewKafkaBroker(brokers []string, consumerGroup string, logger *slog.Logger) (*Broker, error) {
	wmLogger := wm.NewSlogLogger(logger)
	marshaler := kafka.NewWithPartitioningMarshaler(func(_ string, msg *message.Message) (string, error) {
		return msg.Metadata.Get(keyMetadata), nil
	})

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: marshaler,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           marshaler,
		OverwriteSaramaConfig: saramaConfig,
		ConsumerGroup:         consumerGroup,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	return &Broker{
		publisher:  publisher,
		subscriber: subscriber,
		closers:    []func() error{subscriber.Close, publisher.Close},
	}, nil
}

func (b *Broker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(keyMetadata, key)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Consume hands each message to handler. Handler errors are logged and the
// message is acked, as with the kafka-go consumer. The group id is fixed
// when the broker is built.
func (b *Broker) Consume(ctx context.Context, topic string, _ string, handler func(ctx context.Context, payload []byte) error) {
	messages, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		slog.Error("Failed to subscribe", "topic", topic, "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Consumer shutting down", "topic", topic)
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := handler(ctx, msg.Payload); err != nil {
				slog.Error("Error handling message", "topic", topic, "message_uuid", msg.UUID, "err", err)
			}
			msg.Ack()
		}
	}
}

// Close shuts down the underlying pub/sub.
func (b *Broker) Close() error {
	var firstErr error
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
