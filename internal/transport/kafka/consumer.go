package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"shipping-carrier-service/internal/logx"
)

const retryPause = time.Second

// HandleFunc processes one tracking event.
type HandleFunc func(context.Context, TrackingEvent) error

var newConsumerGroup = sarama.NewConsumerGroup

// Consumer wraps a sarama consumer group and dispatches tracking events to a handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler HandleFunc
	logger  logx.Logger
}

// NewConsumer creates a consumer. It returns nil, nil when Kafka is not configured.
func NewConsumer(logger logx.Logger, brokers []string, groupID, topic string, h HandleFunc) (*Consumer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logx.Nop()
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := newConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		handler: h,
		logger:  logger,
	}, nil
}

// Run consumes until ctx is done. Session errors are logged and the group rejoins.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	go c.drainErrors(ctx)

	h := &groupHandler{c: c}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("kafka consume error", logx.String("topic", c.topic), logx.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryPause):
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) drainErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-c.group.Errors():
			if !ok {
				return
			}
			c.logger.Warn("kafka group error", logx.Err(err))
		}
	}
}

// Close leaves the group.
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks a message once it is applied or found permanently broken. Any other
// handler error ends the session unmarked so the message is redelivered.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log := h.c.logger
	for msg := range claim.Messages() {
		var dto TrackingEventDTO
		if err := json.Unmarshal(msg.Value, &dto); err != nil {
			log.Warn("kafka bad json",
				logx.Event("tracking_event_dropped"),
				logx.Int64("offset", msg.Offset),
				logx.Err(err),
			)
			sess.MarkMessage(msg, "")
			continue
		}

		ev, err := ToDomain(dto)
		if err == nil {
			err = h.c.handler(sess.Context(), ev)
		}

		var perm PermanentError
		switch {
		case err == nil:
		case errors.As(err, &perm):
			log.Warn("kafka invalid tracking event",
				logx.Event("tracking_event_dropped"),
				logx.String("tracking_number", dto.TrackingNumber),
				logx.Int64("offset", msg.Offset),
				logx.Err(err),
			)
		default:
			log.Error("kafka handle failed, will retry",
				logx.String("tracking_number", ev.Number),
				logx.Int64("offset", msg.Offset),
				logx.Err(err),
			)
			return err
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
