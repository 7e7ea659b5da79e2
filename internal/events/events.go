// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

// Package events carries upstream change notifications from webhook handlers
// to the cache layer over an in-process Watermill pub/sub.
//
// Delivery is at-least-once within the process. Nothing is persisted; events
// published while no router is running are dropped.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/adpulse/internal/logging"
)

// TopicPlatformUpdated announces that one upstream platform has new data.
const TopicPlatformUpdated = "platform.updated"

// PlatformUpdated is the payload of TopicPlatformUpdated.
type PlatformUpdated struct {
	Platform   string    `json:"platform"`
	TenantID   string    `json:"tenantId,omitempty"`
	Event      string    `json:"event"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Config holds bus and router settings.
type Config struct {
	// BufferSize is the output channel buffer per subscriber.
	BufferSize int64

	// RetryCount and RetryInitialInterval drive the router retry middleware.
	RetryCount           int
	RetryInitialInterval time.Duration

	// CloseTimeout bounds how long Close waits for in-flight handlers.
	CloseTimeout time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:           256,
		RetryCount:           3,
		RetryInitialInterval: 100 * time.Millisecond,
		CloseTimeout:         10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.RetryCount < 0 {
		c.RetryCount = 0
	}
	if c.RetryInitialInterval <= 0 {
		c.RetryInitialInterval = d.RetryInitialInterval
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = d.CloseTimeout
	}
	return c
}

// Bus is the in-process publisher and subscriber.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
	cfg    Config
}

// NewBus creates an in-process bus.
func NewBus(cfg Config) *Bus {
	cfg = cfg.withDefaults()
	logger := watermill.NewSlogLogger(logging.NewSlogLogger())
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.BufferSize,
		}, logger),
		logger: logger,
		cfg:    cfg,
	}
}

// Publisher returns the underlying publisher.
func (b *Bus) Publisher() message.Publisher {
	return b.pubsub
}

// Subscriber returns the underlying subscriber.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// PublishPlatformUpdated publishes one change notification.
func (b *Bus) PublishPlatformUpdated(ctx context.Context, evt PlatformUpdated) error {
	if evt.ReceivedAt.IsZero() {
		evt.ReceivedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", TopicPlatformUpdated, err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}

	if err := b.pubsub.Publish(TopicPlatformUpdated, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicPlatformUpdated, err)
	}
	return nil
}

// Close closes the pub/sub. Subscribers stop receiving.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
