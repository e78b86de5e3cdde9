// Package common defines shared primitive types used across layer boundaries:
// identifier aliases, messaging envelopes, and pagination carriers.  It must
// not import any other platform package.
package common

import (
	"context"
	"time"
)

// ID is the canonical entity identifier (UUID string).
type ID string

// String returns the identifier's literal value.
func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return id == "" }

// ─────────────────────────────────────────────────────────────────────────────
// Messaging
// ─────────────────────────────────────────────────────────────────────────────

// Message is a consumed queue message, decoupled from the broker library so
// handlers do not import kafka-go directly.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
	Headers   map[string]string
}

// ProducerMessage is an outbound queue message.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one consumed message.  Returning a non-nil error
// triggers the consumer's retry policy and, once exhausted, dead-lettering.
type MessageHandler func(ctx context.Context, msg *Message) error

// TopicConfig describes a topic to be ensured at startup.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
	MaxMessageBytes   int
	Configs           map[string]string
}

// ─────────────────────────────────────────────────────────────────────────────
// Pagination
// ─────────────────────────────────────────────────────────────────────────────

// Page carries offset pagination parameters.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}
