package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ravi-ivar-7/hilabs/internal/config"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
	"github.com/ravi-ivar-7/hilabs/pkg/types/common"
)

// ErrAlreadyRunning is returned by Start when the consumer loop is active.
var ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RetryPolicy bounds handler retries before a message is dead-lettered.
type RetryPolicy struct {
	MaxRetries      int
	Backoff         time.Duration
	MaxBackoff      time.Duration
	DeadLetterTopic string
}

// Consumer pulls messages from the classification topics and dispatches them
// to per-topic handlers.  A handler error triggers bounded retries with
// exponential backoff; exhausted messages go to the dead-letter topic and the
// offset is committed either way, so one poison message can never stall the
// partition.
type Consumer struct {
	reader ReaderInterface
	dlq    *Producer
	policy RetryPolicy
	log    logging.Logger

	mu       sync.RWMutex
	handlers map[string]common.MessageHandler

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	processed    atomic.Int64
	deadLettered atomic.Int64
}

// NewConsumer builds a consumer group reader over the pipeline topics.
func NewConsumer(cfg config.KafkaConfig, worker config.WorkerConfig, dlq *Producer, log logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka group id required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	startOffset := kafka.FirstOffset
	if cfg.AutoOffsetReset == "latest" {
		startOffset = kafka.LastOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: []string{TopicClassificationRequested},
		StartOffset: startOffset,
		MinBytes:    1,
		MaxBytes:    10 * 1024 * 1024,
	})

	policy := RetryPolicy{
		MaxRetries:      worker.MaxRetries,
		Backoff:         worker.RetryBackoff,
		DeadLetterTopic: TopicClassificationDLQ,
	}
	return newConsumer(reader, dlq, policy, log), nil
}

// NewConsumerWithReader injects a reader and policy, used by tests.
func NewConsumerWithReader(reader ReaderInterface, dlq *Producer, policy RetryPolicy, log logging.Logger) *Consumer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return newConsumer(reader, dlq, policy, log)
}

func newConsumer(reader ReaderInterface, dlq *Producer, policy RetryPolicy, log logging.Logger) *Consumer {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.Backoff <= 0 {
		policy.Backoff = time.Second
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = 30 * time.Second
	}
	return &Consumer{
		reader:   reader,
		dlq:      dlq,
		policy:   policy,
		log:      log.Named("consumer"),
		handlers: make(map[string]common.MessageHandler),
	}
}

// Subscribe registers the handler for a topic.
func (c *Consumer) Subscribe(topic string, handler common.MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
}

// Start launches the consume loop.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)
	c.log.Info("kafka consumer started")
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("fetch failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		msg := fromKafkaMessage(m)

		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()
		if !ok {
			c.log.Warn("no handler for topic", logging.String("topic", m.Topic))
			_ = c.reader.CommitMessages(ctx, m)
			continue
		}

		c.handleWithRetry(ctx, msg, handler)
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.log.Error("commit failed", logging.Err(err))
		}
	}
}

// handleWithRetry runs the handler with the retry policy and dead-letters on
// exhaustion.
func (c *Consumer) handleWithRetry(ctx context.Context, msg *common.Message, handler common.MessageHandler) {
	err := handler(ctx, msg)
	if err == nil {
		c.processed.Add(1)
		return
	}

	backoff := c.policy.Backoff
	for i := 0; i < c.policy.MaxRetries; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if err = handler(ctx, msg); err == nil {
			c.processed.Add(1)
			return
		}
		backoff *= 2
		if backoff > c.policy.MaxBackoff {
			backoff = c.policy.MaxBackoff
		}
	}

	c.log.Error("handler exhausted retries",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(err),
	)
	c.deadLetter(ctx, msg, err)
}

func (c *Consumer) deadLetter(ctx context.Context, msg *common.Message, cause error) {
	if c.dlq == nil || c.policy.DeadLetterTopic == "" {
		return
	}
	headers := map[string]string{
		"original_topic": msg.Topic,
		"error":          cause.Error(),
	}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	dl := &common.ProducerMessage{
		Topic:   c.policy.DeadLetterTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if err := c.dlq.Publish(ctx, dl); err != nil {
		c.log.Error("dead-letter publish failed", logging.Err(err))
		return
	}
	c.deadLettered.Add(1)
}

// Processed returns the count of successfully handled messages.
func (c *Consumer) Processed() int64 { return c.processed.Load() }

// DeadLettered returns the count of dead-lettered messages.
func (c *Consumer) DeadLettered() int64 { return c.deadLettered.Load() }

// Close stops the loop and closes the reader.  Idempotent.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	err := c.reader.Close()
	c.log.Info("kafka consumer closed", logging.Int64("processed", c.processed.Load()))
	return err
}

func fromKafkaMessage(m kafka.Message) *common.Message {
	msg := &common.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
