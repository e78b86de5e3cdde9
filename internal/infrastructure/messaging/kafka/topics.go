// Package kafka provides the broker plumbing for the classification
// pipeline: a producer for lifecycle events, a consumer with retry and
// dead-lettering, and startup topic provisioning.
package kafka

import (
	"context"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/ravi-ivar-7/hilabs/internal/config"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
	"github.com/ravi-ivar-7/hilabs/pkg/types/common"
)

// Pipeline topics.  Requested drives the worker; Completed feeds downstream
// consumers; the DLQ receives messages that exhausted their retries.
const (
	TopicClassificationRequested = "contract.classification.requested"
	TopicClassificationCompleted = "contract.classification.completed"
	TopicClassificationDLQ       = "contract.classification.dlq"
)

// PipelineTopics returns the topic set the platform provisions at startup.
func PipelineTopics(cfg config.KafkaConfig) []common.TopicConfig {
	partitions := cfg.NumPartitions
	if partitions < 1 {
		partitions = 3
	}
	replication := cfg.ReplicationFactor
	if replication < 1 {
		replication = 1
	}
	topics := make([]common.TopicConfig, 0, 3)
	for _, name := range []string{
		TopicClassificationRequested,
		TopicClassificationCompleted,
		TopicClassificationDLQ,
	} {
		topics = append(topics, common.TopicConfig{
			Name:              name,
			NumPartitions:     partitions,
			ReplicationFactor: replication,
		})
	}
	return topics
}

// EnsureTopics creates any missing pipeline topics.  Existing topics are left
// untouched; Kafka reports already-existing topics as a per-topic error which
// is tolerated.
func EnsureTopics(ctx context.Context, cfg config.KafkaConfig, log logging.Logger) error {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("kafka_topics")

	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to dial kafka broker").
			WithDetail(cfg.Brokers[0])
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to resolve kafka controller")
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp",
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to dial kafka controller")
	}
	defer controllerConn.Close()

	var specs []kafka.TopicConfig
	for _, t := range PipelineTopics(cfg) {
		specs = append(specs, kafka.TopicConfig{
			Topic:             t.Name,
			NumPartitions:     t.NumPartitions,
			ReplicationFactor: t.ReplicationFactor,
		})
	}
	if err := controllerConn.CreateTopics(specs...); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create kafka topics")
	}

	log.Info("pipeline topics ensured", logging.Int("count", len(specs)))
	return nil
}
