// Package contract is the application layer: it orchestrates upload, queueing
// and the worker-side classification run across the domain and infrastructure
// packages.
package contract

import (
	"context"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/ravi-ivar-7/hilabs/internal/domain/classification"
	"github.com/ravi-ivar-7/hilabs/internal/domain/clause"
	domain "github.com/ravi-ivar-7/hilabs/internal/domain/contract"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/messaging/kafka"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
	"github.com/ravi-ivar-7/hilabs/pkg/types/common"
)

// ObjectStore is the document storage port, satisfied by the MinIO client.
type ObjectStore interface {
	Upload(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)
}

// EventPublisher is the broker port, satisfied by the Kafka producer.
type EventPublisher interface {
	Publish(ctx context.Context, msg *common.ProducerMessage) error
}

// maxDocumentBytes bounds how much contract text the worker will read.
const maxDocumentBytes = 16 << 20

// Service drives the contract lifecycle.
type Service struct {
	contracts  domain.Repository
	decisions  domain.DecisionRepository
	store      ObjectStore
	publisher  EventPublisher
	classifier *classification.Classifier

	maxClauseLen int
	log          logging.Logger
	now          func() time.Time
}

// NewService wires the application service.
func NewService(
	contracts domain.Repository,
	decisions domain.DecisionRepository,
	store ObjectStore,
	publisher EventPublisher,
	classifier *classification.Classifier,
	maxClauseLen int,
	log logging.Logger,
) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if maxClauseLen <= 0 {
		maxClauseLen = 5000
	}
	return &Service{
		contracts:    contracts,
		decisions:    decisions,
		store:        store,
		publisher:    publisher,
		classifier:   classifier,
		maxClauseLen: maxClauseLen,
		log:          log.Named("contract_service"),
		now:          time.Now,
	}
}

// UploadRequest carries one incoming contract document.
type UploadRequest struct {
	FileName     string
	Jurisdiction string
	Content      io.Reader
	Size         int64
	ContentType  string
}

// Upload stores the document, registers the contract, and queues it for
// classification.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*domain.Contract, error) {
	if req.FileName == "" {
		return nil, errors.New(errors.ErrCodeValidation, "file name required")
	}
	j, ok := template.ParseJurisdiction(req.Jurisdiction)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeJurisdictionUnsupported,
			"jurisdiction %q is not supported", req.Jurisdiction)
	}

	now := s.now().UTC()
	c := &domain.Contract{
		ID:           common.ID(uuid.NewString()),
		FileName:     req.FileName,
		Jurisdiction: j,
		ObjectKey:    path.Join("contracts", uuid.NewString(), req.FileName),
		Status:       domain.StatusUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Upload(ctx, c.ObjectKey, req.Content, req.Size, req.ContentType); err != nil {
		return nil, err
	}
	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, err
	}

	if err := s.queue(ctx, c); err != nil {
		// The contract row exists; record the failure instead of losing it.
		_ = s.contracts.UpdateStatus(ctx, c.ID, domain.StatusFailed, err.Error())
		c.Status = domain.StatusFailed
		c.FailureReason = err.Error()
		return c, err
	}

	s.log.Info("contract queued",
		logging.String("contract_id", c.ID.String()),
		logging.String("jurisdiction", string(j)),
		logging.String("file_name", c.FileName),
	)
	return c, nil
}

// queue transitions the contract to queued and publishes the request event.
func (s *Service) queue(ctx context.Context, c *domain.Contract) error {
	if err := c.Transition(domain.StatusQueued, s.now().UTC()); err != nil {
		return err
	}
	if err := s.contracts.UpdateStatus(ctx, c.ID, domain.StatusQueued, ""); err != nil {
		return err
	}

	payload, err := encodeEvent(ClassificationRequested{
		EventID:      uuid.NewString(),
		ContractID:   c.ID,
		Jurisdiction: string(c.Jurisdiction),
		RequestedAt:  s.now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, &common.ProducerMessage{
		Topic: kafka.TopicClassificationRequested,
		Key:   []byte(c.ID.String()),
		Value: payload,
	})
}

// Get returns one contract.
func (s *Service) Get(ctx context.Context, id common.ID) (*domain.Contract, error) {
	return s.contracts.GetByID(ctx, id)
}

// List returns a page of contracts plus the total count.
func (s *Service) List(ctx context.Context, page common.Page) ([]*domain.Contract, int, error) {
	return s.contracts.List(ctx, page)
}

// Decisions returns the clause decisions of a classified contract.
func (s *Service) Decisions(ctx context.Context, id common.ID) ([]classification.Decision, error) {
	if _, err := s.contracts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.decisions.ListByContract(ctx, id)
}

// Reclassify queues a finished or failed contract for another run.
func (s *Service) Reclassify(ctx context.Context, id common.ID) (*domain.Contract, error) {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.queue(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("contract re-queued", logging.String("contract_id", id.String()))
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Worker side
// ─────────────────────────────────────────────────────────────────────────────

// HandleClassificationRequested is the consumer handler for request events.
func (s *Service) HandleClassificationRequested(ctx context.Context, msg *common.Message) error {
	ev, err := DecodeClassificationRequested(msg.Value)
	if err != nil {
		// Malformed payloads never become valid; drop instead of retrying.
		s.log.Error("dropping malformed classification request", logging.Err(err))
		return nil
	}
	return s.Process(ctx, ev.ContractID)
}

// Process runs the full classification for one contract.  Redelivery of an
// event for a contract that is already processing or classified is a no-op.
func (s *Service) Process(ctx context.Context, id common.ID) error {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch c.Status {
	case domain.StatusProcessing, domain.StatusClassified:
		s.log.Warn("duplicate classification request ignored",
			logging.String("contract_id", id.String()),
			logging.String("status", string(c.Status)),
		)
		return nil
	case domain.StatusFailed:
		// A redelivered event retries a failed run via the queued state.
		if err := s.contracts.UpdateStatus(ctx, id, domain.StatusQueued, ""); err != nil {
			return err
		}
		c.Status = domain.StatusQueued
	}

	if err := c.Transition(domain.StatusProcessing, s.now().UTC()); err != nil {
		return err
	}
	if err := s.contracts.UpdateStatus(ctx, id, domain.StatusProcessing, ""); err != nil {
		return err
	}

	start := s.now()
	clauseCount, err := s.classify(ctx, c)
	if err != nil {
		s.log.Error("classification run failed",
			logging.String("contract_id", id.String()),
			logging.Err(err),
		)
		if markErr := s.contracts.UpdateStatus(ctx, id, domain.StatusFailed, err.Error()); markErr != nil {
			s.log.Error("failed to record run failure", logging.Err(markErr))
		}
		s.publishCompleted(ctx, c, string(domain.StatusFailed), err.Error(), 0)
		return err
	}

	s.log.Info("contract classified",
		logging.String("contract_id", id.String()),
		logging.Int("clauses", clauseCount),
		logging.Duration("took", s.now().Sub(start)),
	)
	s.publishCompleted(ctx, c, string(domain.StatusClassified), "", clauseCount)
	return nil
}

// classify downloads the document, segments it, runs the cascade, and
// persists decisions plus summary.
func (s *Service) classify(ctx context.Context, c *domain.Contract) (int, error) {
	doc, err := s.store.Download(ctx, c.ObjectKey)
	if err != nil {
		return 0, err
	}
	defer doc.Close()

	raw, err := io.ReadAll(io.LimitReader(doc, maxDocumentBytes))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDocumentUnavailable, "failed to read document").
			WithDetail(c.ObjectKey)
	}

	clauses := clause.Segment(string(raw), s.maxClauseLen)
	if len(clauses) == 0 {
		return 0, errors.Newf(errors.ErrCodeContractEmpty, "contract %s yielded no clauses", c.ID)
	}

	decisions, err := s.classifier.Classify(ctx, clauses, c.Jurisdiction)
	if err != nil {
		return 0, err
	}
	summary := classification.Summarize(decisions)

	if err := s.decisions.ReplaceForContract(ctx, c.ID, decisions); err != nil {
		return 0, err
	}
	if err := s.contracts.MarkClassified(ctx, c.ID, &summary, s.now().UTC()); err != nil {
		return 0, err
	}
	return len(clauses), nil
}

// publishCompleted emits the completion event.  Publish failures are logged
// but never fail a finished run.
func (s *Service) publishCompleted(ctx context.Context, c *domain.Contract, status, reason string, clauseCount int) {
	payload, err := encodeEvent(ClassificationCompleted{
		EventID:       uuid.NewString(),
		ContractID:    c.ID,
		Status:        status,
		FailureReason: reason,
		ClauseCount:   clauseCount,
		CompletedAt:   s.now().UTC(),
	})
	if err != nil {
		s.log.Error("failed to encode completion event", logging.Err(err))
		return
	}
	err = s.publisher.Publish(ctx, &common.ProducerMessage{
		Topic: kafka.TopicClassificationCompleted,
		Key:   []byte(c.ID.String()),
		Value: payload,
	})
	if err != nil {
		s.log.Error("failed to publish completion event", logging.Err(err))
	}
}
