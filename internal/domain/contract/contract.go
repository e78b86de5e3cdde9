// Package contract defines the contract aggregate: the uploaded document,
// its processing lifecycle, and the persistence ports the application layer
// drives.
package contract

import (
	"context"
	"time"

	"github.com/ravi-ivar-7/hilabs/internal/domain/classification"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
	"github.com/ravi-ivar-7/hilabs/pkg/types/common"
)

// Status is the contract's position in the processing lifecycle.
type Status string

const (
	// StatusUploaded: document stored, not yet queued for classification.
	StatusUploaded Status = "uploaded"

	// StatusQueued: classification request published to the task queue.
	StatusQueued Status = "queued"

	// StatusProcessing: a worker is classifying the contract.
	StatusProcessing Status = "processing"

	// StatusClassified: every clause has a decision and the summary is
	// persisted.
	StatusClassified Status = "classified"

	// StatusFailed: the run failed; FailureReason explains why.  Failed
	// contracts may be re-queued.
	StatusFailed Status = "failed"
)

// validTransitions encodes the lifecycle: a contract is never presented as
// classified unless the full run succeeded, and only failed or completed
// runs may be re-queued.
var validTransitions = map[Status][]Status{
	StatusUploaded:   {StatusQueued},
	StatusQueued:     {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusClassified, StatusFailed},
	StatusClassified: {StatusQueued},
	StatusFailed:     {StatusQueued},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Contract is one uploaded provider agreement.
type Contract struct {
	ID           common.ID             `json:"id"`
	FileName     string                `json:"file_name"`
	Jurisdiction template.Jurisdiction `json:"jurisdiction"`

	// ObjectKey locates the original document in object storage.
	ObjectKey string `json:"object_key"`

	Status        Status `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`

	// Summary is populated once the contract reaches StatusClassified.
	Summary *classification.Summary `json:"summary,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ClassifiedAt *time.Time `json:"classified_at,omitempty"`
}

// Transition moves the contract to the target status, updating UpdatedAt.
func (c *Contract) Transition(to Status, now time.Time) error {
	if !CanTransition(c.Status, to) {
		return errors.Newf(errors.ErrCodeContractInvalidState,
			"contract %s cannot move from %s to %s", c.ID, c.Status, to)
	}
	c.Status = to
	c.UpdatedAt = now
	if to != StatusFailed {
		c.FailureReason = ""
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Persistence ports
// ─────────────────────────────────────────────────────────────────────────────

// Repository persists contracts.
type Repository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, id common.ID) (*Contract, error)
	List(ctx context.Context, page common.Page) ([]*Contract, int, error)
	UpdateStatus(ctx context.Context, id common.ID, status Status, failureReason string) error
	MarkClassified(ctx context.Context, id common.ID, summary *classification.Summary, at time.Time) error
}

// DecisionRepository persists per-clause decisions.  ReplaceForContract swaps
// the full decision set atomically so a re-run never leaves a contract
// half-classified.
type DecisionRepository interface {
	ReplaceForContract(ctx context.Context, contractID common.ID, decisions []classification.Decision) error
	ListByContract(ctx context.Context, contractID common.ID) ([]classification.Decision, error)
}
