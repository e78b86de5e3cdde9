package contract

import (
	"encoding/json"
	"time"

	"github.com/ravi-ivar-7/hilabs/pkg/errors"
	"github.com/ravi-ivar-7/hilabs/pkg/types/common"
)

// ClassificationRequested asks a worker to classify one contract.  Events are
// keyed by contract ID so requests for the same contract stay ordered.
type ClassificationRequested struct {
	EventID      string    `json:"event_id"`
	ContractID   common.ID `json:"contract_id"`
	Jurisdiction string    `json:"jurisdiction"`
	RequestedAt  time.Time `json:"requested_at"`
}

// ClassificationCompleted announces a finished run, successful or not.
type ClassificationCompleted struct {
	EventID       string    `json:"event_id"`
	ContractID    common.ID `json:"contract_id"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	ClauseCount   int       `json:"clause_count"`
	CompletedAt   time.Time `json:"completed_at"`
}

func encodeEvent(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event")
	}
	return data, nil
}

// DecodeClassificationRequested parses a consumed request event.
func DecodeClassificationRequested(data []byte) (*ClassificationRequested, error) {
	var ev ClassificationRequested
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode classification request")
	}
	if ev.ContractID.IsZero() {
		return nil, errors.New(errors.ErrCodeValidation, "classification request missing contract id")
	}
	return &ev, nil
}
