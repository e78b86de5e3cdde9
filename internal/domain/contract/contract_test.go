package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusUploaded, StatusQueued},
		{StatusQueued, StatusProcessing},
		{StatusQueued, StatusFailed},
		{StatusProcessing, StatusClassified},
		{StatusProcessing, StatusFailed},
		{StatusFailed, StatusQueued},
		{StatusClassified, StatusQueued}, // re-run
	}
	for _, p := range allowed {
		assert.True(t, CanTransition(p[0], p[1]), "%s -> %s", p[0], p[1])
	}

	denied := [][2]Status{
		{StatusUploaded, StatusClassified},
		{StatusUploaded, StatusProcessing},
		{StatusClassified, StatusFailed},
		{StatusFailed, StatusClassified},
		{StatusProcessing, StatusUploaded},
	}
	for _, p := range denied {
		assert.False(t, CanTransition(p[0], p[1]), "%s -> %s", p[0], p[1])
	}
}

func TestContract_Transition(t *testing.T) {
	now := time.Now()
	c := &Contract{ID: "c-1", Status: StatusUploaded}

	require.NoError(t, c.Transition(StatusQueued, now))
	assert.Equal(t, StatusQueued, c.Status)
	assert.Equal(t, now, c.UpdatedAt)

	err := c.Transition(StatusClassified, now)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeContractInvalidState))
	assert.Equal(t, StatusQueued, c.Status)
}

func TestContract_TransitionClearsFailureReason(t *testing.T) {
	now := time.Now()
	c := &Contract{ID: "c-1", Status: StatusFailed, FailureReason: "encoder down"}

	require.NoError(t, c.Transition(StatusQueued, now))
	assert.Empty(t, c.FailureReason)
}
