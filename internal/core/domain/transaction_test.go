package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusDraft.CanTransitionTo(StatusPosted))
	assert.True(t, StatusPosted.CanTransitionTo(StatusReversed))
	assert.True(t, StatusPosted.CanTransitionTo(StatusVoid))

	assert.False(t, StatusDraft.CanTransitionTo(StatusReversed))
	assert.False(t, StatusDraft.CanTransitionTo(StatusVoid))
	assert.False(t, StatusPosted.CanTransitionTo(StatusDraft))

	// REVERSED and VOID are terminal.
	for _, terminal := range []TransactionStatus{StatusReversed, StatusVoid} {
		for _, next := range []TransactionStatus{StatusDraft, StatusPosted, StatusReversed, StatusVoid} {
			assert.False(t, terminal.CanTransitionTo(next))
		}
	}
}
