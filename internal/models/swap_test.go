package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSwapStatusTransitions(t *testing.T) {
	cases := []struct {
		from    SwapStatus
		to      SwapStatus
		allowed bool
	}{
		{SwapStatusPending, SwapStatusAccepted, true},
		{SwapStatusPending, SwapStatusRejected, true},
		{SwapStatusPending, SwapStatusCancelled, true},
		{SwapStatusPending, SwapStatusCompleted, false},
		{SwapStatusAccepted, SwapStatusCompleted, true},
		{SwapStatusAccepted, SwapStatusCancelled, true},
		{SwapStatusAccepted, SwapStatusRejected, false},
		{SwapStatusAccepted, SwapStatusPending, false},
		{SwapStatusRejected, SwapStatusAccepted, false},
		{SwapStatusCompleted, SwapStatusCancelled, false},
		{SwapStatusCancelled, SwapStatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSwapStatusTerminal(t *testing.T) {
	assert.False(t, SwapStatusPending.Terminal())
	assert.False(t, SwapStatusAccepted.Terminal())
	assert.True(t, SwapStatusRejected.Terminal())
	assert.True(t, SwapStatusCompleted.Terminal())
	assert.True(t, SwapStatusCancelled.Terminal())
	assert.False(t, SwapStatus("bogus").Terminal())
}

func TestSwapRequestIsExpired(t *testing.T) {
	deadline := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	req := &SwapRequest{Status: SwapStatusPending, ResponseBy: deadline}

	assert.False(t, req.IsExpired(deadline.Add(-time.Minute)))
	assert.False(t, req.IsExpired(deadline))
	assert.True(t, req.IsExpired(deadline.Add(time.Minute)))

	// Expiry only applies to pending requests.
	req.Status = SwapStatusAccepted
	assert.False(t, req.IsExpired(deadline.Add(time.Hour)))
}

func TestSwapRequestPredicates(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	req := &SwapRequest{
		RequesterID: "alice",
		RecipientID: "bob",
		Status:      SwapStatusPending,
		ResponseBy:  now.Add(time.Hour),
	}

	assert.True(t, req.CanAccept("bob", now))
	assert.False(t, req.CanAccept("alice", now), "requester cannot accept")
	assert.False(t, req.CanAccept("bob", now.Add(2*time.Hour)), "expired request cannot be accepted")

	assert.True(t, req.CanReject("bob"))
	assert.False(t, req.CanReject("alice"))

	assert.True(t, req.CanCancel("alice"))
	assert.False(t, req.CanCancel("bob"), "recipient cannot cancel")

	assert.False(t, req.CanComplete("alice"), "pending request cannot be completed")
	assert.True(t, req.CanDelete("alice"))
	assert.False(t, req.CanDelete("bob"))

	req.Status = SwapStatusAccepted
	assert.True(t, req.CanComplete("alice"))
	assert.True(t, req.CanComplete("bob"))
	assert.False(t, req.CanComplete("mallory"))
	assert.True(t, req.CanCancel("alice"))
	assert.False(t, req.CanDelete("alice"), "accepted request cannot be deleted")
	assert.True(t, req.CanModify("bob"))

	req.Status = SwapStatusCompleted
	assert.False(t, req.CanModify("alice"))
	assert.False(t, req.CanCancel("alice"))

	// Expired reject stays allowed so recipients can clear stale requests.
	req.Status = SwapStatusPending
	req.ResponseBy = now.Add(-time.Hour)
	assert.True(t, req.CanReject("bob"))
	assert.False(t, req.CanAccept("bob", now))
}
