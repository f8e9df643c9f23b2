package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skillswap-api/internal/models"
	"github.com/noah-isme/skillswap-api/pkg/jobs"
)

type notificationStoreStub struct {
	created chan *models.Notification
}

func (s *notificationStoreStub) Create(ctx context.Context, n *models.Notification) error {
	s.created <- n
	return nil
}

func (s *notificationStoreStub) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	return nil, 0, nil
}

func (s *notificationStoreStub) MarkRead(ctx context.Context, id, userID string) error {
	return nil
}

func (s *notificationStoreStub) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

func TestNotifierPersistsSwapEvent(t *testing.T) {
	store := &notificationStoreStub{created: make(chan *models.Notification, 4)}
	notifier := NewNotifier(store, nil, jobs.QueueConfig{Workers: 1})
	notifier.Start(context.Background())
	defer notifier.Stop()

	swap := &models.SwapRequest{ID: "swap-1", RequesterID: "alice", RecipientID: "bob", SkillWanted: "Guitar"}
	notifier.SwapEvent(models.NotificationSwapRequest, swap)

	select {
	case n := <-store.created:
		assert.Equal(t, "bob", n.UserID, "creation notifies the recipient")
		assert.Equal(t, models.NotificationSwapRequest, n.Type)
		require.NotNil(t, n.SwapRequestID)
		assert.Equal(t, "swap-1", *n.SwapRequestID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not persisted")
	}
}

func TestNotifierCompletedNotifiesBothParties(t *testing.T) {
	store := &notificationStoreStub{created: make(chan *models.Notification, 4)}
	notifier := NewNotifier(store, nil, jobs.QueueConfig{Workers: 1})
	notifier.Start(context.Background())
	defer notifier.Stop()

	swap := &models.SwapRequest{ID: "swap-1", RequesterID: "alice", RecipientID: "bob"}
	notifier.SwapEvent(models.NotificationSwapCompleted, swap)

	recipients := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case n := <-store.created:
			recipients[n.UserID] = true
		case <-time.After(2 * time.Second):
			t.Fatal("expected two notifications")
		}
	}
	assert.True(t, recipients["alice"])
	assert.True(t, recipients["bob"])
}

func TestNotifierDropsWhenStopped(t *testing.T) {
	store := &notificationStoreStub{created: make(chan *models.Notification, 1)}
	notifier := NewNotifier(store, nil, jobs.QueueConfig{Workers: 1})

	// Never started: enqueue fails and the event is dropped, not delivered.
	notifier.SwapEvent(models.NotificationSwapRequest, &models.SwapRequest{ID: "swap-1", RecipientID: "bob"})

	select {
	case <-store.created:
		t.Fatal("notification should have been dropped")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSwapEventTargets(t *testing.T) {
	swap := &models.SwapRequest{RequesterID: "alice", RecipientID: "bob"}

	assert.Equal(t, []string{"bob"}, swapEventTargets(models.NotificationSwapRequest, swap))
	assert.Equal(t, []string{"alice"}, swapEventTargets(models.NotificationSwapAccepted, swap))
	assert.Equal(t, []string{"alice"}, swapEventTargets(models.NotificationSwapRejected, swap))
	assert.Equal(t, []string{"bob"}, swapEventTargets(models.NotificationSwapCancelled, swap))
	assert.ElementsMatch(t, []string{"alice", "bob"}, swapEventTargets(models.NotificationSwapCompleted, swap))
}
