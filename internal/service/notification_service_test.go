package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aula-go-api/internal/dto"
	"github.com/noah-isme/aula-go-api/internal/models"
)

func newNotificationFixture(t *testing.T) (*fakeNotificationRepo, NotificationService) {
	t.Helper()
	repo := &fakeNotificationRepo{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewNotificationService(repo, nil, "aula", nil, validate, testLogger())
	return repo, svc
}

func TestNotificationDispatchPersistsAndSanitizes(t *testing.T) {
	repo, svc := newNotificationFixture(t)

	svc.Dispatch(context.Background(), dto.NotificationCreateRequest{
		UserID:  21,
		Type:    models.NotificationTypeNewAssignment,
		Title:   "<b>Essay</b>",
		Message: "Due Friday <script>alert(1)</script>",
	})

	require.Len(t, repo.rows, 1)
	require.Equal(t, "Essay", repo.rows[0].Title)
	require.Equal(t, "Due Friday", repo.rows[0].Message)
	require.False(t, repo.rows[0].Read)
}

func TestNotificationDispatchDropsInvalidType(t *testing.T) {
	repo, svc := newNotificationFixture(t)

	svc.Dispatch(context.Background(), dto.NotificationCreateRequest{
		UserID:  21,
		Type:    "marketing_blast",
		Message: "buy now",
	})

	require.Empty(t, repo.rows)
}

func TestNotificationDispatchDropsEmptyAfterSanitize(t *testing.T) {
	repo, svc := newNotificationFixture(t)

	svc.Dispatch(context.Background(), dto.NotificationCreateRequest{
		UserID:  21,
		Type:    models.NotificationTypeNewAssignment,
		Message: "<script>alert(1)</script>",
	})

	require.Empty(t, repo.rows)
}

func TestNotificationDispatchSwallowsStoreFailure(t *testing.T) {
	repo, svc := newNotificationFixture(t)
	repo.createErr = errors.New("db down")

	ch, cleanup := svc.Subscribe(21)
	defer cleanup()

	svc.Dispatch(context.Background(), dto.NotificationCreateRequest{
		UserID:  21,
		Type:    models.NotificationTypeNewAssignment,
		Message: "Due Friday",
	})

	select {
	case notification := <-ch:
		t.Fatalf("unexpected broadcast for unpersisted notification: %+v", notification)
	default:
	}
}

func TestNotificationSubscribeReceivesDispatch(t *testing.T) {
	_, svc := newNotificationFixture(t)

	ch, cleanup := svc.Subscribe(21)
	defer cleanup()

	svc.Dispatch(context.Background(), dto.NotificationCreateRequest{
		UserID:  21,
		Type:    models.NotificationTypeSubmissionReceived,
		Message: "Amy handed in her essay",
	})

	select {
	case notification := <-ch:
		require.Equal(t, uint(21), notification.UserID)
		require.Equal(t, models.NotificationTypeSubmissionReceived, notification.Type)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the notification")
	}
}

func TestNotificationRemoteEventFanOut(t *testing.T) {
	_, svc := newNotificationFixture(t)
	impl := svc.(*notificationService)

	ch, cleanup := svc.Subscribe(21)
	defer cleanup()

	remote, err := json.Marshal(notificationEvent{
		Source:       "another-node",
		Notification: dto.NotificationResponse{ID: 7, UserID: 21, Type: models.NotificationTypeAssignmentGraded, Message: "graded"},
		SentAt:       time.Now().UTC(),
	})
	require.NoError(t, err)
	impl.handleEvent(remote)

	select {
	case notification := <-ch:
		require.Equal(t, uint(7), notification.ID)
	case <-time.After(time.Second):
		t.Fatal("remote event never reached the subscriber")
	}

	// Events originating from this node have already been broadcast locally
	// and must not be replayed.
	local, err := json.Marshal(notificationEvent{
		Source:       impl.nodeID,
		Notification: dto.NotificationResponse{ID: 8, UserID: 21, Type: models.NotificationTypeAssignmentGraded, Message: "graded"},
	})
	require.NoError(t, err)
	impl.handleEvent(local)

	select {
	case notification := <-ch:
		t.Fatalf("own event replayed to subscriber: %+v", notification)
	default:
	}
}

func TestNotificationRemoteEventDeliveredOncePerTransport(t *testing.T) {
	_, svc := newNotificationFixture(t)
	impl := svc.(*notificationService)

	ch, cleanup := svc.Subscribe(21)
	defer cleanup()

	// The same event reaches the node twice, once via redis and once via
	// NATS; only the first copy may be broadcast.
	payload, err := json.Marshal(notificationEvent{
		ID:           "evt-1",
		Source:       "another-node",
		Notification: dto.NotificationResponse{ID: 9, UserID: 21, Type: models.NotificationTypeNewAssignment, Message: "due Friday"},
		SentAt:       time.Now().UTC(),
	})
	require.NoError(t, err)
	impl.handleEvent(payload)
	impl.handleEvent(payload)

	select {
	case notification := <-ch:
		require.Equal(t, uint(9), notification.ID)
	case <-time.After(time.Second):
		t.Fatal("remote event never reached the subscriber")
	}

	select {
	case notification := <-ch:
		t.Fatalf("duplicate transport copy broadcast to subscriber: %+v", notification)
	default:
	}
}

func TestEventDeduperEvictsOldEntries(t *testing.T) {
	dedupe := newEventDeduper(2)

	require.False(t, dedupe.remember("a"))
	require.False(t, dedupe.remember("b"))
	require.True(t, dedupe.remember("a"))

	// "c" evicts "a"; a late redelivery of "a" is no longer recognized,
	// which is acceptable for a bounded window.
	require.False(t, dedupe.remember("c"))
	require.False(t, dedupe.remember("a"))
}

func TestNotificationMarkReadScopedToOwner(t *testing.T) {
	repo, svc := newNotificationFixture(t)
	repo.rows = []models.Notification{
		{ID: 1, UserID: 21, Type: models.NotificationTypeNewAssignment, Message: "Due Friday"},
	}

	_, err := svc.MarkRead(context.Background(), 1, 99)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	notification, err := svc.MarkRead(context.Background(), 1, 21)
	require.NoError(t, err)
	require.True(t, notification.Read)
}

func TestNotificationUnreadCountAndMarkAllRead(t *testing.T) {
	repo, svc := newNotificationFixture(t)
	repo.rows = []models.Notification{
		{ID: 1, UserID: 21, Message: "a"},
		{ID: 2, UserID: 21, Message: "b"},
		{ID: 3, UserID: 22, Message: "c"},
	}

	count, err := svc.UnreadCount(context.Background(), 21)
	require.NoError(t, err)
	require.Equal(t, int64(2), count.Unread)

	updated, err := svc.MarkAllRead(context.Background(), 21)
	require.NoError(t, err)
	require.Equal(t, int64(2), updated)

	count, err = svc.UnreadCount(context.Background(), 21)
	require.NoError(t, err)
	require.Equal(t, int64(0), count.Unread)

	other, err := svc.UnreadCount(context.Background(), 22)
	require.NoError(t, err)
	require.Equal(t, int64(1), other.Unread)
}
