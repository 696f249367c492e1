package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvehq/studyspace/internal/model"
)

type capturingWriter struct {
	notifications []model.Notification
	roles         [][]string
}

func (w *capturingWriter) CreateForRole(_ context.Context, n *model.Notification, roles ...string) error {
	w.notifications = append(w.notifications, *n)
	w.roles = append(w.roles, roles)
	return nil
}

func TestNotificationForSeatAvailable(t *testing.T) {
	n := notificationFor(LifecycleEvent{Type: EventSeatAvailable, SeatNumber: 12})
	require.NotNil(t, n)
	assert.Equal(t, model.NotifySeatAvailable, n.Type)
	assert.Contains(t, n.Title, "12")
}

func TestNotificationForSeatReassigned(t *testing.T) {
	n := notificationFor(LifecycleEvent{
		Type: EventSeatReassigned, SeatNumber: 3, MemberID: 8, EndDate: "2024-03-15",
	})
	require.NotNil(t, n)
	assert.Contains(t, n.Message, "2024-03-15")
}

func TestNotificationForSubscriptionExpired(t *testing.T) {
	n := notificationFor(LifecycleEvent{
		Type: EventSubscriptionExpired, SubscriptionID: 9, SeatNumber: 4,
	})
	require.NotNil(t, n)
	assert.Equal(t, model.NotifySubscriptionExpiry, n.Type)
	assert.Equal(t, "high", n.Priority)
	assert.Contains(t, n.Title, "9")
	assert.Contains(t, n.Message, "4")
}

func TestNotificationForCreatedIsSilent(t *testing.T) {
	assert.Nil(t, notificationFor(LifecycleEvent{Type: EventSubscriptionCreated}))
	assert.Nil(t, notificationFor(LifecycleEvent{Type: "unknown.event"}))
}

func TestHandleMessageFansOutToStaff(t *testing.T) {
	w := &capturingWriter{}
	body, err := json.Marshal(LifecycleEvent{Type: EventSeatAvailable, SeatNumber: 5})
	require.NoError(t, err)

	require.NoError(t, handleMessage(body, w))
	require.Len(t, w.notifications, 1)
	assert.Equal(t, []string{model.RoleAdmin, model.RoleManager}, w.roles[0])
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	w := &capturingWriter{}
	assert.Error(t, handleMessage([]byte("{not json"), w))
	assert.Empty(t, w.notifications)
}

func TestHandleMessageIgnoresSilentEvents(t *testing.T) {
	w := &capturingWriter{}
	body, _ := json.Marshal(LifecycleEvent{Type: EventSubscriptionCreated})
	require.NoError(t, handleMessage(body, w))
	assert.Empty(t, w.notifications)
}
