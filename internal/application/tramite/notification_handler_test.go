package tramite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tramite"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	sent []RequesterNotification
	err  error
}

func (n *recordingNotifier) NotifyRequester(_ context.Context, notification RequesterNotification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func filedTramite(t *testing.T) *tramite.Tramite {
	t.Helper()
	tr, err := tramite.NewTramite(uuid.New(), "T1-CL-2024-0001", uuid.New(), uuid.New(),
		tramite.Details{Subject: "New dwelling"}, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return tr
}

func TestNotificationHandler_EventTypes(t *testing.T) {
	h := NewNotificationHandler(zap.NewNop())
	assert.ElementsMatch(t, []string{tramite.EventTypeTramiteFiled, tramite.EventTypeStatusChanged}, h.EventTypes())
}

func TestNotificationHandler_Handle(t *testing.T) {
	t.Run("filed event", func(t *testing.T) {
		notifier := &recordingNotifier{}
		h := NewNotificationHandler(zap.NewNop()).WithNotifier(notifier)
		tr := filedTramite(t)

		require.NoError(t, h.Handle(context.Background(), tramite.NewTramiteFiledEvent(tr)))

		require.Len(t, notifier.sent, 1)
		n := notifier.sent[0]
		assert.Equal(t, tr.TenantID.String(), n.TenantID)
		assert.Equal(t, tr.ID.String(), n.TramiteID)
		assert.Equal(t, tr.RequesterID.String(), n.RequesterID)
		assert.Equal(t, "T1-CL-2024-0001", n.FilingNumber)
		assert.Equal(t, "FILED", n.Status)
	})

	t.Run("status changed event carries the comment", func(t *testing.T) {
		notifier := &recordingNotifier{}
		h := NewNotificationHandler(zap.NewNop()).WithNotifier(notifier)
		tr := filedTramite(t)
		require.NoError(t, tr.Transition(tramite.StatusCancelled, "Requested by applicant", uuid.New(), tr.FiledAt.Add(time.Hour)))

		event := tramite.NewStatusChangedEvent(tr, tramite.StatusFiled, uuid.New())
		require.NoError(t, h.Handle(context.Background(), event))

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "CANCELLED", notifier.sent[0].Status)
		assert.Equal(t, "Requested by applicant", notifier.sent[0].Comment)
		assert.Equal(t, tramite.StatusCancelled.PublicDescription(), notifier.sent[0].StatusDescription)
	})

	t.Run("notifier failure does not fail handling", func(t *testing.T) {
		h := NewNotificationHandler(zap.NewNop()).WithNotifier(&recordingNotifier{err: errors.New("smtp down")})
		assert.NoError(t, h.Handle(context.Background(), tramite.NewTramiteFiledEvent(filedTramite(t))))
	})

	t.Run("unexpected event", func(t *testing.T) {
		h := NewNotificationHandler(zap.NewNop())
		base := shared.NewBaseDomainEvent("other.event", "Other", uuid.New(), uuid.New(), time.Now())
		assert.Error(t, h.Handle(context.Background(), &base))
	})

	t.Run("logging notifier", func(t *testing.T) {
		h := NewNotificationHandler(zap.NewNop()).WithNotifier(NewLoggingRequesterNotifier(zap.NewNop()))
		assert.NoError(t, h.Handle(context.Background(), tramite.NewTramiteFiledEvent(filedTramite(t))))
	})
}
