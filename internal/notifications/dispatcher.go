// Package notifications dispatches simulated SMS and email notifications
// when a flood alert is published. Delivery is simulated: each send is
// recorded as a notification log row rather than handed to a real gateway.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"floodwatch/internal/types"
)

// ContactSource provides the recipient lookups for a set of barangays.
type ContactSource interface {
	ListEmergencyContacts(ctx context.Context, barangayIDs []string) ([]types.EmergencyContact, error)
	ListSubscribers(ctx context.Context, barangayIDs []string) ([]types.SubscriberProfile, error)
}

// LogSink persists notification log entries.
type LogSink interface {
	Create(ctx context.Context, log *types.NotificationLog) error
}

// Messenger delivers one message to one recipient on one channel. The
// simulated implementation logs and always succeeds.
type Messenger interface {
	Send(ctx context.Context, channel types.NotificationChannel, recipient, body string) error
}

// SimulatedMessenger is the default Messenger: it records the send in the
// structured log and reports success.
type SimulatedMessenger struct {
	Logger *slog.Logger
}

func (m *SimulatedMessenger) Send(_ context.Context, channel types.NotificationChannel, recipient, body string) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("simulated notification sent",
		"channel", channel,
		"recipient", recipient,
		"body_length", len(body),
	)
	return nil
}

// Dispatcher fans an alert out to emergency contacts and subscribers.
type Dispatcher struct {
	contacts  ContactSource
	logs      LogSink
	messenger Messenger
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher. A nil messenger defaults to the
// simulated one.
func NewDispatcher(contacts ContactSource, logs LogSink, messenger Messenger, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if messenger == nil {
		messenger = &SimulatedMessenger{Logger: logger}
	}
	return &Dispatcher{
		contacts:  contacts,
		logs:      logs,
		messenger: messenger,
		logger:    logger,
		now:       time.Now,
	}
}

// Dispatch finds the recipients of an alert and sends (simulated)
// notifications, one log row per delivered message. Recipients reached
// through more than one path receive at most one message per address.
//
// Inactive alerts and alerts without affected barangays are skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *types.FloodAlert) error {
	if !alert.Active {
		d.logger.Info("alert is not active, skipping notification dispatch", "alert_id", alert.ID)
		return nil
	}
	if len(alert.AffectedBarangayIDs) == 0 {
		d.logger.Warn("alert has no affected barangays, no notifications sent", "alert_id", alert.ID)
		return nil
	}

	contacts, err := d.contacts.ListEmergencyContacts(ctx, alert.AffectedBarangayIDs)
	if err != nil {
		return err
	}
	subscribers, err := d.contacts.ListSubscribers(ctx, alert.AffectedBarangayIDs)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Flood Alert: %s - %s. Description: %s",
		severityDisplay(alert.SeverityLevel), alert.Title, alert.Description)

	notified := make(map[string]struct{})

	for _, contact := range contacts {
		if contact.Phone == "" {
			continue
		}
		if err := d.send(ctx, alert, types.ChannelSMS, contact.Phone, body, notified); err != nil {
			return err
		}
	}

	for _, profile := range subscribers {
		if profile.ReceiveEmail && profile.Email != "" {
			if err := d.send(ctx, alert, types.ChannelEmail, profile.Email, body, notified); err != nil {
				return err
			}
		}
		if profile.ReceiveSMS && profile.PhoneNumber != "" {
			if err := d.send(ctx, alert, types.ChannelSMS, profile.PhoneNumber, body, notified); err != nil {
				return err
			}
		}
	}

	d.logger.Info("dispatched alert notifications",
		"alert_id", alert.ID,
		"unique_recipients", len(notified),
	)
	return nil
}

// send delivers to one recipient unless that address was already reached,
// and records the log row.
func (d *Dispatcher) send(ctx context.Context, alert *types.FloodAlert, channel types.NotificationChannel, recipient, body string, notified map[string]struct{}) error {
	if _, seen := notified[recipient]; seen {
		return nil
	}

	if err := d.messenger.Send(ctx, channel, recipient, body); err != nil {
		d.logger.Error("notification send failed",
			"alert_id", alert.ID,
			"channel", channel,
			"error", err,
		)
		return err
	}

	entry := &types.NotificationLog{
		ID:        uuid.NewString(),
		AlertID:   alert.ID,
		Channel:   channel,
		Recipient: recipient,
		Status:    "sent",
		CreatedAt: d.now().UTC(),
	}
	if err := d.logs.Create(ctx, entry); err != nil {
		return err
	}

	notified[recipient] = struct{}{}
	return nil
}

// severityDisplay renders a severity level for message bodies.
func severityDisplay(level types.AlertSeverity) string {
	switch level {
	case types.SeverityAdvisory:
		return "Advisory"
	case types.SeverityWatch:
		return "Watch"
	case types.SeverityWarning:
		return "Warning"
	default:
		return string(level)
	}
}
