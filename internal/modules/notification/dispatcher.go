package notification

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"repairdesk/internal/domain"
)

// Event names on the wire.
const (
	EventSocketReady     = "socket:ready"
	EventNotificationNew = "notification:new"
)

// Notification kinds.
const (
	KindStatusChanged = "repair.status_changed"
	KindCancelled     = "repair.cancelled"
)

// StatusChange is the payload of a notification:new event.
type StatusChange struct {
	Kind           string              `json:"kind"`
	RepairID       int64               `json:"repairId"`
	PreviousStatus domain.RepairStatus `json:"previousStatus"`
	Status         domain.RepairStatus `json:"status"`
	Title          string              `json:"title"`
	Message        string              `json:"message"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// Dispatcher pushes events at connected users. Delivery is
// best-effort: no queue, no retry, no persistence of missed events.
// Failures are logged and never propagate to the caller, since the
// state change that triggered the event has already committed.
type Dispatcher struct {
	hub *Hub
	log *logrus.Logger
}

func NewDispatcher(hub *Hub, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{hub: hub, log: log}
}

func (d *Dispatcher) NotifyStatusChange(ctx context.Context, userID int64, n StatusChange) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("panic", r).Error("notification dispatch panicked")
		}
	}()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if !d.hub.SendToUser(userID, EventNotificationNew, n) {
		d.log.WithFields(logrus.Fields{
			"user_id":   userID,
			"repair_id": n.RepairID,
			"status":    n.Status,
		}).Debug("no live session, notification dropped")
	}
}
