package notification

import (
	"context"
)

// Repository persists NotificationStrategy and NotificationRecord rows.
type Repository interface {
	GetOrCreateStrategyByName(ctx context.Context, name string) (*NotificationStrategy, error)

	// ReserveRecords atomically inserts the subset of recs whose
	// (SourceID, SubscriberID, LineName, StrategyID) key is not already
	// held, in one round trip. The returned slice holds only the records
	// this call won the reservation for; a line already reserved by a
	// concurrent Dispatch call is silently dropped, so at most one
	// Dispatch call ever sends for it. Every rec must share the same
	// SourceID, SubscriberID and StrategyID.
	ReserveRecords(ctx context.Context, recs []*NotificationRecord) (won []*NotificationRecord, err error)

	// SetExternalSendID stamps every given reserved record with the mail
	// service's request id in one statement, once the send succeeds.
	SetExternalSendID(ctx context.Context, recs []*NotificationRecord, externalSendID string) error

	// Release deletes reservations whose send never completed, so a future
	// replay can retry them instead of treating the lines as already
	// notified.
	Release(ctx context.Context, recs []*NotificationRecord) error
}
