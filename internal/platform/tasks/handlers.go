package tasks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/internal/domain/location"
	"github.com/kplc/bulletin-notify/internal/domain/match"
	"github.com/kplc/bulletin-notify/internal/domain/notification"
	"github.com/kplc/bulletin-notify/internal/domain/source"
	"github.com/kplc/bulletin-notify/internal/domain/subscriber"
	"github.com/kplc/bulletin-notify/internal/domain/subscription"
	"github.com/kplc/bulletin-notify/internal/platform/progress"
	"github.com/kplc/bulletin-notify/internal/platform/searchengine"
	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Handlers bundles every domain service a worker pool dispatches tasks
// into, one constructor per named task type.
type Handlers struct {
	Locations     *location.Service
	Subscriptions *subscription.Service
	Subscribers   *subscriber.Service
	Matcher       *match.Service
	Notifier      *notification.Service
	Sources       *source.Service
	SearchClient  *searchengine.Client
	SearchCache   *searchengine.Cache
	Enqueuer      *Enqueuer
	Progress      *progress.Tracker
}

// FetchAndSubscribeToLocation is C4's entry point: resolve externalID to a
// Location, subscribe subscriberID to it, and on success enqueue
// GetNearbyLocations.
func (h *Handlers) FetchAndSubscribeToLocation(ctx context.Context, raw json.RawMessage) error {
	var p FetchAndSubscribeToLocationPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return apperr.Unexpected("decode FetchAndSubscribeToLocation payload", err)
	}

	result, err := h.Locations.Resolve(ctx, p.ExternalID)
	if err != nil {
		_ = h.Progress.Set(ctx, p.TaskID, subscription.ProgressFailure)
		return err
	}

	if _, err := h.Subscriptions.Subscribe(ctx, p.SubscriberID, result.LocationID); err != nil {
		_ = h.Progress.Set(ctx, p.TaskID, subscription.ProgressFailure)
		return err
	}

	nearbyTaskID := uuid.NewString()
	if _, err := h.Enqueuer.Enqueue(ctx, TypeGetNearbyLocations, nearbyTaskID, GetNearbyLocationsPayload{
		LocationID:   result.LocationID,
		Lat:          result.Lat,
		Lng:          result.Lng,
		SubscriberID: p.SubscriberID,
		TaskID:       nearbyTaskID,
	}); err != nil {
		_ = h.Progress.Set(ctx, p.TaskID, subscription.ProgressFailure)
		return apperr.Unexpected("enqueue get-nearby-locations task", err)
	}

	return h.Progress.Set(ctx, p.TaskID, subscription.ProgressSuccess)
}

// GetNearbyLocations is C5's entry point: resolve the location's cached
// neighbour set, run C6 for this subscriber+location, and enqueue one
// SendEmailNotification per affected bulletin source.
func (h *Handlers) GetNearbyLocations(ctx context.Context, raw json.RawMessage) error {
	var p GetNearbyLocationsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return apperr.Unexpected("decode GetNearbyLocations payload", err)
	}

	if _, err := h.Locations.ResolveNearby(ctx, p.LocationID, p.Lat, p.Lng); err != nil {
		return err
	}

	matches, err := h.Matcher.MatchLocation(ctx, p.LocationID)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}

	loc, err := h.Locations.GetByID(ctx, p.LocationID)
	if err != nil {
		return err
	}
	sub, err := h.Subscribers.Get(ctx, p.SubscriberID)
	if err != nil {
		return err
	}

	bySource := make(map[uuid.UUID][]notification.AffectedLocationMatch)
	for _, m := range matches {
		bySource[m.SourceID] = append(bySource[m.SourceID], notification.AffectedLocationMatch{
			LocationID:       m.LocationID,
			LocationName:     loc.Name,
			LineName:         m.LineName,
			DirectlyAffected: m.DirectlyAffected,
			From:             m.From,
			To:               m.To,
		})
	}

	for sourceID, locs := range bySource {
		sourceURL, err := h.Sources.ResolveURL(ctx, sourceID)
		if err != nil {
			return err
		}
		payload := SendEmailNotificationPayload{AffectedSubscriberWithLocations: notification.AffectedSubscriberWithLocations{
			SourceURL: sourceURL,
			Subscriber: notification.NotifiableSubscriber{
				ID:    sub.SubscriberID,
				Name:  sub.Name,
				Email: sub.Email,
			},
			Locations: locs,
		}}
		if _, err := h.Enqueuer.Enqueue(ctx, TypeSendEmailNotification, "", payload); err != nil {
			return apperr.Unexpected("enqueue send-email-notification task", err)
		}
	}
	return nil
}

// SendEmailNotification is C10's entry point.
func (h *Handlers) SendEmailNotification(ctx context.Context, raw json.RawMessage) error {
	var p SendEmailNotificationPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return apperr.Unexpected("decode SendEmailNotification payload", err)
	}
	_, err := h.Notifier.Dispatch(ctx, p.AffectedSubscriberWithLocations)
	return err
}

// SearchLocationsByText is the cache-warming task: call the external
// text-search API once and write the result into the text-search cache.
func (h *Handlers) SearchLocationsByText(ctx context.Context, raw json.RawMessage) error {
	var p SearchLocationsByTextPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return apperr.Unexpected("decode SearchLocationsByText payload", err)
	}
	result, err := h.SearchClient.SearchText(ctx, p.Text)
	if err != nil {
		return err
	}
	return h.SearchCache.Set(ctx, p.Text, result)
}
