// Package projection maintains a per-identity mirror of claim state: the set
// of listings an identity has claimed and its notification feed. It is a
// read-through convenience for rendering, never authoritative; the listing
// store's status column always wins, and Reconcile drops entries the
// authoritative store no longer backs.
package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sharebite/internal/model"
)

const (
	claimsKeyPrefix        = "projection:claims:"
	notificationsKeyPrefix = "projection:notifications:"

	// maxNotifications bounds the feed so a busy collector's key cannot
	// grow without limit.
	maxNotifications = 100
)

// Notification is the denormalized claim event shown in the UI feed.
type Notification struct {
	ListingID      uuid.UUID `json:"listing_id"`
	FoodType       string    `json:"food_type"`
	DonorName      string    `json:"donor_name"`
	PickupLocation string    `json:"pickup_location"`
	PickupTime     string    `json:"pickup_time"`
	ContactInfo    string    `json:"contact_info"`
	ClaimedAt      time.Time `json:"claimed_at"`
	Status         string    `json:"status"`
}

// KV is the key-value surface the projection needs. Satisfied by cache.Client;
// redis unavailability degrades to empty projections, never errors.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cache is the per-identity claim projection.
type Cache struct {
	kv KV
}

// New creates a projection cache over the given key-value store.
func New(kv KV) *Cache {
	return &Cache{kv: kv}
}

// RecordClaim adds the listing to the identity's claimed set and prepends a
// notification to its feed.
func (p *Cache) RecordClaim(ctx context.Context, identityID uuid.UUID, note Notification) error {
	claimed, err := p.claimedSet(ctx, identityID)
	if err != nil {
		return err
	}
	if !contains(claimed, note.ListingID) {
		claimed = append(claimed, note.ListingID)
		if err := p.writeJSON(ctx, claimsKeyPrefix+identityID.String(), claimed); err != nil {
			return err
		}
	}

	notes, err := p.ListNotifications(ctx, identityID)
	if err != nil {
		return err
	}
	notes = append([]Notification{note}, notes...)
	if len(notes) > maxNotifications {
		notes = notes[:maxNotifications]
	}
	return p.writeJSON(ctx, notificationsKeyPrefix+identityID.String(), notes)
}

// IsClaimed reports whether this identity claimed the listing. It answers
// "claimed via this identity", not "claimed by anyone".
func (p *Cache) IsClaimed(ctx context.Context, identityID, listingID uuid.UUID) (bool, error) {
	claimed, err := p.claimedSet(ctx, identityID)
	if err != nil {
		return false, err
	}
	return contains(claimed, listingID), nil
}

// ClaimedIDs returns the identity's claimed listing ids.
func (p *Cache) ClaimedIDs(ctx context.Context, identityID uuid.UUID) ([]uuid.UUID, error) {
	return p.claimedSet(ctx, identityID)
}

// ListNotifications returns the identity's notifications, most recent first.
func (p *Cache) ListNotifications(ctx context.Context, identityID uuid.UUID) ([]Notification, error) {
	raw, err := p.kv.Get(ctx, notificationsKeyPrefix+identityID.String())
	if err != nil || raw == nil {
		return nil, nil
	}
	var notes []Notification
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil, fmt.Errorf("unmarshal notifications: %w", err)
	}
	return notes, nil
}

// ClearAll empties both the claimed set and the notification feed.
func (p *Cache) ClearAll(ctx context.Context, identityID uuid.UUID) error {
	if err := p.kv.Delete(ctx, claimsKeyPrefix+identityID.String()); err != nil {
		return err
	}
	return p.kv.Delete(ctx, notificationsKeyPrefix+identityID.String())
}

// Reconcile drops claimed ids whose listing is no longer reserved or
// completed server-side (deleted, expired, or somehow available again).
// Invoked on each authenticated full listing fetch.
func (p *Cache) Reconcile(ctx context.Context, identityID uuid.UUID, listings []model.FoodListing) error {
	claimed, err := p.claimedSet(ctx, identityID)
	if err != nil || len(claimed) == 0 {
		return err
	}

	statusByID := make(map[uuid.UUID]model.ListingStatus, len(listings))
	for _, l := range listings {
		statusByID[l.ID] = l.Status
	}

	kept := claimed[:0]
	for _, id := range claimed {
		status, ok := statusByID[id]
		if ok && (status == model.ListingStatusReserved || status == model.ListingStatusCompleted) {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(claimed) {
		return nil
	}
	return p.writeJSON(ctx, claimsKeyPrefix+identityID.String(), kept)
}

func (p *Cache) claimedSet(ctx context.Context, identityID uuid.UUID) ([]uuid.UUID, error) {
	raw, err := p.kv.Get(ctx, claimsKeyPrefix+identityID.String())
	if err != nil || raw == nil {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal claimed set: %w", err)
	}
	return ids, nil
}

func (p *Cache) writeJSON(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal projection: %w", err)
	}
	return p.kv.Set(ctx, key, payload, 0)
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
