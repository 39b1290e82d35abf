package snapshot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/copiiworld/cajita-go/internal/models"
)

const keyPrefix = "session."

// Codec serializes a slot store to its durable form and back. Restoring a
// snapshot consumes it: a later visit never re-applies stale work.
type Codec struct {
	kv KV
}

// NewCodec creates a codec over the given KV store.
func NewCodec(kv KV) *Codec {
	return &Codec{kv: kv}
}

func snapshotKey(orderID string) string {
	return keyPrefix + orderID
}

// Save writes the ordered slot list under a key scoped to orderID,
// replacing any earlier snapshot for the same order. Callers pass the
// output of Session.SnapshotSlots so pending live crops are already
// committed.
func (c *Codec) Save(ctx context.Context, orderID string, slots []models.ImageSlot) error {
	entries := make([]models.SnapshotEntry, len(slots))
	for i, slot := range slots {
		entries[i] = models.SnapshotEntry{
			ID:       slot.ID,
			FileName: slot.FileName,
			Image:    base64.StdEncoding.EncodeToString(slot.SourceBytes),
			Crop:     slot.Crop,
		}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, snapshotKey(orderID), string(data))
}

// Restore reads the snapshot for orderID, rebuilds the slots with their
// original ids, file names and crops plus fresh display handles, and then
// deletes the stored snapshot. A missing, corrupt or partially written
// snapshot yields (nil, nil): the editor never hard-fails on bad persisted
// state, worst case the user re-uploads.
func (c *Codec) Restore(ctx context.Context, orderID string) ([]models.ImageSlot, error) {
	key := snapshotKey(orderID)
	raw, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var entries []models.SnapshotEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Debug("snapshot: corrupt snapshot discarded", "order", orderID, "err", err)
		_ = c.kv.Delete(ctx, key)
		return nil, nil
	}

	slots := make([]models.ImageSlot, 0, len(entries))
	for _, e := range entries {
		data, err := base64.StdEncoding.DecodeString(e.Image)
		if err != nil {
			slog.Debug("snapshot: corrupt image entry, snapshot discarded", "order", orderID, "slot", e.ID, "err", err)
			_ = c.kv.Delete(ctx, key)
			return nil, nil
		}
		slots = append(slots, models.ImageSlot{
			ID:            e.ID,
			FileName:      e.FileName,
			SourceBytes:   data,
			DisplayHandle: "media/" + uuid.NewString(),
			Crop:          e.Crop,
		})
	}

	if err := c.kv.Delete(ctx, key); err != nil {
		slog.Warn("snapshot: could not delete consumed snapshot", "order", orderID, "err", err)
	}
	return slots, nil
}

// Discard drops any pending snapshot for orderID. Called after a confirmed
// submission.
func (c *Codec) Discard(ctx context.Context, orderID string) error {
	return c.kv.Delete(ctx, snapshotKey(orderID))
}
