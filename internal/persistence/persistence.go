// Package persistence saves and restores the workshop state through a
// repository.SlotRepository.
//
// The state is split over four slots so a corrupt collection never takes
// the others down with it:
//
//	workshop.tools   JSON array of tools
//	workshop.themes  JSON array of themes
//	workshop.vault   JSON array of vault entries
//	workshop.ui      flat JSON object
//	workshop.schema  storage schema tag
//
// WHY FOUR SLOTS INSTEAD OF ONE DOCUMENT?
// With one JSON document, a single bad byte (a half-written value, a manual
// edit gone wrong) makes the whole state unreadable, and the only safe
// answer is to start empty. Splitting by collection limits the damage: a
// broken themes slot costs you your themes, not your tools.
//
// PER-SLOT FALLBACK:
// Load never fails because of content, only because of the backend. Each
// slot is decoded on its own:
//   - missing slot         → empty collection (first run)
//   - not JSON / not array → empty collection, logged as ErrStorageCorrupt
//   - one bad element      → that element is dropped, the rest load
//
// The next Save then rewrites every slot from the in-memory state, so a
// corrupt slot heals itself on the first edit. Save writes all slots in one
// backend transaction, so a crash never leaves tools from one save next to
// themes from another.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/model"
	"github.com/sakif/workshop/internal/repository"
)

// Slot keys.
const (
	SlotTools  = "workshop.tools"
	SlotThemes = "workshop.themes"
	SlotVault  = "workshop.vault"
	SlotUI     = "workshop.ui"
	SlotSchema = "workshop.schema"
)

// SchemaTag is written alongside the data on every save.
const SchemaTag = "workshop-storage/v2"

// slotFields pairs each storage slot with its snapshot field.
var slotFields = []struct{ slot, field string }{
	{SlotTools, model.KeyTools},
	{SlotThemes, model.KeyThemes},
	{SlotVault, model.KeyVault},
	{SlotUI, model.KeyUI},
}

// Adapter loads and saves snapshots.
type Adapter struct {
	repo   repository.SlotRepository
	logger *slog.Logger
}

// NewAdapter creates an adapter over repo.
func NewAdapter(repo repository.SlotRepository, logger *slog.Logger) *Adapter {
	return &Adapter{repo: repo, logger: logger}
}

// Load reads every slot. Missing slots load as empty collections. A slot
// whose content cannot be parsed loads as empty and is logged; only backend
// failures are returned.
func (a *Adapter) Load(ctx context.Context) (model.Snapshot, error) {
	fields := make(map[string]json.RawMessage, len(slotFields))
	for _, sf := range slotFields {
		value, ok, err := a.repo.Get(ctx, sf.slot)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("persistence: loading %s: %w", sf.slot, err)
		}
		if ok {
			fields[sf.field] = json.RawMessage(value)
		}
	}

	schema, ok, err := a.repo.Get(ctx, SlotSchema)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("persistence: loading %s: %w", SlotSchema, err)
	}
	if ok && schema != SchemaTag {
		a.logger.Warn("unexpected storage schema, loading leniently",
			slog.String("schema", schema),
			slog.String("want", SchemaTag),
		)
	}

	snap, report := model.DecodeSnapshot(fields)
	for _, field := range report.Corrupt {
		err := apperror.StorageCorrupt(slotFor(field), nil)
		a.logger.Warn("storage slot corrupt, using empty default",
			slog.String("slot", slotFor(field)),
			slog.String("error", err.Error()),
		)
	}
	for field, n := range report.Dropped {
		a.logger.Warn("dropped unreadable records",
			slog.String("slot", slotFor(field)),
			slog.Int("count", n),
		)
	}

	a.logger.Debug("state loaded",
		slog.Int("tools", len(snap.Tools)),
		slog.Int("themes", len(snap.Themes)),
		slog.Int("vault", len(snap.Vault)),
	)
	return snap, nil
}

// Save writes all slots in one backend transaction.
func (a *Adapter) Save(ctx context.Context, snap model.Snapshot) error {
	slots, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := a.repo.Put(ctx, slots); err != nil {
		return fmt.Errorf("persistence: saving: %w", err)
	}
	return nil
}

// Reset deletes every slot.
func (a *Adapter) Reset(ctx context.Context) error {
	keys := make([]string, 0, len(slotFields)+1)
	for _, sf := range slotFields {
		keys = append(keys, sf.slot)
	}
	keys = append(keys, SlotSchema)

	if err := a.repo.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("persistence: resetting: %w", err)
	}
	return nil
}

// Encode renders snap as slot values.
func Encode(snap model.Snapshot) (map[string]string, error) {
	snap = snap.Clone()
	values := map[string]any{
		SlotTools:  snap.Tools,
		SlotThemes: snap.Themes,
		SlotVault:  snap.Vault,
		SlotUI:     snap.UI,
	}

	slots := make(map[string]string, len(values)+1)
	for slot, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("persistence: encoding %s: %w", slot, err)
		}
		slots[slot] = string(data)
	}
	slots[SlotSchema] = SchemaTag
	return slots, nil
}

func slotFor(field string) string {
	for _, sf := range slotFields {
		if sf.field == field {
			return sf.slot
		}
	}
	return field
}
