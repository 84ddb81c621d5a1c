package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Collection keys, shared by the snapshot JSON object and the storage slots.
const (
	KeyTools  = "tools"
	KeyThemes = "themes"
	KeyVault  = "vault"
	KeyUI     = "ui"
)

// DecodeReport describes what lenient decoding had to repair, and which
// fields each surviving element actually carried.
type DecodeReport struct {
	Corrupt []string       // collections replaced by their default
	Dropped map[string]int // undecodable or id-less elements skipped, per collection
	Present Presence       // fields carried per element, by collection then id
}

// FieldSet is the set of JSON field names one element carried, after legacy
// aliases are resolved. A nil FieldSet means the element is complete.
type FieldSet map[string]struct{}

// Has reports whether the element carried field. Every field counts as
// carried when the set is nil.
func (f FieldSet) Has(field string) bool {
	if f == nil {
		return true
	}
	_, ok := f[field]
	return ok
}

// Presence maps a collection key to the field sets of its elements, by id.
//
// A struct decoded from JSON cannot tell "absent" from "zero", so a backup
// written by an older schema that never had a body field looks exactly like
// one whose body was cleared. Merging needs the difference: an absent field
// keeps the local value, an explicit one (even "") overrides it.
type Presence map[string]map[string]FieldSet

// Of returns the field set of one element, or nil when nothing was recorded.
func (p Presence) Of(collection, id string) FieldSet {
	return p[collection][id]
}

// Clean reports whether nothing was repaired.
func (r DecodeReport) Clean() bool {
	return len(r.Corrupt) == 0 && len(r.Dropped) == 0
}

func (r *DecodeReport) note(key string, dropped int, present map[string]FieldSet, err error) {
	if len(present) > 0 {
		if r.Present == nil {
			r.Present = make(Presence)
		}
		r.Present[key] = present
	}
	if err != nil {
		r.Corrupt = append(r.Corrupt, key)
	}
	if dropped > 0 {
		if r.Dropped == nil {
			r.Dropped = make(map[string]int)
		}
		r.Dropped[key] = dropped
	}
}

// DecodeSnapshot builds a snapshot from the fields of a JSON object. A
// missing or malformed collection falls back to empty without affecting the
// others, so data written by older or newer schema variants still loads.
func DecodeSnapshot(fields map[string]json.RawMessage) (Snapshot, DecodeReport) {
	var report DecodeReport
	snap := NewSnapshot()

	if raw, ok := fields[KeyTools]; ok {
		tools, present, dropped, err := decodeCollection(raw, toolAliases, sanitizeTool)
		report.note(KeyTools, dropped, present, err)
		if err == nil {
			snap.Tools = tools
		}
	}
	if raw, ok := fields[KeyThemes]; ok {
		themes, present, dropped, err := decodeCollection(raw, nil, sanitizeTheme)
		report.note(KeyThemes, dropped, present, err)
		if err == nil {
			snap.Themes = themes
		}
	}
	if raw, ok := fields[KeyVault]; ok {
		vault, present, dropped, err := decodeCollection(raw, nil, sanitizeVault)
		report.note(KeyVault, dropped, present, err)
		if err == nil {
			snap.Vault = vault
		}
	}
	if raw, ok := fields[KeyUI]; ok {
		ui, err := DecodeUI(raw)
		report.note(KeyUI, 0, nil, err)
		if err == nil {
			snap.UI = ui
		}
	}
	return snap, report
}

// DecodeTools parses a JSON array of tools. It fails only if raw is not an
// array; individual bad elements are dropped and counted.
func DecodeTools(raw json.RawMessage) ([]Tool, int, error) {
	tools, _, dropped, err := decodeCollection(raw, toolAliases, sanitizeTool)
	return tools, dropped, err
}

// DecodeThemes parses a JSON array of themes.
func DecodeThemes(raw json.RawMessage) ([]Theme, int, error) {
	themes, _, dropped, err := decodeCollection(raw, nil, sanitizeTheme)
	return themes, dropped, err
}

// DecodeVault parses a JSON array of vault entries.
func DecodeVault(raw json.RawMessage) ([]VaultEntry, int, error) {
	vault, _, dropped, err := decodeCollection(raw, nil, sanitizeVault)
	return vault, dropped, err
}

// DecodeUI parses a flat JSON object. null decodes to an empty state.
func DecodeUI(raw json.RawMessage) (UIState, error) {
	var ui UIState
	if err := json.Unmarshal(raw, &ui); err != nil {
		return nil, fmt.Errorf("decoding ui: %w", err)
	}
	if ui == nil {
		ui = UIState{}
	}
	return ui, nil
}

// toolAliases maps field names used by the first version of the app onto the
// current ones. An alias is only applied when the current name is absent.
var toolAliases = map[string]string{
	"desc": "oneLiner",
}

var timestampFields = []string{"createdAt", "updatedAt"}

func decodeCollection[T Entity](raw json.RawMessage, aliases map[string]string, sanitize func(*T) bool) ([]T, map[string]FieldSet, int, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, nil, 0, fmt.Errorf("decoding collection: %w", err)
	}

	out := make([]T, 0, len(elems))
	present := make(map[string]FieldSet, len(elems))
	dropped := 0
	for _, elem := range elems {
		v, fields, err := decodeElement[T](elem, aliases)
		if err != nil || !sanitize(&v) {
			dropped++
			continue
		}
		if _, dup := present[v.EntityID()]; dup {
			dropped++
			continue
		}
		present[v.EntityID()] = fields
		out = append(out, v)
	}
	return out, present, dropped, nil
}

// decodeElement decodes one object, first rewriting aliased field names and
// epoch-millisecond timestamps into the current encoding. It also returns
// the field names the object carried once that rewriting is done.
func decodeElement[T any](elem json.RawMessage, aliases map[string]string) (T, FieldSet, error) {
	var v T
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil {
		return v, nil, err
	}
	if fields == nil {
		return v, nil, fmt.Errorf("null element")
	}

	for old, current := range aliases {
		if _, ok := fields[current]; ok {
			continue
		}
		if val, ok := fields[old]; ok {
			fields[current] = val
		}
	}

	for _, key := range timestampFields {
		val, ok := fields[key]
		if !ok {
			continue
		}
		// null and "" mean "never set"; json would read null as 0 millis.
		switch string(bytes.TrimSpace(val)) {
		case "null", `""`:
			delete(fields, key)
			continue
		}
		var millis float64
		if json.Unmarshal(val, &millis) == nil {
			ts, _ := json.Marshal(time.UnixMilli(int64(millis)).UTC())
			fields[key] = ts
		}
	}

	normalized, err := json.Marshal(fields)
	if err != nil {
		return v, nil, err
	}
	if err := json.Unmarshal(normalized, &v); err != nil {
		return v, nil, err
	}

	carried := make(FieldSet, len(fields))
	for key := range fields {
		carried[key] = struct{}{}
	}
	return v, carried, nil
}

func sanitizeTool(t *Tool) bool {
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return false
	}
	t.Link = strings.TrimSpace(t.Link)
	t.Tags = NormalizeTags(t.Tags)
	if !t.Status.Valid() {
		t.Status = StatusDraft
	}
	t.CreatedAt, t.UpdatedAt = sanitizeTimes(t.CreatedAt, t.UpdatedAt)
	return true
}

func sanitizeTheme(th *Theme) bool {
	th.ID = strings.TrimSpace(th.ID)
	if th.ID == "" {
		return false
	}
	th.Tags = NormalizeTags(th.Tags)
	seq := make([]string, 0, len(th.Sequence))
	for _, id := range th.Sequence {
		if id != "" {
			seq = append(seq, id)
		}
	}
	th.Sequence = seq
	th.CreatedAt, th.UpdatedAt = sanitizeTimes(th.CreatedAt, th.UpdatedAt)
	return true
}

func sanitizeVault(v *VaultEntry) bool {
	v.ID = strings.TrimSpace(v.ID)
	if v.ID == "" {
		return false
	}
	v.URL = strings.TrimSpace(v.URL)
	v.CreatedAt, v.UpdatedAt = sanitizeTimes(v.CreatedAt, v.UpdatedAt)
	return true
}

// sanitizeTimes restores updatedAt >= createdAt.
func sanitizeTimes(created, updated time.Time) (time.Time, time.Time) {
	if updated.IsZero() || updated.Before(created) {
		updated = created
	}
	return created, updated
}
