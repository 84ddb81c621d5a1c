// Package backup encodes the store into a versioned, downloadable envelope
// and validates envelopes on the way back in.
//
// Envelope shape:
//
//	{
//	  "schemaTag": "acw-workshop-backup/v1",
//	  "exportedAt": "2025-06-01T09:00:00Z",
//	  "data": {"tools": [...], "themes": [...], "vault": [...], "ui": {...}}
//	}
//
// Import is strict about the envelope and lenient about data: a wrong schema
// tag or a missing data object is rejected, while missing or malformed
// collections inside data fall back to empty so backups written by older
// versions still load.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/model"
)

// SchemaTag identifies backup files this codec reads and writes.
const SchemaTag = "acw-workshop-backup/v1"

// Envelope wraps a snapshot for export.
type Envelope struct {
	SchemaTag  string         `json:"schemaTag"`
	ExportedAt time.Time      `json:"exportedAt"`
	Data       model.Snapshot `json:"data"`
}

// Export wraps a copy of snap, stamped with now.
func Export(snap model.Snapshot, now time.Time) Envelope {
	return Envelope{
		SchemaTag:  SchemaTag,
		ExportedAt: now.UTC(),
		Data:       snap.Clone(),
	}
}

// Marshal encodes the envelope as indented JSON, ready to be saved as a file.
func (e Envelope) Marshal() ([]byte, error) {
	out, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("backup: encoding envelope: %w", err)
	}
	return append(out, '\n'), nil
}

// Filename returns the conventional download name for a backup taken at now.
func Filename(now time.Time) string {
	return "workshop-backup-" + now.Format(time.DateOnly) + ".json"
}

// Imported is a validated backup.
type Imported struct {
	ExportedAt time.Time
	Snapshot   model.Snapshot
	Report     model.DecodeReport
}

// rawEnvelope defers decoding of data so collections can be sanitized one by
// one.
type rawEnvelope struct {
	SchemaTag  string                     `json:"schemaTag"`
	ExportedAt json.RawMessage            `json:"exportedAt"`
	Data       map[string]json.RawMessage `json:"data"`
}

// Import parses and validates raw. Every failure wraps
// apperror.ErrInvalidBackup.
func Import(raw []byte) (Imported, error) {
	var env rawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Imported{}, apperror.InvalidBackup("file is not a valid backup document", err)
	}
	if env.SchemaTag != SchemaTag {
		return Imported{}, apperror.InvalidBackup(
			fmt.Sprintf("unsupported schema tag %q (want %q)", env.SchemaTag, SchemaTag), nil)
	}
	if env.Data == nil {
		return Imported{}, apperror.InvalidBackup("data is missing", nil)
	}

	snap, report := model.DecodeSnapshot(env.Data)
	return Imported{
		ExportedAt: parseExportedAt(env.ExportedAt),
		Snapshot:   snap,
		Report:     report,
	}, nil
}

// parseExportedAt accepts an RFC 3339 string or epoch milliseconds. The
// export time is informational, so anything else yields the zero time.
func parseExportedAt(raw json.RawMessage) time.Time {
	var t time.Time
	if json.Unmarshal(raw, &t) == nil {
		return t
	}
	var millis int64
	if json.Unmarshal(raw, &millis) == nil {
		return time.UnixMilli(millis).UTC()
	}
	return time.Time{}
}
