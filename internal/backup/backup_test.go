package backup

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/model"
)

func sampleSnapshot() model.Snapshot {
	at := time.Date(2025, 5, 4, 10, 30, 0, 0, time.UTC)
	snap := model.NewSnapshot()
	snap.Tools = []model.Tool{
		{ID: "t1", Name: "Breathe", OneLiner: "slow down", Body: "In.\n\nOut.", Tags: []string{"calm"}, Status: model.StatusReady, CreatedAt: at, UpdatedAt: at.Add(time.Hour)},
		{ID: "t2", Name: "Ground", Tags: []string{}, Status: model.StatusDraft, CreatedAt: at, UpdatedAt: at},
	}
	snap.Themes = []model.Theme{
		{ID: "th1", Title: "Calm", Desc: "settle", Tags: []string{}, Sequence: []string{"t1", "t2", "t1", "gone"}, CreatedAt: at, UpdatedAt: at},
	}
	snap.Vault = []model.VaultEntry{
		{ID: "v1", Title: "Post", URL: "https://example.com/p", Note: "first", ThemeID: "th1", ThemeName: "Calm", CreatedAt: at, UpdatedAt: at},
	}
	snap.UI = model.UIState{"notes": "bring water", "tab": "themes"}
	return snap
}

func TestRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	raw, err := Export(snap, now).Marshal()
	require.NoError(t, err)

	imported, err := Import(raw)
	require.NoError(t, err)

	assert.True(t, imported.Report.Clean())
	assert.True(t, imported.ExportedAt.Equal(now))
	if diff := cmp.Diff(snap, imported.Snapshot); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_EmptySnapshot(t *testing.T) {
	raw, err := Export(model.NewSnapshot(), time.Now()).Marshal()
	require.NoError(t, err)

	imported, err := Import(raw)
	require.NoError(t, err)
	if diff := cmp.Diff(model.NewSnapshot(), imported.Snapshot); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `this is not json`},
		{name: "wrong schema tag", raw: `{"schemaTag":"someone-else/v9","data":{"tools":[]}}`},
		{name: "missing schema tag", raw: `{"data":{"tools":[]}}`},
		{name: "missing data", raw: `{"schemaTag":"` + SchemaTag + `"}`},
		{name: "null data", raw: `{"schemaTag":"` + SchemaTag + `","data":null}`},
		{name: "data not an object", raw: `{"schemaTag":"` + SchemaTag + `","data":[1,2]}`},
		{name: "top level array", raw: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrInvalidBackup), "got %v", err)
		})
	}
}

func TestImport_TolerantData(t *testing.T) {
	raw := `{
		"schemaTag": "` + SchemaTag + `",
		"exportedAt": 1717228800000,
		"data": {
			"tools": [{"id":"t1","name":"Breathe","desc":"legacy purpose","createdAt":1717228800000,"link":"https://x"}],
			"themes": "garbage",
			"extra": {"ignored": true}
		}
	}`

	imported, err := Import([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, []string{model.KeyThemes}, imported.Report.Corrupt)
	require.Len(t, imported.Snapshot.Tools, 1)
	assert.Equal(t, "legacy purpose", imported.Snapshot.Tools[0].OneLiner)
	assert.Equal(t, []model.Theme{}, imported.Snapshot.Themes)
	assert.Equal(t, []model.VaultEntry{}, imported.Snapshot.Vault)
	assert.Equal(t, model.UIState{}, imported.Snapshot.UI)
	assert.True(t, imported.ExportedAt.Equal(time.UnixMilli(1717228800000)))
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "workshop-backup-2026-10-18.json", Filename(now))
}
