// Package service contains the business logic layer.
//
// WorkshopService is the only entry point the HTTP handlers and the CLI use.
// It owns the in-memory store, serializes every operation behind one mutex
// and persists the whole state after each successful mutation. If the save
// fails the mutation is rolled back, so memory and storage never disagree.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/backup"
	"github.com/sakif/workshop/internal/merge"
	"github.com/sakif/workshop/internal/model"
	"github.com/sakif/workshop/internal/persistence"
	"github.com/sakif/workshop/internal/prompt"
	"github.com/sakif/workshop/internal/store"
)

// Persister saves and restores the workshop state. *persistence.Adapter
// implements it.
type Persister interface {
	Load(ctx context.Context) (model.Snapshot, error)
	Save(ctx context.Context, snap model.Snapshot) error
	Reset(ctx context.Context) error
}

var _ Persister = (*persistence.Adapter)(nil)

// WorkshopService coordinates the store, persistence and prompt templates.
type WorkshopService struct {
	mu        sync.Mutex
	store     *store.Store
	persist   Persister
	templates *prompt.Library
	logger    *slog.Logger
	now       func() time.Time
}

// NewWorkshopService loads the persisted state and returns a service ready
// to use. opts configure the underlying store (clock, id generator).
func NewWorkshopService(ctx context.Context, persist Persister, templates *prompt.Library, logger *slog.Logger, opts ...store.Option) (*WorkshopService, error) {
	snap, err := persist.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading workshop: %w", err)
	}
	if templates == nil {
		templates = prompt.NewLibrary()
	}

	s := &WorkshopService{
		store:     store.FromSnapshot(snap, opts...),
		persist:   persist,
		templates: templates,
		logger:    logger,
		now:       time.Now,
	}

	tools, themes, vault := s.store.Counts()
	logger.Info("workshop loaded",
		slog.Int("tools", tools),
		slog.Int("themes", themes),
		slog.Int("vault", vault),
	)
	return s, nil
}

// mutate runs fn against the store under the lock. When fn reports a change
// the new state is saved; a failed save restores the state fn started from.
//
// ROLLBACK:
// The store is changed first and saved second. If the save fails we put the
// pre-mutation snapshot back, so memory and storage never disagree: the
// caller sees an error and the UI still shows what is actually on disk.
// Operations that change nothing (deleting an absent id, a no-op move)
// report changed=false and skip the save entirely.
func (s *WorkshopService) mutate(ctx context.Context, op string, fn func(st *store.Store) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.Snapshot()
	changed, err := fn(s.store)
	if err != nil || !changed {
		return err
	}

	if err := s.persist.Save(ctx, s.store.Snapshot()); err != nil {
		s.store.Replace(before)
		s.logger.Error("failed to save workshop, change rolled back",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// read runs fn under the lock without saving.
func (s *WorkshopService) read(fn func(st *store.Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.store)
}

// =========================================================================
// TOOLS
// =========================================================================

func (s *WorkshopService) ListTools(q model.Query) []model.Tool {
	var out []model.Tool
	s.read(func(st *store.Store) { out = st.Tools(q) })
	return out
}

func (s *WorkshopService) GetTool(id string) (model.Tool, error) {
	var (
		tool model.Tool
		ok   bool
	)
	s.read(func(st *store.Store) { tool, ok = st.Tool(id) })
	if !ok {
		return model.Tool{}, apperror.NotFound("tool", id)
	}
	return tool, nil
}

func (s *WorkshopService) CreateTool(ctx context.Context, in model.ToolInput) (model.Tool, error) {
	var tool model.Tool
	err := s.mutate(ctx, "creating tool", func(st *store.Store) (bool, error) {
		var err error
		tool, err = st.CreateTool(in)
		return err == nil, err
	})
	if err != nil {
		return model.Tool{}, err
	}

	s.logger.Info("tool created",
		slog.String("id", tool.ID),
		slog.String("name", tool.Name),
	)
	return tool, nil
}

func (s *WorkshopService) UpdateTool(ctx context.Context, id string, patch model.ToolPatch) (model.Tool, error) {
	var tool model.Tool
	err := s.mutate(ctx, "updating tool", func(st *store.Store) (bool, error) {
		var err error
		tool, err = st.UpdateTool(id, patch)
		return err == nil, err
	})
	if err != nil {
		return model.Tool{}, err
	}

	s.logger.Info("tool updated", slog.String("id", id))
	return tool, nil
}

// DeleteTool removes a tool and every reference to it in theme sequences.
// Deleting an absent tool is not an error.
func (s *WorkshopService) DeleteTool(ctx context.Context, id string) error {
	var deleted bool
	err := s.mutate(ctx, "deleting tool", func(st *store.Store) (bool, error) {
		deleted = st.DeleteTool(id)
		return deleted, nil
	})
	if err != nil {
		return err
	}

	if deleted {
		s.logger.Info("tool deleted", slog.String("id", id))
	}
	return nil
}

// DuplicateTool copies a tool. Duplicating a tool that no longer exists is a
// silent no-op: ok is false and nothing is saved.
func (s *WorkshopService) DuplicateTool(ctx context.Context, id string) (tool model.Tool, ok bool, err error) {
	err = s.mutate(ctx, "duplicating tool", func(st *store.Store) (bool, error) {
		tool, ok = st.DuplicateTool(id)
		return ok, nil
	})
	if err != nil {
		return model.Tool{}, false, err
	}
	if !ok {
		s.logger.Debug("duplicate skipped, source missing", slog.String("source", id))
		return model.Tool{}, false, nil
	}

	s.logger.Info("tool duplicated",
		slog.String("source", id),
		slog.String("id", tool.ID),
	)
	return tool, true, nil
}

// =========================================================================
// THEMES
// =========================================================================

func (s *WorkshopService) ListThemes(q model.Query) []model.Theme {
	var out []model.Theme
	s.read(func(st *store.Store) { out = st.Themes(q) })
	return out
}

func (s *WorkshopService) GetTheme(id string) (model.Theme, error) {
	var (
		theme model.Theme
		ok    bool
	)
	s.read(func(st *store.Store) { theme, ok = st.Theme(id) })
	if !ok {
		return model.Theme{}, apperror.NotFound("theme", id)
	}
	return theme, nil
}

// ThemeTools resolves a theme's sequence. Entries for dangling ids are nil.
func (s *WorkshopService) ThemeTools(id string) ([]*model.Tool, error) {
	var (
		tools []*model.Tool
		ok    bool
	)
	s.read(func(st *store.Store) {
		var theme model.Theme
		if theme, ok = st.Theme(id); ok {
			tools = st.ThemeTools(theme)
		}
	})
	if !ok {
		return nil, apperror.NotFound("theme", id)
	}
	return tools, nil
}

func (s *WorkshopService) CreateTheme(ctx context.Context, in model.ThemeInput) (model.Theme, error) {
	var theme model.Theme
	err := s.mutate(ctx, "creating theme", func(st *store.Store) (bool, error) {
		var err error
		theme, err = st.CreateTheme(in)
		return err == nil, err
	})
	if err != nil {
		return model.Theme{}, err
	}

	s.logger.Info("theme created",
		slog.String("id", theme.ID),
		slog.String("title", theme.Title),
	)
	return theme, nil
}

func (s *WorkshopService) UpdateTheme(ctx context.Context, id string, patch model.ThemePatch) (model.Theme, error) {
	var theme model.Theme
	err := s.mutate(ctx, "updating theme", func(st *store.Store) (bool, error) {
		var err error
		theme, err = st.UpdateTheme(id, patch)
		return err == nil, err
	})
	if err != nil {
		return model.Theme{}, err
	}

	s.logger.Info("theme updated", slog.String("id", id))
	return theme, nil
}

// DeleteTheme removes a theme. Its tools are untouched.
func (s *WorkshopService) DeleteTheme(ctx context.Context, id string) error {
	var deleted bool
	err := s.mutate(ctx, "deleting theme", func(st *store.Store) (bool, error) {
		deleted = st.DeleteTheme(id)
		return deleted, nil
	})
	if err != nil {
		return err
	}

	if deleted {
		s.logger.Info("theme deleted", slog.String("id", id))
	}
	return nil
}

// ReorderSequence applies a sequence operation to a theme.
func (s *WorkshopService) ReorderSequence(ctx context.Context, themeID string, op store.SequenceOp) (model.Theme, error) {
	var theme model.Theme
	err := s.mutate(ctx, "editing sequence", func(st *store.Store) (bool, error) {
		before, _ := st.Theme(themeID)
		var err error
		theme, err = st.ReorderThemeSequence(themeID, op)
		if err != nil {
			return false, err
		}
		return !slices.Equal(before.Sequence, theme.Sequence), nil
	})
	if err != nil {
		return model.Theme{}, err
	}

	s.logger.Debug("sequence edited",
		slog.String("theme", themeID),
		slog.String("op", string(op.Kind)),
		slog.Int("length", len(theme.Sequence)),
	)
	return theme, nil
}

// =========================================================================
// VAULT
// =========================================================================

func (s *WorkshopService) ListVault(q model.Query) []model.VaultEntry {
	var out []model.VaultEntry
	s.read(func(st *store.Store) { out = st.Vault(q) })
	return out
}

func (s *WorkshopService) GetVaultEntry(id string) (model.VaultEntry, error) {
	var (
		entry model.VaultEntry
		ok    bool
	)
	s.read(func(st *store.Store) { entry, ok = st.VaultEntry(id) })
	if !ok {
		return model.VaultEntry{}, apperror.NotFound("vault entry", id)
	}
	return entry, nil
}

func (s *WorkshopService) CreateVaultEntry(ctx context.Context, in model.VaultInput) (model.VaultEntry, error) {
	var entry model.VaultEntry
	err := s.mutate(ctx, "creating vault entry", func(st *store.Store) (bool, error) {
		var err error
		entry, err = st.CreateVaultEntry(in)
		return err == nil, err
	})
	if err != nil {
		return model.VaultEntry{}, err
	}

	s.logger.Info("vault entry created",
		slog.String("id", entry.ID),
		slog.String("url", entry.URL),
	)
	return entry, nil
}

func (s *WorkshopService) UpdateVaultEntry(ctx context.Context, id string, patch model.VaultPatch) (model.VaultEntry, error) {
	var entry model.VaultEntry
	err := s.mutate(ctx, "updating vault entry", func(st *store.Store) (bool, error) {
		var err error
		entry, err = st.UpdateVaultEntry(id, patch)
		return err == nil, err
	})
	if err != nil {
		return model.VaultEntry{}, err
	}

	s.logger.Info("vault entry updated", slog.String("id", id))
	return entry, nil
}

func (s *WorkshopService) DeleteVaultEntry(ctx context.Context, id string) error {
	var deleted bool
	err := s.mutate(ctx, "deleting vault entry", func(st *store.Store) (bool, error) {
		deleted = st.DeleteVaultEntry(id)
		return deleted, nil
	})
	if err != nil {
		return err
	}

	if deleted {
		s.logger.Info("vault entry deleted", slog.String("id", id))
	}
	return nil
}

// =========================================================================
// UI STATE & NOTES
// =========================================================================

func (s *WorkshopService) UI() model.UIState {
	var ui model.UIState
	s.read(func(st *store.Store) { ui = st.UI() })
	return ui
}

// SetUI merges values over the current UI state.
func (s *WorkshopService) SetUI(ctx context.Context, values model.UIState) (model.UIState, error) {
	var ui model.UIState
	err := s.mutate(ctx, "saving ui state", func(st *store.Store) (bool, error) {
		st.SetUI(values)
		ui = st.UI()
		return len(values) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return ui, nil
}

func (s *WorkshopService) Notes() string {
	var notes string
	s.read(func(st *store.Store) { notes = st.Notes() })
	return notes
}

func (s *WorkshopService) SetNotes(ctx context.Context, text string) error {
	return s.mutate(ctx, "saving notes", func(st *store.Store) (bool, error) {
		st.SetNotes(text)
		return true, nil
	})
}

// =========================================================================
// PROMPTS & CARDS
// =========================================================================

// Prompt renders the named template for a theme. An empty name selects the
// default template.
func (s *WorkshopService) Prompt(themeID, templateName string) (string, error) {
	tmpl, err := s.templates.Get(strings.TrimSpace(templateName))
	if err != nil {
		return "", err
	}

	var (
		out string
		ok  bool
	)
	s.read(func(st *store.Store) {
		var theme model.Theme
		if theme, ok = st.Theme(themeID); ok {
			out = prompt.BuildPrompt(theme, tmpl, st.Tool)
		}
	})
	if !ok {
		return "", apperror.NotFound("theme", themeID)
	}
	return out, nil
}

func (s *WorkshopService) Templates() []string {
	return s.templates.Names()
}

func (s *WorkshopService) ToolCard(id string) (string, error) {
	tool, err := s.GetTool(id)
	if err != nil {
		return "", err
	}
	return prompt.ToolCardText(tool), nil
}

func (s *WorkshopService) ThemeCard(id string) (string, error) {
	var (
		out string
		ok  bool
	)
	s.read(func(st *store.Store) {
		var theme model.Theme
		if theme, ok = st.Theme(id); ok {
			out = prompt.ThemeCardText(theme, st.Tool)
		}
	})
	if !ok {
		return "", apperror.NotFound("theme", id)
	}
	return out, nil
}

// =========================================================================
// BACKUP & RESET
// =========================================================================

// Export encodes the current state as a backup file and returns its bytes
// and conventional filename.
func (s *WorkshopService) Export() ([]byte, string, error) {
	var snap model.Snapshot
	s.read(func(st *store.Store) { snap = st.Snapshot() })

	now := s.now()
	data, err := backup.Export(snap, now).Marshal()
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("backup exported",
		slog.Int("tools", len(snap.Tools)),
		slog.Int("themes", len(snap.Themes)),
		slog.Int("vault", len(snap.Vault)),
	)
	return data, backup.Filename(now), nil
}

// Import validates raw as a backup and reconciles it with the current state
// using mode. An invalid backup leaves the state untouched.
func (s *WorkshopService) Import(ctx context.Context, raw []byte, mode merge.Mode) (merge.Result, error) {
	imported, err := backup.Import(raw)
	if err != nil {
		s.logger.Warn("backup rejected", slog.String("error", err.Error()))
		return merge.Result{}, err
	}

	var res merge.Result
	err = s.mutate(ctx, "importing backup", func(st *store.Store) (bool, error) {
		res = merge.Apply(mode, st.Snapshot(), imported.Snapshot, imported.Report.Present)
		st.Replace(res.Snapshot)
		return true, nil
	})
	if err != nil {
		return merge.Result{}, err
	}

	s.logger.Info("backup imported",
		slog.String("mode", string(mode)),
		slog.Time("exported_at", imported.ExportedAt),
		slog.Any("repaired", imported.Report.Corrupt),
		slog.Int("tools_inserted", res.Tools.Inserted),
		slog.Int("tools_updated", res.Tools.Updated),
		slog.Int("themes_inserted", res.Themes.Inserted),
		slog.Int("themes_updated", res.Themes.Updated),
		slog.Int("vault_inserted", res.Vault.Inserted),
		slog.Int("vault_updated", res.Vault.Updated),
	)
	return res, nil
}

// Reset clears every collection and deletes the persisted state.
func (s *WorkshopService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.Snapshot()
	s.store.Reset()
	if err := s.persist.Reset(ctx); err != nil {
		s.store.Replace(before)
		s.logger.Error("failed to reset workshop", slog.String("error", err.Error()))
		return fmt.Errorf("resetting workshop: %w", err)
	}

	s.logger.Info("workshop reset")
	return nil
}
