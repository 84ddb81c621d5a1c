package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/workshop/internal/merge"
	"github.com/sakif/workshop/internal/model"
	"github.com/sakif/workshop/internal/server"
	"github.com/sakif/workshop/internal/service"
)

func (a *app) serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				a.cfg.Port = port
			}
			return a.withService(cmd.Context(), func(svc *service.WorkshopService) error {
				return server.New(a.cfg, a.logger, svc).Start(cmd.Context())
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from WORKSHOP_PORT)")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup file",
		Long:  "Write a backup of every tool, theme, vault entry and the UI state. Without -o the file is named workshop-backup-YYYY-MM-DD.json in the current directory; -o - writes to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *service.WorkshopService) error {
				data, filename, err := svc.Export()
				if err != nil {
					return err
				}
				if out == "-" {
					_, err := a.stdout.Write(data)
					return err
				}
				if out == "" {
					out = filename
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("writing backup: %w", err)
				}
				fmt.Fprintf(a.stdout, "backup written to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, or - for stdout")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var (
		modeFlag string
		yes      bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a backup file",
		Long:  "Restore a backup. --mode merge (default) keeps local entities and takes the newer copy of shared ones; --mode overwrite replaces everything and needs --yes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := merge.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			if mode == merge.ModeOverwrite && !yes {
				return fmt.Errorf("overwrite replaces the whole workshop; re-run with --yes to confirm")
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading backup: %w", err)
			}

			return a.withService(cmd.Context(), func(svc *service.WorkshopService) error {
				res, err := svc.Import(cmd.Context(), raw, mode)
				if err != nil {
					return userError(err)
				}
				fmt.Fprintf(a.stdout, "imported (%s): tools %s, themes %s, vault %s\n",
					mode, formatStats(res.Tools), formatStats(res.Themes), formatStats(res.Vault))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", string(merge.ModeMerge), "merge or overwrite")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm a destructive import")
	return cmd
}

func formatStats(s merge.Stats) string {
	return fmt.Sprintf("+%d ~%d =%d", s.Inserted, s.Updated, s.Kept)
}

func (a *app) promptCmd() *cobra.Command {
	var template string
	cmd := &cobra.Command{
		Use:   "prompt <themeID>",
		Short: "Print the prompt for a theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *service.WorkshopService) error {
				text, err := svc.Prompt(args[0], template)
				if err != nil {
					return userError(err)
				}
				_, err = io.WriteString(a.stdout, text)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&template, "template", "", "template name (default: default)")
	return cmd
}

func (a *app) templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List prompt templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *service.WorkshopService) error {
				for _, name := range svc.Templates() {
					fmt.Fprintln(a.stdout, name)
				}
				return nil
			})
		},
	}
}

func (a *app) toolsCmd() *cobra.Command {
	var q, tag, status string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List tools, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *service.WorkshopService) error {
				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tTAGS\tUPDATED")
				for _, t := range svc.ListTools(model.Query{Text: q, Tag: tag, Status: model.Status(status)}) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						t.ID, t.Name, t.Status, strings.Join(t.Tags, ","), t.UpdatedAt.Format(time.DateTime))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&q, "q", "q", "", "search text")
	cmd.Flags().StringVar(&tag, "tag", "", "only tools with this tag")
	cmd.Flags().StringVar(&status, "status", "", "draft or ready")
	return cmd
}

func (a *app) themesCmd() *cobra.Command {
	var q, tag string
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List themes, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *service.WorkshopService) error {
				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tTOOLS\tTAGS\tUPDATED")
				for _, th := range svc.ListThemes(model.Query{Text: q, Tag: tag}) {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
						th.ID, th.Title, len(th.Sequence), strings.Join(th.Tags, ","), th.UpdatedAt.Format(time.DateTime))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&q, "q", "q", "", "search text")
	cmd.Flags().StringVar(&tag, "tag", "", "only themes with this tag")
	return cmd
}

func (a *app) notesCmd() *cobra.Command {
	var set string
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Print the workshop notes, or replace them with --set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *service.WorkshopService) error {
				if cmd.Flags().Changed("set") {
					return svc.SetNotes(cmd.Context(), set)
				}
				_, err := fmt.Fprintln(a.stdout, svc.Notes())
				return err
			})
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "new notes text")
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every tool, theme and vault entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes everything; re-run with --yes to confirm")
			}
			return a.withService(cmd.Context(), func(svc *service.WorkshopService) error {
				if err := svc.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, "workshop reset")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
