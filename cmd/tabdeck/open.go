package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/tabdeck/internal/config"
	"github.com/vango-dev/tabdeck/pkg/app"
	"github.com/vango-dev/tabdeck/pkg/documents"
	"github.com/vango-dev/tabdeck/pkg/reactive"
	"github.com/vango-dev/tabdeck/pkg/view"
)

func openCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <path>...",
		Short: "Open documents and print the resulting tabs",
		Long: `Open documents without starting a server and print the tabs
they produce. Useful for checking that files load.

Examples:
  tabdeck open notes.txt
  tabdeck open diagram.svg photo.png s3://bucket/todo.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			opener, err := newOpener(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return runOpen(cmd.Context(), cmd.OutOrStdout(), opener, args)
		},
	}
	return cmd
}

func runOpen(ctx context.Context, w io.Writer, opener documents.Opener, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt := reactive.NewRuntime()
	defer rt.Dispose()

	st := app.New(rt, app.WithOpener(opener))
	bar := view.NewTabBar(st)
	panes := view.NewDocumentContainer(st)

	failed := 0
	for _, p := range paths {
		if _, err := st.OpenDocument(ctx, p); err != nil {
			errorMsg(w, "%v", err)
			failed++
		}
	}

	for _, b := range bar.Buttons() {
		marker := " "
		if b.Active.Peek() {
			marker = "▸"
		}
		pane, _ := panes.Pane(b.Key)
		fmt.Fprintf(w, "  %s %-24s %s\n", marker, b.Label.Peek(), describe(pane.Content.Peek()))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to open", failed, len(paths))
	}
	success(w, "Opened %d documents", len(paths))
	return nil
}

func describe(c view.PaneContent) string {
	switch doc := c.Document.(type) {
	case *documents.TextDocument:
		return fmt.Sprintf("%-6s %d bytes", c.Kind, len(doc.Content.Peek()))
	case *documents.ImageDocument:
		return fmt.Sprintf("%-6s %s %dx%d", c.Kind, doc.Format, doc.Width, doc.Height)
	default:
		return c.Kind.String()
	}
}
