package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vango-dev/tabdeck/internal/config"
	"github.com/vango-dev/tabdeck/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╦╗┌─┐┌┐ ┌┬┐┌─┐┌─┐┬┌─
   ║ ├─┤├┴┐ ││├┤ │  ├┴┐
   ╩ ┴ ┴└─┘─┴┘└─┘└─┘┴ ┴
`

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "tabdeck",
		Short: "A tabbed document workbench",
		Long: `Tabdeck is a tabbed document workbench served over HTTP.

Open text and image documents, create new ones from a form,
and follow every change live over a WebSocket. Features include:

  • Fine-grained reactive state
  • Keyed tab and pane reconciliation
  • Session restore across restarts
  • Live reload of documents changed on disk
  • s3:// documents`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.ConfigFileName, "Path to the config file")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		openCmd(&configPath),
		configCmd(&configPath),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the tabdeck ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}
