// Command wordray adds Word Wise glosses and X-Ray notes to e-books.
//
// Usage:
//
//	wordray annotate [flags] BOOK...
//	wordray dict build --lang LANG
//	wordray dict lookup --lang LANG WORD...
//
// Settings come from a YAML file (--config or WORDRAY_CONFIG) and WORDRAY_*
// environment variables.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/japaniel/wordray/pkg/config"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "wordray",
		Short: "Annotate e-books with Word Wise glosses and X-Ray notes",
		Long: `wordray locates dictionary words and named entities in a book and writes
the annotations back: an annotated copy for EPUB, language layer and X-Ray
sidecar files for Kindle formats.

Examples:
  wordray dict build --lang en
  wordray annotate --asin B000FC0SIM oz.azw3 --lemmas kindle_lemmas.json
  wordray annotate oz.epub`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: WORDRAY_CONFIG)")

	root.AddCommand(newAnnotateCmd(a), newDictCmd(a))
	return root
}

func (a *app) load(logOut io.Writer) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = config.NewLogger(cfg.Log, logOut)
	return nil
}
