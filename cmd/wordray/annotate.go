package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/wordray/pkg/dictionary"
	"github.com/japaniel/wordray/pkg/lemma"
	"github.com/japaniel/wordray/pkg/pipeline"
	"github.com/japaniel/wordray/pkg/segment"
)

func newAnnotateCmd(a *app) *cobra.Command {
	var (
		format     string
		asin       string
		lemmasPath string
		offline    bool
	)
	cmd := &cobra.Command{
		Use:   "annotate BOOK...",
		Short: "Annotate books",
		Long: `Annotate books. The format is taken from the file extension unless
--format is given. EPUB books are written next to the original as
<name>_x_ray.epub; Kindle books get <name>.sdr/ sidecar files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			if offline {
				cfg.Knowledge.Enabled = false
			}

			deps := pipeline.Deps{Logger: a.logger}
			if lemmasPath != "" {
				t, err := lemma.LoadTable(lemmasPath)
				if err != nil {
					return fmt.Errorf("load lemma table: %w", err)
				}
				deps.Lemmas = t
			}
			if cfg.Dictionary.WordWise {
				words, err := dictionary.Load(dictionary.DumpPath(cfg.Dictionary.Dir, cfg.Language, cfg.Dictionary.GlossLang))
				switch {
				case err == nil:
					deps.Words = words
				case errors.Is(err, os.ErrNotExist):
					a.logger.Warn("no dictionary, Word Wise disabled; run 'wordray dict build'", "lang", cfg.Language)
				default:
					return err
				}
			}

			k, err := pipeline.OpenKnowledge(cfg, a.logger)
			if err != nil {
				return err
			}
			defer k.Close()
			k.Apply(&deps)

			p, err := pipeline.New(cfg, deps)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(cfg.Pipeline.Workers, cfg.Pipeline.ProgressBuffer)
			runner.Start(ctx)
			defer runner.Close()

			type submitted struct {
				book pipeline.Book
				job  *pipeline.Job
				out  *pipeline.Output
			}
			var jobs []submitted
			for _, path := range args {
				f := format
				if f == "" {
					f = strings.TrimPrefix(filepath.Ext(path), ".")
				}
				parsed, err := segment.ParseFormat(f)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				book := pipeline.Book{Path: path, Format: parsed, ASIN: asin}
				if parsed.IsKindle() && book.ASIN == "" {
					book.ASIN = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				}
				out := new(pipeline.Output)
				job, err := runner.Submit(ctx, p.Task(book, out))
				if err != nil {
					return err
				}
				jobs = append(jobs, submitted{book: book, job: job, out: out})
			}

			var failed int
			for _, s := range jobs {
				for pr := range s.job.Progress() {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %3.0f%% %s\n", filepath.Base(s.book.Path), pr.Fraction*100, pr.Message)
				}
				if err := s.job.Wait(); err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", s.book.Path, err)
					continue
				}
				printOutput(cmd, s.book, *s.out)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d books failed", failed, len(jobs))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "book format: KFX, AZW3, AZW, MOBI or EPUB")
	cmd.Flags().StringVar(&asin, "asin", "", "ASIN used to name Kindle sidecar files (default: file name)")
	cmd.Flags().StringVar(&lemmasPath, "lemmas", "", "Kindle lemma table (JSON) enabling the language layer")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip knowledge lookups")
	return cmd
}

func printOutput(cmd *cobra.Command, book pipeline.Book, out pipeline.Output) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d entities, %d glosses\n", book.Path, out.Entities, out.Glosses)
	for _, p := range []string{out.EPUB, out.LanguageLayer, out.XRay} {
		if p != "" {
			fmt.Fprintf(w, "  wrote %s\n", p)
		}
	}
}
