package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/wordray/pkg/dictionary"
	"github.com/japaniel/wordray/pkg/lemma"
)

// kaikkiNames maps language codes to kaikki.org dump names.
var kaikkiNames = map[string]string{
	"ca": "Catalan", "cs": "Czech", "da": "Danish", "de": "German", "el": "Greek",
	"en": "English", "es": "Spanish", "fi": "Finnish", "fr": "French", "hr": "Croatian",
	"it": "Italian", "ja": "Japanese", "ko": "Korean", "lt": "Lithuanian", "nl": "Dutch",
	"no": "Norwegian Bokmål", "pl": "Polish", "pt": "Portuguese", "ro": "Romanian",
	"ru": "Russian", "sv": "Swedish", "uk": "Ukrainian", "zh": "Chinese",
}

func newDictCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Build and query dictionaries",
	}
	cmd.AddCommand(newDictBuildCmd(a), newDictLookupCmd(a))
	return cmd
}

func newDictBuildCmd(a *app) *cobra.Command {
	var (
		lang, gloss, kaikki, lemmasPath string
		keep                            bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Download a dictionary and compile it",
		Long: `Download the dictionary of a language and compile it for Word Wise.
Japanese glossed in English uses JMdict; every other language uses the
kaikki.org Wiktionary extract.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := dictionary.Source{
				Lang:       orDefault(lang, a.cfg.Language),
				GlossLang:  orDefault(gloss, a.cfg.Dictionary.GlossLang),
				KaikkiName: kaikki,
			}
			if src.KaikkiName == "" {
				src.KaikkiName = kaikkiNames[src.Lang]
			}
			if lemmasPath != "" {
				t, err := lemma.LoadTable(lemmasPath)
				if err != nil {
					return fmt.Errorf("load lemma table: %w", err)
				}
				src.KindleLemmas = t.Lemmas()
			}

			var last string
			auto, err := dictionary.BuildFromSource(cmd.Context(), src, dictionary.BuildOptions{
				Dir:    a.cfg.Dictionary.Dir,
				Logger: a.logger,
				Progress: func(fraction float64, message string) {
					if message != last {
						fmt.Fprintln(cmd.ErrOrStderr(), message)
						last = message
					}
				},
				KeepDownload: keep,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d surface forms written to %s\n",
				auto.Len(), dictionary.DumpPath(a.cfg.Dictionary.Dir, src.Lang, src.GlossLang))
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "book language (default: config language)")
	cmd.Flags().StringVar(&gloss, "gloss", "", "definition language (default: config gloss_lang)")
	cmd.Flags().StringVar(&kaikki, "kaikki-name", "", "kaikki.org language name, when not built in")
	cmd.Flags().StringVar(&lemmasPath, "kindle-lemmas", "", "Kindle lemma table restricting enabled words")
	cmd.Flags().BoolVar(&keep, "keep-download", false, "keep the raw download")
	return cmd
}

func newDictLookupCmd(a *app) *cobra.Command {
	var (
		lang, gloss string
		text        bool
	)
	cmd := &cobra.Command{
		Use:   "lookup WORD...",
		Short: "Look words up in a compiled dictionary",
		Long: `Look words up in a compiled dictionary. With --text the arguments are
joined into one text and every match in it is listed with its byte offsets.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang = orDefault(lang, a.cfg.Language)
			auto, err := dictionary.Load(dictionary.DumpPath(a.cfg.Dictionary.Dir, lang, orDefault(gloss, a.cfg.Dictionary.GlossLang)))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if text {
				for _, m := range auto.Find(strings.Join(args, " ")) {
					fmt.Fprintf(w, "%d-%d\t%s\t%s\n", m.Start, m.End, m.Surface, m.Gloss.Short)
				}
				return nil
			}
			for _, word := range args {
				g, ok := auto.Lookup(word)
				if !ok {
					fmt.Fprintf(w, "%s\t(not found)\n", word)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\n", word, g.Short)
				if g.Full != "" && g.Full != g.Short {
					fmt.Fprintf(w, "\t%s\n", g.Full)
				}
				if g.Example != "" {
					fmt.Fprintf(w, "\te.g. %s\n", g.Example)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "dictionary language (default: config language)")
	cmd.Flags().StringVar(&gloss, "gloss", "", "definition language (default: config gloss_lang)")
	cmd.Flags().BoolVar(&text, "text", false, "find matches in running text")
	return cmd
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
