package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/wordray/pkg/dictionary"
)

// setupEnv points the CLI at a temporary dictionary directory with a small
// English dictionary and disables network lookups.
func setupEnv(t *testing.T) string {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tmp := t.TempDir()
	dictDir := filepath.Join(tmp, "dicts")
	t.Setenv("WORDRAY_CONFIG", "")
	t.Setenv("WORDRAY_DICT_DIR", dictDir)
	t.Setenv("WORDRAY_KNOWLEDGE_ENABLED", "false")
	t.Setenv("WORDRAY_LANGUAGE", "en")

	words := []dictionary.Word{
		{Enabled: true, Word: "run", ShortGloss: "to move fast", FullGloss: "to move fast; to manage", Forms: []string{"ran", "running"}},
		{Enabled: true, Word: "live", ShortGloss: "reside", Forms: []string{"lived"}},
	}
	require.NoError(t, dictionary.Build("en", words).Save(dictionary.DumpPath(dictDir, "en", "en")))
	return tmp
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestDictLookup(t *testing.T) {
	setupEnv(t)

	stdout, _, err := runCmd(t, "dict", "lookup", "running", "walk")
	require.NoError(t, err)
	assert.Contains(t, stdout, "running\tto move fast\n\tto move fast; to manage")
	assert.Contains(t, stdout, "walk\t(not found)")

	stdout, _, err = runCmd(t, "dict", "lookup", "--text", "She was running yesterday")
	require.NoError(t, err)
	assert.Equal(t, "8-15\trunning\tto move fast\n", stdout)
}

func TestDictLookupMissingDictionary(t *testing.T) {
	setupEnv(t)
	_, _, err := runCmd(t, "dict", "lookup", "--lang", "fr", "courir")
	assert.Error(t, err)
}

func TestAnnotateKFX(t *testing.T) {
	tmp := setupEnv(t)
	book := filepath.Join(tmp, "oz.kfx")
	require.NoError(t, os.WriteFile(book, []byte(`{"data": [{"position": 0, "content": "Dorothy lived in Kansas with Uncle Henry."}]}`), 0o644))
	lemmas := filepath.Join(tmp, "lemmas.json")
	require.NoError(t, os.WriteFile(lemmas, []byte(`{"live": [1, 7]}`), 0o644))

	stdout, stderr, err := runCmd(t, "annotate", "--asin", "B0OZ", "--lemmas", lemmas, book)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, filepath.Join(tmp, "oz.sdr", "XRAY.entities.B0OZ.asc"))
	assert.Contains(t, stdout, filepath.Join(tmp, "oz.sdr", "LanguageLayer.en.B0OZ.kll"))
	assert.Contains(t, stdout, "1 glosses")
	assert.Contains(t, stderr, "100% Done")
}

func TestAnnotateRejectsUnknownFormat(t *testing.T) {
	tmp := setupEnv(t)
	book := filepath.Join(tmp, "oz.pdf")
	require.NoError(t, os.WriteFile(book, []byte("%PDF"), 0o644))

	_, _, err := runCmd(t, "annotate", book)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported format"), err.Error())
}

func TestAnnotateReportsFailedBooks(t *testing.T) {
	tmp := setupEnv(t)
	_, stderr, err := runCmd(t, "annotate", "--format", "kfx", filepath.Join(tmp, "missing.kfx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 books failed")
	assert.Contains(t, stderr, "corrupt container")
}
