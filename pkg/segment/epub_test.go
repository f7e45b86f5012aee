package segment

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEPUB(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, name := range []string{"mimetype", "META-INF/container.xml", "OEBPS/content.opf", "OEBPS/one.xhtml", "OEBPS/two.xhtml"} {
		body, ok := files[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func sampleEPUB() map[string]string {
	return map[string]string{
		"mimetype": "application/epub+zip",
		"META-INF/container.xml": `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`,
		"OEBPS/content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>
    <item id="one" href="one.xhtml" media-type="application/xhtml+xml"/>
    <item id="two" href="two.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine><itemref idref="one"/><itemref idref="two"/></spine>
</package>`,
		"OEBPS/one.xhtml": `<html><head><title>One</title></head><body><p>The Wizard of Oz lived in Kansas.</p><p>a > b</p></body></html>`,
		"OEBPS/two.xhtml": `<html><body><p>Dorothy</p></body></html>`,
	}
}

func TestEPUBSegmentsAreBodyRelative(t *testing.T) {
	book, err := OpenEPUB(writeEPUB(t, sampleEPUB()))
	require.NoError(t, err)
	defer book.Close()

	segs := collect(FromEPUB(book))
	require.Len(t, segs, 3)

	parts := book.Parts()
	body := parts[0].Body()
	for _, s := range segs[:2] {
		assert.Equal(t, "one.xhtml", s.Part)
		assert.Equal(t, s.Text(), body[s.Start:s.Start+len(s.Raw)])
	}
	assert.Equal(t, "The Wizard of Oz lived in Kansas.", segs[0].Text())
	assert.Equal(t, "a > b", segs[1].Text())
	assert.Equal(t, "two.xhtml", segs[2].Part)
	assert.Equal(t, "Dorothy", segs[2].Text())
	// offsets restart in every part
	second := parts[1].Body()
	assert.Equal(t, "Dorothy", second[segs[2].Start:segs[2].Start+len(segs[2].Raw)])
	assertOrdered(t, segs)
}

func TestOpenEPUBCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.epub")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
	_, err := OpenEPUB(path)
	require.ErrorIs(t, err, ErrCorruptContainer)
	var be *BookError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, path, be.Book)
}

func TestOpenEPUBDRM(t *testing.T) {
	files := sampleEPUB()
	path := filepath.Join(t.TempDir(), "drm.epub")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, _ = w.Write([]byte(body))
	}
	w, err := zw.Create("META-INF/sinf.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<sinf/>"))
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = OpenEPUB(path)
	assert.ErrorIs(t, err, ErrDRMProtected)
}
