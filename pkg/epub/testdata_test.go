package epub

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

const testOPF = `<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="id">
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="c1" href="text/chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="text/chapter2.xhtml" media-type="application/xhtml+xml"/>
    <item id="img" href="images/cover.png" media-type="image/png"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
  </spine>
</package>`

const testContainer = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// TestChapter1 is the body text used by tests across packages.
const testChapter1 = `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>One</title></head>
<body><p>The Wizard of Oz lived in Kansas.</p><p>Dorothy met the Wizard.</p></body></html>`

const testChapter2 = `<html xmlns="http://www.w3.org/1999/xhtml"><body><p>Nothing here.</p></body></html>`

// writeTestEPUB builds a small EPUB at dir/name and returns its path.
func writeTestEPUB(t *testing.T, dir string, extra map[string]string) string {
	t.Helper()
	p := filepath.Join(dir, "book.epub")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create epub: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("application/epub+zip"))

	files := map[string]string{
		"META-INF/container.xml":    testContainer,
		"OEBPS/content.opf":         testOPF,
		"OEBPS/nav.xhtml":           `<html><body><nav/></body></html>`,
		"OEBPS/text/chapter1.xhtml": testChapter1,
		"OEBPS/text/chapter2.xhtml": testChapter2,
		"OEBPS/images/cover.png":    "png",
	}
	for k, v := range extra {
		files[k] = v
	}
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return p
}
