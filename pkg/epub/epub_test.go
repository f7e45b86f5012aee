package epub

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenLoadsParts(t *testing.T) {
	src := writeTestEPUB(t, t.TempDir(), nil)
	b, err := Open(src)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	parts := b.Parts()
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts (nav excluded), got %d", len(parts))
	}
	if parts[0].Href != "text/chapter1.xhtml" {
		t.Fatalf("unexpected first part %q", parts[0].Href)
	}
	body := parts[0].Body()
	if !strings.HasPrefix(body, "<body>") || !strings.HasSuffix(body, "</body>") {
		t.Fatalf("unexpected body span %q", body)
	}
	if got := b.HrefDir("image/"); got != "images" {
		t.Fatalf("expected image dir images, got %q", got)
	}
	if got := b.HrefDir(xhtmlMediaType); got != "text" {
		t.Fatalf("expected xhtml dir text, got %q", got)
	}
}

func TestCloseRemovesWorkingCopy(t *testing.T) {
	src := writeTestEPUB(t, t.TempDir(), nil)
	b, err := Open(src)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dir := b.Dir
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("working copy still present: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestOpenRejectsDRM(t *testing.T) {
	enc := `<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
<EncryptedData><EncryptionMethod Algorithm="http://www.w3.org/2001/04/xmlenc#aes128-cbc"/></EncryptedData>
</encryption>`
	src := writeTestEPUB(t, t.TempDir(), map[string]string{"META-INF/encryption.xml": enc})
	if _, err := Open(src); !errors.Is(err, ErrDRMProtected) {
		t.Fatalf("expected ErrDRMProtected, got %v", err)
	}
}

func TestOpenAllowsFontObfuscation(t *testing.T) {
	enc := `<encryption><EncryptedData><EncryptionMethod Algorithm="http://www.idpf.org/2008/embedding"/></EncryptedData></encryption>`
	src := writeTestEPUB(t, t.TempDir(), map[string]string{"META-INF/encryption.xml": enc})
	b, err := Open(src)
	if err != nil {
		t.Fatalf("font obfuscation should be accepted: %v", err)
	}
	b.Close()
}

func TestOpenMissingManifestEntry(t *testing.T) {
	opf := strings.Replace(testOPF, "text/chapter2.xhtml", "text/missing.xhtml", 1)
	src := writeTestEPUB(t, t.TempDir(), map[string]string{"OEBPS/content.opf": opf})
	if _, err := Open(src); !errors.Is(err, ErrInvalidEPub) {
		t.Fatalf("expected ErrInvalidEPub, got %v", err)
	}
}

func TestOpenCorruptArchive(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.epub")
	if err := os.WriteFile(p, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(p); err == nil {
		t.Fatal("expected error for corrupt archive")
	}
}

func TestPackageWritesMimetypeFirst(t *testing.T) {
	dir := t.TempDir()
	src := writeTestEPUB(t, dir, nil)
	b, err := Open(src)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if err := b.WriteFile("x_ray.xhtml", []byte("<html/>")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	dest := b.OutputPath("_x_ray")
	if want := filepath.Join(dir, "book_x_ray.epub"); dest != want {
		t.Fatalf("expected %s, got %s", want, dest)
	}
	if err := b.Package(dest); err != nil {
		t.Fatalf("Package: %v", err)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open packaged: %v", err)
	}
	defer zr.Close()
	if zr.File[0].Name != "mimetype" || zr.File[0].Method != zip.Store {
		t.Fatalf("mimetype must be the first stored entry, got %s", zr.File[0].Name)
	}
	found := false
	for _, f := range zr.File {
		if f.Name == "OEBPS/x_ray.xhtml" {
			found = true
		}
	}
	if !found {
		t.Fatal("new file missing from packaged archive")
	}
}

func TestIsSafePath(t *testing.T) {
	cases := map[string]bool{
		"OEBPS/a.xhtml":  true,
		"../etc/passwd":  false,
		"/abs":           false,
		"a/../../b":      false,
		"a/b/../c.xhtml": true,
	}
	for p, want := range cases {
		if got := isSafePath(p); got != want {
			t.Errorf("isSafePath(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestAddItemsSplicesManifestAndSpine(t *testing.T) {
	src := writeTestEPUB(t, t.TempDir(), nil)
	b, err := Open(src)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	items := []ManifestItem{
		{ID: "x_ray.xhtml", Href: "text/x_ray.xhtml", MediaType: xhtmlMediaType},
		{ID: "map", Href: "images/map.svg", MediaType: MediaTypeFor("map.svg")},
	}
	if err := b.AddItems(items, "x_ray.xhtml"); err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	data, err := os.ReadFile(b.OPFPath)
	if err != nil {
		t.Fatal(err)
	}
	opf := string(data)
	if !strings.Contains(opf, `<item href="images/map.svg" id="map" media-type="image/svg+xml"/>`) {
		t.Fatalf("image item missing:\n%s", opf)
	}
	if i, j := strings.Index(opf, `idref="x_ray.xhtml"`), strings.Index(opf, "</spine>"); i < 0 || i > j {
		t.Fatalf("itemref not inside spine:\n%s", opf)
	}
	if i, j := strings.Index(opf, `idref="c2"`), strings.Index(opf, `idref="x_ray.xhtml"`); i > j {
		t.Fatal("new itemref must follow existing ones")
	}

	pkg, err := parseOPF(data)
	if err != nil {
		t.Fatalf("spliced OPF no longer parses: %v", err)
	}
	if len(pkg.Manifest.Items) != 6 || len(pkg.Spine.ItemRefs) != 3 {
		t.Fatalf("unexpected counts: %d items, %d itemrefs", len(pkg.Manifest.Items), len(pkg.Spine.ItemRefs))
	}
	if len(b.Manifest()) != 6 {
		t.Fatalf("in-memory manifest not updated: %d", len(b.Manifest()))
	}
}

func TestMediaTypeFor(t *testing.T) {
	cases := map[string]string{
		"Kansas.svg": "image/svg+xml",
		"a.PNG":      "image/png",
		"b.jpg":      "image/jpeg",
		"c.webp":     "image/webp",
		"d.tiff":     "",
	}
	for name, want := range cases {
		if got := MediaTypeFor(name); got != want {
			t.Errorf("MediaTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}
