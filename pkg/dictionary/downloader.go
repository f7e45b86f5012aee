package dictionary

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	repoOwner = "scriptin"
	repoName  = "jmdict-simplified"
	userAgent = "wordray-cli"
)

// Base URLs, replaced in tests.
var (
	githubAPIBase = "https://api.github.com"
	kaikkiBase    = "https://kaikki.org/dictionary"
)

// ErrNoAsset is returned when a release carries no usable dictionary file.
var ErrNoAsset = errors.New("dictionary: no suitable dictionary asset found")

// ProgressFunc receives download progress in [0, 1]. A negative fraction
// means the total size is unknown.
type ProgressFunc func(fraction float64, message string)

var httpClient = &http.Client{Timeout: 30 * time.Minute}

// EnsureJMdict checks whether the JMdict file exists at path. If not, it
// discovers the latest jmdict-simplified release and extracts its JSON.
func EnsureJMdict(ctx context.Context, path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	logger.Info("dictionary not found, downloading", "path", path)
	downloadURL, err := latestReleaseAssetURL(ctx)
	if err != nil {
		return fmt.Errorf("dictionary: find latest JMdict release: %w", err)
	}
	logger.Info("downloading JMdict", "url", downloadURL)
	return downloadAndExtract(ctx, downloadURL, path)
}

func latestReleaseAssetURL(ctx context.Context) (string, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/releases/latest", githubAPIBase, repoOwner, repoName)
	resp, err := get(ctx, apiURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var release struct {
		Assets []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	for _, asset := range release.Assets {
		if strings.Contains(asset.Name, "jmdict-eng-common") && strings.HasSuffix(asset.Name, ".json.tgz") {
			return asset.BrowserDownloadURL, nil
		}
	}
	return "", ErrNoAsset
}

func downloadAndExtract(ctx context.Context, url, destPath string) error {
	resp, err := get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("dictionary: open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return fmt.Errorf("%w: no json file in archive", ErrNoAsset)
		}
		if err != nil {
			return fmt.Errorf("dictionary: read tar archive: %w", err)
		}
		if header.Typeflag == tar.TypeReg && strings.HasSuffix(header.Name, ".json") {
			return writeAtomic(destPath, tr, nil, header.Size, "")
		}
	}
}

// EnsureWiktionary downloads the kaikki.org JSONL dump for language (its
// English name, e.g. "French") into dir unless it is already there, and
// returns its path.
func EnsureWiktionary(ctx context.Context, dir, language string, progress ProgressFunc) (string, error) {
	name := strings.ReplaceAll(language, " ", "")
	filename := fmt.Sprintf("kaikki.org-dictionary-%s.json", name)
	dest := filepath.Join(dir, filename)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	resp, err := get(ctx, fmt.Sprintf("%s/%s/%s", kaikkiBase, name, filename))
	if err != nil {
		return "", fmt.Errorf("dictionary: download %s Wiktionary: %w", language, err)
	}
	defer resp.Body.Close()

	message := fmt.Sprintf("Downloading %s Wiktionary", language)
	if err := writeAtomic(dest, resp.Body, progress, resp.ContentLength, message); err != nil {
		return "", err
	}
	return dest, nil
}

func get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp, nil
}

type progressReader struct {
	r        io.Reader
	read     int64
	total    int64
	message  string
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if n > 0 {
		fraction := -1.0
		if p.total > 0 {
			fraction = float64(p.read) / float64(p.total)
		}
		p.progress(fraction, p.message)
	}
	return n, err
}

// writeAtomic copies r into a temp file next to dest and renames it into place.
func writeAtomic(dest string, r io.Reader, progress ProgressFunc, total int64, message string) error {
	if progress != nil {
		progress(0, message)
		r = &progressReader{r: r, total: total, message: message, progress: progress}
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("dictionary: write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
