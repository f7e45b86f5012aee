package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Commons downloads media files from Wikimedia Commons into a local
// directory that doubles as a cache.
type Commons struct {
	base   string
	dir    string
	client *client
}

// NewCommons stores files under dir.
func NewCommons(dir string, opts Options) *Commons {
	return &Commons{
		base:   "https://commons.wikimedia.org/wiki/Special:FilePath/",
		dir:    dir,
		client: newClient(opts.Client),
	}
}

// GetImage returns the local path of filename, downloading it first when
// needed.
func (c *Commons) GetImage(ctx context.Context, filename string) (string, error) {
	name := strings.ReplaceAll(filename, " ", "_")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("knowledge: invalid commons filename %q", filename)
	}
	dest := filepath.Join(c.dir, name)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", err
	}

	body, err := c.client.get(ctx, c.base+url.PathEscape(name))
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(c.dir, name+".*.part")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	_, err = io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", errors.Join(fmt.Errorf("knowledge: download %s", name), err)
	}
	return dest, os.Rename(tmp.Name(), dest)
}

// ImageFilename is the name under which GetImage stores filename.
func ImageFilename(filename string) string { return strings.ReplaceAll(filename, " ", "_") }
