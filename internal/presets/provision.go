package presets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/copiiworld/cajita-go/internal/crop"
	"github.com/copiiworld/cajita-go/internal/models"
	"github.com/copiiworld/cajita-go/internal/session"
)

// Fetcher resolves a catalog path to image bytes.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// DirFetcher reads preset images from a local asset directory.
type DirFetcher struct {
	Root string
}

func (f DirFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	// Catalog paths are relative; keep them inside the asset root.
	clean := filepath.Clean("/" + path)
	return os.ReadFile(filepath.Join(f.Root, clean))
}

// HTTPFetcher fetches preset images relative to a base URL.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	url := strings.TrimRight(f.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch preset %s: status %d", path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Provisioner fills session slots from the catalog.
type Provisioner struct {
	catalog *Catalog
	fetcher Fetcher
	sess    *session.Session
}

// NewProvisioner creates a provisioner over the catalog, fetcher and session.
func NewProvisioner(catalog *Catalog, fetcher Fetcher, sess *session.Session) *Provisioner {
	return &Provisioner{catalog: catalog, fetcher: fetcher, sess: sess}
}

// Catalog returns the underlying catalog.
func (p *Provisioner) Catalog() *Catalog { return p.catalog }

// Entries returns the current catalog entries.
func (p *Provisioner) Entries() []Entry { return p.catalog.Entries() }

// AddPresets fetches each selected preset, measures it, computes the
// centered-square default crop and adds it exactly as if it were uploaded.
// The selection is capped at remaining capacity, mirroring file adds; a
// preset that fails to fetch or decode is skipped. Returns how many slots
// were added.
func (p *Provisioner) AddPresets(ctx context.Context, paths []string) int {
	remaining := models.RequiredCount - len(p.sess.View().Slots)
	if remaining <= 0 {
		return 0
	}
	if len(paths) > remaining {
		paths = paths[:remaining]
	}

	added := 0
	for _, path := range paths {
		if !p.catalog.Contains(path) {
			slog.Warn("presets: path not in catalog, skipped", "path", path)
			continue
		}
		data, err := p.fetcher.Fetch(ctx, path)
		if err != nil {
			slog.Warn("presets: fetch failed, skipped", "path", path, "err", err)
			continue
		}
		w, h, err := crop.Measure(data)
		if err != nil {
			slog.Warn("presets: not a decodable image, skipped", "path", path, "err", err)
			continue
		}
		if p.sess.AddProvisionedSlot(filepath.Base(path), data, w, h, crop.DefaultSquare(w, h)) {
			added++
		}
	}
	return added
}
