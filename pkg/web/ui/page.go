package ui

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
)

//go:embed index.html
var embeddedPage []byte

// Page is the HTML served at "/". It is safe for concurrent use.
type Page struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	content []byte
}

// NewPage returns the page read from path, or the embedded page when path
// is empty.
func NewPage(path string, logger *slog.Logger) (*Page, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Page{
		path:    path,
		logger:  logger.With("component", "ui"),
		content: embeddedPage,
	}
	if path == "" {
		return p, nil
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Path returns the template file, or "" for the embedded page.
func (p *Page) Path() string {
	return p.path
}

// Reload reads the template file again. On error the current content is
// kept.
func (p *Page) Reload() error {
	if p.path == "" {
		return nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("failed to read page template %q: %w", p.path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("page template %q is empty", p.path)
	}

	p.mu.Lock()
	p.content = data
	p.mu.Unlock()

	p.logger.Info("page template loaded", "path", p.path, "bytes", len(data))
	return nil
}

// Bytes returns the current page.
func (p *Page) Bytes() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.content
}

// ServeHTTP writes the page.
func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(p.Bytes())
}
