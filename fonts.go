package sapling

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/errgroup"
)

// Font is one font asset declared in the document settings under core.fonts.
type Font struct {
	Name string `toml:"name" json:"name" yaml:"name"`
	URL  string `toml:"url" json:"url" yaml:"url"`
}

// LoadedFont is a parsed font asset.
type LoadedFont struct {
	Font   Font
	Source *text.GoTextFaceSource
	Size   datasize.ByteSize
}

// FontLoader fetches and parses font assets.
type FontLoader interface {
	Load(ctx context.Context, font Font) (*LoadedFont, error)
}

// FontLibrary is the default FontLoader. It reads fonts from http(s) URLs,
// file URLs and local paths (a leading ~ is expanded), parses them with
// Ebitengine's text/v2 and serves faces by family name.
type FontLibrary struct {
	mu      sync.RWMutex
	fonts   map[string]*LoadedFont
	client  *http.Client
	maxSize datasize.ByteSize
}

// NewFontLibrary creates a library that rejects assets larger than maxSize
// and gives up on remote fetches after timeout.
func NewFontLibrary(maxSize datasize.ByteSize, timeout time.Duration) *FontLibrary {
	return &FontLibrary{
		fonts:   make(map[string]*LoadedFont),
		client:  &http.Client{Timeout: timeout},
		maxSize: maxSize,
	}
}

// Load fetches and parses font, registering it under font.Name.
func (l *FontLibrary) Load(ctx context.Context, font Font) (*LoadedFont, error) {
	data, err := l.fetch(ctx, font.URL)
	if err != nil {
		return nil, fmt.Errorf("font %q: %w", font.Name, err)
	}
	source, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("font %q: failed to parse data: %w", font.Name, err)
	}
	loaded := &LoadedFont{Font: font, Source: source, Size: datasize.ByteSize(len(data))}

	l.mu.Lock()
	l.fonts[font.Name] = loaded
	l.mu.Unlock()
	return loaded, nil
}

// Clear forgets every loaded font.
func (l *FontLibrary) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.fonts)
}

// Lookup returns the font registered under name.
func (l *FontLibrary) Lookup(name string) (*LoadedFont, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, ok := l.fonts[name]
	return f, ok
}

// Names returns the registered family names.
func (l *FontLibrary) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.fonts))
	for name := range l.fonts {
		names = append(names, name)
	}
	return names
}

// Face returns a face for name, or nil when the family is not loaded.
func (l *FontLibrary) Face(name string, size float64) *text.GoTextFace {
	f, ok := l.Lookup(name)
	if !ok {
		return nil
	}
	return &text.GoTextFace{Source: f.Source, Size: size}
}

func (l *FontLibrary) fetch(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("empty font location")
	}
	u, err := url.Parse(location)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return l.fetchRemote(ctx, location)
	}
	path := location
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	return l.fetchLocal(path)
}

func (l *FontLibrary) fetchRemote(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", location, resp.Status)
	}
	return l.readLimited(resp.Body)
}

func (l *FontLibrary) fetchLocal(path string) ([]byte, error) {
	expanded, err := homedir.Expand(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.readLimited(f)
}

func (l *FontLibrary) readLimited(r io.Reader) ([]byte, error) {
	if l.maxSize == 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(l.maxSize.Bytes())+1))
	if err != nil {
		return nil, err
	}
	if datasize.ByteSize(len(data)) > l.maxSize {
		return nil, fmt.Errorf("font exceeds %s", l.maxSize.HR())
	}
	return data, nil
}

var (
	fallbackOnce   sync.Once
	fallbackSource *text.GoTextFaceSource
)

// FallbackFace returns a Go Regular face, used for families that are not
// loaded.
func FallbackFace(size float64) *text.GoTextFace {
	fallbackOnce.Do(func() {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err == nil {
			fallbackSource = src
		}
	})
	if fallbackSource == nil {
		return nil
	}
	return &text.GoTextFace{Source: fallbackSource, Size: size}
}

// --- Engine font operations ---

// LoadFont loads one font through the configured loader. A font that fails
// to load is logged and reported as nil; it never fails the caller. Every
// successful load schedules a debounced redraw.
func (e *Engine) LoadFont(ctx context.Context, font Font) *LoadedFont {
	loaded, err := e.fonts.Load(ctx, font)
	if err != nil {
		e.logger.Error().Err(err).Str("font", font.Name).Str("url", font.URL).Msg("font couldn't be loaded")
		recordFontFailure()
		return nil
	}
	e.RedrawDebounced()
	return loaded
}

// ReloadFonts drops loaded fonts and loads every font listed in the
// settings. The result lines up with Settings().Fonts(); failed entries are
// nil.
func (e *Engine) ReloadFonts(ctx context.Context) []*LoadedFont {
	if c, ok := e.fonts.(interface{ Clear() }); ok {
		c.Clear()
	}
	fonts := e.doc.Settings.Fonts()
	loaded := make([]*LoadedFont, len(fonts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.cfg.FontConcurrency, 1))
	for i, font := range fonts {
		g.Go(func() error {
			loaded[i] = e.LoadFont(gctx, font)
			return nil
		})
	}
	_ = g.Wait()

	e.emitFontsLoaded(loaded)
	return loaded
}
