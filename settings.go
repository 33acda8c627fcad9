package sapling

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Settings is the document's nested settings tree, addressed with dotted
// key paths such as "core.fonts".
type Settings struct {
	mu     sync.RWMutex
	values map[string]any
	logger zerolog.Logger
}

// NewSettings returns an empty settings tree.
func NewSettings() *Settings {
	return &Settings{values: make(map[string]any), logger: zerolog.Nop()}
}

// SetLogger sets the logger used for rejected writes.
func (s *Settings) SetLogger(l zerolog.Logger) {
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// Set stores value at path, creating intermediate maps. When an
// intermediate exists but is not a map, a warning is logged and nothing is
// written.
func (s *Settings) Set(path string, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := splitPath(path)
	m := s.values
	for i, key := range keys[:len(keys)-1] {
		next, ok := m[key]
		if !ok || next == nil {
			child := make(map[string]any)
			m[key] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			s.logger.Warn().
				Str("path", path).
				Str("at", strings.Join(keys[:i+1], ".")).
				Str("type", fmt.Sprintf("%T", next)).
				Msg("cannot set setting, destination is not an object")
			return false
		}
		m = child
	}
	m[keys[len(keys)-1]] = value
	return true
}

// Get returns the value at path, or nil when any segment is missing.
func (s *Settings) Get(path string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := lookup(s.values, splitPath(path))
	return v
}

// Has reports whether a non-nil value exists at path.
func (s *Settings) Has(path string) bool {
	return s.Get(path) != nil
}

// Delete removes the value at path.
func (s *Settings) Delete(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := splitPath(path)
	parent, _ := lookup(s.values, keys[:len(keys)-1])
	if m, ok := parent.(map[string]any); ok {
		delete(m, keys[len(keys)-1])
	}
}

func lookup(m map[string]any, keys []string) (any, bool) {
	var cur any = m
	for _, key := range keys {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = mm[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Merge deep-merges src into the tree. Maps are merged key by key; any
// other value replaces what was there.
func (s *Settings) Merge(src map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mergeDeep(s.values, src)
}

// Replace stores a copy of every top-level entry of src, dropping whatever
// was stored under those keys before. Keys src does not mention are kept.
func (s *Settings) Replace(src map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range src {
		s.values[k] = deepCopy(v)
	}
}

func mergeDeep(dst, src map[string]any) {
	for k, v := range src {
		sm, ok := asMap(v)
		if !ok {
			dst[k] = deepCopy(v)
			continue
		}
		dm, ok := dst[k].(map[string]any)
		if !ok {
			dm = make(map[string]any, len(sm))
			dst[k] = dm
		}
		mergeDeep(dm, sm)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Font:
		return map[string]any{"name": m.Name, "url": m.URL}, true
	}
	return nil, false
}

// Snapshot returns a deep copy of the whole tree.
func (s *Settings) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepCopy(s.values).(map[string]any)
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepCopy(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = deepCopy(vv)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = deepCopy(vv)
		}
		return out
	case []Font:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = map[string]any{"name": f.Name, "url": f.URL}
		}
		return out
	default:
		return v
	}
}

// Fonts returns the fonts declared under core.fonts. Malformed entries are
// skipped.
func (s *Settings) Fonts() []Font {
	var fonts []Font
	switch list := s.Get("core.fonts").(type) {
	case []Font:
		fonts = append(fonts, list...)
	case []any:
		for _, item := range list {
			if f, ok := fontFrom(item); ok {
				fonts = append(fonts, f)
			}
		}
	case []map[string]any:
		for _, item := range list {
			if f, ok := fontFrom(item); ok {
				fonts = append(fonts, f)
			}
		}
	}
	return fonts
}

func fontFrom(v any) (Font, bool) {
	switch x := v.(type) {
	case Font:
		return x, true
	case map[string]any:
		name, _ := x["name"].(string)
		url, _ := x["url"].(string)
		return Font{Name: name, URL: url}, true
	}
	return Font{}, false
}

// LoadSettingsFile reads a TOML settings file.
func LoadSettingsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings load failed (%s): %w", path, err)
	}
	out := make(map[string]any)
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("settings parse failed (%s): %w", path, err)
	}
	return out, nil
}
