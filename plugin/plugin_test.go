package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loader(name string) Loader {
	return func(_ context.Context, _ Modules) (any, error) {
		return name, nil
	}
}

func names(sorted []Named) []string {
	out := make([]string, len(sorted))
	for i, m := range sorted {
		out[i] = m.Name
	}
	return out
}

func registry(t *testing.T, deps map[string][]string, order ...string) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, name := range order {
		require.NoError(t, r.Register(name, Registration{Requires: deps[name], Load: loader(name)}))
	}
	return r
}

// --- Registry ---

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("core", Registration{Load: loader("core")}))
	err := r.Register("core", Registration{Load: loader("core")})
	assert.True(t, errors.Is(err, ErrModuleExists))
	assert.Equal(t, 1, r.Len())
}

func TestRegisterRejectsNilLoaderAndEmptyName(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Register("core", Registration{}), ErrNilLoader)
	assert.ErrorIs(t, r.Register("  ", Registration{Load: loader("x")}), ErrInvalidName)
	assert.Zero(t, r.Len())
}

func TestNamesKeepsRegistrationOrder(t *testing.T) {
	r := registry(t, nil, "b", "a", "c")
	assert.Equal(t, []string{"b", "a", "c"}, r.Names())
}

// --- Order ---

func TestOrderChain(t *testing.T) {
	r := registry(t, map[string][]string{
		"module1": {"core"},
		"module2": {"module1"},
	}, "module2", "module1", "core")

	sorted, err := Order(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "module1", "module2"}, names(sorted))
}

func TestOrderEveryModuleAfterItsRequirements(t *testing.T) {
	deps := map[string][]string{
		"text":   {"core", "fonts"},
		"fonts":  {"core"},
		"image":  {"core"},
		"group":  {"text", "image"},
		"export": {"group"},
	}
	r := registry(t, deps, "export", "group", "text", "image", "fonts", "core")

	sorted, err := Order(r)
	require.NoError(t, err)
	require.Len(t, sorted, 6)

	index := map[string]int{}
	for i, m := range sorted {
		index[m.Name] = i
	}
	for name, reqs := range deps {
		for _, req := range reqs {
			assert.Less(t, index[req], index[name], "%s must load after %s", name, req)
		}
	}
}

func TestOrderMissingDependency(t *testing.T) {
	r := registry(t, map[string][]string{
		"module2": {"module1"},
	}, "core", "module2")

	_, err := Order(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDependency)
	assert.Contains(t, err.Error(), "module2")
	assert.Contains(t, err.Error(), "module1")
}

func TestOrderCircularDependency(t *testing.T) {
	r := registry(t, map[string][]string{
		"core":    {"module1"},
		"module1": {"core"},
	}, "core", "module1")

	_, err := Order(r)
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestOrderSelfDependency(t *testing.T) {
	r := registry(t, map[string][]string{"core": {"core"}}, "core")
	_, err := Order(r)
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestOrderEmpty(t *testing.T) {
	sorted, err := Order(NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, sorted)
}

// --- Load ---

func TestLoadSeesEarlierModules(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("core", Registration{Load: loader("core")}))
	require.NoError(t, r.Register("text", Registration{
		Requires: []string{"core"},
		Load: func(_ context.Context, loaded Modules) (any, error) {
			core, ok := loaded["core"]
			if !ok {
				return nil, errors.New("core not loaded")
			}
			return core.(string) + "+text", nil
		},
	}))

	sorted, err := Order(r)
	require.NoError(t, err)
	modules, err := Load(context.Background(), sorted)
	require.NoError(t, err)
	assert.Equal(t, "core", modules["core"])
	assert.Equal(t, "core+text", modules["text"])
}

func TestLoadStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	called := false
	sorted := []Named{
		{Name: "a", Registration: Registration{Load: func(context.Context, Modules) (any, error) { return nil, boom }}},
		{Name: "b", Registration: Registration{Load: func(context.Context, Modules) (any, error) {
			called = true
			return nil, nil
		}}},
	}
	_, err := Load(context.Background(), sorted)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load module a")
	assert.False(t, called)
}

func TestLoadRequired(t *testing.T) {
	r := registry(t, map[string][]string{
		"module1": {"core"},
	}, "module1", "core", "unused")

	modules, err := LoadRequired(context.Background(), r, []string{"core", "module1"})
	require.NoError(t, err)
	assert.Len(t, modules, 2)
	assert.NotContains(t, modules, "unused")
}

func TestLoadRequiredModuleNotPresent(t *testing.T) {
	r := registry(t, nil, "core")
	_, err := LoadRequired(context.Background(), r, []string{"core", "module9"})
	require.ErrorIs(t, err, ErrModuleNotPresent)
	assert.Contains(t, err.Error(), "module9")
}

func TestLoadRequiredDependencyNotSelected(t *testing.T) {
	r := registry(t, map[string][]string{"module1": {"core"}}, "core", "module1")
	_, err := LoadRequired(context.Background(), r, []string{"module1"})
	assert.ErrorIs(t, err, ErrMissingDependency)
}
