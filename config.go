package sapling

import (
	"fmt"
	"os"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Duration is a time.Duration read from text such as "150ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) value() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config configures an Engine. The TOML-tagged fields can be loaded with
// LoadConfig; the rest are set in code.
type Config struct {
	// RecalcDebounce is the quiet period after the last recalculation before
	// OnRecalculated handlers fire.
	RecalcDebounce Duration `toml:"recalc_debounce"`

	// RedrawDebounce is the quiet period RedrawDebounced waits for.
	RedrawDebounce Duration `toml:"redraw_debounce"`

	FontMaxSize     datasize.ByteSize `toml:"font_max_size"`
	FontTimeout     Duration          `toml:"font_timeout"`
	FontConcurrency int               `toml:"font_concurrency"`

	// Debug enables tree depth and child count warnings.
	Debug    bool   `toml:"debug"`
	LogLevel string `toml:"log_level"`

	Logger     *zerolog.Logger `toml:"-"` // nil: console logger on stderr
	Canvas     *ebiten.Image   `toml:"-"`
	FontLoader FontLoader      `toml:"-"` // nil: a FontLibrary
	Sink       EventSink       `toml:"-"`
}

// DefaultConfig returns the configuration used for zero fields.
func DefaultConfig() Config {
	return Config{
		RecalcDebounce:  Duration(100 * time.Millisecond),
		RedrawDebounce:  Duration(100 * time.Millisecond),
		FontMaxSize:     16 * datasize.MB,
		FontTimeout:     Duration(10 * time.Second),
		FontConcurrency: 4,
		LogLevel:        "info",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.RecalcDebounce <= 0 {
		c.RecalcDebounce = def.RecalcDebounce
	}
	if c.RedrawDebounce <= 0 {
		c.RedrawDebounce = def.RedrawDebounce
	}
	if c.FontMaxSize == 0 {
		c.FontMaxSize = def.FontMaxSize
	}
	if c.FontTimeout <= 0 {
		c.FontTimeout = def.FontTimeout
	}
	if c.FontConcurrency <= 0 {
		c.FontConcurrency = def.FontConcurrency
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	return c
}

// LoadConfig reads a TOML config file. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): log_level: %w", path, err)
	}
	return cfg.withDefaults(), nil
}
