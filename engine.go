package sapling

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Engine owns one document and keeps its computed tree in step with the
// authoring tree. All methods are safe for concurrent use.
type Engine struct {
	mu     sync.Mutex // guards authoring/computed lists and hierarchies
	cfg    Config
	logger zerolog.Logger
	doc    *Document
	rc     *RenderContext
	cloner *Cloner
	fonts  FontLoader

	sessions *sessionQueue

	parkedMu   sync.Mutex
	parked     []*parkedCalc
	closed     bool
	parkedWake chan struct{}
	closing    chan struct{}
	drained    chan struct{}

	calcHooks     hooks[CalcHandler]
	drawHooks     hooks[DrawHandler]
	recalcHooks   hooks[func()]
	fontHooks     hooks[func([]*LoadedFont)]
	settingsHooks hooks[SettingsHandler]
	typeHooks     hooks[TypeDefinitionHandler]

	debug atomic.Bool

	recalcDebounce *debouncer
	redrawDebounce *debouncer

	// ctx lives until Close; background font loads and watchers use it.
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	bg        sync.WaitGroup
}

// NewEngine creates an engine with an empty document.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:        cfg,
		doc:        NewDocument(),
		sessions:   newSessionQueue(),
		parkedWake: make(chan struct{}, 1),
		closing:    make(chan struct{}),
		drained:    make(chan struct{}),
	}
	e.debug.Store(cfg.Debug)
	if cfg.Logger != nil {
		e.logger = *cfg.Logger
	} else {
		e.logger = NewLogger(cfg.LogLevel)
	}

	e.fonts = cfg.FontLoader
	if e.fonts == nil {
		e.fonts = NewFontLibrary(cfg.FontMaxSize, cfg.FontTimeout.value())
	}
	e.rc = &RenderContext{Canvas: cfg.Canvas}
	if fs, ok := e.fonts.(FaceSource); ok {
		e.rc.Fonts = fs
	}
	e.cloner = NewCloner(e.rc, e.logger)
	e.doc.Settings.SetLogger(e.logger)

	e.recalcDebounce = newDebouncer(cfg.RecalcDebounce.value(), e.emitRecalculated)
	e.redrawDebounce = newDebouncer(cfg.RedrawDebounce.value(), func() { e.Redraw(nil) })

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.OnCalc(CalcPriorityClone, e.cloneHandler)
	e.OnSettings(0, e.coreSettings)

	go e.drain()
	return e
}

// Init merges settings into the document, replaces its authoring list,
// starts loading fonts in the background, recalculates the whole document
// and draws it.
func (e *Engine) Init(ctx context.Context, authored []*Node, settings map[string]any) (*Document, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}
	if settings != nil {
		e.doc.Settings.Merge(settings)
	}

	e.mu.Lock()
	e.doc.Authored = e.doc.Authored[:0]
	for _, n := range authored {
		insert(n, e.doc.Root(), Append, &e.doc.Authored)
	}
	e.mu.Unlock()

	e.reloadFontsInBackground()

	if _, err := e.RecalculateDocument(ctx); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	e.Redraw(nil)
	return e.doc, nil
}

func (e *Engine) reloadFontsInBackground() {
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		e.ReloadFonts(e.ctx)
	}()
}

// Close stops the engine. Parked calc requests fail with ErrClosed,
// pending debounced work is dropped and background loads are cancelled.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.parkedMu.Lock()
		e.closed = true
		e.parkedMu.Unlock()

		close(e.closing)
		<-e.drained
		e.failParked(ErrClosed)

		e.cancel()
		e.bg.Wait()
		e.recalcDebounce.Cancel()
		e.redrawDebounce.Cancel()
	})
	return nil
}

func (e *Engine) isClosed() bool {
	e.parkedMu.Lock()
	defer e.parkedMu.Unlock()
	return e.closed
}

// Document returns the engine's document.
func (e *Engine) Document() *Document {
	return e.doc
}

// Settings returns the document settings.
func (e *Engine) Settings() *Settings {
	return e.doc.Settings
}

// RenderContext returns the context handed to deferred resolvers.
func (e *Engine) RenderContext() *RenderContext {
	return e.rc
}

// Logger returns the engine logger.
func (e *Engine) Logger() zerolog.Logger {
	return e.logger
}
