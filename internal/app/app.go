package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/dshills/linetab/internal/config"
	"github.com/dshills/linetab/internal/engine/annotate"
	"github.com/dshills/linetab/internal/engine/buffer"
	"github.com/dshills/linetab/internal/engine/linetable"
	"github.com/dshills/linetab/internal/view"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty means
	// defaults only.
	ConfigPath string

	// File is the file to open. Empty opens a scratch buffer.
	File string

	// Script overrides the configured annotation script.
	Script string

	// StatePath overrides the session state file location.
	StatePath string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogOutput overrides the log destination. Defaults to stderr.
	LogOutput io.Writer
}

// Application wires the buffer, annotator, configuration, and viewer
// together.
type Application struct {
	opts Options
	log  *Logger
	cfg  config.Config

	buf       *buffer.Buffer[annotate.Note]
	name      string
	annotator annotate.Annotator
	state     *SessionState

	watcher *config.Watcher
	running atomic.Bool
	dirty   atomic.Bool
}

// New creates an application from the given options, loading the
// configuration and the input file.
func New(opts Options) (*Application, error) {
	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(opts.LogLevel)
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	}

	app := &Application{
		opts: opts,
		log:  NewLogger(logCfg),
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return NewComponentError("config", "load", err)
	}
	app.cfg = cfg

	if err := app.openFile(); err != nil {
		return err
	}

	if err := app.setupAnnotator(); err != nil {
		return err
	}
	app.refreshAnnotations()

	// Edits clear payloads on touched lines; mark the buffer dirty so
	// the next dump or draw pass re-annotates them.
	app.buf.Observe(buffer.ObserverFunc(func(_ []rune, _ linetable.Range, _ int) {
		app.dirty.Store(true)
	}))

	statePath := app.opts.StatePath
	if statePath == "" {
		statePath = DefaultStatePath()
	}
	if statePath != "" {
		app.state = NewSessionState(statePath)
	}

	return nil
}

func (app *Application) openFile() error {
	var bufOpts []buffer.Option[annotate.Note]
	if app.cfg.Editor.TabWidth > 0 {
		bufOpts = append(bufOpts, buffer.WithTabWidth[annotate.Note](app.cfg.Editor.TabWidth))
	}
	switch app.cfg.Editor.LineEnding {
	case "lf":
		bufOpts = append(bufOpts, buffer.WithLineEnding[annotate.Note](buffer.LineEndingLF))
	case "crlf":
		bufOpts = append(bufOpts, buffer.WithLineEnding[annotate.Note](buffer.LineEndingCRLF))
	case "cr":
		bufOpts = append(bufOpts, buffer.WithLineEnding[annotate.Note](buffer.LineEndingCR))
	}

	if app.opts.File == "" {
		app.buf = buffer.New(bufOpts...)
		app.name = "[scratch]"
		return nil
	}

	f, err := os.Open(app.opts.File)
	if err != nil {
		return NewComponentError("buffer", "open "+app.opts.File, err)
	}
	defer f.Close()

	app.buf, err = buffer.NewFromReader(f, bufOpts...)
	if err != nil {
		return NewComponentError("buffer", "read "+app.opts.File, err)
	}
	app.name = filepath.Base(app.opts.File)

	app.log.WithComponent("buffer").Debug("opened %s: %d runes, %d lines",
		app.opts.File, app.buf.Len(), app.buf.LineCount())
	return nil
}

func (app *Application) setupAnnotator() error {
	if !app.cfg.Annotate.Enabled {
		return nil
	}

	script := app.opts.Script
	if script == "" {
		script = app.cfg.Annotate.Script
	}
	if script == "" {
		app.annotator = annotate.Basic{}
		return nil
	}

	lua, err := annotate.NewLuaFile(script)
	if err != nil {
		return NewComponentError("annotate", "load script "+script, err)
	}
	app.annotator = lua
	app.log.WithComponent("annotate").Debug("using script %s", script)
	return nil
}

// refreshAnnotations fills payloads for lines that do not have one.
func (app *Application) refreshAnnotations() {
	if app.annotator == nil {
		return
	}
	app.dirty.Store(false)
	app.buf.Annotate(func(t *linetable.Table[annotate.Note], text []rune) {
		n, err := annotate.Refresh(t, text, app.annotator)
		if err != nil {
			app.log.WithComponent("annotate").Warn("refresh: %v", err)
			return
		}
		if n > 0 {
			app.log.WithComponent("annotate").Debug("annotated %d lines", n)
		}
	})
}

// Run shows the viewer and blocks until the user quits.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return fmt.Errorf("already running")
	}
	defer app.running.Store(false)

	if app.opts.ConfigPath != "" {
		w, err := config.Watch(app.opts.ConfigPath, app.handleConfigReload)
		if err != nil {
			app.log.WithComponent("config").Warn("watch: %v", err)
		} else {
			app.watcher = w
		}
	}

	viewer, err := view.New(app.buf, app.name, app.cfg)
	if err != nil {
		return NewComponentError("view", "create screen", err)
	}

	app.restoreCursor(viewer)
	err = viewer.Run()
	app.saveCursor(viewer)
	return err
}

func (app *Application) handleConfigReload(cfg config.Config) {
	app.cfg = cfg
	app.log.WithComponent("config").Info("configuration reloaded")
}

func (app *Application) restoreCursor(v *view.Viewer) {
	if app.state == nil || app.opts.File == "" {
		return
	}
	if off, ok := app.state.Cursor(app.opts.File); ok {
		v.SetCursor(off)
	}
}

func (app *Application) saveCursor(v *view.Viewer) {
	if app.state == nil || app.opts.File == "" {
		return
	}
	if err := app.state.SaveCursor(app.opts.File, v.Cursor(), app.buf.SessionID()); err != nil {
		app.log.WithComponent("state").Warn("save: %v", err)
	}
}

// Dump writes the line map to w, one row per line record.
func (app *Application) Dump(w io.Writer) error {
	app.refreshAnnotations()

	for i := 1; i <= app.buf.LineCount(); i++ {
		rec, ok := app.buf.Line(i)
		if !ok {
			break
		}
		row := fmt.Sprintf("%4d  start=%-6d len=%-4d", i, rec.Start, rec.Length)
		if rec.Info != nil {
			row += fmt.Sprintf("  width=%-4d class=%s", rec.Info.Width, rec.Info.Class)
		}
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

// Buffer returns the open buffer.
func (app *Application) Buffer() *buffer.Buffer[annotate.Note] {
	return app.buf
}

// Shutdown releases resources held by the application.
func (app *Application) Shutdown() {
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			app.log.WithComponent("config").Warn("close watcher: %v", err)
		}
		app.watcher = nil
	}
	if lua, ok := app.annotator.(*annotate.Lua); ok {
		lua.Close()
	}
}
