package replaylog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/ecsim/internal/ecs"
)

// Writer appends update blocks to a session log file. It implements
// ecs.TickObserver; attach it to a world and every sealed tick lands in the
// buffer, flushed to disk every FlushInterval ticks and on Close.
//
// A disabled config yields an inert writer: no file, no buffering, no
// overhead. IO failures are stashed and logged, never propagated into the
// simulation; check Err or the Close result.
type Writer struct {
	cfg     Config
	log     *zap.Logger
	session string
	path    string
	file    *os.File
	buf     strings.Builder
	pending int
	err     error
}

// NewWriter opens a session log under cfg.LogDirectory, creating the
// directory as needed. With cfg.Enabled false it returns an inert writer
// and touches nothing on disk.
func NewWriter(cfg Config, log *zap.Logger) (*Writer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Writer{cfg: cfg, log: log}
	if !cfg.Enabled {
		return w, nil
	}
	if cfg.FlushInterval <= 0 {
		w.cfg.FlushInterval = 1
	}
	if err := os.MkdirAll(cfg.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("replaylog: create log directory: %w", err)
	}
	w.session = fmt.Sprintf("%s_%d", cfg.FilePrefix, time.Now().Unix())
	w.path = filepath.Join(cfg.LogDirectory, w.session+".log")
	f, err := os.Create(w.path)
	if err != nil {
		return nil, fmt.Errorf("replaylog: create session log: %w", err)
	}
	w.file = f

	header := fmt.Sprintf("SESSION %s\nSTARTED %s\nCONFIG flush_interval=%d include_component_details=%t\n\n",
		w.session, time.Now().Format(time.RFC3339), w.cfg.FlushInterval, cfg.IncludeComponentDetails)
	if _, err := f.WriteString(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("replaylog: write session header: %w", err)
	}
	log.Info("replay log opened",
		zap.String("session", w.session),
		zap.String("path", w.path))
	return w, nil
}

// SessionID returns the generated session id, empty when disabled.
func (w *Writer) SessionID() string { return w.session }

// Path returns the log file path, empty when disabled.
func (w *Writer) Path() string { return w.path }

// TickSealed buffers one tick block. Part of ecs.TickObserver.
func (w *Writer) TickSealed(rec ecs.TickRecord) {
	if w.file == nil || w.err != nil {
		return
	}
	formatTick(&w.buf, rec, w.cfg.IncludeComponentDetails)
	w.pending++
	if w.pending >= w.cfg.FlushInterval {
		w.flush()
	}
}

func (w *Writer) flush() {
	if w.buf.Len() == 0 {
		return
	}
	if _, err := w.file.WriteString(w.buf.String()); err != nil {
		w.err = fmt.Errorf("replaylog: write session log: %w", err)
		w.log.Error("replay log write failed, logging disabled for this session",
			zap.String("session", w.session), zap.Error(err))
	}
	w.buf.Reset()
	w.pending = 0
}

// Err returns the first stashed IO error, if any.
func (w *Writer) Err() error { return w.err }

// Close flushes buffered ticks and closes the file. Safe on an inert or
// already-failed writer.
func (w *Writer) Close() error {
	if w.file == nil {
		return w.err
	}
	w.flush()
	if cerr := w.file.Close(); cerr != nil && w.err == nil {
		w.err = fmt.Errorf("replaylog: close session log: %w", cerr)
	}
	w.file = nil
	return w.err
}
