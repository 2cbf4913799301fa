package store

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/grille/internal/apperr"
	"github.com/starford/grille/internal/models"
	"github.com/starford/grille/internal/puzzle"
	"github.com/starford/grille/internal/storage"
)

// EventCallback is told about every catalog change the watcher makes.
// kind is one of "created", "updated", "deleted"; path is relative to the
// puzzles root.
type EventCallback func(kind string, path string)

// settleDelay is how long the directory must stay quiet before pending
// changes reach the catalog. One save can produce several events.
const settleDelay = 150 * time.Millisecond

func watched(path string) bool {
	name := filepath.Base(path)
	return !strings.HasPrefix(name, ".") && puzzle.IsPuzzleFile(name)
}

type watcher struct {
	db     *DB
	files  storage.Provider
	root   string
	fsw    *fsnotify.Watcher
	logger *slog.Logger
	notify EventCallback

	// pending holds the paths touched since the last flush and whether any
	// of their events was a create.
	pending map[string]bool
	rescan  bool
}

// Watch keeps the catalog in step with the puzzles directory until ctx is
// done.
//
// Events are collected per path and applied in one batch once nothing has
// happened for settleDelay: a path that still reads is re-indexed, one that
// is gone loses its row. fsnotify only names the old path of a rename, so a
// rename also schedules a full comparison of catalog and disk. Directories
// created at runtime are watched and their puzzle files queued.
func Watch(ctx context.Context, db *DB, files storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w := &watcher{
		db:      db,
		files:   files,
		root:    root,
		fsw:     fsw,
		logger:  logger,
		notify:  cb,
		pending: make(map[string]bool),
	}
	if err := w.walk(root, false); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.note(ev) {
				settle.Reset(settleDelay)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", err.Error()))

		case <-settle.C:
			w.flush()
		}
	}
}

// note records ev and reports whether anything is now pending.
func (w *watcher) note(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.walk(ev.Name, true); err != nil {
				w.logger.Warn("watcher: add dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
			}
			return true
		}
	}
	if !watched(ev.Name) {
		return false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return false
	}
	if ev.Has(fsnotify.Rename) {
		w.rescan = true
	}
	w.pending[rel] = w.pending[rel] || ev.Has(fsnotify.Create)
	return true
}

// walk adds dir and its subdirectories to the watch list. With queue set,
// the puzzle files found on the way are marked as created.
func (w *watcher) walk(dir string, queue bool) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(p)
		}
		if queue && watched(p) {
			if rel, err := filepath.Rel(w.root, p); err == nil {
				w.pending[rel] = true
			}
		}
		return nil
	})
}

func (w *watcher) flush() {
	for rel, created := range w.pending {
		delete(w.pending, rel)
		data, err := w.files.Read(rel)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			w.drop(rel)
		case err != nil:
			w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		default:
			w.index(models.PuzzleFile{Path: rel, UpdatedAt: time.Now()}, data, created)
		}
	}
	if w.rescan {
		w.rescan = false
		w.reconcile()
	}
}

// index catalogs one file. A file that stops parsing is reported deleted
// if it had a row.
func (w *watcher) index(f models.PuzzleFile, data []byte, created bool) {
	known, _ := w.db.GetChecksum(f.Path)
	if err := IndexFile(w.db, f, data); err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", f.Path), slog.String("error", err.Error()))
		if known != "" {
			w.emit("deleted", f.Path)
		}
		return
	}
	if created || known == "" {
		w.emit("created", f.Path)
	} else {
		w.emit("updated", f.Path)
	}
}

func (w *watcher) drop(rel string) {
	if known, _ := w.db.GetChecksum(rel); known == "" {
		return
	}
	if err := w.db.DeletePuzzle(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.emit("deleted", rel)
}

// reconcile compares the catalog against a fresh listing of the directory.
func (w *watcher) reconcile() {
	files, err := w.files.List("")
	if err != nil {
		w.logger.Warn("watcher: list failed", slog.String("error", err.Error()))
		return
	}
	known, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("watcher: checksums failed", slog.String("error", err.Error()))
		return
	}

	for _, f := range files {
		sum, ok := known[f.Path]
		delete(known, f.Path)
		if ok && sum == f.Checksum {
			continue
		}
		data, err := w.files.Read(f.Path)
		if err != nil {
			continue
		}
		w.index(f, data, !ok)
	}
	for rel := range known {
		w.drop(rel)
	}
}

func (w *watcher) emit(kind, rel string) {
	w.logger.Debug("watcher: catalog changed", slog.String("path", rel), slog.String("op", kind))
	if w.notify != nil {
		w.notify(kind, rel)
	}
}
