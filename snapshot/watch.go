package snapshot

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch invokes fn with the re-read snapshot every time the file at path is
// written or replaced, until the context is cancelled. Editors and
// exporters commonly replace files by rename, so the parent directory is
// watched rather than the file itself.
//
// Read failures are delivered to fn as errors; fn runs on the watcher
// goroutine.
func Watch(ctx context.Context, path string, fn func(*Snapshot, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
				fn(ReadFile(abs))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(nil, err)
		}
	}
}
