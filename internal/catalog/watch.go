package catalog

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch refreshes the cache whenever the backing table file is written
// or replaced out-of-band. The parent directory is watched rather than
// the file itself so that rename-over-replace does not drop the watch.
// Blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(s.csvPath)
	if err := w.Add(dir); err != nil {
		return err
	}

	name := filepath.Base(s.csvPath)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			n := s.Refresh()
			s.log.Info("product table changed on disk", zap.Int("products", n))

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("table watcher error", zap.Error(err))
		}
	}
}
