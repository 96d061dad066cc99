package workspace

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-runs discovery when a watched directory's descriptor file is
// created or modified, so externally added targets become worlds without a
// restart. Watch failures degrade to log lines; the registry works fully
// without a watcher.
type Watcher struct {
	registry *Registry
	fsw      *fsnotify.Watcher
	logger   *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// Watch starts watching each directory for descriptor changes.
func (r *Registry) Watch(dirs ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		registry: r,
		fsw:      fsw,
		logger:   r.logger,
		done:     make(chan struct{}),
	}

	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory", "dir", dir, "error", err)
		}
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != DescriptorName {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			dir := filepath.Dir(event.Name)
			w.logger.Info("descriptor changed, rediscovering", "dir", dir, "op", event.Op.String())
			w.registry.Discover([]string{dir})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}
