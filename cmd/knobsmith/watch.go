package main

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// configWatcher signals when the config file changes. The parent directory
// is watched so editors that replace the file by rename are still seen.
type configWatcher struct {
	w       *fsnotify.Watcher
	path    string
	changed chan struct{}
	log     *zap.Logger
}

func newConfigWatcher(path string, log *zap.Logger) (*configWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	cw := &configWatcher{w: w, path: abs, changed: make(chan struct{}, 1), log: log}
	go cw.loop()
	return cw, nil
}

func (cw *configWatcher) loop() {
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Coalesce bursts; one pending reload is enough.
			select {
			case cw.changed <- struct{}{}:
			default:
			}
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			cw.log.Warn("config watch", zap.Error(err))
		}
	}
}

// Changed delivers one value per burst of file changes. A nil watcher
// never fires.
func (cw *configWatcher) Changed() <-chan struct{} {
	if cw == nil {
		return nil
	}
	return cw.changed
}

func (cw *configWatcher) Close() error {
	if cw == nil {
		return nil
	}
	return cw.w.Close()
}
