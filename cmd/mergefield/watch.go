package main

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield"
)

// watchFiles calls changed with the path of every file in files that is
// written or replaced, until ctx is done. The parent directories are watched
// so that editors saving through a rename are noticed.
func watchFiles(ctx context.Context, files []string, changed func(name string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	wanted := make(map[string]string, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		wanted[abs] = f
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if name, ok := wanted[abs]; ok {
				changed(name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			mergefield.Warn("watch error: %v", err)
		}
	}
}
