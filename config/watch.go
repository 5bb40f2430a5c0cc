package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
)

// Watch reloads filePath whenever it is written and hands the new values to
// onChange. Games already running keep the settings they were built with.
// It blocks until ctx is done.
func Watch(ctx context.Context, filePath string, onChange func(AppConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// 监听目录而不是文件，编辑器保存时经常是替换文件
	if err := watcher.Add(filepath.Dir(filePath)); err != nil {
		return err
	}
	target := filepath.Clean(filePath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if err := Reload(filePath); err != nil {
					glog.Warningf("config reload of %s failed, keeping old values: %v", filePath, err)
					continue
				}
				glog.Infof("config %s reloaded", filePath)
				if onChange != nil {
					onChange(Snapshot())
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			glog.Errorf("config watcher: %v", err)
		}
	}
}
