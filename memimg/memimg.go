// Package memimg keeps the cell tile sprites in memory so that rendering a
// board never touches the disk.
package memimg

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

var (
	tiles      = make(map[string]image.Image)
	tilesMutex sync.RWMutex
)

// TileName maps a file name like "head.png" to its cell status name, or ""
// when the file is not a tile.
func TileName(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return ""
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch name {
	case "empty", "body", "head", "food":
		return name
	}
	return ""
}

// LoadTiles replaces the cache with every tile found in directory, scaled
// to blockSize×blockSize.
func LoadTiles(directory string, blockSize int) error {
	loaded := make(map[string]image.Image)
	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || TileName(path) == "" {
			return nil
		}
		img, err := loadTile(path, blockSize)
		if err != nil {
			return err
		}
		loaded[TileName(path)] = img
		return nil
	})
	if err != nil {
		return err
	}
	tilesMutex.Lock()
	tiles = loaded
	tilesMutex.Unlock()
	return nil
}

func loadTile(path string, blockSize int) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	// 缩放到格子大小
	return imaging.Fill(img, blockSize, blockSize, imaging.Center, imaging.Lanczos), nil
}

// WatchTiles keeps the cache in sync with directory until ctx is done.
func WatchTiles(ctx context.Context, directory string, blockSize int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(directory); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := TileName(event.Name)
			if name == "" {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create:
				img, err := loadTile(event.Name, blockSize)
				if err != nil {
					// Half-written files fail to decode; the next write event retries.
					glog.V(1).Infof("tile %s not loaded: %v", event.Name, err)
					continue
				}
				tilesMutex.Lock()
				tiles[name] = img
				tilesMutex.Unlock()
				glog.Infof("tile %s reloaded", name)
			case event.Op&fsnotify.Remove == fsnotify.Remove || event.Op&fsnotify.Rename == fsnotify.Rename:
				tilesMutex.Lock()
				delete(tiles, name)
				tilesMutex.Unlock()
				glog.Infof("tile %s removed", name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			glog.Errorf("tile watcher: %v", err)
		}
	}
}

// GetTile returns the sprite for a cell status.
func GetTile(s structs.CellStatus) (image.Image, bool) {
	tilesMutex.RLock()
	img, exists := tiles[s.String()]
	tilesMutex.RUnlock()
	return img, exists
}
