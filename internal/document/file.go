package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"textassist/engine/internal/logging"
)

type selectionFile struct {
	Selection []Node `yaml:"selection"`
}

// File is a Source backed by a YAML (or JSON) file that a host bridge rewrites
// whenever the canvas selection changes:
//
//	selection:
//	  - {id: "1:2", type: TEXT, characters: "Hello"}
type File struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	nodes []Node
}

func NewFile(path string, logger *slog.Logger) *File {
	if logger == nil {
		logger = logging.Nop()
	}
	return &File{path: path, logger: logger}
}

// Selection returns the last successfully loaded selection.
func (f *File) Selection() []Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneNodes(f.nodes)
}

// Reload reads the file again. A missing file is an empty selection.
func (f *File) Reload() error {
	nodes, err := readSelectionFile(f.path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.nodes = nodes
	f.mu.Unlock()
	return nil
}

func (f *File) Watch(ctx context.Context, onChange func([]Node)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("selection watcher closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := f.Reload(); err != nil {
				f.logger.Warn("document.reload_failed", "path", f.path, "error", err.Error())
				continue
			}
			selection := f.Selection()
			f.logger.Debug("document.selection_changed", "path", f.path, "nodes", len(selection))
			onChange(selection)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return errors.New("selection watcher closed")
			}
			f.logger.Warn("document.watch_error", "path", f.path, "error", watchErr.Error())
		}
	}
}

func readSelectionFile(path string) ([]Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var payload selectionFile
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse selection file: %w", err)
	}
	return payload.Selection, nil
}
