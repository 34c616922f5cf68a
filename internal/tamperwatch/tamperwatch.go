// Package tamperwatch watches a sandboxed run's child executable for
// modification while the run is in flight. It never aborts or blocks the
// run; any activity is a non-fatal diagnostic.
package tamperwatch

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// EventKind classifies what happened to the watched path.
type EventKind string

const (
	EventModified EventKind = "modified"
	EventRemoved  EventKind = "removed"
	EventRenamed  EventKind = "renamed"
)

// Event is a single observation of the watched executable.
type Event struct {
	Kind EventKind
	Path string
}

// Watcher wraps a single-path fsnotify watch and logs every write, removal
// or rename of that path; other event kinds are ignored, and the events are
// not handed to callers.
type Watcher struct {
	watcher *fsnotify.Watcher
}

// New starts watching path. Watching begins immediately in a background
// goroutine; Close stops it.
func New(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	watcher := &Watcher{watcher: w}
	go watcher.loop(func(e Event) {
		log.Printf("tamperwatch: %s executable %s during run", e.Kind, e.Path)
	})
	return watcher, nil
}

func (w *Watcher) loop(callback func(Event)) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			var kind EventKind
			switch {
			case event.Has(fsnotify.Write):
				kind = EventModified
			case event.Has(fsnotify.Remove):
				kind = EventRemoved
			case event.Has(fsnotify.Rename):
				kind = EventRenamed
			default:
				continue
			}
			callback(Event{Kind: kind, Path: event.Name})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("tamperwatch: watch error: %v", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
