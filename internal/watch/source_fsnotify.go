package watch

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// fsnotifySource implements eventSource on top of fsnotify for platforms
// without a raw inotify surface. fsnotify collapses the kind bitset to its
// five operations and carries no rename cookie, so Cookie is always zero and
// Watch is always the single registration.
type fsnotifySource struct {
	watcher *fsnotify.Watcher
	batches chan []ChangeRecord
	errs    chan error
	done    chan struct{}
	once    sync.Once
}

func newFsnotifySource(target string) (*fsnotifySource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMonitorInit, err)
	}
	if err := watcher.Add(target); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrWatchRegistration, target, err)
	}
	s := &fsnotifySource{
		watcher: watcher,
		batches: make(chan []ChangeRecord),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go s.relay()
	return s, nil
}

// mapOp translates fsnotify operations onto the kind bitset. Write is the
// modify-class bit; everything else is diagnostic only.
func mapOp(op fsnotify.Op) EventKind {
	var kind EventKind
	if op.Has(fsnotify.Write) {
		kind |= KindModify
	}
	if op.Has(fsnotify.Create) {
		kind |= KindCreate
	}
	if op.Has(fsnotify.Remove) {
		kind |= KindDelete
	}
	if op.Has(fsnotify.Rename) {
		kind |= KindMovedFrom
	}
	if op.Has(fsnotify.Chmod) {
		kind |= KindAttrib
	}
	return kind
}

func (s *fsnotifySource) relay() {
	defer close(s.batches)
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			rec := ChangeRecord{
				Kind: mapOp(ev.Op),
				Name: filepath.Base(ev.Name),
			}
			select {
			case s.batches <- []ChangeRecord{rec}:
			case <-s.done:
				return
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			select {
			case s.errs <- err:
			default:
			}
		case <-s.done:
			return
		}
	}
}

func (s *fsnotifySource) Batches() <-chan []ChangeRecord { return s.batches }

func (s *fsnotifySource) Errors() <-chan error { return s.errs }

// Close deregisters and releases the watcher. Subsequent calls are no-ops.
func (s *fsnotifySource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.watcher.Close()
	})
	return err
}
