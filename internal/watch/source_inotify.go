//go:build linux

package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// drainBufSize bounds one drain read: room for 16 raw records, each with a
// full-length child name.
const drainBufSize = 16 * (unix.SizeofInotifyEvent + unix.NAME_MAX + 1)

// inotifySource watches one target through an inotify instance. Registration
// requests modify-class notifications only and excludes events for targets
// unlinked after registration.
type inotifySource struct {
	file    *os.File // wraps the inotify descriptor; Close unblocks the drain
	fd      int
	wd      int
	batches chan []ChangeRecord
	errs    chan error
	done    chan struct{}
	once    sync.Once
}

func newInotifySource(target string) (*inotifySource, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMonitorInit, err)
	}
	wd, err := unix.InotifyAddWatch(fd, target, unix.IN_MODIFY|unix.IN_EXCL_UNLINK)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: %s: %v", ErrWatchRegistration, target, err)
	}
	s := &inotifySource{
		file:    os.NewFile(uintptr(fd), "inotify"),
		fd:      fd,
		wd:      wd,
		batches: make(chan []ChangeRecord),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go s.drainLoop()
	return s, nil
}

// drainLoop performs one bounded read per wakeup and hands the decoded batch
// to the loop. The unbuffered send keeps kernel-side queueing authoritative
// while the loop is stalled in a command.
func (s *inotifySource) drainLoop() {
	defer close(s.batches)
	buf := make([]byte, drainBufSize)
	for {
		n, err := s.file.Read(buf)
		if err != nil {
			if errors.Is(err, fs.ErrClosed) {
				return
			}
			s.errs <- fmt.Errorf("reading change events: %w", err)
			return
		}
		records := decodeBatch(buf[:n])
		if len(records) == 0 {
			continue
		}
		// The loop may have exited with this batch still undelivered;
		// Close releases the send so the goroutine winds down.
		select {
		case s.batches <- records:
		case <-s.done:
			return
		}
	}
}

func (s *inotifySource) Batches() <-chan []ChangeRecord { return s.batches }

func (s *inotifySource) Errors() <-chan error { return s.errs }

// Close deregisters the watch then releases the instance. Subsequent calls
// are no-ops.
func (s *inotifySource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		unix.InotifyRmWatch(s.fd, uint32(s.wd))
		err = s.file.Close()
	})
	return err
}

// newPlatformSource opens the native change source for this platform.
func newPlatformSource(target string) (eventSource, error) {
	return newInotifySource(target)
}
