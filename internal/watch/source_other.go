//go:build !linux

package watch

// newPlatformSource opens the portable fsnotify change source on platforms
// without raw inotify.
func newPlatformSource(target string) (eventSource, error) {
	return newFsnotifySource(target)
}
