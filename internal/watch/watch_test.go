package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestRunFailsOnMissingTarget(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing")

	err := Run(target, "true", true, false)
	if err == nil {
		t.Fatal("expected a registration failure for a nonexistent target")
	}
}

func TestRunStopsOnNonzeroCommandExit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "watched.txt")
	if err := os.WriteFile(target, []byte("initial"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	// "exit 5" ends the session after the first trigger, so Run returns on
	// its own once the modification settles.
	var wg sync.WaitGroup
	wg.Add(1)
	var runErr error
	go func() {
		defer wg.Done()
		runErr = Run(target, "exit 5", true, false)
	}()

	// Give the watcher a moment to register, then modify the target.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(target, []byte("changed"), 0644); err != nil {
		t.Fatalf("failed to modify test file: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the command requested a stop")
	}

	if runErr != nil {
		t.Fatalf("a command-requested stop is normal completion, got %v", runErr)
	}
}

func TestSessionShutdownIdempotent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "watched.txt")
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	source, err := newPlatformSource(target)
	if err != nil {
		t.Fatalf("failed to open source: %v", err)
	}
	sess := &Session{target: target, command: "true", source: source, logger: createLogger(false)}

	sess.shutdown()
	sess.shutdown()

	if sess.source != nil {
		t.Error("shutdown did not release the change source")
	}
}
