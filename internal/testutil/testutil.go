// Package testutil provides shared helpers for tests that need a loopback
// listener, a config file on disk, or approximate float comparison.
//
// Skip helpers call t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so tests stay runnable in sandboxed environments
// without failing noisily.
//
// Typical usage:
//
//	func TestServe(t *testing.T) {
//	    addr := testutil.FreeAddr(t)
//	    ...
//	    testutil.WaitForHTTP(t, addr, 2*time.Second)
//	}
package testutil

import (
	"math"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// FreeAddr returns a 127.0.0.1 address with a port that was free a moment ago.
// It skips the test if no loopback listener can be opened.
func FreeAddr(tb testing.TB) string {
	tb.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Skipf("loopback listener not available: %v", err)
	}

	addr := ln.Addr().String()
	_ = ln.Close()

	return addr
}

// WaitForHTTP polls GET http://addr/health until it answers 200 or timeout
// elapses, then fails the test.
func WaitForHTTP(tb testing.TB, addr string, timeout time.Duration) {
	tb.Helper()

	client := &http.Client{Timeout: 200 * time.Millisecond}
	deadline := time.Now().Add(timeout)

	var lastErr error
	for time.Now().Before(deadline) {
		resp, err := client.Get("http://" + addr + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		lastErr = err
		time.Sleep(20 * time.Millisecond)
	}

	tb.Fatalf("server at %s never became ready: %v", addr, lastErr)
}

// WriteConfig writes content to name inside a fresh temp dir and returns the
// full path.
func WriteConfig(tb testing.TB, name, content string) string {
	tb.Helper()

	p := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		tb.Fatalf("write config %s: %v", p, err)
	}

	return p
}

// AssertClose fails the test unless got is within tol of want, scaled by
// max(1, |want|).
func AssertClose(tb testing.TB, got, want, tol float64) {
	tb.Helper()

	if math.Abs(got-want) > tol*math.Max(1, math.Abs(want)) {
		tb.Fatalf("got %v, want %v (tol %g)", got, want, tol)
	}
}
