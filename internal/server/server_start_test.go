package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/example/go-dotprod/internal/config"
	"github.com/example/go-dotprod/internal/testutil"
)

func TestStart_LifecycleDotAndShutdown(t *testing.T) {
	addr := testutil.FreeAddr(t)

	cfg := config.DefaultConfig()
	cfg.Server.ListenAddr = addr
	cfg.Compute.Kernel = "vecmath"

	s := New(cfg, nil).WithShutdownTimeout(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.Start(ctx)
	}()

	testutil.WaitForHTTP(t, addr, 2*time.Second)

	if err := ProbeHTTP(addr); err != nil {
		t.Fatalf("ProbeHTTP: %v", err)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Post(fmt.Sprintf("http://%s/dot", addr), "application/json",
		strings.NewReader(`{"a":[1.5,2.0],"b":[2.0,1.5]}`))
	if err != nil {
		t.Fatalf("POST /dot: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/dot status = %d; want 200", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode /dot: %v", err)
	}

	if body["result"] != float64(6) {
		t.Errorf("result = %v; want 6", body["result"])
	}

	// Graceful shutdown.
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start() returned error on shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return within 5s of context cancel")
	}
}

func TestStart_InvalidKernelFailsFast(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.ListenAddr = testutil.FreeAddr(t)
	cfg.Compute.Kernel = "nope"

	if err := New(cfg, nil).Start(context.Background()); err == nil {
		t.Fatal("Start() = nil; want kernel error")
	}
}

func TestProbeHTTP_Unreachable(t *testing.T) {
	if err := ProbeHTTP(testutil.FreeAddr(t)); err == nil {
		t.Fatal("ProbeHTTP() = nil; want connection error")
	}
}
