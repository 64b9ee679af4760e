package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/example/go-dotprod/internal/history"
	"github.com/example/go-dotprod/internal/server"
)

// ---------------------------------------------------------------------------
// request validation and limits
// ---------------------------------------------------------------------------

func TestDot_OversizedVectorRejectedAs413(t *testing.T) {
	h := server.NewHandler(server.WithMaxDimension(3))

	rec, body := postDot(t, h, `{"a":[1,2,3,4],"b":[1,2,3,4]}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("want 413, got %d", rec.Code)
	}
	if body.Error == "" {
		t.Error("want non-empty error field")
	}
}

func TestDot_VectorAtExactLimitIsAccepted(t *testing.T) {
	h := server.NewHandler(server.WithMaxDimension(3))

	rec, body := postDot(t, h, `{"a":[1,2,3],"b":[1,2,3]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 for exactly-limit vector, got %d", rec.Code)
	}
	if body.Result.String() != "14" {
		t.Errorf("result = %s, want 14", body.Result)
	}
}

func TestDot_ZeroMaxDimensionDisablesLimit(t *testing.T) {
	h := server.NewHandler(server.WithMaxDimension(0))

	rec, _ := postDot(t, h, `{"a":[1,2,3,4,5],"b":[1,2,3,4,5]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/dot"},
		{http.MethodPut, "/dot"},
		{http.MethodPost, "/history"},
		{http.MethodDelete, "/history.csv"},
	}

	h := server.NewHandler()
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))

			if rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("want 405, got %d", rec.Code)
			}
		})
	}
}

func TestDot_ConcurrentRequestsAreIndependent(t *testing.T) {
	store := history.New(200)
	h := server.NewHandler(server.WithHistory(store))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/dot",
				strings.NewReader(`{"a":[1,2,3,4,5],"b":[6,7,8,9,10]}`))
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"result":130`) {
				t.Errorf("unexpected response %d: %s", rec.Code, rec.Body.String())
			}
		}()
	}
	wg.Wait()

	if store.Len() != 100 {
		t.Fatalf("history has %d entries, want 100", store.Len())
	}
}
