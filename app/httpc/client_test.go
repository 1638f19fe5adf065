package httpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "Test Agent" {
			t.Errorf("Expected user agent 'Test Agent', got '%s'", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	client := NewClient(2, 5*time.Second, "Test Agent")
	data, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Expected body 'hello', got '%s'", data)
	}
}

func TestGetNonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(2, 5*time.Second, "Test Agent")
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Error("Expected error for 500 response")
	}
}

func TestGetTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(2, 50*time.Millisecond, "Test Agent")
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Error("Expected timeout error")
	}
}

func TestHeadReturnsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD request, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "image/png")
	}))
	defer server.Close()

	client := NewClient(2, 5*time.Second, "Test Agent")
	headers, err := client.Head(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if headers.Get("Content-Type") != "image/png" {
		t.Errorf("Expected content type 'image/png', got '%s'", headers.Get("Content-Type"))
	}
}

func TestConcurrencyCeiling(t *testing.T) {
	var active, peak int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt64(&active, 1)
		for {
			observed := atomic.LoadInt64(&peak)
			if current <= observed || atomic.CompareAndSwapInt64(&peak, observed, current) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&active, -1)
	}))
	defer server.Close()

	client := NewClient(3, 5*time.Second, "Test Agent")

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Get(context.Background(), server.URL); err != nil {
				t.Errorf("Unexpected fetch error: %v", err)
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt64(&peak) > 3 {
		t.Errorf("Expected at most 3 concurrent requests, observed %d", peak)
	}
}

func TestMaxConnections(t *testing.T) {
	client := NewClient(7, time.Second, "Test Agent")
	if client.MaxConnections() != 7 {
		t.Errorf("Expected ceiling 7, got %d", client.MaxConnections())
	}
}
