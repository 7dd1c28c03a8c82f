package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"market-dashboard/src/models"
)

func testConfig(retries int) *models.MConfig {
	return &models.MConfig{
		Network: models.MNetworkConfig{RequestTimeout: 5, MaxRetries: retries, UserAgent: "dashboard-test"},
	}
}

func TestGetSendsParamsAndUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("asset_class") != "stocks" {
			t.Errorf("expected asset_class=stocks, got %q", r.URL.RawQuery)
		}
		if r.UserAgent() != "dashboard-test" {
			t.Errorf("expected user agent dashboard-test, got %q", r.UserAgent())
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	nm := NewNetworkManager(testConfig(0), nil)
	body, err := nm.Get(context.Background(), srv.URL, map[string]string{"asset_class": "stocks"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	nm := NewNetworkManager(testConfig(2), nil)
	body, err := nm.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "ok" || atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected ok after 2 calls, got %q after %d", body, calls)
	}
}

func TestGetDoesNotRetryNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	nm := NewNetworkManager(testConfig(3), nil)
	_, err := nm.Get(context.Background(), srv.URL, nil)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

// proxyServer answers every proxied request with status and body.
func proxyServer(status int, body string, hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func proxyConfig(retries int, proxies ...string) *models.MConfig {
	cfg := testConfig(retries)
	cfg.Network.Enabled = true
	cfg.Network.Proxies = proxies
	return cfg
}

func TestGetRotatesToNextProxy(t *testing.T) {
	var blockedHits, okHits atomic.Int32
	blocked := proxyServer(http.StatusTooManyRequests, "", &blockedHits)
	defer blocked.Close()
	ok := proxyServer(http.StatusOK, `[]`, &okHits)
	defer ok.Close()

	nm := NewNetworkManager(proxyConfig(1, blocked.URL, ok.URL), nil)
	body, err := nm.Get(context.Background(), "http://market.test/snapshot", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "[]" {
		t.Errorf("expected [], got %s", body)
	}
	if blockedHits.Load() != 1 || okHits.Load() != 1 {
		t.Errorf("expected one request per proxy, got %d and %d", blockedHits.Load(), okHits.Load())
	}
}

func TestConcurrentGetWhileRotating(t *testing.T) {
	var hitsA, hitsB atomic.Int32
	a := proxyServer(http.StatusOK, `[]`, &hitsA)
	defer a.Close()
	b := proxyServer(http.StatusOK, `[]`, &hitsB)
	defer b.Close()

	nm := NewNetworkManager(proxyConfig(0, a.URL, b.URL), nil)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := nm.Get(context.Background(), "http://market.test/snapshot", nil); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			nm.rotateProxy()
		}()
	}
	wg.Wait()

	if total := hitsA.Load() + hitsB.Load(); total != workers {
		t.Errorf("expected %d proxied requests, got %d", workers, total)
	}
}
