package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
)

func newPool(t *testing.T, proxies ...string) *Pool {
	t.Helper()
	p, err := NewPool(proxies)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPool_RotationSkipsFailed(t *testing.T) {
	pool := newPool(t, "http://p1:1", "http://p2:1", "http://p3:1")

	for _, want := range []string{"http://p1:1", "http://p2:1", "http://p3:1", "http://p1:1"} {
		if got := pool.Next(); got != want {
			t.Errorf("Next() = %s, want %s", got, want)
		}
	}

	pool.MarkFailed("http://p2:1")
	for _, want := range []string{"http://p3:1", "http://p1:1", "http://p3:1"} {
		if got := pool.Next(); got != want {
			t.Errorf("Next() = %s, want %s (skipping p2)", got, want)
		}
	}

	pool.MarkHealthy("http://p2:1")
	for _, want := range []string{"http://p1:1", "http://p2:1"} {
		if got := pool.Next(); got != want {
			t.Errorf("Next() = %s, want %s", got, want)
		}
	}
}

func TestPool_AllFailedStillRotates(t *testing.T) {
	pool := newPool(t, "http://p1:1")
	pool.MarkFailed("http://p1:1")
	if got := pool.Next(); got != "http://p1:1" {
		t.Errorf("Next() = %q", got)
	}
}

func TestParseList(t *testing.T) {
	got := ParseList(" http://a:1, ,socks5://b:2 ")
	if !reflect.DeepEqual(got, []string{"http://a:1", "socks5://b:2"}) {
		t.Errorf("ParseList() = %v", got)
	}
}

func TestNewPool_RejectsInvalid(t *testing.T) {
	if _, err := NewPool([]string{"localhost"}); err == nil {
		t.Error("expected error for proxy without scheme")
	}
}

func TestTransport_RoutesThroughProxy(t *testing.T) {
	var hits atomic.Int32
	proxyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// A forward proxy receives the absolute target URL.
		if !strings.HasPrefix(r.RequestURI, "http://acme.test/") {
			t.Errorf("RequestURI = %s", r.RequestURI)
		}
		io.WriteString(w, "via proxy")
	}))
	defer proxyServer.Close()

	pool := newPool(t, proxyServer.URL)
	client := &http.Client{Transport: pool.Transport(&http.Transport{})}

	resp, err := client.Get("http://acme.test/about")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if string(body) != "via proxy" || hits.Load() != 1 {
		t.Errorf("body = %q, hits = %d", body, hits.Load())
	}
}

func TestTransport_MarksFailedProxy(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	pool := newPool(t, deadURL)
	client := &http.Client{Transport: pool.Transport(&http.Transport{})}
	if _, err := client.Get("http://acme.test/"); err == nil {
		t.Fatal("expected error through closed proxy")
	}

	pool.mu.Lock()
	_, failed := pool.failed[deadURL]
	pool.mu.Unlock()
	if !failed {
		t.Error("proxy not marked failed")
	}
}
