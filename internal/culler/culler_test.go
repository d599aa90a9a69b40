package culler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/nikbrunner/bmsync/internal/model"
)

func flat(urls ...string) []model.FlatBookmark {
	out := make([]model.FlatBookmark, len(urls))
	for i, u := range urls {
		n := &model.Node{Kind: model.KindBookmark, ID: string(rune('a' + i)), Title: u, URL: u}
		out[i] = model.FlatBookmark{Node: n, Path: "Bar"}
	}
	return out
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/gone":
			w.WriteHeader(http.StatusGone)
		case "/nohead":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckURLs(t *testing.T) {
	srv := testServer(t)
	bookmarks := flat(srv.URL+"/ok", srv.URL+"/missing", srv.URL+"/gone", srv.URL+"/nohead", srv.URL+"/boom")

	results, err := CheckURLs(context.Background(), bookmarks, Options{Concurrency: 2, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("CheckURLs failed: %v", err)
	}

	want := []Status{Healthy, Dead, Dead, Healthy, Unreachable}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, r := range results {
		if r.Status != want[i] {
			t.Errorf("%s: expected %s, got %s", r.Bookmark.URL, want[i], r.Status)
		}
		if r.Path != "Bar" {
			t.Errorf("%s: expected path Bar, got %q", r.Bookmark.URL, r.Path)
		}
	}
	if results[4].Error != "Internal Server Error" {
		t.Errorf("expected status text for 500, got %q", results[4].Error)
	}

	dead := DeadIDs(results)
	if len(dead) != 2 || dead[0] != "b" || dead[1] != "c" {
		t.Errorf("unexpected dead ids: %v", dead)
	}
}

func TestCheckURLs_Empty(t *testing.T) {
	results, err := CheckURLs(context.Background(), nil, Options{}, nil)
	if err != nil || results != nil {
		t.Errorf("expected nil results, got %v, %v", results, err)
	}
}

func TestCheckURLs_Progress(t *testing.T) {
	srv := testServer(t)
	bookmarks := flat(srv.URL+"/ok", srv.URL+"/ok", srv.URL+"/ok")

	var calls atomic.Int32
	last := 0
	_, err := CheckURLs(context.Background(), bookmarks, Options{Concurrency: 3}, func(completed, total int) {
		calls.Add(1)
		if total != 3 {
			t.Errorf("expected total 3, got %d", total)
		}
		last = completed
	})
	if err != nil {
		t.Fatalf("CheckURLs failed: %v", err)
	}
	if calls.Load() != 3 || last != 3 {
		t.Errorf("expected 3 progress calls ending at 3, got %d calls, last %d", calls.Load(), last)
	}
}

func TestCheckURLs_ExcludedDomainIsPossiblyPrivate(t *testing.T) {
	srv := testServer(t)
	// httptest listens on 127.0.0.1
	results, err := CheckURLs(context.Background(), flat(srv.URL+"/missing"), Options{ExcludeDomains: []string{"127.0.0.*"}}, nil)
	if err != nil {
		t.Fatalf("CheckURLs failed: %v", err)
	}
	if results[0].Status != Unreachable || !strings.Contains(results[0].Error, "private") {
		t.Errorf("expected possibly private, got %s %q", results[0].Status, results[0].Error)
	}
}

func TestCheckURLs_InvalidPattern(t *testing.T) {
	_, err := CheckURLs(context.Background(), flat("https://a.com"), Options{ExcludeDomains: []string{"[a-"}}, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid exclude pattern") {
		t.Errorf("expected invalid pattern error, got %v", err)
	}
}

func TestCheckURLs_Unreachable(t *testing.T) {
	srv := testServer(t)
	addr := srv.URL
	srv.Close()

	results, err := CheckURLs(context.Background(), flat(addr+"/ok", "ftp://example.com"), Options{Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("CheckURLs failed: %v", err)
	}
	if results[0].Status != Unreachable || results[0].Error != "Connection refused" {
		t.Errorf("expected connection refused, got %s %q", results[0].Status, results[0].Error)
	}
	if results[1].Error != "Unsupported scheme" {
		t.Errorf("expected unsupported scheme, got %q", results[1].Error)
	}
}

func TestCheckURLs_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := CheckURLs(ctx, flat("https://a.com", "https://b.com"), Options{Concurrency: 1}, nil)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for _, r := range results {
		if r.Status == Healthy {
			t.Errorf("%s should not be healthy after cancel", r.Bookmark.URL)
		}
	}
}

func TestDomainMatcher(t *testing.T) {
	m, err := NewDomainMatcher([]string{"github.com", "*.corp.example", " ", "git{lab,ea}.io"})
	if err != nil {
		t.Fatalf("NewDomainMatcher failed: %v", err)
	}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com/me/private", true},
		{"https://GIST.GitHub.com/x", true},
		{"https://api.v2.github.com/x", true},
		{"https://notgithub.com/x", false},
		{"https://wiki.corp.example/page", true},
		{"https://a.b.corp.example/page", false},
		{"https://corp.example/page", false},
		{"https://gitlab.io/x", true},
		{"https://gitea.io/x", true},
		{"::not a url", false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.url); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	dns := &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"dns", &url.Error{Op: "Head", URL: "x", Err: &net.OpError{Op: "dial", Net: "tcp", Err: dns}}, "DNS failure"},
		{"deadline", fmt.Errorf("head: %w", context.DeadlineExceeded), "Timeout"},
		{"cancelled", &url.Error{Op: "Get", URL: "x", Err: context.Canceled}, "Cancelled"},
		{"refused", &url.Error{Op: "Get", URL: "x", Err: refused}, "Connection refused"},
		{"certificate", &url.Error{Op: "Get", URL: "x", Err: &tls.CertificateVerificationError{Err: errors.New("expired")}}, "TLS/certificate error"},
		{"scheme", errors.New(`Get "ftp://x": unsupported protocol scheme "ftp"`), "Unsupported scheme"},
		{"other", errors.New("something else"), "something else"},
	}
	for _, tt := range tests {
		if got := describe(tt.err); got != tt.want {
			t.Errorf("%s: describe(%v) = %q, want %q", tt.name, tt.err, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	got := Count([]Result{{Status: Healthy}, {Status: Dead}, {Status: Dead}, {Status: Unreachable}})
	if got != (Tally{Healthy: 1, Dead: 2, Unreachable: 1}) {
		t.Errorf("Count = %+v", got)
	}
}

func TestChecker_LogsSummary(t *testing.T) {
	srv := testServer(t)
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	c, err := NewChecker(Options{Log: logger})
	if err != nil {
		t.Fatalf("NewChecker failed: %v", err)
	}
	if _, err := c.Run(context.Background(), flat(srv.URL+"/ok", srv.URL+"/gone"), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	last := hook.LastEntry()
	if last == nil || last.Message != "link check finished" {
		t.Fatalf("expected a summary entry, got %+v", last)
	}
	if last.Data["healthy"] != 1 || last.Data["dead"] != 1 {
		t.Errorf("unexpected summary fields: %v", last.Data)
	}
}
