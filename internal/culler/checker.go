package culler

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmsync/internal/model"
)

const (
	DefaultConcurrency = 10
	DefaultTimeout     = 10 * time.Second
	maxRedirects       = 10
)

// ProgressFunc is called after each link is checked.
type ProgressFunc func(done, total int)

// Options tunes a Checker. Zero values fall back to the defaults.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	// ExcludeDomains are hosts whose 404s are reported as possibly private
	// rather than dead, see DomainMatcher.
	ExcludeDomains []string
	Client         *http.Client
	Log            logrus.FieldLogger
}

// Checker checks bookmark links over HTTP.
type Checker struct {
	client      *http.Client
	excluded    *DomainMatcher
	concurrency int
	log         logrus.FieldLogger
}

// NewChecker validates opts and builds a Checker.
func NewChecker(opts Options) (*Checker, error) {
	excluded, err := NewDomainMatcher(opts.ExcludeDomains)
	if err != nil {
		return nil, err
	}

	c := &Checker{
		client:      opts.Client,
		excluded:    excluded,
		concurrency: opts.Concurrency,
		log:         opts.Log,
	}
	if c.concurrency <= 0 {
		c.concurrency = DefaultConcurrency
	}
	if c.log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		c.log = quiet
	}
	if c.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	return c, nil
}

// CheckURLs is NewChecker followed by Run.
func CheckURLs(ctx context.Context, bookmarks []model.FlatBookmark, opts Options, progress ProgressFunc) ([]Result, error) {
	if len(bookmarks) == 0 {
		return nil, nil
	}
	c, err := NewChecker(opts)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, bookmarks, progress)
}

// Run checks every bookmark on a pool of workers and returns results in
// input order. Once ctx is done no new checks start; bookmarks never
// checked are reported unreachable and ctx.Err() is returned.
func (c *Checker) Run(ctx context.Context, bookmarks []model.FlatBookmark, progress ProgressFunc) ([]Result, error) {
	// The transport logs protocol noise from misbehaving servers through the
	// standard logger, which would garble the terminal.
	prev := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(prev)

	results := make([]Result, len(bookmarks))
	for i, b := range bookmarks {
		results[i] = Result{Bookmark: b.Node, Path: b.Path, Status: Unreachable, Error: "Not checked"}
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	jobs := make(chan int)
	for n := 0; n < c.concurrency; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = c.Check(ctx, bookmarks[i])
				if progress != nil {
					mu.Lock()
					done++
					progress(done, len(bookmarks))
					mu.Unlock()
				}
			}
		}()
	}

	func() {
		defer close(jobs)
		for i := range bookmarks {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()

	t := Count(results)
	c.log.WithFields(logrus.Fields{
		"healthy":     t.Healthy,
		"dead":        t.Dead,
		"unreachable": t.Unreachable,
	}).Debug("link check finished")
	return results, ctx.Err()
}

// Check checks one bookmark with HEAD, falling back to GET when HEAD fails
// or is not allowed.
func (c *Checker) Check(ctx context.Context, b model.FlatBookmark) Result {
	r := Result{Bookmark: b.Node, Path: b.Path}
	entry := c.log.WithField("url", b.Node.URL)

	resp, err := c.fetch(ctx, http.MethodHead, b.Node.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = c.fetch(ctx, http.MethodGet, b.Node.URL)
	}
	if err != nil {
		r.Status, r.Error = Unreachable, describe(err)
		entry.WithError(err).Debug("link unreachable")
		return r
	}
	defer resp.Body.Close()

	r.StatusCode = resp.StatusCode
	switch code := resp.StatusCode; {
	case code >= 200 && code < 400:
		r.Status = Healthy
	case code == http.StatusNotFound || code == http.StatusGone:
		if c.excluded.Match(b.Node.URL) {
			r.Status, r.Error = Unreachable, "Possibly private (auth required)"
		} else {
			r.Status = Dead
		}
	default:
		r.Status, r.Error = Unreachable, http.StatusText(code)
	}
	entry.WithField("status", r.StatusCode).Debugf("link %s", r.Status)
	return r
}

func (c *Checker) fetch(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// describe turns a transport error into a short reason.
func describe(err error) string {
	var (
		dnsErr     *net.DNSError
		netErr     net.Error
		verifyErr  *tls.CertificateVerificationError
		authErr    x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		recordErr  tls.RecordHeaderError
	)
	switch {
	case errors.As(err, &dnsErr):
		return "DNS failure"
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "Timeout"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "Connection refused"
	case errors.Is(err, syscall.ENETUNREACH):
		return "Network unreachable"
	case errors.As(err, &verifyErr), errors.As(err, &authErr), errors.As(err, &hostErr), errors.As(err, &invalidErr):
		return "TLS/certificate error"
	case errors.As(err, &recordErr):
		return "TLS error"
	case strings.Contains(err.Error(), "unsupported protocol scheme"):
		return "Unsupported scheme"
	}
	return err.Error()
}
