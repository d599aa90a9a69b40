package gitee

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmsync/internal/model"
)

const (
	DefaultBaseURL   = "https://gitee.com/api/v5"
	defaultUserAgent = "bm/0.1"
	requestTimeout   = 15 * time.Second
	commitMessage    = "Update bookmark tree"
)

// RemoteFile is the decoded remote bookmark file plus the revision it was
// read at. An empty Revision means the file does not exist yet.
type RemoteFile struct {
	Content  []model.Node
	Revision string
}

// Client reads and writes one bookmark file in a Gitee repository.
type Client struct {
	baseURL   *url.URL
	webURL    *url.URL
	http      *http.Client
	userAgent string
	settings  Settings
	log       logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(strings.TrimRight(raw, "/")); err == nil {
			c.baseURL = u
			c.webURL = &url.URL{Scheme: u.Scheme, Host: u.Host}
		}
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a Client for the given settings. Settings must name a
// token, owner and repo; branch and file path fall back to defaults.
func NewClient(s Settings, opts ...Option) (*Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	base, _ := url.Parse(DefaultBaseURL)
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	c := &Client{
		baseURL:   base,
		webURL:    &url.URL{Scheme: "https", Host: "gitee.com"},
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		settings:  s.WithDefaults(),
		log:       silent,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithFields(logrus.Fields{
		"owner":  c.settings.Owner,
		"repo":   c.settings.Repo,
		"branch": c.settings.Branch,
	})
	return c, nil
}

// Settings returns the effective settings, defaults applied.
func (c *Client) Settings() Settings {
	return c.settings
}

type contentEntry struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Content string `json:"content"`
}

type branchEntry struct {
	Name string `json:"name"`
}

type writeRequest struct {
	AccessToken string `json:"access_token"`
	Content     string `json:"content,omitempty"`
	Message     string `json:"message"`
	SHA         string `json:"sha,omitempty"`
	Branch      string `json:"branch"`
}

type apiError struct {
	Message string `json:"message"`
}

// Fetch reads the configured bookmark file. Empty file content decodes to an
// empty tree; a missing file is ErrFileNotFound.
func (c *Client) Fetch(ctx context.Context) (RemoteFile, error) {
	entry, err := c.stat(ctx, c.settings.FilePath)
	if err != nil {
		return RemoteFile{}, err
	}

	data, err := decodeContent(entry.Content)
	if err != nil {
		return RemoteFile{}, fmt.Errorf("decode %s: %w", c.settings.FilePath, err)
	}
	tree, err := model.DecodeTree(data)
	if err != nil {
		return RemoteFile{}, fmt.Errorf("parse %s: %w", c.settings.FilePath, err)
	}

	c.log.WithField("sha", entry.SHA).Debug("fetched remote tree")
	return RemoteFile{Content: tree, Revision: entry.SHA}, nil
}

// Put replaces the bookmark file with content. revision must be the sha the
// caller last read; an empty revision creates the file. A stale revision
// yields ErrConflict.
func (c *Client) Put(ctx context.Context, content []model.Node, revision string) error {
	data, err := model.EncodeTree(content)
	if err != nil {
		return err
	}

	method := http.MethodPut
	if revision == "" {
		method = http.MethodPost
	}
	body := writeRequest{
		AccessToken: c.settings.Token,
		Content:     base64.StdEncoding.EncodeToString(data),
		Message:     commitMessage,
		SHA:         revision,
		Branch:      c.settings.Branch,
	}

	err = c.do(ctx, method, c.contentsURL(c.settings.FilePath), body, nil)
	if err != nil {
		return err
	}
	c.log.WithField("sha", revision).Debug("wrote remote tree")
	return nil
}

// ListBranches returns the repository's branch names.
func (c *Client) ListBranches(ctx context.Context) ([]string, error) {
	u := c.baseURL.JoinPath("repos", c.settings.Owner, c.settings.Repo, "branches")

	var payload []branchEntry
	if err := c.do(ctx, http.MethodGet, u, nil, &payload); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(payload))
	for _, b := range payload {
		names = append(names, b.Name)
	}
	return names, nil
}

// ListFiles returns the paths of the JSON files directly inside dir.
// An empty dir lists the repository root.
func (c *Client) ListFiles(ctx context.Context, dir string) ([]string, error) {
	var payload json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.contentsURL(dir), nil, &payload); err != nil {
		return nil, err
	}

	var entries []contentEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		// A file path answers with a single object rather than a listing.
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	for _, e := range entries {
		if e.Type == "file" && strings.EqualFold(path.Ext(e.Path), ".json") {
			files = append(files, e.Path)
		}
	}
	return files, nil
}

// CreateFile creates a new bookmark file containing an empty tree.
func (c *Client) CreateFile(ctx context.Context, filePath string) error {
	data, err := model.EncodeTree(nil)
	if err != nil {
		return err
	}
	body := writeRequest{
		AccessToken: c.settings.Token,
		Content:     base64.StdEncoding.EncodeToString(data),
		Message:     "Add bookmark file " + path.Base(filePath),
		Branch:      c.settings.Branch,
	}
	return c.do(ctx, http.MethodPost, c.contentsURL(filePath), body, nil)
}

// DeleteFile removes a file. Its sha is looked up first.
func (c *Client) DeleteFile(ctx context.Context, filePath string) error {
	entry, err := c.stat(ctx, filePath)
	if err != nil {
		return err
	}
	body := writeRequest{
		AccessToken: c.settings.Token,
		Message:     "Delete bookmark file " + path.Base(filePath),
		SHA:         entry.SHA,
		Branch:      c.settings.Branch,
	}
	return c.do(ctx, http.MethodDelete, c.contentsURL(filePath), body, nil)
}

// WebURL returns the browser URL of a file in the repository. An empty path
// points at the configured bookmark file.
func (c *Client) WebURL(filePath string) string {
	if filePath == "" {
		filePath = c.settings.FilePath
	}
	return c.webURL.JoinPath(c.settings.Owner, c.settings.Repo, "blob", c.settings.Branch, filePath).String()
}

// stat fetches the contents entry of a single file.
func (c *Client) stat(ctx context.Context, filePath string) (contentEntry, error) {
	var payload json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.contentsURL(filePath), nil, &payload); err != nil {
		return contentEntry{}, err
	}

	// Gitee answers a missing file on an existing branch with an empty list.
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] == '[' {
		return contentEntry{}, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}

	var entry contentEntry
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return contentEntry{}, fmt.Errorf("decode response: %w", err)
	}
	if entry.Type != "" && entry.Type != "file" {
		return contentEntry{}, fmt.Errorf("%s is a %s, not a file", filePath, entry.Type)
	}
	return entry, nil
}

func (c *Client) contentsURL(filePath string) *url.URL {
	u := c.baseURL.JoinPath("repos", c.settings.Owner, c.settings.Repo, "contents")
	if p := strings.Trim(filePath, "/"); p != "" {
		u = u.JoinPath(p)
	}
	return u
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, body, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	if method == http.MethodGet {
		q := u.Query()
		q.Set("ref", c.settings.Branch)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "token "+c.settings.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithFields(logrus.Fields{"method": method, "path": u.Path})
	log.Debug("gitee request")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		err := statusError(method, u.Path, resp)
		log.WithError(err).Debug("gitee request failed")
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(method, p string, resp *http.Response) error {
	var apiErr apiError
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &apiErr)

	detail := fmt.Sprintf("%s %s returned status %d", method, p, resp.StatusCode)
	if apiErr.Message != "" {
		detail += ": " + apiErr.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrFileNotFound, detail)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		if method != http.MethodGet {
			return fmt.Errorf("%w: %s", ErrConflict, detail)
		}
	}
	return fmt.Errorf("api %s", detail)
}

// decodeContent decodes the base64 payload of a contents entry, which may
// carry line breaks.
func decodeContent(encoded string) ([]byte, error) {
	clean := strings.NewReplacer("\n", "", "\r", "").Replace(encoded)
	if clean == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(clean)
}
