package webdav

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// LogFile is one remote log object.
type LogFile struct {
	Name         string    `json:"name"`
	LastModified time.Time `json:"lastModified"`
}

// Options configures a Client.
type Options struct {
	// BaseURL is the scheme and host, e.g. https://dev01.example.net.
	BaseURL  string
	Path     string
	Username string
	Password string
	Token    string
	// Timeout bounds each individual request; zero leaves it to the transport.
	Timeout  time.Duration
	Insecure bool
	HTTP     *http.Client
}

// Client talks to the remote logs directory.
type Client struct {
	base     *url.URL
	http     *http.Client
	username string
	password string
	token    string
	timeout  time.Duration
}

const propfindBody = `<?xml version="1.0" encoding="utf-8"?>
<propfind xmlns="DAV:"><prop><displayname/><getlastmodified/><resourcetype/><getcontentlength/></prop></propfind>`

// NewClient builds a client for the logs directory. An empty BaseURL yields
// ErrNotConfigured.
func NewClient(opts Options) (*Client, error) {
	bind := strings.TrimSpace(opts.BaseURL)
	if bind == "" {
		return nil, ErrNotConfigured
	}
	if !strings.Contains(bind, "://") {
		bind = "https://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	dir := opts.Path
	if dir == "" {
		dir = "/"
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	base.Path = dir
	base.RawQuery = ""
	base.Fragment = ""

	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = &http.Client{}
		if opts.Insecure {
			httpClient.Transport = &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in for sandboxes with self-signed certs
			}
		}
	}

	return &Client{
		base:     base,
		http:     httpClient,
		username: opts.Username,
		password: opts.Password,
		token:    opts.Token,
		timeout:  opts.Timeout,
	}, nil
}

// List returns every non-directory object in the logs directory.
func (c *Client) List(ctx context.Context) ([]LogFile, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, "PROPFIND", c.base.String(), strings.NewReader(propfindBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Depth", "1")
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "list", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMultiStatus && resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Op: "list", StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "list", Err: err}
	}
	files, err := ParseMultistatus(body)
	if err != nil {
		return nil, &TransportError{Op: "list", Err: err}
	}
	return files, nil
}

// Fetch returns the bytes of name starting at offset. Offset zero fetches the
// whole object without a Range header.
func (c *Client) Fetch(ctx context.Context, name string, offset int64) ([]byte, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	if offset < 0 {
		return nil, fmt.Errorf("fetch %s: negative offset %d", name, offset)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	endpoint := c.base.ResolveReference(&url.URL{Path: name})
	req, err := c.newRequest(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	if offset > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Object: name, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusRequestedRangeNotSatisfiable:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrRangeNotSatisfiable
	case http.StatusOK, http.StatusPartialContent:
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Op: "fetch", Object: name, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Object: name, Err: err}
	}
	if offset > 0 && resp.StatusCode == http.StatusOK {
		// Range ignored by the server; drop what was already consumed.
		if int64(len(data)) <= offset {
			return nil, ErrRangeNotSatisfiable
		}
		data = data[offset:]
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.username != "":
		req.SetBasicAuth(c.username, c.password)
	}
	return req, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// ParseMultistatus extracts log files from a PROPFIND multistatus document.
// Collections are skipped; entries without a display name fall back to the
// last segment of their href.
func ParseMultistatus(body []byte) ([]LogFile, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimSpace(body)); err != nil {
		return nil, fmt.Errorf("parse multistatus: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "multistatus" {
		return nil, errors.New("parse multistatus: missing multistatus root")
	}

	files := make([]LogFile, 0, len(root.ChildElements()))
	for _, response := range root.SelectElements("response") {
		prop := response.FindElement("propstat/prop")
		if prop == nil {
			continue
		}
		if prop.FindElement("resourcetype/collection") != nil {
			continue
		}
		name := elementText(prop.SelectElement("displayname"))
		if name == "" {
			name = hrefName(elementText(response.SelectElement("href")))
		}
		if name == "" {
			continue
		}
		var modified time.Time
		if raw := elementText(prop.SelectElement("getlastmodified")); raw != "" {
			if parsed, err := http.ParseTime(raw); err == nil {
				modified = parsed
			}
		}
		files = append(files, LogFile{Name: name, LastModified: modified})
	}
	return files, nil
}

func elementText(e *etree.Element) string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Text())
}

func hrefName(href string) string {
	href = strings.TrimRight(href, "/")
	if idx := strings.LastIndex(href, "/"); idx >= 0 {
		href = href[idx+1:]
	}
	if unescaped, err := url.PathUnescape(href); err == nil {
		return unescaped
	}
	return href
}

// Matching returns the files whose name starts with prefix, in listing order.
func Matching(files []LogFile, prefix string) []LogFile {
	var out []LogFile
	for _, f := range files {
		if strings.HasPrefix(f.Name, prefix) {
			out = append(out, f)
		}
	}
	return out
}

// SortNewestFirst orders files by LastModified descending, keeping listing
// order among equal timestamps.
func SortNewestFirst(files []LogFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].LastModified.After(files[j].LastModified)
	})
}
