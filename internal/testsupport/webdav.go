package testsupport

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

const LogsPath = "/on/demandware.servlet/webdav/Sites/Logs/"

type fakeFile struct {
	content  []byte
	modified time.Time
	failWith int
}

// FakeStore is an in-memory WebDAV logs directory served over httptest.
type FakeStore struct {
	Server *httptest.Server

	mu          sync.Mutex
	files       map[string]*fakeFile
	order       []string
	dirs        []string
	listStatus  int
	ignoreRange bool
	ranges      []string
	gets        []string
	auth        []string
}

// NewFakeStore starts a fake logs directory and registers cleanup.
func NewFakeStore(t testing.TB) *FakeStore {
	t.Helper()
	store := &FakeStore{files: make(map[string]*fakeFile)}
	store.Server = httptest.NewServer(http.HandlerFunc(store.serve))
	t.Cleanup(store.Server.Close)
	return store
}

// Put creates or replaces a log file.
func (s *FakeStore) Put(name, content string, modified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; !ok {
		s.order = append(s.order, name)
	}
	s.files[name] = &fakeFile{content: []byte(content), modified: modified}
}

// Append adds content to an existing log file.
func (s *FakeStore) Append(name, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[name]; ok {
		f.content = append(f.content, content...)
	}
}

// AddDir lists a sub-directory alongside the files.
func (s *FakeStore) AddDir(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs = append(s.dirs, name)
}

// FailFetch makes GETs for name answer with status.
func (s *FakeStore) FailFetch(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[name]; ok {
		f.failWith = status
	}
}

// FailList makes PROPFIND answer with status; zero restores normal behaviour.
func (s *FakeStore) FailList(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listStatus = status
}

// IgnoreRange makes GETs answer 200 with the full body regardless of Range.
func (s *FakeStore) IgnoreRange(ignore bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ignoreRange = ignore
}

// Ranges returns the Range headers seen so far ("" for un-ranged GETs).
func (s *FakeStore) Ranges() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ranges...)
}

// Gets returns the object names fetched so far.
func (s *FakeStore) Gets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.gets...)
}

// Authorizations returns the Authorization headers seen so far.
func (s *FakeStore) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth...)
}

func (s *FakeStore) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = append(s.auth, r.Header.Get("Authorization"))

	if !strings.HasPrefix(r.URL.Path, LogsPath) {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, LogsPath)

	switch r.Method {
	case "PROPFIND":
		if s.listStatus != 0 {
			w.WriteHeader(s.listStatus)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusMultiStatus)
		_, _ = w.Write([]byte(s.multistatus()))
	case http.MethodGet:
		s.serveGet(w, r, name)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *FakeStore) serveGet(w http.ResponseWriter, r *http.Request, name string) {
	f, ok := s.files[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	rangeHeader := r.Header.Get("Range")
	s.gets = append(s.gets, name)
	s.ranges = append(s.ranges, rangeHeader)
	if f.failWith != 0 {
		w.WriteHeader(f.failWith)
		return
	}
	if rangeHeader == "" || s.ignoreRange {
		_, _ = w.Write(f.content)
		return
	}
	start, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(rangeHeader, "bytes="), "-"), 10, 64)
	if err != nil || start < 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if start >= int64(len(f.content)) {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", len(f.content)))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, len(f.content)-1, len(f.content)))
	w.WriteHeader(http.StatusPartialContent)
	_, _ = w.Write(f.content[start:])
}

func (s *FakeStore) multistatus() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<D:multistatus xmlns:D="DAV:">`)
	writeCollection(&b, LogsPath, "Logs")
	for _, dir := range s.dirs {
		writeCollection(&b, LogsPath+dir+"/", dir)
	}
	for _, name := range s.order {
		f := s.files[name]
		fmt.Fprintf(&b, `<D:response><D:href>%s</D:href><D:propstat><D:prop>`+
			`<D:displayname>%s</D:displayname><D:getlastmodified>%s</D:getlastmodified>`+
			`<D:getcontentlength>%d</D:getcontentlength><D:resourcetype/>`+
			`</D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>`,
			html.EscapeString(LogsPath+name), html.EscapeString(name),
			f.modified.UTC().Format(http.TimeFormat), len(f.content))
	}
	b.WriteString(`</D:multistatus>`)
	return b.String()
}

func writeCollection(b *strings.Builder, href, name string) {
	fmt.Fprintf(b, `<D:response><D:href>%s</D:href><D:propstat><D:prop>`+
		`<D:displayname>%s</D:displayname><D:getlastmodified>Mon, 01 Jan 2024 00:00:00 GMT</D:getlastmodified>`+
		`<D:resourcetype><D:collection/></D:resourcetype>`+
		`</D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>`,
		html.EscapeString(href), html.EscapeString(name))
}
