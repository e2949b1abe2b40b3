package testsupport

import (
	"testing"

	"b2ctail/internal/webdav"
)

// NewClient returns a webdav client authenticated against store.
func NewClient(t testing.TB, store *FakeStore) *webdav.Client {
	t.Helper()
	client, err := webdav.NewClient(webdav.Options{
		BaseURL:  store.Server.URL,
		Path:     LogsPath,
		Username: "tester",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("webdav.NewClient: %v", err)
	}
	return client
}
