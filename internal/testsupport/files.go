package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MakeCartridge lays out a minimal cartridge (a directory holding a .project
// marker and a cartridge/ folder) below root and returns its path.
func MakeCartridge(t testing.TB, root, relDir string) string {
	t.Helper()
	dir := filepath.Join(root, relDir)
	name := filepath.Base(dir)
	WriteFile(t, filepath.Join(dir, ".project"), "<projectDescription><name>"+name+"</name></projectDescription>\n")
	WriteFile(t, filepath.Join(dir, "cartridge", name+".properties"), "demandware.cartridges."+name+".multipleLanguageStorefront=true\n")
	return dir
}
