package cartridge_test

import (
	"path/filepath"
	"testing"

	"b2ctail/internal/cartridge"
	"b2ctail/internal/config"
	"b2ctail/internal/testsupport"
)

func TestRelativePath(t *testing.T) {
	m := cartridge.Mapping{Name: "app_storefront", Src: "/home/dev/proj/cartridges/app_storefront"}
	if got := m.RelativePath("/home/dev/proj"); got != "cartridges/app_storefront" {
		t.Fatalf("unexpected relative path %q", got)
	}
	if got := m.RelativePath("/elsewhere"); got != "home/dev/proj/cartridges/app_storefront" {
		t.Fatalf("unrelated base should only trim the leading slash, got %q", got)
	}
}

func TestDiscoverFindsProjectMarkers(t *testing.T) {
	root := t.TempDir()
	testsupport.MakeCartridge(t, root, filepath.Join("cartridges", "app_mysite"))
	testsupport.MakeCartridge(t, root, filepath.Join("cartridges", "int_loyalty"))
	testsupport.MakeCartridge(t, root, filepath.Join("node_modules", "sfra", "app_storefront_base"))

	mappings, err := cartridge.Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(mappings) != 2 {
		t.Fatalf("expected 2 cartridges, got %+v", mappings)
	}
	if mappings[0].Name != "app_mysite" || mappings[1].Name != "int_loyalty" {
		t.Fatalf("unexpected mappings %+v", mappings)
	}
	if got := mappings[0].RelativePath(root); got != "cartridges/app_mysite" {
		t.Fatalf("unexpected relative path %q", got)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	if _, err := cartridge.Discover(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestFromConfigPrefersExplicitMappings(t *testing.T) {
	root := t.TempDir()
	testsupport.MakeCartridge(t, root, "discovered")

	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Project.Cartridges = []config.CartridgeEntry{{Name: "app_custom", Path: filepath.Join(root, "src", "app_custom")}}

	mappings, err := cartridge.FromConfig(&cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if len(mappings) != 1 || mappings[0].Name != "app_custom" {
		t.Fatalf("unexpected mappings %+v", mappings)
	}

	cfg.Project.Cartridges = nil
	mappings, err = cartridge.FromConfig(&cfg)
	if err != nil {
		t.Fatalf("FromConfig discover: %v", err)
	}
	if len(mappings) != 1 || mappings[0].Name != "discovered" {
		t.Fatalf("unexpected discovered mappings %+v", mappings)
	}
}
