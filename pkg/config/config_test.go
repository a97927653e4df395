package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "localhost:8080" {
		t.Errorf("listen default = %q", cfg.Listen)
	}
	if cfg.Debounce.Duration != DefaultDebounce {
		t.Errorf("debounce default = %v", cfg.Debounce.Duration)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `base_url = "https://blog.example"` + "\n" + `debounce = "1s"` + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://blog.example" {
		t.Errorf("base_url = %q", cfg.BaseURL)
	}
	if cfg.Debounce.Duration != time.Second {
		t.Errorf("debounce = %v", cfg.Debounce.Duration)
	}
	if cfg.PostsDir != "posts" {
		t.Errorf("posts_dir default = %q", cfg.PostsDir)
	}
}

func TestIndexURL(t *testing.T) {
	cfg := &Config{BaseURL: "https://blog.example"}
	if got := cfg.IndexURL(); got != "https://blog.example/search-index.json" {
		t.Errorf("default index url = %q", got)
	}
	cfg.IndexLocation = "public/search-index.json"
	if got := cfg.IndexURL(); got != "public/search-index.json" {
		t.Errorf("explicit index location = %q", got)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := GetDefaultConfig()
	cfg.BaseURL = "https://vrypan.net"
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.BaseURL != "https://vrypan.net" {
		t.Errorf("round trip base_url = %q", loaded.BaseURL)
	}
}
