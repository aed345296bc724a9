package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestXDGDirs(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		fallback string
		fn       func() (string, error)
	}{
		{"cache", "XDG_CACHE_HOME", ".cache", cacheDir},
		{"config", "XDG_CONFIG_HOME", ".config", configDir},
		{"data", "XDG_DATA_HOME", filepath.Join(".local", "share"), dataDir},
	}

	for _, tt := range tests {
		t.Run(tt.name+" default", func(t *testing.T) {
			t.Setenv(tt.env, "")
			home, err := os.UserHomeDir()
			if err != nil {
				t.Skip("no home directory")
			}
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if want := filepath.Join(home, tt.fallback, appName); got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
		t.Run(tt.name+" xdg", func(t *testing.T) {
			base := t.TempDir()
			t.Setenv(tt.env, base)
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if want := filepath.Join(base, appName); got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}
