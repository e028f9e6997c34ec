package preferences

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFileStoreMissingFileDefaultsToLight(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "state.yaml"))
	st, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.Theme != ThemeLight || st.Session != nil {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")
	s := NewFileStore(path)
	want := State{
		Theme:          ThemeDark,
		LastAnalysisID: "a1",
		Session: &Session{
			AccessToken:  "at",
			RefreshToken: "rt",
			Expiry:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			UserID:       "user-1",
		},
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}

	got, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	if err := os.WriteFile(path, []byte("theme: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileStore(path).Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseThemeAndToggle(t *testing.T) {
	if th, err := ParseTheme(" Dark "); err != nil || th != ThemeDark {
		t.Fatalf("expected dark, got %q %v", th, err)
	}
	if _, err := ParseTheme("blue"); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
	if Theme("").Toggle() != ThemeDark || ThemeDark.Toggle() != ThemeLight {
		t.Fatalf("unexpected toggle")
	}
}
