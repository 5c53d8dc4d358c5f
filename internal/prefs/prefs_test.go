package prefs

import (
	"path/filepath"
	"testing"
)

func TestDarkModeDefault(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer store.Close()

	dark, err := store.DarkMode()
	if err != nil {
		t.Fatalf("DarkMode() returned error: %v", err)
	}
	if dark {
		t.Error("DarkMode() = true before any preference was set")
	}
}

func TestDarkModePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	if err := store.SetDarkMode(true); err != nil {
		t.Fatalf("SetDarkMode() returned error: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	dark, err := reopened.DarkMode()
	if err != nil {
		t.Fatalf("DarkMode() returned error: %v", err)
	}
	if !dark {
		t.Error("preference did not survive a reopen")
	}

	if err := reopened.SetDarkMode(false); err != nil {
		t.Fatalf("SetDarkMode(false) returned error: %v", err)
	}
	dark, err = reopened.DarkMode()
	if err != nil {
		t.Fatalf("DarkMode() returned error: %v", err)
	}
	if dark {
		t.Error("toggling the preference off did not stick")
	}
}
