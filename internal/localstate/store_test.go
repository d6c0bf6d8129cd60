package localstate

import (
	"path/filepath"
	"testing"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestConsentFlagRoundTrip(t *testing.T) {
	store := setupStore(t)

	granted, err := store.ConsentGranted()
	if err != nil {
		t.Fatalf("read consent: %v", err)
	}
	if granted {
		t.Fatal("fresh store should report no consent")
	}

	if err := store.SetConsentGranted(true); err != nil {
		t.Fatalf("set consent: %v", err)
	}
	granted, err = store.ConsentGranted()
	if err != nil || !granted {
		t.Fatalf("consent = (%v, %v), want (true, nil)", granted, err)
	}
}

func TestBaseURLRoundTrip(t *testing.T) {
	store := setupStore(t)

	url, err := store.BaseURL()
	if err != nil || url != "" {
		t.Fatalf("fresh base url = (%q, %v)", url, err)
	}

	if err := store.SetBaseURL("http://relay:8080"); err != nil {
		t.Fatalf("set base url: %v", err)
	}
	url, err = store.BaseURL()
	if err != nil || url != "http://relay:8080" {
		t.Fatalf("base url = (%q, %v)", url, err)
	}
}

func TestSetOverwrites(t *testing.T) {
	store := setupStore(t)

	if err := store.Set("k", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set("k", "two"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, err := store.Get("k")
	if err != nil || value != "two" {
		t.Fatalf("get = (%q, %v), want (two, nil)", value, err)
	}
}

func TestWishlistRoundTrip(t *testing.T) {
	store := setupStore(t)

	loaded, err := store.LoadWishlist()
	if err != nil || loaded != nil {
		t.Fatalf("fresh wishlist = (%v, %v)", loaded, err)
	}

	snapshot := map[string][]string{
		"Toys":  {"a lego castle"},
		"Books": {"a comic"},
	}
	if err := store.SaveWishlist(snapshot); err != nil {
		t.Fatalf("save wishlist: %v", err)
	}

	loaded, err = store.LoadWishlist()
	if err != nil {
		t.Fatalf("load wishlist: %v", err)
	}
	if len(loaded["Toys"]) != 1 || loaded["Toys"][0] != "a lego castle" {
		t.Fatalf("unexpected wishlist: %v", loaded)
	}
}

func TestReopenKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.SetConsentGranted(true); err != nil {
		t.Fatalf("set consent: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	granted, err := reopened.ConsentGranted()
	if err != nil || !granted {
		t.Fatalf("consent after reopen = (%v, %v), want (true, nil)", granted, err)
	}
}
