// # internal/namespaces/table_test.go
package namespaces

import (
	"errors"
	"testing"
)

func TestRegisterIdempotent(t *testing.T) {
	tab := NewTable()
	a, err := tab.Register("http://vendor.example/Base/")
	if err != nil {
		t.Fatal(err)
	}
	b, err := tab.Register("http://vendor.example/Base/")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("repeated registration returned %d then %d", a, b)
	}
	if a != 1 {
		t.Errorf("first registered namespace should get index 1, got %d", a)
	}
}

func TestStandardNamespacePinned(t *testing.T) {
	tab := NewTable()
	uri, ok := tab.URI(0)
	if !ok || uri != StandardURI {
		t.Fatalf("index 0 resolved to %q", uri)
	}
	got, err := tab.Register(StandardURI)
	if err != nil || got != 0 {
		t.Errorf("registering the standard uri should return 0, got %d, %v", got, err)
	}

	// Remapping many files in any order must never move index 0.
	for _, local := range [][]string{
		{"http://vendor.example/A/"},
		{"http://vendor.example/B/", "http://vendor.example/A/"},
		nil,
	} {
		if _, err := tab.Remap(local); err != nil {
			t.Fatal(err)
		}
		if uri, _ := tab.URI(0); uri != StandardURI {
			t.Fatalf("index 0 reassigned to %q", uri)
		}
	}
}

func TestRemapSubstitution(t *testing.T) {
	tab := NewTable()
	// First file declares A then B.
	s1, err := tab.Remap([]string{"http://a/", "http://b/"})
	if err != nil {
		t.Fatal(err)
	}
	// Second file declares B then A: local indices differ, shared must not.
	s2, err := tab.Remap([]string{"http://b/", "http://a/"})
	if err != nil {
		t.Fatal(err)
	}
	if s1[1] != s2[2] || s1[2] != s2[1] {
		t.Errorf("substitutions disagree: %v vs %v", s1, s2)
	}
	if tab.Len() != 3 {
		t.Errorf("expected 3 namespaces, got %d", tab.Len())
	}
}

func TestRemapRejectsStandardURIReuse(t *testing.T) {
	tab := NewTable()
	_, err := tab.Remap([]string{StandardURI})
	if !errors.Is(err, ErrNamespaceConflict) {
		t.Errorf("expected ErrNamespaceConflict, got %v", err)
	}
}
