package document

import (
	"bytes"
	"testing"

	"github.com/sleighworks/santaline/internal/wishlist"
)

func sampleWishlist() map[string][]string {
	w := wishlist.New()
	w.Add("a lego castle")
	w.Add("a comic about dragons")
	w.Add("a trip to the zoo")
	return w.Snapshot()
}

func TestRenderLetterProducesPDF(t *testing.T) {
	data, err := RenderLetter("Sophie", "9", sampleWishlist())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestRenderLetterHandlesEmptyWishlist(t *testing.T) {
	data, err := RenderLetter("Sophie", "", wishlist.New().Snapshot())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty wishlist should still render a letter")
	}
}

func TestRenderLetterBlankName(t *testing.T) {
	data, err := RenderLetter("  ", "", sampleWishlist())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestRenderCertificateProducesPDF(t *testing.T) {
	data, err := RenderCertificate("Sophie")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}

	// Blank names use the stand-in and still render.
	if _, err := RenderCertificate(""); err != nil {
		t.Fatalf("blank name render failed: %v", err)
	}
}

func TestFilenames(t *testing.T) {
	cases := []struct {
		name   string
		letter string
		cert   string
	}{
		{"Sophie", "Letter_to_Santa_Sophie.pdf", "Nice_List_Sophie.pdf"},
		{"", "Letter_to_Santa_Friend.pdf", "Nice_List_Friend.pdf"},
		{"Mary Lou", "Letter_to_Santa_Mary_Lou.pdf", "Nice_List_Mary_Lou.pdf"},
	}

	for _, c := range cases {
		if got := LetterFilename(c.name); got != c.letter {
			t.Fatalf("LetterFilename(%q) = %q, want %q", c.name, got, c.letter)
		}
		if got := CertificateFilename(c.name); got != c.cert {
			t.Fatalf("CertificateFilename(%q) = %q, want %q", c.name, got, c.cert)
		}
	}
}
