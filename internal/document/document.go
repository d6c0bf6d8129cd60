// Package document renders the printable keepsakes: the letter to
// Santa and the nice-list certificate.
package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/sleighworks/santaline/internal/wishlist"
)

// fallbackName replaces an empty child name in rendered documents and
// file names.
const fallbackName = "Friend"

// RenderLetter produces the letter-to-Santa PDF. Categories with no
// items are skipped; an empty wishlist still renders a valid letter.
func RenderLetter(kidName, age string, items map[string][]string) ([]byte, error) {
	name := displayName(kidName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	pdf.SetDrawColor(178, 34, 34)
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, pageW-20, pageH-20, "D")

	pdf.SetFont("Times", "B", 24)
	pdf.CellFormat(0, 14, "Letter to Santa", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Times", "", 13)
	pdf.MultiCell(0, 7, "Dear Santa,", "", "L", false)
	pdf.Ln(2)

	intro := fmt.Sprintf("My name is %s.", name)
	if strings.TrimSpace(age) != "" {
		intro = fmt.Sprintf("My name is %s, I am %s years old.", name, strings.TrimSpace(age))
	}
	pdf.MultiCell(0, 7, intro, "", "L", false)
	pdf.Ln(2)
	pdf.MultiCell(0, 7, "Here is my wishlist:", "", "L", false)
	pdf.Ln(3)

	for _, category := range wishlist.Categories() {
		entries := items[category]
		if len(entries) == 0 {
			continue
		}
		pdf.SetFont("Times", "B", 13)
		pdf.MultiCell(0, 7, category, "", "L", false)
		pdf.SetFont("Times", "", 13)
		for _, entry := range entries {
			pdf.MultiCell(0, 7, "  - "+entry, "", "L", false)
		}
		pdf.Ln(2)
	}

	pdf.Ln(3)
	pdf.MultiCell(0, 7, "Thank you for all your work with the elves.", "", "L", false)
	pdf.Ln(4)
	pdf.MultiCell(0, 7, fmt.Sprintf("With kindness,\n%s", name), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render letter: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderCertificate produces the landscape nice-list certificate.
func RenderCertificate(kidName string) ([]byte, error) {
	name := strings.TrimSpace(kidName)
	if name == "" {
		name = "A Kind Kid"
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	pdf.SetDrawColor(0, 128, 128)
	pdf.SetLineWidth(1.5)
	pdf.Rect(8, 8, pageW-16, pageH-16, "D")
	pdf.SetLineWidth(0.5)
	pdf.Rect(12, 12, pageW-24, pageH-24, "D")

	pdf.SetY(45)
	pdf.SetFont("Times", "B", 32)
	pdf.CellFormat(0, 16, "Nice List Certificate", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Times", "", 16)
	pdf.CellFormat(0, 10, "This certifies that", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Times", "B", 26)
	pdf.CellFormat(0, 14, name, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Times", "", 16)
	pdf.CellFormat(0, 10, "has shown kindness, effort, and holiday spirit.", "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.CellFormat(0, 10, "Signed by Santa and the Elves", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Times", "I", 11)
	pdf.CellFormat(0, 8, "For fun only.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// LetterFilename returns the download name for the letter PDF.
func LetterFilename(kidName string) string {
	return fmt.Sprintf("Letter_to_Santa_%s.pdf", fileNamePart(kidName))
}

// CertificateFilename returns the download name for the certificate.
func CertificateFilename(kidName string) string {
	return fmt.Sprintf("Nice_List_%s.pdf", fileNamePart(kidName))
}

// SaveLetter renders and writes the letter next to the process.
func SaveLetter(kidName, age string, items map[string][]string) (string, error) {
	data, err := RenderLetter(kidName, age, items)
	if err != nil {
		return "", err
	}
	name := LetterFilename(kidName)
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return "", fmt.Errorf("write letter: %w", err)
	}
	return name, nil
}

// SaveCertificate renders and writes the certificate next to the process.
func SaveCertificate(kidName string) (string, error) {
	data, err := RenderCertificate(kidName)
	if err != nil {
		return "", err
	}
	name := CertificateFilename(kidName)
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return "", fmt.Errorf("write certificate: %w", err)
	}
	return name, nil
}

func displayName(kidName string) string {
	name := strings.TrimSpace(kidName)
	if name == "" {
		return fallbackName
	}
	return name
}

func fileNamePart(kidName string) string {
	name := displayName(kidName)
	return strings.ReplaceAll(name, " ", "_")
}
