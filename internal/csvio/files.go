package csvio

import (
	"fmt"
	"os"
	"strings"

	"puntuale/internal/meeting"
)

// WriteData writes a full-data export to path.
func WriteData(acts []meeting.Activity, path string) error {
	if err := os.WriteFile(path, ExportData(acts), 0o644); err != nil {
		return fmt.Errorf("write data csv: %w", err)
	}
	return nil
}

// WriteTemplate writes a template export to path.
func WriteTemplate(acts []meeting.Activity, path string) error {
	if err := os.WriteFile(path, ExportTemplate(acts), 0o644); err != nil {
		return fmt.Errorf("write template csv: %w", err)
	}
	return nil
}

// ReadData reads and decodes a full-data CSV file.
func ReadData(path string) ([]meeting.Activity, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data csv: %w", err)
	}
	return ParseData(string(text)), nil
}

// ReadTemplate reads and decodes a template CSV file.
func ReadTemplate(path string) ([]meeting.Activity, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template csv: %w", err)
	}
	return ParseTemplate(string(text)), nil
}

// Detect reports whether raw CSV text is in the full-data dialect; only
// its header distinguishes the two, so header-less text reads as a
// template.
func Detect(text string) bool {
	lines := splitLines(text)
	return len(lines) > 0 && strings.HasPrefix(stripQuotes(lines[0]), DataHeader)
}
