package registry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kozaktomas/cubescout/internal/presence"
)

// ManifestSeparator separates the image path from the label on a manifest line.
const ManifestSeparator = ";"

// Entry is one training sample: an image on disk and its numeric label.
type Entry struct {
	Path  string
	Label presence.Identity
}

// Manifest is a parsed training manifest.
type Manifest struct {
	Entries []Entry
	// Skipped counts lines that did not have exactly two fields or had a non-integer label.
	Skipped int
}

// ParseManifest reads "<image_path>;<integer_label>" lines. Malformed lines are
// skipped and counted. A manifest without a single usable entry is a configuration error.
func ParseManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		columns := strings.Split(strings.TrimSpace(scanner.Text()), ManifestSeparator)
		if len(columns) != 2 {
			m.Skipped++
			continue
		}

		label, err := strconv.Atoi(strings.TrimSpace(columns[1]))
		if err != nil {
			m.Skipped++
			continue
		}

		m.Entries = append(m.Entries, Entry{
			Path:  columns[0],
			Label: presence.Identity(label),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading manifest: %w", presence.ErrConfiguration, err)
	}

	if len(m.Entries) == 0 {
		return nil, fmt.Errorf("%w: manifest has no valid entries (%d skipped)", presence.ErrConfiguration, m.Skipped)
	}

	return m, nil
}

// LoadManifest opens and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path) //nolint:gosec // path is from the command line
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open manifest '%s': %w", presence.ErrConfiguration, path, err)
	}
	defer f.Close()

	return ParseManifest(f)
}
