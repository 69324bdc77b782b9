// Package registry maps numeric training labels to display names.
//
// The registry is built once at startup from the training manifest and is
// read-only afterwards.
package registry

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kozaktomas/cubescout/internal/presence"
)

// Registry is the immutable label-to-name mapping.
type Registry struct {
	names      map[presence.Identity]string
	identities []presence.Identity
	samples    map[presence.Identity]int
}

// New builds a registry from manifest entries. The first entry seen for a label
// decides its name; later entries with the same label only add to the sample count.
func New(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no manifest entries", presence.ErrConfiguration)
	}

	r := &Registry{
		names:   make(map[presence.Identity]string),
		samples: make(map[presence.Identity]int),
	}

	for _, e := range entries {
		r.samples[e.Label]++
		if _, ok := r.names[e.Label]; ok {
			continue
		}
		r.names[e.Label] = NameFromPath(e.Path, e.Label)
		r.identities = append(r.identities, e.Label)
	}

	slices.Sort(r.identities)
	return r, nil
}

// FromManifest builds a registry from a parsed manifest.
func FromManifest(m *Manifest) (*Registry, error) {
	return New(m.Entries)
}

// Name returns the display name for an identity.
func (r *Registry) Name(id presence.Identity) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}

// Identities returns all registered identities in ascending order.
func (r *Registry) Identities() []presence.Identity {
	return slices.Clone(r.identities)
}

// Samples returns how many manifest entries carry the identity's label.
func (r *Registry) Samples(id presence.Identity) int {
	return r.samples[id]
}

// Len returns the number of registered identities.
func (r *Registry) Len() int {
	return len(r.identities)
}

// NameFromPath derives a display name from the directory containing the image,
// e.g. "faces/jan_novak/01.jpg" -> "Jan Novak". Paths without a parent directory
// fall back to "Person <label>".
func NameFromPath(path string, label presence.Identity) string {
	dir := filepath.Base(filepath.Dir(filepath.ToSlash(path)))
	if dir == "." || dir == "/" || dir == "" {
		return "Person " + label.String()
	}
	return DisplayName(dir)
}

// DisplayName turns a directory name into a human-readable name.
func DisplayName(dir string) string {
	name := strings.NewReplacer("_", " ", "-", " ").Replace(dir)
	name = strings.Join(strings.Fields(name), " ")
	// Casers keep state between calls, so each call gets its own.
	return cases.Title(language.Und, cases.NoLower).String(name)
}
