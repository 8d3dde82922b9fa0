// Package manifest reads the plugin.yml manifest embedded in installed
// component archives and builds the dependency indexes the resolver works
// from. Nothing in this package is persisted: every scan re-reads the
// on-disk inventory from scratch.
package manifest

import (
	"archive/zip"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/depo-mc/depo/pkg/errors"
)

// Declaration is one component's embedded manifest: its name, the
// components it requires, the ones it soft-requires, and the dependency
// names it provides in addition to its own.
type Declaration struct {
	Name       string     `yaml:"name"`
	Depend     stringList `yaml:"depend"`
	SoftDepend stringList `yaml:"softdepend"`
	Provides   stringList `yaml:"provides"`
}

// ProvidesName reports whether the declaration satisfies the dependency
// name, either through its own name or its provides list. Matching is
// case-insensitive.
func (d *Declaration) ProvidesName(name string) bool {
	if strings.EqualFold(d.Name, name) {
		return true
	}
	for _, p := range d.Provides {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// stringList accepts both a YAML sequence and a single scalar, since both
// shapes occur in the wild for depend/softdepend/provides.
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = appendTrimmed(nil, s)
	case yaml.SequenceNode:
		var raw []string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		out := make(stringList, 0, len(raw))
		for _, s := range raw {
			out = appendTrimmed(out, s)
		}
		*l = out
	}
	return nil
}

func appendTrimmed(l stringList, s string) stringList {
	if s = strings.TrimSpace(s); s != "" {
		l = append(l, s)
	}
	return l
}

// manifestEntry is the archive entry holding the manifest document.
const manifestEntry = "plugin.yml"

// ReadArchive extracts the manifest declaration from the archive at p.
//
// A missing manifest entry or a manifest without a name is absence, not
// failure: ReadArchive returns (nil, nil) and the caller skips the
// archive. An unreadable archive or unparsable document returns an
// INVALID_MANIFEST error.
func ReadArchive(p string) (*Declaration, error) {
	r, err := zip.OpenReader(p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "opening archive %s", p)
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.EqualFold(path.Base(f.Name), manifestEntry) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "opening %s in %s", f.Name, p)
		}
		var d Declaration
		err = yaml.NewDecoder(rc).Decode(&d)
		rc.Close()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decoding %s in %s", f.Name, p)
		}
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return nil, nil
		}
		return &d, nil
	}
	return nil, nil
}
