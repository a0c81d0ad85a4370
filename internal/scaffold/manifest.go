package scaffold

import (
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the optional template manifest. It is never copied.
const ManifestFile = "template.yaml"

// Manifest is the YAML manifest a template may carry.
type Manifest struct {
	// Ignore lists glob patterns matched against the slash-separated
	// relative path and against the base name.
	Ignore []string `yaml:"ignore"`

	// Install is the command run in the generated project when installing
	// dependencies. Defaults to go mod tidy.
	Install []string `yaml:"install"`
}

var defaultIgnore = []string{".git", ".DS_Store", ManifestFile}

func loadManifest(fsys fs.FS) (*Manifest, error) {
	m := &Manifest{}
	data, err := fs.ReadFile(fsys, ManifestFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
		}
	case !isNotExist(err):
		return nil, fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	}

	for _, pattern := range m.Ignore {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
	}
	if len(m.Install) == 0 {
		m.Install = []string{"go", "mod", "tidy"}
	}
	return m, nil
}

func (m *Manifest) ignored(rel string) bool {
	base := path.Base(rel)
	for _, patterns := range [][]string{defaultIgnore, m.Ignore} {
		for _, pattern := range patterns {
			if ok, _ := path.Match(pattern, rel); ok {
				return true
			}
			if ok, _ := path.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}
