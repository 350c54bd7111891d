package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

// LoadOptions reads a YAML profile on top of the defaults.
func LoadOptions(path string) (*Options, error) {
	opts := Defaults()
	if err := ApplyProfile(path, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// ApplyProfile overlays the keys present in a YAML profile onto opts.
func ApplyProfile(path string, opts *Options) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, opts); err != nil {
		return fmt.Errorf("%w: profile %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return nil
}

// SaveOptions writes opts as a YAML profile.
func SaveOptions(path string, opts *Options) error {
	raw, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// Setting is one option given by name, as on the command line.
type Setting struct {
	Name string
	Arg  string
}

// Loader builds validated Options from the defaults, an optional profile and
// a list of individual settings, applied in that order.
type Loader struct {
	ProfilePath string
	Settings    []Setting
}

// Load applies the profile and settings and validates the result.
func (l *Loader) Load() (*Options, error) {
	opts := Defaults()

	if l.ProfilePath != "" {
		if err := ApplyProfile(l.ProfilePath, &opts); err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
	}

	for _, s := range l.Settings {
		def, ok := Lookup(s.Name)
		if !ok {
			return nil, invalid("Unrecognised option: %s", s.Name)
		}
		if err := def.Set(&opts, s.Arg); err != nil {
			return nil, err
		}
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}
