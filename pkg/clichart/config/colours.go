package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ColourOverride replaces the default colour of the series at Index.
type ColourOverride struct {
	Index  int
	Colour color.RGBA
}

var namedColours = map[string]color.RGBA{
	"black":     {0, 0, 0, 255},
	"blue":      {0, 0, 255, 255},
	"cyan":      {0, 255, 255, 255},
	"darkgray":  {64, 64, 64, 255},
	"darkgrey":  {64, 64, 64, 255},
	"gray":      {128, 128, 128, 255},
	"grey":      {128, 128, 128, 255},
	"green":     {0, 255, 0, 255},
	"lightgray": {192, 192, 192, 255},
	"lightgrey": {192, 192, 192, 255},
	"magenta":   {255, 0, 255, 255},
	"orange":    {255, 200, 0, 255},
	"pink":      {255, 175, 175, 255},
	"red":       {255, 0, 0, 255},
	"white":     {255, 255, 255, 255},
	"yellow":    {255, 255, 0, 255},
}

// NamedColour looks up one of the fixed colour names, case-insensitively.
func NamedColour(name string) (color.RGBA, bool) {
	c, ok := namedColours[strings.ToLower(name)]
	return c, ok
}

// ParseColourOverrides parses a list such as "0:red, 2:00ff00".
func ParseColourOverrides(s string) ([]ColourOverride, error) {
	if strings.TrimSpace(s) == "" {
		return nil, invalid("Command requires an argument")
	}
	var overrides []ColourOverride
	for _, part := range strings.Split(s, ",") {
		o, err := parseColourOverride(part)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, nil
}

func parseColourOverride(s string) (ColourOverride, error) {
	fields := strings.Split(strings.TrimSpace(s), ":")
	if len(fields) != 2 {
		return ColourOverride{}, invalid("Invalid colour override: [%s]", s)
	}
	index, err := strconv.Atoi(fields[0])
	if err != nil || index < 0 {
		return ColourOverride{}, invalid("Invalid index in colour override: [%s]", s)
	}
	c, err := ParseColour(fields[1])
	if err != nil {
		return ColourOverride{}, err
	}
	return ColourOverride{Index: index, Colour: c}, nil
}

// ParseColour accepts a colour name or six hex digits.
func ParseColour(s string) (color.RGBA, error) {
	lower := strings.ToLower(s)
	if c, ok := namedColours[lower]; ok {
		return c, nil
	}
	if len(lower) != 6 {
		return color.RGBA{}, invalid("Invalid colour: [%s]", lower)
	}
	rgb, err := strconv.ParseUint(lower, 16, 32)
	if err != nil {
		return color.RGBA{}, invalid("Invalid colour: [%s]", lower)
	}
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 255}, nil
}

func (o ColourOverride) String() string {
	return fmt.Sprintf("%d:%02x%02x%02x", o.Index, o.Colour.R, o.Colour.G, o.Colour.B)
}

// MarshalYAML writes the override in its option form.
func (o ColourOverride) MarshalYAML() (any, error) {
	return o.String(), nil
}

// UnmarshalYAML reads the option form, e.g. "1:blue".
func (o *ColourOverride) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := parseColourOverride(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
