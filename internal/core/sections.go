package core

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/example/storefront/internal/models"
)

// Value kinds a section field accepts.
const (
	kindString  = "string"
	kindBool    = "bool"
	kindNumber  = "number"
	kindStrings = "strings"
	kindDay     = "day"
)

//go:embed sections.yaml
var sectionsYAML []byte

type sectionField struct {
	Kind string `yaml:"kind"`
	Rule string `yaml:"rule"`
}

type sectionDef struct {
	Prefix string                  `yaml:"prefix"`
	Fields map[string]sectionField `yaml:"fields"`
}

var sectionTable = mustLoadSections(sectionsYAML)

func mustLoadSections(raw []byte) map[string]sectionDef {
	var table map[string]sectionDef
	if err := yaml.Unmarshal(raw, &table); err != nil {
		panic(fmt.Sprintf("invalid embedded section table: %v", err))
	}
	for name, def := range table {
		if def.Prefix == "" || len(def.Fields) == 0 {
			panic(fmt.Sprintf("section '%s' needs a prefix and fields", name))
		}
		for field, f := range def.Fields {
			switch f.Kind {
			case kindString, kindBool, kindNumber, kindStrings, kindDay:
			default:
				panic(fmt.Sprintf("section '%s' field '%s' has unknown kind '%s'", name, field, f.Kind))
			}
		}
	}
	return table
}

// SectionNames lists the profile sections in alphabetical order.
func SectionNames() []string {
	names := make([]string, 0, len(sectionTable))
	for name := range sectionTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SectionFields lists the declared fields of a section, or nil for an unknown section.
func SectionFields(section string) []string {
	def, ok := sectionTable[section]
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(def.Fields))
	for name := range def.Fields {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// ValidateSectionUpdate checks that section exists, that every submitted field is
// declared for it, and that each value has the declared kind and passes its rule.
func ValidateSectionUpdate(section string, fields map[string]interface{}) error {
	_, err := sectionPaths(section, fields)
	return err
}

// sectionPaths validates an update and converts it into dot-path field updates on
// the store document, e.g. "settings.payment.cash".
func sectionPaths(section string, fields map[string]interface{}) (map[string]interface{}, error) {
	def, ok := sectionTable[section]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownSection, section)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields submitted for section '%s'", ErrValidation, section)
	}

	paths := make(map[string]interface{}, len(fields))
	for name, raw := range fields {
		fd, ok := def.Fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: '%s' in section '%s'", ErrInvalidSectionField, name, section)
		}
		value, err := coerceValue(name, fd.Kind, raw)
		if err != nil {
			return nil, err
		}
		if fd.Kind != kindDay {
			if err := validateValue(name, value, fd.Rule); err != nil {
				return nil, err
			}
		}
		paths[def.Prefix+"."+name] = value
	}
	return paths, nil
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func coerceValue(name, kind string, raw interface{}) (interface{}, error) {
	mismatch := func() error {
		return fmt.Errorf("%w: field '%s' must be a %s", ErrValidation, name, kind)
	}

	switch kind {
	case kindString:
		v, ok := raw.(string)
		if !ok {
			return nil, mismatch()
		}
		return v, nil
	case kindBool:
		v, ok := raw.(bool)
		if !ok {
			return nil, mismatch()
		}
		return v, nil
	case kindNumber:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
		return nil, mismatch()
	case kindStrings:
		switch v := raw.(type) {
		case []string:
			return v, nil
		case []interface{}:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, mismatch()
				}
				out = append(out, s)
			}
			return out, nil
		}
		return nil, mismatch()
	case kindDay:
		return coerceDay(name, raw)
	}
	return nil, mismatch()
}

// coerceDay accepts {"open": bool, "from": "HH:MM", "to": "HH:MM"}. A null value
// clears the day.
func coerceDay(name string, raw interface{}) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: field '%s' must be an object with open, from and to", ErrValidation, name)
	}

	var day models.DaySchedule
	for key, v := range m {
		switch key {
		case "open":
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: '%s.open' must be a bool", ErrValidation, name)
			}
			day.Open = b
		case "from", "to":
			s, ok := v.(string)
			if !ok || (s != "" && !clockPattern.MatchString(s)) {
				return nil, fmt.Errorf("%w: '%s.%s' must be HH:MM", ErrValidation, name, key)
			}
			if key == "from" {
				day.From = s
			} else {
				day.To = s
			}
		default:
			return nil, fmt.Errorf("%w: '%s.%s'", ErrInvalidSectionField, name, key)
		}
	}
	if day.Open && (day.From == "" || day.To == "") {
		return nil, fmt.Errorf("%w: open day '%s' needs from and to", ErrValidation, name)
	}
	return &day, nil
}
