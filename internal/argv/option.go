package argv

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies an option's value.
type Kind uint8

const (
	// KindVoid is a bare switch: "-name" when true, nothing otherwise.
	KindVoid Kind = iota
	KindBool
	KindInt
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Mode selects how valued options are rendered.
type Mode uint8

const (
	// ModeAssign renders -name=value.
	ModeAssign Mode = iota
	// ModeSeparate renders -name value.
	ModeSeparate
)

// Option is one tool option with its default and current value, both in
// textual form.
type Option struct {
	Name    string
	Kind    Kind
	Default string
	Value   string
}

// IsDefault reports whether the option would be omitted by Build.
func (o Option) IsDefault() bool {
	if o.Kind == KindVoid {
		return !truthy(o.Value)
	}
	return o.Value == o.Default
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// Build renders opts into a single option string.
func Build(opts []Option, mode Mode) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		if o.IsDefault() {
			continue
		}
		if o.Kind == KindVoid {
			parts = append(parts, "-"+o.Name)
			continue
		}
		value := quote(o.Value)
		if mode == ModeSeparate {
			parts = append(parts, "-"+o.Name, value)
		} else {
			parts = append(parts, "-"+o.Name+"="+value)
		}
	}
	return strings.Join(parts, " ")
}

func quote(v string) string {
	if v == "" || strings.ContainsFunc(v, isSpace) {
		return `"` + v + `"`
	}
	return v
}

// FromValue converts a decoded configuration value (bool, integer or string)
// into the option's textual form and validates it against the option kind.
func (o Option) FromValue(v any) (Option, error) {
	switch x := v.(type) {
	case bool:
		if o.Kind != KindBool && o.Kind != KindVoid {
			return o, fmt.Errorf("option %s: %s expected, got bool", o.Name, o.Kind)
		}
		o.Value = strconv.FormatBool(x)
	case int64:
		if o.Kind != KindInt {
			return o, fmt.Errorf("option %s: %s expected, got integer", o.Name, o.Kind)
		}
		o.Value = strconv.FormatInt(x, 10)
	case int:
		if o.Kind != KindInt {
			return o, fmt.Errorf("option %s: %s expected, got integer", o.Name, o.Kind)
		}
		o.Value = strconv.Itoa(x)
	case string:
		switch o.Kind {
		case KindBool, KindVoid:
			if _, err := strconv.ParseBool(x); err != nil {
				return o, fmt.Errorf("option %s: invalid bool %q", o.Name, x)
			}
		case KindInt:
			if _, err := strconv.Atoi(x); err != nil {
				return o, fmt.Errorf("option %s: invalid integer %q", o.Name, x)
			}
		}
		if strings.Contains(x, `"`) {
			return o, fmt.Errorf("option %s: value must not contain quotes", o.Name)
		}
		o.Value = x
	default:
		return o, fmt.Errorf("option %s: unsupported value type %T", o.Name, v)
	}
	return o, nil
}
