package core

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags the numeric type carried by a Value.
type Kind uint8

const (
	Integer Kind = iota + 1
	Float
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "int"
	case Float:
		return "float"
	default:
		return "invalid"
	}
}

// MarshalText renders the kind as "int" or "float".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Value is a numeric parameter value, either Integer or Float.
type Value struct {
	kind Kind
	i    int64
	f    float64
}

func IntValue(v int64) Value {
	return Value{kind: Integer, i: v}
}

func FloatValue(v float64) Value {
	return Value{kind: Float, f: v}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Int returns the integer payload. ok is false for Float values.
func (v Value) Int() (int64, bool) {
	if v.kind != Integer {
		return 0, false
	}
	return v.i, true
}

// Float returns the value as float64, widening integers.
func (v Value) Float() float64 {
	if v.kind == Integer {
		return float64(v.i)
	}
	return v.f
}

func (v Value) IsValid() bool {
	return v.kind == Integer || v.kind == Float
}

func (v Value) String() string {
	switch v.kind {
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return "<invalid>"
	}
}

// MarshalJSON keeps integers integral in listings.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return []byte("null"), nil
	}
	if v.kind == Float {
		s := v.String()
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			s += ".0"
		}
		return []byte(s), nil
	}
	return []byte(v.String()), nil
}

type entry struct {
	key   string
	value Value
}

// Parameters is an ordered key to Value mapping. The zero value is empty and
// ready to use. With* methods return a modified copy, leaving the receiver
// untouched.
type Parameters struct {
	entries []entry
}

// Set inserts or replaces key, keeping the original insertion position.
func (p *Parameters) Set(key string, v Value) {
	for i := range p.entries {
		if p.entries[i].key == key {
			p.entries[i].value = v
			return
		}
	}
	p.entries = append(p.entries, entry{key: key, value: v})
}

func (p Parameters) With(key string, v Value) Parameters {
	out := p.Clone()
	out.Set(key, v)
	return out
}

func (p Parameters) WithInt(key string, v int64) Parameters {
	return p.With(key, IntValue(v))
}

func (p Parameters) WithFloat(key string, v float64) Parameters {
	return p.With(key, FloatValue(v))
}

func (p Parameters) Get(key string) (Value, bool) {
	for _, e := range p.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return Value{}, false
}

// Keys returns keys in insertion order.
func (p Parameters) Keys() []string {
	keys := make([]string, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.key
	}
	return keys
}

func (p Parameters) Len() int {
	return len(p.entries)
}

func (p Parameters) Clone() Parameters {
	entries := make([]entry, len(p.entries))
	copy(entries, p.entries)
	return Parameters{entries: entries}
}

func (p Parameters) String() string {
	s := "{"
	for i, e := range p.entries {
		if i > 0 {
			s += ", "
		}
		s += e.key + ": " + e.value.String()
	}
	return s + "}"
}

// ParameterInfo declares one recognized parameter of an algorithm.
type ParameterInfo struct {
	Name        string  `json:"name"`
	Kind        Kind    `json:"type"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Default     Value   `json:"default"`
	Required    bool    `json:"required,omitempty"`
	Description string  `json:"description"`
}

// Resolved holds typed parameter values after schema validation.
type Resolved struct {
	values map[string]Value
}

// Int returns a resolved Integer parameter. Asking for an undeclared name is
// a programming error.
func (r Resolved) Int(name string) int {
	v, ok := r.values[name]
	if !ok {
		Invariant("parameter %q not declared in schema", name)
	}
	i, ok := v.Int()
	if !ok {
		Invariant("parameter %q resolved as %s, want int", name, v.Kind())
	}
	return int(i)
}

// Float returns a resolved parameter as float64.
func (r Resolved) Float(name string) float64 {
	v, ok := r.values[name]
	if !ok {
		Invariant("parameter %q not declared in schema", name)
	}
	return v.Float()
}

// Resolve validates params against schema and fills defaults. Keys absent
// from the schema are returned in ignored, in insertion order.
func Resolve(schema []ParameterInfo, params Parameters) (Resolved, []string, error) {
	resolved := Resolved{values: make(map[string]Value, len(schema))}

	for _, info := range schema {
		v, ok := params.Get(info.Name)
		if !ok {
			if info.Required {
				return Resolved{}, nil, NewConfigurationError(info.Name, "required parameter is missing")
			}
			resolved.values[info.Name] = info.Default
			continue
		}

		if !v.IsValid() {
			return Resolved{}, nil, NewConfigurationError(info.Name, "value has no numeric type")
		}

		switch info.Kind {
		case Integer:
			if v.Kind() != Integer {
				return Resolved{}, nil, NewConfigurationError(info.Name,
					fmt.Sprintf("expected int, got float %s", v))
			}
		case Float:
			v = FloatValue(v.Float())
		}

		if f := v.Float(); math.IsNaN(f) || f < info.Min || f > info.Max {
			return Resolved{}, nil, NewConfigurationError(info.Name,
				fmt.Sprintf("%s must be between %v and %v", info.Name, info.Min, info.Max))
		}
		resolved.values[info.Name] = v
	}

	var ignored []string
	for _, key := range params.Keys() {
		if !declared(schema, key) {
			ignored = append(ignored, key)
		}
	}

	return resolved, ignored, nil
}

// Defaults returns the schema defaults as Parameters, in schema order.
func Defaults(schema []ParameterInfo) Parameters {
	var p Parameters
	for _, info := range schema {
		if !info.Required {
			p.Set(info.Name, info.Default)
		}
	}
	return p
}

func declared(schema []ParameterInfo, key string) bool {
	for _, info := range schema {
		if info.Name == key {
			return true
		}
	}
	return false
}
