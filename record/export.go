package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/mkch/bitrec/schema"
)

// ToMap converts r to plain values: uint64 or int64 for integers,
// map[string]any for groups (nil when absent) and []any for lists.
func (r *Record) ToMap() map[string]any {
	m := make(map[string]any, len(r.slots))
	for i, s := range r.slots {
		e := r.schema.Member(i)
		m[e.EntryName()] = r.plain(e, s)
	}
	return m
}

func (r *Record) plain(e schema.Entry, s slot) any {
	switch e := e.(type) {
	case *schema.Field:
		if e.Signed {
			return int64(s.bits)
		}
		return s.bits
	case *schema.Group:
		if s.rec == nil {
			return nil
		}
		return s.rec.ToMap()
	case *schema.Repeat:
		items := make([]any, 0, s.list.Len())
		for _, el := range s.list.items {
			items = append(items, el.ToMap())
		}
		return items
	}
	return nil
}

// FromMap builds a record of s from plain values as produced by ToMap or
// by decoding YAML, JSON or CBOR into map[string]any. Missing members keep
// their defaults; unknown keys are errors.
func FromMap(s *schema.Schema, m map[string]any) (*Record, error) {
	r := New(s)
	for k, v := range m {
		i, e, err := r.member(k)
		if err != nil {
			return nil, err
		}
		switch e := e.(type) {
		case *schema.Field:
			bits, err := integer(v, e.Signed)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", s.Name(), k, err)
			}
			r.slots[i].bits = bits
		case *schema.Group:
			if v == nil {
				r.slots[i].rec = nil
				continue
			}
			sub, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s wants a map, got %T", ErrKind, s.Name(), k, v)
			}
			rec, err := FromMap(e.Schema, sub)
			if err != nil {
				return nil, err
			}
			r.slots[i].rec = rec
		case *schema.Repeat:
			items, ok := v.([]any)
			if !ok && v != nil {
				return nil, fmt.Errorf("%w: %s.%s wants a list, got %T", ErrKind, s.Name(), k, v)
			}
			for n, item := range items {
				sub, ok := item.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%w: %s.%s[%d] wants a map, got %T", ErrKind, s.Name(), k, n, item)
				}
				rec, err := FromMap(e.Element, sub)
				if err != nil {
					return nil, err
				}
				r.slots[i].list.items = append(r.slots[i].list.items, rec)
			}
		}
	}
	return r, nil
}

// integer converts a decoded scalar to a field bit pattern.
func integer(v any, signed bool) (uint64, error) {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return integer(i, signed)
		}
		u, err := strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrKind, v)
		}
		return integer(u, signed)
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxUint64 {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrKind, v)
		}
		if v < 0 {
			return integer(int64(v), signed)
		}
		return integer(uint64(v), signed)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < 0 && !signed {
			return 0, fmt.Errorf("%w: negative value %d for unsigned field", ErrKind, i)
		}
		return uint64(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if signed && u > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows a signed field", ErrKind, u)
		}
		return u, nil
	}
	return 0, fmt.Errorf("%w: %T is not an integer", ErrKind, v)
}

// MarshalYAML renders r as a mapping in schema member order.
func (r *Record) MarshalYAML() (interface{}, error) {
	return r.yamlNode(), nil
}

func (r *Record) yamlNode() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i, s := range r.slots {
		e := r.schema.Member(i)
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: e.EntryName()}
		var val *yaml.Node
		switch e := e.(type) {
		case *schema.Field:
			text := strconv.FormatUint(s.bits, 10)
			if e.Signed {
				text = strconv.FormatInt(int64(s.bits), 10)
			}
			val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: text}
		case *schema.Group:
			if s.rec == nil {
				val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
			} else {
				val = s.rec.yamlNode()
			}
		case *schema.Repeat:
			val = &yaml.Node{Kind: yaml.SequenceNode}
			for _, el := range s.list.items {
				val.Content = append(val.Content, el.yamlNode())
			}
		}
		n.Content = append(n.Content, key, val)
	}
	return n
}

// FromYAML parses a YAML (or JSON) document into a record of s.
func FromYAML(s *schema.Schema, data []byte) (*Record, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return FromMap(s, m)
}

// cborEnc uses Core Deterministic Encoding so equal records always
// produce identical bytes.
var cborEnc cbor.EncMode

var cborDec cbor.DecMode

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("record: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("record: CBOR decoder initialization failed: " + err.Error())
	}
}

// MarshalCBOR encodes the ToMap form of r.
func (r *Record) MarshalCBOR() ([]byte, error) {
	return cborEnc.Marshal(r.ToMap())
}

// FromCBOR decodes a record of s from the form written by MarshalCBOR.
func FromCBOR(s *schema.Schema, data []byte) (*Record, error) {
	var m map[string]any
	if err := cborDec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return FromMap(s, m)
}

// FromJSON parses a JSON document into a record of s. Numbers keep full
// 64-bit precision.
func FromJSON(s *schema.Schema, data []byte) (*Record, error) {
	var m map[string]any
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	if err := d.Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return FromMap(s, m)
}
