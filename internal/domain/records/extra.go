package records

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// Local records come from free-form UI state, so fields this package does not
// model are carried through decode/encode untouched.
type Extra map[string]json.RawMessage

// originals keeps the stored token of modelled fields that do not re-encode
// to the same JSON: a year saved as a number, an id saved as a quoted number,
// a flag saved as "true". An unchanged field is written back as it was read.
type originals map[string]json.RawMessage

type field struct {
	name  string
	index int
	typ   reflect.Type
}

type fieldSet map[string]field

func fieldsOf(v any) fieldSet {
	t := reflect.TypeOf(v)
	fields := make(fieldSet, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = field{name: name, index: i, typ: sf.Type}
	}
	return fields
}

// lookup matches keys the way encoding/json does: exact name first, then
// case-insensitively.
func (fs fieldSet) lookup(key string) (field, bool) {
	if f, ok := fs[key]; ok {
		return f, true
	}
	for name, f := range fs {
		if strings.EqualFold(name, key) {
			return f, true
		}
	}
	return field{}, false
}

// decodeWithExtra fills target, a pointer to struct, from a JSON object.
// Modelled fields are decoded one by one and leniently: a scalar of the wrong
// JSON type is converted when the conversion is obvious and otherwise left at
// its zero value, so one odd value never fails the whole record.
func decodeWithExtra(data []byte, target any, fields fieldSet) (Extra, originals, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, nil, err
	}
	dst := reflect.ValueOf(target).Elem()

	var extra Extra
	var orig originals
	for key, raw := range all {
		f, ok := fields.lookup(key)
		if ok && key != f.name {
			// the exact spelling wins; the other one is kept as unknown data
			if _, exact := all[f.name]; exact {
				ok = false
			}
		}
		if !ok {
			if extra == nil {
				extra = Extra{}
			}
			extra[key] = raw
			continue
		}

		value := decodeLenient(f.typ, raw)
		if value.IsValid() {
			dst.Field(f.index).Set(value)
		}
		if f.typ.Kind() == reflect.Slice && value.IsValid() {
			continue
		}
		if !sameJSON(encodeValue(f.typ, value), raw) {
			if orig == nil {
				orig = originals{}
			}
			orig[f.name] = raw
		}
	}
	return extra, orig, nil
}

func encodeWithExtra(v any, extra Extra, orig originals, fields fieldSet) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || (len(extra) == 0 && len(orig) == 0) {
		return data, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for name, raw := range orig {
		f, ok := fields[name]
		if !ok {
			continue
		}
		current, present := all[name]
		if !present {
			current = encodeValue(f.typ, reflect.Value{})
		}
		if sameJSON(current, encodeValue(f.typ, decodeLenient(f.typ, raw))) {
			all[name] = raw
		}
	}
	for key, raw := range extra {
		if _, ok := all[key]; !ok {
			all[key] = raw
		}
	}
	return json.Marshal(all)
}

// decodeLenient returns raw decoded as t, or the invalid Value when raw
// cannot be read as t even after converting obvious scalar mismatches.
func decodeLenient(t reflect.Type, raw json.RawMessage) reflect.Value {
	if v, ok := decodeAs(t, raw); ok {
		return v
	}
	token := bytes.TrimSpace(raw)
	switch t.Kind() {
	case reflect.String:
		if isScalarToken(token) {
			quoted, _ := json.Marshal(string(token))
			if v, ok := decodeAs(t, quoted); ok {
				return v
			}
		}
	case reflect.Bool:
		var s string
		if json.Unmarshal(token, &s) == nil {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return reflect.ValueOf(b).Convert(t)
			}
		}
		var n float64
		if json.Unmarshal(token, &n) == nil {
			return reflect.ValueOf(n != 0).Convert(t)
		}
	}
	return reflect.Value{}
}

func decodeAs(t reflect.Type, raw json.RawMessage) (reflect.Value, bool) {
	ptr := reflect.New(t)
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return reflect.Value{}, false
	}
	return ptr.Elem(), true
}

// encodeValue marshals v, or the zero value of t when v is invalid.
func encodeValue(t reflect.Type, v reflect.Value) []byte {
	if !v.IsValid() {
		v = reflect.Zero(t)
	}
	data, err := json.Marshal(v.Interface())
	if err != nil {
		return nil
	}
	return data
}

// isScalarToken reports whether token is a JSON number or boolean.
func isScalarToken(token []byte) bool {
	if len(token) == 0 {
		return false
	}
	if bytes.Equal(token, []byte("true")) || bytes.Equal(token, []byte("false")) {
		return true
	}
	c := token[0]
	return c == '-' || (c >= '0' && c <= '9')
}

func sameJSON(a, b []byte) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
