// Package edn emits the minimal subset of EDN literal notation needed to hand a
// function list to the cljs-lambda Leiningen plugin.
//
// Only three shapes are supported:
//
//	sequences  -> [a b c]
//	mappings   -> {:k1 v1 :k2 v2}
//	scalars    -> emitted verbatim (strings, Raw) or via strconv (numbers)
//
// Strings are not quoted by the emitter. Callers that need an EDN string literal
// wrap the value with Quote first.
package edn

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnsupportedValue is returned for values outside the emitter's domain
// (nil, booleans, structs, pointers, ...).
var ErrUnsupportedValue = errors.New("edn: unsupported value")

// Raw is a pre-formatted literal emitted as-is.
type Raw string

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   string
	Value any
}

// Map is an ordered mapping; keys are emitted in slice order.
type Map []Entry

// Vector is an ordered sequence.
type Vector []any

// Quote returns s as an EDN string literal.
func Quote(s string) Raw {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return Raw(`"` + r.Replace(s) + `"`)
}

// Emit renders v as EDN text.
func Emit(v any) (string, error) {
	var b strings.Builder
	if err := emit(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

// MustEmit is like Emit but panics on unsupported values. Use it only for values
// assembled from typed data inside this module.
func MustEmit(v any) string {
	s, err := Emit(v)
	if err != nil {
		panic(err)
	}
	return s
}

func emit(b *strings.Builder, v any) error {
	switch t := v.(type) {
	case Raw:
		b.WriteString(string(t))
	case string:
		b.WriteString(t)
	case int:
		b.WriteString(strconv.Itoa(t))
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case int32:
		b.WriteString(strconv.FormatInt(int64(t), 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(t), 10))
	case uint64:
		b.WriteString(strconv.FormatUint(t, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(t), 'g', -1, 32))
	case Vector:
		return emitSeq(b, len(t), func(i int) any { return t[i] })
	case []any:
		return emitSeq(b, len(t), func(i int) any { return t[i] })
	case []Map:
		return emitSeq(b, len(t), func(i int) any { return t[i] })
	case []string:
		return emitSeq(b, len(t), func(i int) any { return t[i] })
	case Map:
		return emitMap(b, t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(Map, 0, len(keys))
		for _, k := range keys {
			m = append(m, Entry{Key: k, Value: t[k]})
		}
		return emitMap(b, m)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return nil
}

func emitSeq(b *strings.Builder, n int, at func(int) any) error {
	b.WriteByte('[')
	for i := range n {
		if i > 0 {
			b.WriteByte(' ')
		}
		if err := emit(b, at(i)); err != nil {
			return err
		}
	}
	b.WriteByte(']')
	return nil
}

func emitMap(b *strings.Builder, m Map) error {
	b.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(':')
		b.WriteString(e.Key)
		b.WriteByte(' ')
		if err := emit(b, e.Value); err != nil {
			return fmt.Errorf("key %s: %w", e.Key, err)
		}
	}
	b.WriteByte('}')
	return nil
}
