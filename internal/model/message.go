package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// MessageSpec describes one message by kind and arguments.
type MessageSpec struct {
	Kind string         `yaml:"kind" json:"kind"`
	Args map[string]any `yaml:"args,omitempty" json:"args,omitempty"`
}

// String renders the message as kind{k=v,...} with keys sorted.
func (s MessageSpec) String() string {
	if len(s.Args) == 0 {
		return s.Kind
	}
	keys := make([]string, 0, len(s.Args))
	for k := range s.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, s.Args[k])
	}
	return s.Kind + "{" + strings.Join(parts, ",") + "}"
}

// Decoder builds a typed message from scenario arguments.
type Decoder[M any] func(args map[string]any) (M, error)

// As returns a Decoder that fills a T from args and returns it as M.
// T must implement M (typically T is a concrete message struct and M the
// machine's message interface).
//
// Argument names follow T's mapstructure tags. Unknown arguments,
// type mismatches and integers that do not fit the target field are errors.
func As[M, T any]() Decoder[M] {
	return func(args map[string]any) (M, error) {
		var zero M
		var v T
		if err := decodeArgs(args, &v); err != nil {
			return zero, err
		}
		m, ok := any(v).(M)
		if !ok {
			return zero, fmt.Errorf("%T is not a %s", v, reflect.TypeOf((*M)(nil)).Elem())
		}
		return m, nil
	}
}

func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		DecodeHook:  rangeCheckHook,
		Result:      out,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}

// rangeCheckHook rejects integers that would be truncated by the target
// field; mapstructure itself narrows them silently.
func rangeCheckHook(from, to reflect.Type, data any) (any, error) {
	v := reflect.ValueOf(data)
	switch {
	case isInt(from.Kind()) && isUint(to.Kind()):
		n := v.Int()
		if n < 0 || reflect.Zero(to).OverflowUint(uint64(n)) {
			return nil, fmt.Errorf("%d out of range for %s", n, to)
		}
	case isInt(from.Kind()) && isInt(to.Kind()):
		if reflect.Zero(to).OverflowInt(v.Int()) {
			return nil, fmt.Errorf("%d out of range for %s", v.Int(), to)
		}
	case isUint(from.Kind()) && isUint(to.Kind()):
		if reflect.Zero(to).OverflowUint(v.Uint()) {
			return nil, fmt.Errorf("%d out of range for %s", v.Uint(), to)
		}
	}
	return data, nil
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
