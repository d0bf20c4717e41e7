package codec

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

func init() {
	Register("yaml", NewYAMLCodec)
}

type yamlCodecImpl struct{}

// NewYAMLCodec creates a new codec for the YAML format. Compared to JSON it
// produces terser files and keeps integer values as integers across a
// round trip.
func NewYAMLCodec() ICodec {
	return &yamlCodecImpl{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (c *yamlCodecImpl) Name() string {
	return "yaml"
}

func (c *yamlCodecImpl) Encode(entries map[string]any) (data []byte, err error) {
	// yaml.Marshal does not detect reference cycles and recurses without
	// bound on them, which is fatal for the whole process and cannot be
	// recovered. Reject self-referential values before marshaling.
	if cErr := checkCycle(reflect.ValueOf(entries), map[cycleKey]struct{}{}); cErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, cErr)
	}

	// yaml.Marshal panics for kinds the format cannot express (func, chan, ...)
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("%w: %v", ErrUnsupportedValue, r)
		}
	}()

	if data, err = yaml.Marshal(entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return data, nil
}

func (c *yamlCodecImpl) Decode(data []byte) (map[string]any, error) {
	entries := map[string]any{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	// an empty file is the null document in YAML, both decode to no entries
	if entries == nil {
		entries = map[string]any{}
	}
	return entries, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// cycleKey identifies a container on the current walk path. Slices need the
// length in addition to the data pointer, two sub-slices of one backing
// array share the pointer.
type cycleKey struct {
	ptr uintptr
	len int
}

// checkCycle walks a value depth-first and reports an error when a map,
// slice or pointer is reachable from itself. The active set holds only the
// containers on the current path, so a value referenced twice as siblings
// passes.
func checkCycle(v reflect.Value, active map[cycleKey]struct{}) error {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return checkCycle(v.Elem(), active)
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		key := cycleKey{ptr: v.Pointer()}
		if _, ok := active[key]; ok {
			return fmt.Errorf("self-referential value via %s", v.Type())
		}
		active[key] = struct{}{}
		defer delete(active, key)
		return checkCycle(v.Elem(), active)
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		key := cycleKey{ptr: v.Pointer()}
		if _, ok := active[key]; ok {
			return fmt.Errorf("self-referential value via %s", v.Type())
		}
		active[key] = struct{}{}
		defer delete(active, key)
		iter := v.MapRange()
		for iter.Next() {
			if err := checkCycle(iter.Value(), active); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		key := cycleKey{ptr: v.Pointer(), len: v.Len()}
		if _, ok := active[key]; ok {
			return fmt.Errorf("self-referential value via %s", v.Type())
		}
		active[key] = struct{}{}
		defer delete(active, key)
		for i := 0; i < v.Len(); i++ {
			if err := checkCycle(v.Index(i), active); err != nil {
				return err
			}
		}
		return nil
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := checkCycle(v.Index(i), active); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err := checkCycle(v.Field(i), active); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
