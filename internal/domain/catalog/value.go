package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind discriminates the variants a catalog field value can take.
type Kind string

const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindBool       Kind = "bool"
	KindStringList Kind = "stringList"
	KindMap        Kind = "map"
	KindAssetRefs  Kind = "assetRefs"
	KindOpaque     Kind = "opaque"
)

// FieldValue is a tagged variant for the open field set of a canonical
// record. Asset references are a distinct kind so approval logic can
// couple them to blob cleanup; anything that does not fit a known kind
// travels as opaque raw JSON.
type FieldValue struct {
	Kind Kind                  `json:"k"`
	Str  string                `json:"s,omitempty"`
	Num  float64               `json:"n,omitempty"`
	Bool bool                  `json:"b,omitempty"`
	List []string              `json:"l,omitempty"`
	Map  map[string]FieldValue `json:"m,omitempty"`
	Raw  json.RawMessage       `json:"r,omitempty"`
}

func StringValue(s string) FieldValue { return FieldValue{Kind: KindString, Str: s} }

func NumberValue(n float64) FieldValue { return FieldValue{Kind: KindNumber, Num: n} }

func BoolValue(b bool) FieldValue { return FieldValue{Kind: KindBool, Bool: b} }

func StringListValue(items []string) FieldValue {
	return FieldValue{Kind: KindStringList, List: cloneStrings(items)}
}

func AssetRefsValue(urls []string) FieldValue {
	return FieldValue{Kind: KindAssetRefs, List: cloneStrings(urls)}
}

func MapValue(m map[string]FieldValue) FieldValue {
	cloned := make(map[string]FieldValue, len(m))
	for k, v := range m {
		cloned[k] = v
	}
	return FieldValue{Kind: KindMap, Map: cloned}
}

func OpaqueValue(raw json.RawMessage) FieldValue {
	cloned := make(json.RawMessage, len(raw))
	copy(cloned, raw)
	return FieldValue{Kind: KindOpaque, Raw: cloned}
}

// FromNative converts a decoded JSON value (string/bool/float64/[]any/
// map[string]any) into a FieldValue. Lists of strings become stringList;
// callers promote them to assetRefs via AsAssetRefs when the field
// catalog says so. Anything unrecognized is preserved as opaque.
func FromNative(v any) (FieldValue, error) {
	switch t := v.(type) {
	case nil:
		return FieldValue{Kind: KindOpaque, Raw: json.RawMessage("null")}, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return FieldValue{}, fmt.Errorf("%w: bad number %q", ErrInvalidFieldValue, t.String())
		}
		return NumberValue(n), nil
	case []any:
		items := make([]string, 0, len(t))
		allStrings := true
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				allStrings = false
				break
			}
			items = append(items, s)
		}
		if allStrings {
			return StringListValue(items), nil
		}
		return opaqueFromNative(v)
	case []string:
		return StringListValue(t), nil
	case map[string]any:
		m := make(map[string]FieldValue, len(t))
		for k, item := range t {
			fv, err := FromNative(item)
			if err != nil {
				return FieldValue{}, err
			}
			m[k] = fv
		}
		return FieldValue{Kind: KindMap, Map: m}, nil
	default:
		return opaqueFromNative(v)
	}
}

func opaqueFromNative(v any) (FieldValue, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return FieldValue{}, fmt.Errorf("%w: %v", ErrInvalidFieldValue, err)
	}
	return FieldValue{Kind: KindOpaque, Raw: raw}, nil
}

// AsAssetRefs reinterprets a string or string-list value as asset
// references. Values of other kinds are returned unchanged.
func (v FieldValue) AsAssetRefs() FieldValue {
	switch v.Kind {
	case KindAssetRefs:
		return v
	case KindStringList:
		return FieldValue{Kind: KindAssetRefs, List: v.List}
	case KindString:
		if v.Str == "" {
			return FieldValue{Kind: KindAssetRefs}
		}
		return FieldValue{Kind: KindAssetRefs, List: []string{v.Str}}
	default:
		return v
	}
}

// AssetURLs returns the URLs a value references, regardless of whether it
// was stored as a single string, a list, or promoted asset refs.
func (v FieldValue) AssetURLs() []string {
	switch v.Kind {
	case KindAssetRefs, KindStringList:
		out := make([]string, 0, len(v.List))
		for _, u := range v.List {
			if u != "" {
				out = append(out, u)
			}
		}
		return out
	case KindString:
		if v.Str == "" {
			return nil
		}
		return []string{v.Str}
	default:
		return nil
	}
}

// Empty returns the zero value of the same kind. Used when a rejected
// proposal must be blanked so a later merge cannot re-apply it.
func (v FieldValue) Empty() FieldValue {
	switch v.Kind {
	case KindAssetRefs:
		return FieldValue{Kind: KindAssetRefs, List: []string{}}
	case KindStringList:
		return FieldValue{Kind: KindStringList, List: []string{}}
	case KindMap:
		return FieldValue{Kind: KindMap, Map: map[string]FieldValue{}}
	case KindOpaque:
		return FieldValue{Kind: KindOpaque, Raw: json.RawMessage("null")}
	default:
		return FieldValue{Kind: v.Kind}
	}
}

// Native converts the value back to plain Go shapes suitable for JSON
// responses.
func (v FieldValue) Native() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindStringList, KindAssetRefs:
		if v.List == nil {
			return []string{}
		}
		return cloneStrings(v.List)
	case KindMap:
		out := make(map[string]any, len(v.Map))
		for k, item := range v.Map {
			out[k] = item.Native()
		}
		return out
	case KindOpaque:
		var out any
		if err := json.Unmarshal(v.Raw, &out); err != nil {
			return nil
		}
		return out
	default:
		return nil
	}
}

func (v FieldValue) Bools() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

// Fields is the open field set of a canonical record or an add-request
// payload.
type Fields map[string]FieldValue

// EncodeFields serializes a field map for a text column.
func EncodeFields(fields Fields) (string, error) {
	if fields == nil {
		fields = Fields{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(raw), nil
}

// DecodeFields parses a field map from a text column. Empty input decodes
// to an empty map.
func DecodeFields(raw string) (Fields, error) {
	if raw == "" {
		return Fields{}, nil
	}
	var fields Fields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	if fields == nil {
		fields = Fields{}
	}
	return fields, nil
}

// EncodeValue serializes a single field value for a text column.
func EncodeValue(v FieldValue) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode field value: %w", err)
	}
	return string(raw), nil
}

// DecodeValue parses a single field value from a text column.
func DecodeValue(raw string) (FieldValue, error) {
	var v FieldValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return FieldValue{}, fmt.Errorf("decode field value: %w", err)
	}
	return v, nil
}

// SortedFieldNames returns the field names in stable order, for
// deterministic diffs and error reports.
func SortedFieldNames(fields Fields) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
