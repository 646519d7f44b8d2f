package query

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
)

// Predicate narrows entries to those satisfying a criterion. Entries whose
// attribute is missing or of the wrong type are dropped; so is everything
// when the criterion value itself cannot be compared.
type Predicate func(entries []catalog.Entry, c Criterion) []catalog.Entry

func keep(entries []catalog.Entry, ok func(catalog.Entry) bool) []catalog.Entry {
	out := make([]catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if ok(e) {
			out = append(out, e)
		}
	}
	return out
}

// FieldEquals matches a string attribute at path. Supports equals, contains,
// in and not_in.
func FieldEquals(path string) Predicate {
	return func(entries []catalog.Entry, c Criterion) []catalog.Entry {
		match, err := stringMatcher(c)
		if err != nil {
			return []catalog.Entry{}
		}
		return keep(entries, func(e catalog.Entry) bool {
			v, ok := e.Value(path)
			if !ok {
				return false
			}
			s, ok := v.(string)
			return ok && match(s)
		})
	}
}

func stringMatcher(c Criterion) (func(string) bool, error) {
	switch c.Operator {
	case In, NotIn:
		list, err := cast.ToStringSliceE(c.Value)
		if err != nil {
			return nil, err
		}
		set := make(map[string]struct{}, len(list))
		for _, s := range list {
			set[s] = struct{}{}
		}
		want := c.Operator == In
		return func(s string) bool {
			_, found := set[s]
			return found == want
		}, nil
	case Contains:
		want, err := cast.ToStringE(c.Value)
		if err != nil {
			return nil, err
		}
		return func(s string) bool { return strings.Contains(s, want) }, nil
	case "", Equals:
		want, err := cast.ToStringE(c.Value)
		if err != nil {
			return nil, err
		}
		return func(s string) bool { return s == want }, nil
	default:
		return nil, fmt.Errorf("operator %q not supported on text", c.Operator)
	}
}

// BoolAttribute matches the boolean attribute at prefix.<criterion field>.
// The attribute must be a real bool; a missing one never matches.
func BoolAttribute(prefix string) Predicate {
	return func(entries []catalog.Entry, c Criterion) []catalog.Entry {
		want, err := cast.ToBoolE(c.Value)
		if err != nil || c.Field == "" {
			return []catalog.Entry{}
		}
		path := join(prefix, c.Field)
		return keep(entries, func(e catalog.Entry) bool {
			v, ok := e.Value(path)
			if !ok {
				return false
			}
			b, ok := v.(bool)
			return ok && b == want
		})
	}
}

// NumericField compares the number at path.
func NumericField(path string) Predicate {
	return func(entries []catalog.Entry, c Criterion) []catalog.Entry {
		return numeric(entries, path, c)
	}
}

// NestedNumeric compares the number at prefix.<criterion field>.
func NestedNumeric(prefix string) Predicate {
	return func(entries []catalog.Entry, c Criterion) []catalog.Entry {
		if c.Field == "" {
			return []catalog.Entry{}
		}
		return numeric(entries, join(prefix, c.Field), c)
	}
}

func numeric(entries []catalog.Entry, path string, c Criterion) []catalog.Entry {
	match, err := numberMatcher(c)
	if err != nil {
		return []catalog.Entry{}
	}
	return keep(entries, func(e catalog.Entry) bool {
		v, ok := e.Value(path)
		if !ok {
			return false
		}
		f, ok := number(v)
		return ok && match(f)
	})
}

func numberMatcher(c Criterion) (func(float64) bool, error) {
	if c.Operator == In || c.Operator == NotIn {
		items, err := cast.ToSliceE(c.Value)
		if err != nil {
			return nil, err
		}
		set := make(map[float64]struct{}, len(items))
		for _, it := range items {
			f, err := cast.ToFloat64E(it)
			if err != nil {
				return nil, err
			}
			set[f] = struct{}{}
		}
		want := c.Operator == In
		return func(f float64) bool {
			_, found := set[f]
			return found == want
		}, nil
	}

	want, err := cast.ToFloat64E(c.Value)
	if err != nil {
		return nil, err
	}
	switch c.Operator {
	case GTE:
		return func(f float64) bool { return f >= want }, nil
	case LTE:
		return func(f float64) bool { return f <= want }, nil
	case GT:
		return func(f float64) bool { return f > want }, nil
	case LT:
		return func(f float64) bool { return f < want }, nil
	case "", Equals:
		return func(f float64) bool { return f == want }, nil
	default:
		return nil, fmt.Errorf("operator %q not supported on numbers", c.Operator)
	}
}

// number accepts the numeric types attributes decode to. Strings are not
// numbers here even when they parse as one.
func number(v any) (float64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return cast.ToFloat64(v), true
	default:
		return 0, false
	}
}

func join(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}
