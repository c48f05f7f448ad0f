// Package accessor avoids per-field reflective lookups when computing the
// ordered values that define value-object equality. The first comparison of a
// type compiles an extraction plan (the equality-relevant field indexes read
// in one pass); later comparisons reuse it. Types whose shape cannot be
// captured by a flat single-shot snapshot are marked disabled once and served
// by a generic reflection fallback for the life of the process. Both paths
// return element-wise identical sequences; only the mechanism differs.
package accessor

import (
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"
)

// TagKey is the struct tag consulted when selecting equality-relevant fields.
// A field tagged `equality:"-"` is excluded from both paths.
const TagKey = "equality"

// extractFn reads the equality components of a struct value in one pass.
type extractFn func(reflect.Value) []any

// Stats is a point-in-time snapshot of the accessor cache counters. A hit is
// a call served by an already-compiled plan; everything else, including every
// fallback call, is a miss.
type Stats struct {
	Hits   int64
	Misses int64
}

// Cache holds one compiled extraction plan per value-object type, plus the
// permanent record of types for which compilation is disabled. The zero
// value is not usable; construct with New.
type Cache struct {
	compiled *xsync.MapOf[reflect.Type, extractFn]
	disabled *xsync.MapOf[reflect.Type, bool]

	hits   *xsync.Counter
	misses *xsync.Counter
}

// New constructs an empty accessor cache. The cache is unbounded: it holds at
// most one entry per distinct value-object type, a set the application fixes
// at compile time.
func New() *Cache {
	return &Cache{
		compiled: xsync.NewMapOf[reflect.Type, extractFn](),
		disabled: xsync.NewMapOf[reflect.Type, bool](),
		hits:     xsync.NewCounter(),
		misses:   xsync.NewCounter(),
	}
}

// EqualityComponents returns the ordered sequence of values that determine
// v's equality. Passing nil (or a nil pointer) is a contract violation and
// panics. Non-struct values are their own single component.
//
// The compiled path and the reflection fallback are observationally
// identical; callers cannot tell which one served them.
func (c *Cache) EqualityComponents(v any) []any {
	if v == nil {
		panic("accessor: EqualityComponents called with nil instance")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			panic("accessor: EqualityComponents called with nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return []any{v}
	}
	t := rv.Type()

	if _, off := c.disabled.Load(t); off {
		c.misses.Inc()
		return fallbackComponents(rv)
	}
	if fn, ok := c.compiled.Load(t); ok {
		c.hits.Inc()
		return fn(rv)
	}

	c.misses.Inc()
	fn, err := compile(t)
	if err != nil {
		// Permanent downgrade: this type is never retried.
		c.disabled.Store(t, true)
		return fallbackComponents(rv)
	}

	// Insert-if-absent: a concurrent duplicate build is wasted work, not a
	// correctness problem. Whichever plan landed first serves everyone.
	actual, _ := c.compiled.LoadOrStore(t, fn)
	return actual(rv)
}

// Stats returns a snapshot of the hit/miss counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Value(), Misses: c.misses.Value()}
}

// Clear empties the cache, including the disabled set, and resets counters.
// Test-isolation surface only; steady-state code never clears.
func (c *Cache) Clear() {
	c.compiled.Clear()
	c.disabled.Clear()
	c.hits.Reset()
	c.misses.Reset()
}

// compile builds the one-pass extraction plan for t, or reports that t is not
// safe to compile. Any panic raised while inspecting the type is converted
// into a failure so the caller can downgrade permanently instead of crashing.
func compile(t reflect.Type) (fn extractFn, err error) {
	defer func() {
		if r := recover(); r != nil {
			fn = nil
			err = fmt.Errorf("accessor: compiling %s: %v", t, r)
		}
	}()

	indexes := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !includeField(f) {
			continue
		}
		if !snapshotSafe(f.Type) {
			return nil, fmt.Errorf("accessor: %s.%s is %s, not snapshot-safe", t, f.Name, f.Type.Kind())
		}
		indexes = append(indexes, i)
	}

	return func(rv reflect.Value) []any {
		out := make([]any, len(indexes))
		for i, fi := range indexes {
			out[i] = rv.Field(fi).Interface()
		}
		return out
	}, nil
}

// fallbackComponents reads the same field set as a compiled plan, one generic
// lookup per field. Slower, always available.
func fallbackComponents(rv reflect.Value) []any {
	t := rv.Type()
	out := make([]any, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !includeField(f) {
			continue
		}
		out = append(out, rv.FieldByName(f.Name).Interface())
	}
	return out
}

// includeField reports whether a field participates in equality.
func includeField(f reflect.StructField) bool {
	return f.IsExported() && f.Tag.Get(TagKey) != "-"
}

// snapshotSafe reports whether a field of the declared type can be captured
// by a flat one-pass snapshot. Collections and dynamic abstractions cannot:
// their content or element order can vary in ways a compiled flat read does
// not observe. String stays safe even though it is iterable.
func snapshotSafe(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return false
	default:
		return true
	}
}
