package typeresolver

import (
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-domain-runtime/internal/boundedcache"
)

// ProxiedObject is implemented by wrapper types a persistence layer puts in
// front of domain entities. ActualType reports the domain type the wrapper
// stands in for. This is the preferred detection mechanism; package-path
// registration exists for wrappers whose source cannot be changed.
type ProxiedObject interface {
	ActualType() reflect.Type
}

// Stats is a point-in-time snapshot of resolver cache counters. Counters are
// updated atomically but independently of cache content, so values are
// approximate under contention.
type Stats struct {
	Hits   int64
	Misses int64
}

// HitRate returns hits as a fraction of all lookups, or 0 when no lookups
// have been recorded.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Resolver answers "which type should identity comparison use for this
// instance", unwrapping persistence proxies transparently. It is safe for
// unlimited concurrent callers; lookups never block behind proxy inspection.
type Resolver struct {
	cfg Config

	// resolved maps an observed type to its identity type.
	resolved *boundedcache.Map[reflect.Type, reflect.Type]
	// wrapped records whether an observed type is a proxy at all, so types
	// that never wrap anything skip the unwrap check entirely.
	wrapped *boundedcache.Map[reflect.Type, bool]

	hits   *xsync.Counter
	misses *xsync.Counter
}

// New constructs a Resolver from the provided configuration.
func New(cfg Config) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Resolver{
		cfg:      cfg,
		resolved: boundedcache.New[reflect.Type, reflect.Type](cfg.Capacity),
		wrapped:  boundedcache.New[reflect.Type, bool](cfg.Capacity),
		hits:     xsync.NewCounter(),
		misses:   xsync.NewCounter(),
	}, nil
}

// Resolve returns the identity type for v. For proxy instances that is the
// wrapped domain type; for everything else it is v's own type. Resolve
// cannot fail. Passing nil is a contract violation and panics: callers are
// expected to have rejected nil before asking for an identity type.
func (r *Resolver) Resolve(v any) reflect.Type {
	if v == nil {
		panic("typeresolver: Resolve called with nil instance")
	}

	observed := reflect.TypeOf(v)

	if identity, ok := r.resolved.Load(observed); ok {
		r.hits.Inc()
		return identity
	}
	if isProxy, ok := r.wrapped.Load(observed); ok && !isProxy {
		r.hits.Inc()
		return observed
	}

	r.misses.Inc()
	identity, isProxy := r.unwrap(observed, v)
	r.insert(observed, identity, isProxy)
	return identity
}

// SameIdentity reports whether a and b resolve to the same identity type.
// It is the check identity comparison performs before comparing keys.
func (r *Resolver) SameIdentity(a, b any) bool {
	return r.Resolve(a) == r.Resolve(b)
}

// Stats returns a snapshot of the hit/miss counters.
func (r *Resolver) Stats() Stats {
	return Stats{Hits: r.hits.Value(), Misses: r.misses.Value()}
}

// Clear empties both caches and resets the counters. Diagnostic and
// test-isolation surface, not part of steady-state operation.
func (r *Resolver) Clear() {
	r.resolved.Clear()
	r.wrapped.Clear()
	r.hits.Reset()
	r.misses.Reset()
}

// unwrap decides the identity type for an observed type outside any cache.
// It always succeeds; unknown shapes resolve to themselves.
func (r *Resolver) unwrap(observed reflect.Type, v any) (reflect.Type, bool) {
	if po, ok := v.(ProxiedObject); ok {
		if actual := po.ActualType(); actual != nil {
			return actual, true
		}
	}

	base := observed
	if base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	if base.Kind() == reflect.Struct && r.fromProxyPackage(base.PkgPath()) {
		if target, ok := embeddedTarget(base); ok {
			return target, true
		}
	}

	return observed, false
}

// insert publishes a fresh resolution into both caches, trimming a quarter
// of each first when the bound is reached. Trim and insert are separate
// steps; a concurrent reader that lands in between simply misses and
// recomputes.
func (r *Resolver) insert(observed, identity reflect.Type, isProxy bool) {
	if r.resolved.AtCapacity() {
		r.resolved.TrimQuarter()
		r.wrapped.TrimQuarter()
	}
	r.resolved.Store(observed, identity)
	r.wrapped.Store(observed, isProxy)
}

// fromProxyPackage reports whether pkg is a registered proxy package.
// Lengths are compared before contents so mismatched paths are rejected
// without walking the strings.
func (r *Resolver) fromProxyPackage(pkg string) bool {
	if pkg == "" {
		return false
	}
	for _, p := range r.cfg.ProxyPackages {
		if len(p) != len(pkg) {
			continue
		}
		if p == pkg {
			return true
		}
	}
	return false
}

// embeddedTarget returns the type a proxy struct wraps: its first embedded
// field. Wrappers that embed nothing are left alone.
func embeddedTarget(t reflect.Type) (reflect.Type, bool) {
	if t.NumField() == 0 {
		return nil, false
	}
	f := t.Field(0)
	if !f.Anonymous {
		return nil, false
	}
	return f.Type, true
}
