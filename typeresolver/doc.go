// Package typeresolver makes identity comparison proxy-agnostic.
//
// # Overview
//
// Persistence layers commonly hand application code a wrapper instead of the
// domain entity it asked for: a struct that embeds the entity and intercepts
// access for lazy loading or change tracking. Those wrappers are transparent
// everywhere except type-identity checks, where reflect.TypeOf reports the
// wrapper type and two references to the same logical entity stop comparing
// as the same kind of thing.
//
// Resolver answers "which type should identity comparison use" and caches the
// answer per observed type, so the unwrap inspection runs once per type
// rather than once per comparison.
//
// # Detection
//
// Two mechanisms, both configured by the persistence collaborator:
//
//   - A wrapper implements ProxiedObject and reports the wrapped type itself.
//   - The wrapper's package path is listed in Config.ProxyPackages, in which
//     case the wrapper's first embedded field is taken as the domain type.
//
// There is no string heuristic over type names; unknown shapes resolve to
// themselves, which is always correct, just proxy-unaware.
//
// # Caching
//
// Resolutions land in two bounded concurrent caches: observed type to
// identity type, and observed type to "is this a proxy at all". When a cache
// reaches its capacity bound, roughly a quarter of its entries are dropped in
// enumeration order before the new entry is inserted. This is approximate by
// intent - no access-time bookkeeping - and an evicted type is simply
// recomputed on its next lookup.
//
// Hit/miss counters are atomic and may lag cache content under contention;
// they exist for observability, not correctness.
//
// # Usage
//
//	resolver, err := typeresolver.New(typeresolver.Config{
//		Capacity:      256,
//		ProxyPackages: []string{"myapp/internal/ormproxy"},
//	})
//	if err != nil {
//		return err
//	}
//
//	if resolver.SameIdentity(a, b) && a.ID() == b.ID() {
//		// same entity
//	}
package typeresolver
