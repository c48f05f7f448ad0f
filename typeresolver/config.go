package typeresolver

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultCapacity bounds each internal cache when no capacity is configured.
// Steady-state applications see a small, finite set of runtime types, so a
// few hundred entries is generous.
const DefaultCapacity = 256

// Config controls resolver behaviour. Proxy packages are supplied by the
// persistence layer at composition time; the resolver itself has no
// knowledge of any particular ORM.
type Config struct {
	// Capacity is the maximum number of entries held by each of the
	// resolver's internal caches. Must be greater than 0.
	Capacity int

	// ProxyPackages lists the package paths whose struct types are treated
	// as persistence-generated wrappers. A struct from one of these
	// packages resolves to the domain type it embeds.
	ProxyPackages []string
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{Capacity: DefaultCapacity}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.ProxyPackages, validation.Each(validation.Required)),
	)
}
