// Package di wires the runtime optimization components together so embedding
// applications get one composition root instead of ambient singletons.
package di

import (
	"github.com/goliatone/go-domain-runtime/accessor"
	"github.com/goliatone/go-domain-runtime/changeset"
	"github.com/goliatone/go-domain-runtime/typeresolver"
)

// Config aggregates the per-component configurations.
type Config struct {
	Resolver typeresolver.Config
	Decoder  changeset.DecoderConfig
}

// DefaultConfig returns a Config populated with each component's defaults.
func DefaultConfig() Config {
	return Config{
		Resolver: typeresolver.DefaultConfig(),
		Decoder:  changeset.DefaultDecoderConfig(),
	}
}

// Container holds singleton instances of the resolver, the accessor cache,
// and the cached change-set decoder. Construct one per process (or per test)
// and hand the components to the identity, equality, and audit layers.
type Container struct {
	resolver  *typeresolver.Resolver
	accessors *accessor.Cache
	decoder   *changeset.CachedDecoder
	config    Config
}

// NewContainer creates a container from the provided configuration. Each
// component validates its own configuration; the first failure aborts
// construction.
func NewContainer(cfg Config) (*Container, error) {
	resolver, err := typeresolver.New(cfg.Resolver)
	if err != nil {
		return nil, err
	}

	decoder, err := changeset.NewCachedDecoder(cfg.Decoder)
	if err != nil {
		return nil, err
	}

	return &Container{
		resolver:  resolver,
		accessors: accessor.New(),
		decoder:   decoder,
		config:    cfg,
	}, nil
}

// NewContainerWithDefaults creates a container using default configuration
// for every component.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(DefaultConfig())
}

// Resolver returns the singleton identity type resolver.
func (c *Container) Resolver() *typeresolver.Resolver {
	return c.resolver
}

// Accessors returns the singleton equality accessor cache.
func (c *Container) Accessors() *accessor.Cache {
	return c.accessors
}

// Decoder returns the singleton cached change-set decoder.
func (c *Container) Decoder() *changeset.CachedDecoder {
	return c.decoder
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config {
	return c.config
}

// Clear empties every cache the container owns and resets their counters.
// Intended for test isolation between cases.
func (c *Container) Clear() {
	c.resolver.Clear()
	c.accessors.Clear()
}
