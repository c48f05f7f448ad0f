package changeset

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"
)

// KeySeparator delimits the namespace and content hash in decoder cache keys.
const KeySeparator = "::"

// DecoderConfig configures the read-through cache in front of DecodeAll.
type DecoderConfig struct {
	// Capacity is the maximum number of decoded records kept in memory.
	Capacity int
	// NumShards splits the cache for concurrent access.
	NumShards int
	// TTL is how long a decoded record stays cached.
	TTL time.Duration
	// EvictionPercentage is what share of entries to drop when the cache
	// fills, between 1 and 100.
	EvictionPercentage int
}

// DefaultDecoderConfig returns a DecoderConfig with sensible defaults for
// audit-view workloads.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		Capacity:           1024,
		NumShards:          64,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks whether the configuration values are valid.
func (c DecoderConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// CachedDecoder serves repeated full decodes of the same blob from memory.
// Audit views tend to render the same recent records over and over; blobs
// are immutable once written, so content-addressed caching is safe. Single
// field lookups should keep using DecodeField, which is cheaper than any
// cache round-trip.
type CachedDecoder struct {
	client *sturdyc.Client[map[string]any]
}

// NewCachedDecoder constructs a CachedDecoder from the provided configuration.
func NewCachedDecoder(cfg DecoderConfig) (*CachedDecoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[map[string]any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
	)
	return &CachedDecoder{client: client}, nil
}

// DecodeAll returns the full field map for blob, caching the decoded form.
// Decode errors pass through unchanged and are never cached as results.
func (d *CachedDecoder) DecodeAll(ctx context.Context, blob string) (map[string]any, error) {
	if blob == "" {
		return nil, nil
	}
	return d.client.GetOrFetch(ctx, blobKey(blob), func(ctx context.Context) (map[string]any, error) {
		return DecodeAll(blob)
	})
}

// blobKey derives a stable cache key from blob content.
func blobKey(blob string) string {
	return "changeset" + KeySeparator + strconv.FormatUint(xxhash.Sum64String(blob), 16)
}
