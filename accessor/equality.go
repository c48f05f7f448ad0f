package accessor

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether a and b are equal as value objects: same type and
// element-wise equal equality components. Two nils are equal; a nil and a
// value are not.
func (c *Cache) Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}

	ca := c.EqualityComponents(a)
	cb := c.EqualityComponents(b)
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if !reflect.DeepEqual(ca[i], cb[i]) {
			return false
		}
	}
	return true
}

// Hash returns a 64-bit hash over v's equality components, suitable for
// bucketing value objects. Values that compare Equal hash identically.
func (c *Cache) Hash(v any) uint64 {
	d := xxhash.New()
	for _, comp := range c.EqualityComponents(v) {
		fmt.Fprintf(d, "%v\x1f", comp)
	}
	return d.Sum64()
}
