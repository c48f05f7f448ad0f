package accessor

import (
	"reflect"
	"sync"
	"testing"
)

// money is a compilable value object.
type money struct {
	Amount   int64
	Currency string
}

// address mixes in an ignored field and an unexported one.
type address struct {
	Street  string
	City    string
	Geohash string `equality:"-"`
	secret  string
}

// lineItems carries a collection-typed field, so compilation is disabled.
type lineItems struct {
	Order string
	Items []string
}

// payload carries an interface-typed field, also not compilable.
type payload struct {
	Kind string
	Body any
}

func TestCache_CompiledComponents(t *testing.T) {
	c := New()

	got := c.EqualityComponents(money{Amount: 100, Currency: "USD"})
	want := []any{int64(100), "USD"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected components %v, got %v", want, got)
	}

	// Second call is served from the compiled plan.
	c.EqualityComponents(money{Amount: 1, Currency: "EUR"})
	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit after reuse, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss for first build, got %d", stats.Misses)
	}
}

func TestCache_FieldSelection(t *testing.T) {
	c := New()

	got := c.EqualityComponents(address{
		Street:  "1 Main St",
		City:    "Springfield",
		Geohash: "dr5r7",
		secret:  "hidden",
	})
	want := []any{"1 Main St", "Springfield"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected tagged and unexported fields excluded, want %v got %v", want, got)
	}
}

func TestCache_PointerAndNonStruct(t *testing.T) {
	c := New()

	got := c.EqualityComponents(&money{Amount: 5, Currency: "GBP"})
	want := []any{int64(5), "GBP"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected pointer to dereference, want %v got %v", want, got)
	}

	if got := c.EqualityComponents("just a string"); !reflect.DeepEqual(got, []any{"just a string"}) {
		t.Errorf("expected non-struct to be its own component, got %v", got)
	}
}

func TestCache_NilPanics(t *testing.T) {
	c := New()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil instance")
		}
	}()
	c.EqualityComponents(nil)
}

func TestCache_FallbackEquivalence(t *testing.T) {
	// For a compilable type both paths must produce element-wise equal
	// output: the optimization is observationally transparent.
	c := New()
	v := address{Street: "2 Oak Ave", City: "Shelbyville"}

	compiled := c.EqualityComponents(v)
	fallback := fallbackComponents(reflect.ValueOf(v))

	if !reflect.DeepEqual(compiled, fallback) {
		t.Errorf("compiled path %v differs from fallback %v", compiled, fallback)
	}
}

func TestCache_CollectionFieldDisablesCompilation(t *testing.T) {
	c := New()

	v := lineItems{Order: "o1", Items: []string{"a", "b"}}
	got := c.EqualityComponents(v)
	want := []any{"o1", []string{"a", "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected fallback components %v, got %v", want, got)
	}

	if _, off := c.disabled.Load(reflect.TypeOf(v)); !off {
		t.Error("expected type with slice field to be marked disabled")
	}
}

func TestCache_DisabledIsPermanent(t *testing.T) {
	c := New()
	v := payload{Kind: "json", Body: 42}

	c.EqualityComponents(v)
	hitsAfterFirst := c.Stats().Hits

	// Many further calls: the compiled-path counter must never move again
	// for this type, and the disabled flag must survive.
	for i := 0; i < 50; i++ {
		c.EqualityComponents(v)
	}

	stats := c.Stats()
	if stats.Hits != hitsAfterFirst {
		t.Errorf("expected compiled-path hits frozen at %d, got %d", hitsAfterFirst, stats.Hits)
	}
	if stats.Misses != 51 {
		t.Errorf("expected every call to count as a miss, got %d", stats.Misses)
	}
	if _, off := c.disabled.Load(reflect.TypeOf(v)); !off {
		t.Error("expected disabled flag to remain set")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New()
	c.EqualityComponents(money{})
	c.EqualityComponents(lineItems{})

	c.Clear()

	stats := c.Stats()
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("expected zeroed counters after Clear, got %+v", stats)
	}
	if c.compiled.Size() != 0 || c.disabled.Size() != 0 {
		t.Error("expected empty cache and disabled set after Clear")
	}
}

func TestCache_Equal(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "equal values", a: money{100, "USD"}, b: money{100, "USD"}, want: true},
		{name: "different amount", a: money{100, "USD"}, b: money{101, "USD"}, want: false},
		{name: "different types", a: money{}, b: address{}, want: false},
		{name: "both nil", a: nil, b: nil, want: true},
		{name: "one nil", a: money{}, b: nil, want: false},
		{name: "ignored field differs", a: address{City: "X", Geohash: "a"}, b: address{City: "X", Geohash: "b"}, want: true},
		{name: "fallback type equal", a: lineItems{"o1", []string{"a"}}, b: lineItems{"o1", []string{"a"}}, want: true},
		{name: "fallback type unequal", a: lineItems{"o1", []string{"a"}}, b: lineItems{"o1", []string{"b"}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("expected Equal=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestCache_Hash(t *testing.T) {
	c := New()

	a := money{100, "USD"}
	b := money{100, "USD"}
	if c.Hash(a) != c.Hash(b) {
		t.Error("expected equal values to hash identically")
	}
	if c.Hash(a) == c.Hash(money{100, "EUR"}) {
		t.Error("expected differing values to hash differently")
	}
}

func TestCache_ConcurrentComponents(t *testing.T) {
	c := New()

	values := []any{
		money{1, "USD"},
		address{Street: "s", City: "c"},
		lineItems{"o", []string{"x"}},
		payload{"k", "v"},
	}

	var wg sync.WaitGroup
	for w := 0; w < 32; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				v := values[(i+id)%len(values)]
				if comps := c.EqualityComponents(v); len(comps) == 0 {
					t.Errorf("expected non-empty components for %T", v)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}
