// ABOUTME: Single-primary invariant manager for the aggregate's sub-collections
// ABOUTME: Keeps email/phone/company entry lists consistent under arbitrary ordered mutation
package editor

// Entry is the canonical shape every sub-collection item is normalized into
// before any invariant logic runs. Implemented by pointer types in models.
type Entry interface {
	Empty() bool
	IsPrimary() bool
	SetPrimary(bool)
	DisplayValue() string
}

// Collection maintains an ordered list of entries and enforces the
// single-primary invariant on every mutation. A collection is never literally
// empty: removing the last entry leaves one blank primary placeholder.
// Operations cannot fail; syntactic validation is the caller's concern.
type Collection[E Entry] struct {
	items []E
	blank func() E
}

// NewCollection seeds a collection from already-loaded entries. blank produces
// a kind-appropriate empty entry. An empty seed list becomes the blank
// placeholder; a seed with no primary gets its first entry promoted; extra
// primary flags beyond the first are cleared.
func NewCollection[E Entry](seed []E, blank func() E) *Collection[E] {
	c := &Collection[E]{blank: blank}
	if len(seed) == 0 {
		e := blank()
		e.SetPrimary(true)
		c.items = []E{e}
		return c
	}
	c.items = append(c.items, seed...)
	seen := false
	for _, e := range c.items {
		if e.IsPrimary() {
			if seen {
				e.SetPrimary(false)
			}
			seen = true
		}
	}
	if !seen {
		c.items[0].SetPrimary(true)
	}
	return c
}

// Len returns the number of entries, placeholder included.
func (c *Collection[E]) Len() int { return len(c.items) }

// At returns the entry at index i.
func (c *Collection[E]) At(i int) E { return c.items[i] }

// Entries returns the backing slice. Callers mutate entries only through the
// collection's operations.
func (c *Collection[E]) Entries() []E { return c.items }

// Add appends a blank non-primary entry.
func (c *Collection[E]) Add() {
	c.items = append(c.items, c.blank())
}

// Update replaces the value fields of the entry at i, preserving its primary
// flag. Out-of-range indexes are ignored.
func (c *Collection[E]) Update(i int, e E) {
	if i < 0 || i >= len(c.items) {
		return
	}
	e.SetPrimary(c.items[i].IsPrimary())
	c.items[i] = e
}

// Remove deletes the entry at i. If the removed entry was primary the new
// first entry is promoted; an emptied collection is replaced by a single
// blank primary placeholder.
func (c *Collection[E]) Remove(i int) {
	if i < 0 || i >= len(c.items) {
		return
	}
	wasPrimary := c.items[i].IsPrimary()
	c.items = append(c.items[:i], c.items[i+1:]...)
	if len(c.items) == 0 {
		e := c.blank()
		e.SetPrimary(true)
		c.items = []E{e}
		return
	}
	if wasPrimary {
		c.items[0].SetPrimary(true)
	}
}

// SetPrimary flags the entry at i as primary and clears the flag everywhere
// else. No value check is made; the UI only offers this on meaningful entries.
func (c *Collection[E]) SetPrimary(i int) {
	if i < 0 || i >= len(c.items) {
		return
	}
	for j, e := range c.items {
		e.SetPrimary(j == i)
	}
}

// Persistable filters out empty entries and, when survivors exist with no
// primary among them, promotes the first survivor. It returns the filtered
// list and the primary entry's display value, used to populate the legacy
// scalar field alongside the collection.
func (c *Collection[E]) Persistable() ([]E, string) {
	var out []E
	firstSurvivor := -1
	for i, e := range c.items {
		if !e.Empty() {
			if firstSurvivor < 0 {
				firstSurvivor = i
			}
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, ""
	}
	primary := ""
	hasPrimary := false
	for _, e := range out {
		if e.IsPrimary() {
			hasPrimary = true
			primary = e.DisplayValue()
			break
		}
	}
	if !hasPrimary {
		// The primary flag sat on an entry that was filtered out; move it to
		// the first survivor so both the payload and the live collection stay
		// single-primary.
		c.SetPrimary(firstSurvivor)
		primary = c.items[firstSurvivor].DisplayValue()
	}
	return out, primary
}
