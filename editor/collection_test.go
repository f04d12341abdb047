// ABOUTME: Tests for the single-primary collection invariant manager
// ABOUTME: Covers add/remove/setPrimary sequences, persistable derivation, and placeholder behavior
package editor

import (
	"testing"

	"salesdesk/models"
)

func newEmailCollection(seed ...*models.EmailEntry) *Collection[*models.EmailEntry] {
	return NewCollection(seed, func() *models.EmailEntry { return &models.EmailEntry{} })
}

func newPhoneCollection(seed ...*models.PhoneEntry) *Collection[*models.PhoneEntry] {
	return NewCollection(seed, func() *models.PhoneEntry { return &models.PhoneEntry{} })
}

func primaryCount[E Entry](c *Collection[E]) int {
	n := 0
	for _, e := range c.Entries() {
		if e.IsPrimary() {
			n++
		}
	}
	return n
}

func TestEmptySeedBecomesBlankPrimary(t *testing.T) {
	c := newEmailCollection()

	if c.Len() != 1 {
		t.Fatalf("expected 1 placeholder entry, got %d", c.Len())
	}
	if !c.At(0).IsPrimary() {
		t.Error("placeholder entry should be primary")
	}
	if !c.At(0).Empty() {
		t.Error("placeholder entry should be empty")
	}
}

func TestSeedWithoutPrimaryPromotesFirst(t *testing.T) {
	c := newEmailCollection(
		&models.EmailEntry{Address: "a@x.com"},
		&models.EmailEntry{Address: "b@x.com"},
	)

	if !c.At(0).IsPrimary() {
		t.Error("first entry should be promoted to primary")
	}
	if primaryCount(c) != 1 {
		t.Errorf("expected exactly 1 primary, got %d", primaryCount(c))
	}
}

func TestSeedWithTwoPrimariesKeepsFirst(t *testing.T) {
	c := newEmailCollection(
		&models.EmailEntry{Address: "a@x.com", Primary: true},
		&models.EmailEntry{Address: "b@x.com", Primary: true},
	)

	if !c.At(0).IsPrimary() || c.At(1).IsPrimary() {
		t.Error("only the first seeded primary should survive")
	}
}

// Scenario: [{a@x.com primary}], add(), setPrimary(1).
func TestAddThenSetPrimary(t *testing.T) {
	c := newEmailCollection(&models.EmailEntry{Address: "a@x.com", Primary: true})

	c.Add()
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if c.At(1).IsPrimary() {
		t.Error("added entry should not be primary")
	}

	c.SetPrimary(1)
	if c.At(0).IsPrimary() {
		t.Error("index 0 should have lost primary")
	}
	if !c.At(1).IsPrimary() {
		t.Error("index 1 should be primary")
	}
}

// Scenario: [{5512345678 non-primary}, {"" primary}], remove(1).
func TestRemovePrimaryPromotesFirstRemaining(t *testing.T) {
	c := newPhoneCollection(
		&models.PhoneEntry{Number: "5512345678"},
		&models.PhoneEntry{Number: "", Primary: true},
	)
	// NewCollection keeps the seeded primary on index 1.
	if !c.At(1).IsPrimary() {
		t.Fatal("seed primary should be on index 1")
	}

	c.Remove(1)

	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
	if c.At(0).Number != "5512345678" {
		t.Errorf("unexpected survivor %q", c.At(0).Number)
	}
	if !c.At(0).IsPrimary() {
		t.Error("survivor should be promoted to primary")
	}
}

func TestRemoveLastEntryLeavesBlankPlaceholder(t *testing.T) {
	c := newEmailCollection(&models.EmailEntry{Address: "a@x.com", Primary: true})

	c.Remove(0)

	if c.Len() != 1 {
		t.Fatalf("expected placeholder, got %d entries", c.Len())
	}
	if !c.At(0).Empty() || !c.At(0).IsPrimary() {
		t.Error("placeholder should be empty and primary")
	}
}

func TestRemoveNonPrimaryKeepsPrimary(t *testing.T) {
	c := newEmailCollection(
		&models.EmailEntry{Address: "a@x.com", Primary: true},
		&models.EmailEntry{Address: "b@x.com"},
	)

	c.Remove(1)

	if !c.At(0).IsPrimary() {
		t.Error("primary should be untouched by removing a non-primary entry")
	}
}

func TestUpdatePreservesPrimaryFlag(t *testing.T) {
	c := newEmailCollection(&models.EmailEntry{Address: "a@x.com", Primary: true})

	c.Update(0, &models.EmailEntry{Address: "new@x.com"})

	if c.At(0).Address != "new@x.com" {
		t.Errorf("value not updated: %q", c.At(0).Address)
	}
	if !c.At(0).IsPrimary() {
		t.Error("update must never change the primary flag")
	}
}

// Primary invariant: any sequence of add/remove/setPrimary keeps exactly one
// primary and the collection non-empty.
func TestPrimaryInvariantUnderMutationSequence(t *testing.T) {
	c := newEmailCollection(&models.EmailEntry{Address: "a@x.com", Primary: true})

	steps := []func(){
		func() { c.Add() },
		func() { c.Add() },
		func() { c.SetPrimary(2) },
		func() { c.Remove(0) },
		func() { c.Remove(1) }, // removes the promoted primary
		func() { c.Add() },
		func() { c.SetPrimary(1) },
		func() { c.Remove(1) },
		func() { c.Remove(0) }, // empties the collection
		func() { c.Add() },
		func() { c.SetPrimary(1) },
	}

	for i, step := range steps {
		step()
		if c.Len() == 0 {
			t.Fatalf("step %d: collection became empty", i)
		}
		if n := primaryCount(c); n != 1 {
			t.Fatalf("step %d: expected exactly 1 primary, got %d", i, n)
		}
	}
}

func TestPersistableDropsEmptyEntries(t *testing.T) {
	c := newEmailCollection(
		&models.EmailEntry{Address: "a@x.com", Primary: true},
		&models.EmailEntry{Address: ""},
		&models.EmailEntry{Address: "b@x.com"},
	)

	out, primary := c.Persistable()

	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(out))
	}
	if primary != "a@x.com" {
		t.Errorf("primary projection = %q, want a@x.com", primary)
	}
}

func TestPersistablePromotesWhenPrimaryWasEmpty(t *testing.T) {
	c := newPhoneCollection(
		&models.PhoneEntry{Number: "", Primary: true},
		&models.PhoneEntry{Number: "5512345678"},
	)

	out, primary := c.Persistable()

	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if !out[0].IsPrimary() {
		t.Error("survivor should be promoted")
	}
	if primary != "5512345678" {
		t.Errorf("primary projection = %q", primary)
	}
	// The live collection must stay single-primary too.
	if primaryCount(c) != 1 {
		t.Errorf("live collection has %d primaries", primaryCount(c))
	}
}

func TestPersistableAllEmpty(t *testing.T) {
	c := newEmailCollection()

	out, primary := c.Persistable()

	if out != nil || primary != "" {
		t.Errorf("expected empty result, got %v / %q", out, primary)
	}
}

func TestPersistableIdempotent(t *testing.T) {
	c := newEmailCollection(
		&models.EmailEntry{Address: ""},
		&models.EmailEntry{Address: "a@x.com"},
		&models.EmailEntry{Address: "b@x.com"},
	)

	first, firstPrimary := c.Persistable()

	rewrapped := newEmailCollection(first...)
	second, secondPrimary := rewrapped.Persistable()

	if len(first) != len(second) {
		t.Fatalf("second pass changed length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Address != second[i].Address || first[i].Primary != second[i].Primary {
			t.Errorf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	if firstPrimary != secondPrimary {
		t.Errorf("primary projection differs: %q vs %q", firstPrimary, secondPrimary)
	}
}
