package zettel

import (
	"testing"
	"time"
)

func TestValue_EqualAcrossKinds(t *testing.T) {
	if !Int(1).Equal(Int(1)) {
		t.Error("expected equal ints")
	}
	if Int(1).Equal(Float(1)) {
		t.Error("expected different kinds to be unequal even with equal magnitude")
	}
	if !List([]Value{String("a"), Int(2)}).Equal(List([]Value{String("a"), Int(2)})) {
		t.Error("expected equal lists")
	}
	if List([]Value{String("a")}).Equal(List([]Value{String("a"), Int(2)})) {
		t.Error("expected different-length lists to be unequal")
	}
}

func TestValue_IsMissingOnOrderedMap(t *testing.T) {
	m := NewOrderedMap()
	m.Set("present", String("x"))
	m.Set("explicit-null", Null())

	if !m.IsMissing("absent") {
		t.Error("expected absent key to be missing")
	}
	if !m.IsMissing("explicit-null") {
		t.Error("expected explicit null to be missing")
	}
	if m.IsMissing("present") {
		t.Error("expected present key to not be missing")
	}
}

func TestOrderedMap_SetPreservesInsertOrderOnUpdate(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", Int(1))
	m.Set("b", Int(2))
	m.Set("a", Int(3))

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("expected order [a b] preserved, got %v", keys)
	}
	v, _ := m.Get("a")
	if i, _ := v.AsInt(); i != 3 {
		t.Errorf("expected updated value 3, got %d", i)
	}
}

func TestOrderedMap_Delete(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", Int(1))
	m.Set("b", Int(2))
	m.Delete("a")

	if m.Has("a") {
		t.Error("expected a deleted")
	}
	if keys := m.Keys(); len(keys) != 1 || keys[0] != "b" {
		t.Errorf("expected only [b] left, got %v", keys)
	}
}

func TestDateTime_TruncatesToSecondUTC(t *testing.T) {
	in := time.Date(2024, 1, 1, 10, 0, 0, 123456789, time.FixedZone("X", 3600))
	v := DateTime(in)
	got, _ := v.AsTime()
	if got.Nanosecond() != 0 {
		t.Errorf("expected nanoseconds truncated, got %d", got.Nanosecond())
	}
	if got.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", got.Location())
	}
}

func TestScalarFromAny_RejectsUnsupportedType(t *testing.T) {
	if _, err := ScalarFromAny(3.14); err == nil {
		t.Error("expected float64 to be rejected")
	}
	if _, err := ScalarFromAny("ok"); err != nil {
		t.Errorf("expected string accepted, got error %v", err)
	}
}
