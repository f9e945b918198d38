package booking

import (
	"testing"
	"time"
)

func TestAllSlotsShape(t *testing.T) {
	slots := AllSlots()

	if len(slots) != 96 {
		t.Fatalf("expected 96 slots, got %d", len(slots))
	}
	if slots[0] != "10:00 AM" {
		t.Errorf("first slot = %q, want %q", slots[0], "10:00 AM")
	}
	if slots[len(slots)-1] != "5:55 PM" {
		t.Errorf("last slot = %q, want %q", slots[len(slots)-1], "5:55 PM")
	}
	if slots[12] != "11:00 AM" {
		t.Errorf("slot 12 = %q, want %q", slots[12], "11:00 AM")
	}
}

func TestAllSlotsChronologicalOrder(t *testing.T) {
	slots := AllSlots()

	prev, err := time.Parse("3:04 PM", slots[0])
	if err != nil {
		t.Fatalf("parse slot %q: %v", slots[0], err)
	}
	for _, s := range slots[1:] {
		cur, err := time.Parse("3:04 PM", s)
		if err != nil {
			t.Fatalf("parse slot %q: %v", s, err)
		}
		if !cur.After(prev) {
			t.Fatalf("slot %q not after previous %q", s, prev.Format("3:04 PM"))
		}
		if cur.Sub(prev) != 5*time.Minute {
			t.Fatalf("gap before %q is %s, want 5m", s, cur.Sub(prev))
		}
		prev = cur
	}
}

func TestAllSlotsReturnsCopy(t *testing.T) {
	first := AllSlots()
	first[0] = "mutated"

	if got := AllSlots()[0]; got != "10:00 AM" {
		t.Errorf("catalog mutated through returned slice: first slot = %q", got)
	}
}

func TestIsCatalogSlot(t *testing.T) {
	cases := []struct {
		slot string
		want bool
	}{
		{"10:00 AM", true},
		{"5:55 PM", true},
		{"1:05 PM", true},
		{"10:03 AM", false},
		{"6:00 PM", false},
		{"9:55 AM", false},
		{"", false},
		{"10:00 am", false},
	}

	for _, c := range cases {
		if got := IsCatalogSlot(c.slot); got != c.want {
			t.Errorf("IsCatalogSlot(%q) = %v, want %v", c.slot, got, c.want)
		}
	}
}
