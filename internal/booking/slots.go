package booking

import "time"

// The OPD runs 10:00 AM through 5:55 PM in 5-minute steps.
const (
	openingHour  = 10
	closingHour  = 18
	slotInterval = 5 * time.Minute
	slotCount    = 96
)

// catalog is built once at process start and never mutated. Every date and
// department shares the same day shape.
var (
	catalog      = buildCatalog()
	catalogIndex = buildCatalogIndex(catalog)
)

func buildCatalog() []string {
	slots := make([]string, 0, slotCount)
	t := time.Date(2000, time.January, 1, openingHour, 0, 0, 0, time.UTC)
	end := time.Date(2000, time.January, 1, closingHour, 0, 0, 0, time.UTC)
	for t.Before(end) {
		slots = append(slots, t.Format("3:04 PM"))
		t = t.Add(slotInterval)
	}
	return slots
}

func buildCatalogIndex(slots []string) map[string]struct{} {
	idx := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		idx[s] = struct{}{}
	}
	return idx
}

// AllSlots returns the full ordered slot catalog. The result is a copy, so
// callers can keep or filter it freely.
func AllSlots() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// IsCatalogSlot reports whether s is one of the bookable time labels.
func IsCatalogSlot(s string) bool {
	_, ok := catalogIndex[s]
	return ok
}
