package domain

import "net/url"

type FilterKind string

const (
	FilterNone       FilterKind = "none"
	FilterYear       FilterKind = "year"
	FilterMake       FilterKind = "make"
	FilterModel      FilterKind = "model"
	FilterMaxMileage FilterKind = "maxMileage"
	FilterMaxPrice   FilterKind = "maxPrice"
)

// filterPrecedence lists request keys in the order they win when several
// are present at once.
var filterPrecedence = []struct {
	key  string
	kind FilterKind
}{
	{"year", FilterYear},
	{"make", FilterMake},
	{"model", FilterModel},
	{"mileage", FilterMaxMileage},
	{"price", FilterMaxPrice},
}

// InventoryQuery carries at most one active filter.
type InventoryQuery struct {
	DealerID string
	Kind     FilterKind
	Value    string
}

// ParseInventoryQuery applies the first filter key present in values and
// ignores the rest. A key counts as present even with an empty value.
func ParseInventoryQuery(dealerID string, values url.Values) (InventoryQuery, error) {
	id, err := NormalizeDealerID(dealerID)
	if err != nil {
		return InventoryQuery{}, err
	}
	q := InventoryQuery{DealerID: id, Kind: FilterNone}
	for _, f := range filterPrecedence {
		if vs, ok := values[f.key]; ok {
			q.Kind = f.kind
			if len(vs) > 0 {
				q.Value = vs[0]
			}
			break
		}
	}
	return q, nil
}
