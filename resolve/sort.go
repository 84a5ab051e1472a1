package resolve

import (
	"sort"
	"strings"

	"github.com/openactive/models-lib/vocab"
)

// FirstOrder is the order of the first sorted field. Lower slots are reserved
// for well-known names emitted by renderers themselves.
const FirstOrder = 6

// ExtensionOrderOffset is added to every extension field's order so extension
// fields always serialize after core fields.
const ExtensionOrderOffset = 1000

// knownFieldOrder pins well-known names to the top, in this order.
var knownFieldOrder = map[string]int{
	"context":     0,
	"type":        1,
	"id":          2,
	"identifier":  3,
	"title":       4,
	"name":        5,
	"description": 6,
}

// sortKey lowercases a field name for comparison. A leading '@' is ignored so
// "@context" and "@id" rank with their well-known names, and endDate sorts
// immediately after startDate.
func sortKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, "@"))
	if key == "enddate" {
		return "startdate1"
	}
	return key
}

// Less orders two fields: well-known names first, then core fields before
// extension fields, then case-insensitive name. Exact name breaks ties so the
// order is total.
func Less(a, b *vocab.Field) bool {
	ka, kb := sortKey(a.Name), sortKey(b.Name)
	ia, knownA := knownFieldOrder[ka]
	ib, knownB := knownFieldOrder[kb]

	switch {
	case knownA && knownB:
		if ia != ib {
			return ia < ib
		}
	case knownA:
		return true
	case knownB:
		return false
	}

	extA, extB := a.ExtensionPrefix != "", b.ExtensionPrefix != ""
	if extA != extB {
		return extB
	}
	if ka != kb {
		return ka < kb
	}
	return a.Name < b.Name
}

// Sort orders fields in place.
func Sort(fields []*vocab.Field) {
	sort.SliceStable(fields, func(i, j int) bool {
		return Less(fields[i], fields[j])
	})
}

// AssignOrder numbers sorted fields from FirstOrder, offsetting extension fields.
func AssignOrder(fields []*vocab.Field) {
	for i, f := range fields {
		f.Order = i + FirstOrder
		if f.ExtensionPrefix != "" {
			f.Order += ExtensionOrderOffset
		}
	}
}
