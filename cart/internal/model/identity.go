package model

// SameConfiguration reports whether two lines describe the same purchasable
// configuration: same product, same variant (both-empty counts as equal),
// and pairwise-equal specification and color selections. The collections
// are compared by position and length, so the same options submitted in a
// different order are a different configuration.
func SameConfiguration(a, b CartLine) bool {
	if a.ProductID != b.ProductID {
		return false
	}
	if a.Variant != b.Variant {
		return false
	}
	if len(a.Specifications) != len(b.Specifications) {
		return false
	}
	for i := range a.Specifications {
		if a.Specifications[i].SpecificationID != b.Specifications[i].SpecificationID {
			return false
		}
		if a.Specifications[i].ValueID != b.Specifications[i].ValueID {
			return false
		}
	}
	if len(a.Colors) != len(b.Colors) {
		return false
	}
	for i := range a.Colors {
		if a.Colors[i] != b.Colors[i] {
			return false
		}
	}
	return true
}
