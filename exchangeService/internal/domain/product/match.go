package product

import "time"

// Matches reports whether p satisfies every Specific dimension of f.
// A dimension the product leaves empty passes.
func Matches(p Product, f Filter) bool {
	if f.DeviceTypeFilter == Specific && !intersects(p.DeviceType, f.DeviceType, within) {
		return false
	}

	if f.LocationFilter == Specific && !intersects(p.Location, f.Location, within) {
		return false
	}

	if f.DeviceVintageFilter == Specific && p.DeviceVintage != nil && f.DeviceVintage != nil &&
		!f.DeviceVintage.satisfiedBy(p.DeviceVintage.Year) {
		return false
	}

	if f.GenerationTimeFilter == Specific &&
		!overlaps(p.GenerationFrom, p.GenerationTo, f.GenerationFrom, f.GenerationTo) {
		return false
	}

	if f.GridOperatorFilter == Specific && !intersects(p.GridOperator, f.GridOperator, equal) {
		return false
	}

	return true
}

// FilterOf turns a bid's product into the filter asks are matched against.
// Every dimension the product sets becomes Specific.
func FilterOf(p Product) Filter {
	var filter Filter

	if len(p.DeviceType) > 0 {
		filter.DeviceTypeFilter = Specific
		filter.DeviceType = p.DeviceType
	}
	if len(p.Location) > 0 {
		filter.LocationFilter = Specific
		filter.Location = p.Location
	}
	if p.DeviceVintage != nil {
		filter.DeviceVintageFilter = Specific
		filter.DeviceVintage = p.DeviceVintage
	}
	if p.GenerationFrom != nil || p.GenerationTo != nil {
		filter.GenerationTimeFilter = Specific
		filter.GenerationFrom = p.GenerationFrom
		filter.GenerationTo = p.GenerationTo
	}
	if len(p.GridOperator) > 0 {
		filter.GridOperatorFilter = Specific
		filter.GridOperator = p.GridOperator
	}

	return filter
}

func equal(value, scope string) bool {
	return value == scope
}

func intersects(values, wanted []string, match func(value, scope string) bool) bool {
	if len(values) == 0 {
		return true
	}

	for _, value := range values {
		for _, scope := range wanted {
			if match(value, scope) {
				return true
			}
		}
	}

	return false
}

// overlaps treats nil bounds as open and both intervals as closed.
func overlaps(fromA, toA, fromB, toB *time.Time) bool {
	if fromA == nil && toA == nil {
		return true
	}
	if fromA != nil && toB != nil && fromA.After(*toB) {
		return false
	}
	if fromB != nil && toA != nil && fromB.After(*toA) {
		return false
	}
	return true
}
