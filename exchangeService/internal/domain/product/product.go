package product

import (
	"strings"
	"time"
)

// Product describes an energy certificate lot. Nil or empty fields leave the
// dimension unconstrained.
type Product struct {
	DeviceType     []string   `json:"deviceType,omitempty"`
	Location       []string   `json:"location,omitempty"`
	DeviceVintage  *Vintage   `json:"deviceVintage,omitempty"`
	GenerationFrom *time.Time `json:"generationFrom,omitempty"`
	GenerationTo   *time.Time `json:"generationTo,omitempty"`
	GridOperator   []string   `json:"gridOperator,omitempty"`
}

type Operator string

const (
	OperatorEqual          Operator = "="
	OperatorGreater        Operator = ">"
	OperatorGreaterOrEqual Operator = ">="
	OperatorLess           Operator = "<"
	OperatorLessOrEqual    Operator = "<="
)

func (o Operator) valid() bool {
	switch o {
	case "", OperatorEqual, OperatorGreater, OperatorGreaterOrEqual, OperatorLess, OperatorLessOrEqual:
		return true
	}
	return false
}

// Vintage is a commissioning year. Operator defaults to equality.
type Vintage struct {
	Year     int      `json:"year"`
	Operator Operator `json:"operator,omitempty"`
}

// satisfiedBy reports whether year <op> v.Year holds.
func (v Vintage) satisfiedBy(year int) bool {
	switch v.Operator {
	case OperatorGreater:
		return year > v.Year
	case OperatorGreaterOrEqual:
		return year >= v.Year
	case OperatorLess:
		return year < v.Year
	case OperatorLessOrEqual:
		return year <= v.Year
	default:
		return year == v.Year
	}
}

// Hierarchical values use ';' between levels, e.g. "Solar;Photovoltaic".
const levelSeparator = ";"

var deviceTypes = map[string]struct{}{
	"Solar":   {},
	"Wind":    {},
	"Hydro":   {},
	"Marine":  {},
	"Thermal": {},
	"Solid":   {},
	"Liquid":  {},
	"Gaseous": {},
}

// DeviceTypes lists the recognized top-level device types.
func DeviceTypes() []string {
	return []string{"Solar", "Wind", "Hydro", "Marine", "Thermal", "Solid", "Liquid", "Gaseous"}
}

func IsDeviceType(value string) bool {
	root, _, _ := strings.Cut(value, levelSeparator)
	if _, found := deviceTypes[root]; !found {
		return false
	}

	for _, level := range strings.Split(value, levelSeparator) {
		if strings.TrimSpace(level) == "" {
			return false
		}
	}

	return true
}

// within reports whether value equals scope or is nested below it.
func within(value, scope string) bool {
	return value == scope || strings.HasPrefix(value, scope+levelSeparator)
}
