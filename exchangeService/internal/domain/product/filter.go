package product

import (
	"fmt"
	"strings"
	"time"
)

type Mode uint8

const (
	All Mode = iota
	Specific
)

func (m Mode) String() string {
	if m == Specific {
		return "Specific"
	}
	return "All"
}

// ParseMode accepts the names and the numeric forms. An empty token means All.
func ParseMode(token string) (Mode, bool) {
	switch strings.TrimSpace(token) {
	case "", "0", "All":
		return All, true
	case "1", "Specific":
		return Specific, true
	}
	return All, false
}

// Filter is a validated product filter.
type Filter struct {
	DeviceTypeFilter     Mode
	LocationFilter       Mode
	DeviceVintageFilter  Mode
	GenerationTimeFilter Mode
	GridOperatorFilter   Mode

	DeviceType     []string
	Location       []string
	DeviceVintage  *Vintage
	GenerationFrom *time.Time
	GenerationTo   *time.Time
	GridOperator   []string
}

// MatchAll is the filter with every dimension set to All.
func MatchAll() Filter {
	return Filter{}
}

// FilterRequest is a filter as received from a client, before validation.
type FilterRequest struct {
	DeviceTypeFilter     string
	LocationFilter       string
	DeviceVintageFilter  string
	GenerationTimeFilter string
	GridOperatorFilter   string

	DeviceType     []string
	Location       []string
	DeviceVintage  *Vintage
	GenerationFrom *time.Time
	GenerationTo   *time.Time
	GridOperator   []string
}

const (
	DimensionEnum           = "enum"
	DimensionDeviceType     = "deviceType"
	DimensionLocation       = "location"
	DimensionDeviceVintage  = "deviceVintage"
	DimensionGenerationTime = "generationTime"
	DimensionGridOperator   = "gridOperator"
)

type ValidationError struct {
	Dimension string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product filter: %s: %s", e.Dimension, e.Reason)
}

func invalid(dimension, reason string) *ValidationError {
	return &ValidationError{Dimension: dimension, Reason: reason}
}

// Validate normalizes a request into a Filter. Values sent for a dimension
// left at All are dropped.
func Validate(request FilterRequest) (Filter, error) {
	var (
		filter Filter
		ok     bool
	)

	toggles := []struct {
		token string
		mode  *Mode
	}{
		{request.DeviceTypeFilter, &filter.DeviceTypeFilter},
		{request.LocationFilter, &filter.LocationFilter},
		{request.DeviceVintageFilter, &filter.DeviceVintageFilter},
		{request.GenerationTimeFilter, &filter.GenerationTimeFilter},
		{request.GridOperatorFilter, &filter.GridOperatorFilter},
	}
	for _, toggle := range toggles {
		if *toggle.mode, ok = ParseMode(toggle.token); !ok {
			return Filter{}, invalid(DimensionEnum, "unrecognized")
		}
	}

	if filter.DeviceTypeFilter == Specific {
		if len(request.DeviceType) == 0 {
			return Filter{}, invalid(DimensionDeviceType, "required")
		}
		for _, deviceType := range request.DeviceType {
			if !IsDeviceType(deviceType) {
				return Filter{}, invalid(DimensionDeviceType, fmt.Sprintf("unknown device type %q", deviceType))
			}
		}
		filter.DeviceType = clone(request.DeviceType)
	}

	if filter.LocationFilter == Specific {
		if !nonBlank(request.Location) {
			return Filter{}, invalid(DimensionLocation, "required")
		}
		filter.Location = clone(request.Location)
	}

	if filter.DeviceVintageFilter == Specific {
		if request.DeviceVintage == nil || request.DeviceVintage.Year <= 0 {
			return Filter{}, invalid(DimensionDeviceVintage, "required")
		}
		if !request.DeviceVintage.Operator.valid() {
			return Filter{}, invalid(DimensionDeviceVintage, "unknown operator")
		}
		vintage := *request.DeviceVintage
		filter.DeviceVintage = &vintage
	}

	if filter.GenerationTimeFilter == Specific {
		if request.GenerationFrom == nil || request.GenerationTo == nil {
			return Filter{}, invalid(DimensionGenerationTime, "generationFrom and generationTo are required")
		}
		if request.GenerationFrom.After(*request.GenerationTo) {
			return Filter{}, invalid(DimensionGenerationTime, "generationFrom is after generationTo")
		}
		from, to := *request.GenerationFrom, *request.GenerationTo
		filter.GenerationFrom, filter.GenerationTo = &from, &to
	}

	if filter.GridOperatorFilter == Specific {
		if !nonBlank(request.GridOperator) {
			return Filter{}, invalid(DimensionGridOperator, "required")
		}
		filter.GridOperator = clone(request.GridOperator)
	}

	return filter, nil
}

func nonBlank(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return false
		}
	}
	return true
}

func clone(values []string) []string {
	return append([]string(nil), values...)
}

// ValidateProduct checks the descriptor a bid is placed with. Absent fields
// are fine; present ones must make sense.
func ValidateProduct(p Product) error {
	for _, deviceType := range p.DeviceType {
		if !IsDeviceType(deviceType) {
			return invalid(DimensionDeviceType, fmt.Sprintf("unknown device type %q", deviceType))
		}
	}
	if len(p.Location) > 0 && !nonBlank(p.Location) {
		return invalid(DimensionLocation, "blank location")
	}
	if p.DeviceVintage != nil {
		if p.DeviceVintage.Year <= 0 {
			return invalid(DimensionDeviceVintage, "year must be positive")
		}
		if !p.DeviceVintage.Operator.valid() {
			return invalid(DimensionDeviceVintage, "unknown operator")
		}
	}
	if p.GenerationFrom != nil && p.GenerationTo != nil && p.GenerationFrom.After(*p.GenerationTo) {
		return invalid(DimensionGenerationTime, "generationFrom is after generationTo")
	}
	if len(p.GridOperator) > 0 && !nonBlank(p.GridOperator) {
		return invalid(DimensionGridOperator, "blank grid operator")
	}
	return nil
}
