package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
)

// Toggle is a filter mode as sent by clients: "All", "Specific" or the
// numeric 0 and 1. Anything else is kept verbatim so validation can reject it.
type Toggle string

func (t *Toggle) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*t = Toggle(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*t = Toggle(number.String())
	return nil
}

type Vintage struct {
	Year     int    `json:"year"`
	Operator string `json:"operator,omitempty"`
}

type ProductFilter struct {
	DeviceTypeFilter     Toggle `json:"deviceTypeFilter"`
	LocationFilter       Toggle `json:"locationFilter"`
	DeviceVintageFilter  Toggle `json:"deviceVintageFilter"`
	GenerationTimeFilter Toggle `json:"generationTimeFilter"`
	GridOperatorFilter   Toggle `json:"gridOperatorFilter"`

	DeviceType     []string   `json:"deviceType,omitempty"`
	Location       []string   `json:"location,omitempty"`
	DeviceVintage  *Vintage   `json:"deviceVintage,omitempty"`
	GenerationFrom *time.Time `json:"generationFrom,omitempty"`
	GenerationTo   *time.Time `json:"generationTo,omitempty"`
	GridOperator   []string   `json:"gridOperator,omitempty"`
}

// Validate converts the request into a product filter. It fails with a
// *product.ValidationError.
func (f ProductFilter) Validate() (product.Filter, error) {
	return product.Validate(product.FilterRequest{
		DeviceTypeFilter:     string(f.DeviceTypeFilter),
		LocationFilter:       string(f.LocationFilter),
		DeviceVintageFilter:  string(f.DeviceVintageFilter),
		GenerationTimeFilter: string(f.GenerationTimeFilter),
		GridOperatorFilter:   string(f.GridOperatorFilter),
		DeviceType:           f.DeviceType,
		Location:             f.Location,
		DeviceVintage:        f.DeviceVintage.toDomain(),
		GenerationFrom:       f.GenerationFrom,
		GenerationTo:         f.GenerationTo,
		GridOperator:         f.GridOperator,
	})
}

func (v *Vintage) toDomain() *product.Vintage {
	if v == nil {
		return nil
	}
	return &product.Vintage{Year: v.Year, Operator: product.Operator(v.Operator)}
}

type Product struct {
	DeviceType     []string   `json:"deviceType,omitempty"`
	Location       []string   `json:"location,omitempty"`
	DeviceVintage  *Vintage   `json:"deviceVintage,omitempty"`
	GenerationFrom *time.Time `json:"generationFrom,omitempty"`
	GenerationTo   *time.Time `json:"generationTo,omitempty"`
	GridOperator   []string   `json:"gridOperator,omitempty"`
}

func (p Product) ToDomain() product.Product {
	return product.Product{
		DeviceType:     p.DeviceType,
		Location:       p.Location,
		DeviceVintage:  p.DeviceVintage.toDomain(),
		GenerationFrom: p.GenerationFrom,
		GenerationTo:   p.GenerationTo,
		GridOperator:   p.GridOperator,
	}
}

func ProductFromDomain(p product.Product) Product {
	return Product{
		DeviceType:     p.DeviceType,
		Location:       p.Location,
		DeviceVintage:  vintageFromDomain(p.DeviceVintage),
		GenerationFrom: p.GenerationFrom,
		GenerationTo:   p.GenerationTo,
		GridOperator:   p.GridOperator,
	}
}

func vintageFromDomain(v *product.Vintage) *Vintage {
	if v == nil {
		return nil
	}
	return &Vintage{Year: v.Year, Operator: string(v.Operator)}
}
