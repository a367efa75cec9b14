// Package shipping quotes parcel delivery costs from a fixed courier table.
//
// The rates are a stand-in for a real carrier API: cost depends only on the
// courier, the service and the parcel weight, never on origin or destination.
package shipping

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"decor-store/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var referenceYAML []byte

// DefaultWeightGrams is the parcel weight quoted at checkout and used to
// re-check the shipping cost of submitted orders.
const DefaultWeightGrams = 1000

// Estimator answers shipping reference and quote queries.
type Estimator interface {
	// Quote returns the services offered by courier for a parcel of the given
	// weight in grams. An unknown courier yields an empty list.
	Quote(origin, destination string, weightGrams float64, courier string) []ServiceOption
	Couriers() []string
	Provinces() []model.Province
	// Cities returns the destinations of a province, or an empty list when the
	// province is unknown.
	Cities(provinceID string) []model.City
	// ServiceCost prices one service of courier; ok is false when it is not offered.
	ServiceCost(courier, service string, weightGrams float64) (cost float64, ok bool)
}

// ServiceOption is a priced delivery service.
type ServiceOption struct {
	Service     string
	Description string
	Cost        Cost
}

// Cost is the price of a service and its delivery estimate in days, such as "2-3".
type Cost struct {
	Value float64
	ETD   string
}

type serviceRate struct {
	Service          string  `yaml:"service"`
	Description      string  `yaml:"description"`
	ETD              string  `yaml:"etd"`
	BaseMultiplier   float64 `yaml:"base_multiplier"`
	WeightMultiplier float64 `yaml:"weight_multiplier"`
}

type courierRates struct {
	Code     string        `yaml:"code"`
	Services []serviceRate `yaml:"services"`
}

type reference struct {
	BaseCost  float64          `yaml:"base_cost"`
	CostPerKg float64          `yaml:"cost_per_kg"`
	Couriers  []courierRates   `yaml:"couriers"`
	Provinces []model.Province `yaml:"provinces"`
	Cities    []model.City     `yaml:"cities"`
}

// Table is an Estimator backed by an in-memory reference table.
type Table struct {
	ref      reference
	couriers map[string]courierRates
	cities   map[string][]model.City
}

// Load builds a Table from the embedded reference data.
func Load() (*Table, error) {
	return Parse(referenceYAML)
}

// MustLoad is like Load but panics on error.
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Parse builds a Table from YAML reference data.
func Parse(data []byte) (*Table, error) {
	var ref reference
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("failed to parse shipping reference: %w", err)
	}
	if ref.BaseCost < 0 || ref.CostPerKg < 0 {
		return nil, fmt.Errorf("shipping reference costs must not be negative")
	}

	t := &Table{
		ref:      ref,
		couriers: make(map[string]courierRates, len(ref.Couriers)),
		cities:   make(map[string][]model.City),
	}
	for _, c := range ref.Couriers {
		code := normalize(c.Code)
		if code == "" {
			return nil, fmt.Errorf("courier without code in shipping reference")
		}
		if _, dup := t.couriers[code]; dup {
			return nil, fmt.Errorf("duplicate courier %q in shipping reference", code)
		}
		t.couriers[code] = c
	}
	for _, city := range ref.Cities {
		t.cities[city.ProvinceID] = append(t.cities[city.ProvinceID], city)
	}

	return t, nil
}

// Quote prices every service of courier. Negative weights are treated as zero.
func (t *Table) Quote(_, _ string, weightGrams float64, courier string) []ServiceOption {
	rates, ok := t.couriers[normalize(courier)]
	if !ok {
		return []ServiceOption{}
	}

	weightCost := max(weightGrams, 0) / 1000 * t.ref.CostPerKg

	options := make([]ServiceOption, 0, len(rates.Services))
	for _, s := range rates.Services {
		options = append(options, ServiceOption{
			Service:     s.Service,
			Description: s.Description,
			Cost: Cost{
				Value: t.ref.BaseCost*s.BaseMultiplier + weightCost*s.WeightMultiplier,
				ETD:   s.ETD,
			},
		})
	}
	return options
}

// Couriers returns the supported courier codes in table order.
func (t *Table) Couriers() []string {
	codes := make([]string, 0, len(t.ref.Couriers))
	for _, c := range t.ref.Couriers {
		codes = append(codes, normalize(c.Code))
	}
	return codes
}

func (t *Table) Provinces() []model.Province {
	return slices.Clone(t.ref.Provinces)
}

func (t *Table) Cities(provinceID string) []model.City {
	cities := t.cities[strings.TrimSpace(provinceID)]
	if cities == nil {
		return []model.City{}
	}
	return slices.Clone(cities)
}

// ServiceCost prices one service of courier. ok is false when courier does
// not offer service.
func (t *Table) ServiceCost(courier, service string, weightGrams float64) (cost float64, ok bool) {
	for _, o := range t.Quote("", "", weightGrams, courier) {
		if o.Service == service {
			return o.Cost.Value, true
		}
	}
	return 0, false
}

// CourierCosts converts quoted options to the response shape of the cost endpoint.
func CourierCosts(courier string, options []ServiceOption) model.CourierCosts {
	code := normalize(courier)
	out := model.CourierCosts{
		Code:  code,
		Name:  strings.ToUpper(code),
		Costs: make([]model.ServiceCost, 0, len(options)),
	}
	for _, o := range options {
		out.Costs = append(out.Costs, model.ServiceCost{
			Service:     o.Service,
			Description: o.Description,
			Cost:        []model.CostValue{{Value: o.Cost.Value, ETD: o.Cost.ETD}},
		})
	}
	return out
}

// ServiceOptionsFrom is the inverse of CourierCosts.
func ServiceOptionsFrom(c model.CourierCosts) []ServiceOption {
	options := make([]ServiceOption, 0, len(c.Costs))
	for _, sc := range c.Costs {
		opt := ServiceOption{Service: sc.Service, Description: sc.Description}
		if len(sc.Cost) > 0 {
			opt.Cost = Cost{Value: sc.Cost[0].Value, ETD: sc.Cost[0].ETD}
		}
		options = append(options, opt)
	}
	return options
}

func normalize(courier string) string {
	return strings.ToLower(strings.TrimSpace(courier))
}
