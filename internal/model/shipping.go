package model

// Province is an entry of the shipping reference table.
type Province struct {
	ProvinceID string `json:"province_id" yaml:"province_id"`
	Province   string `json:"province" yaml:"province"`
}

// City is a destination inside a province.
type City struct {
	CityID     string `json:"city_id" yaml:"city_id"`
	ProvinceID string `json:"province_id" yaml:"province_id"`
	Province   string `json:"province" yaml:"province"`
	Type       string `json:"type" yaml:"type"`
	CityName   string `json:"city_name" yaml:"city_name"`
	PostalCode string `json:"postal_code" yaml:"postal_code"`
}

// ShippingCostRequest is the payload of POST /api/shipping/cost.
type ShippingCostRequest struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Weight      float64 `json:"weight" validate:"gte=0"`
	Courier     string  `json:"courier"`
}

// CourierCosts is one courier block of the shipping cost response.
type CourierCosts struct {
	Code  string        `json:"code"`
	Name  string        `json:"name"`
	Costs []ServiceCost `json:"costs"`
}

// ServiceCost is a priced service of a courier.
type ServiceCost struct {
	Service     string      `json:"service"`
	Description string      `json:"description"`
	Cost        []CostValue `json:"cost"`
}

// CostValue is the price and delivery estimate of a service.
type CostValue struct {
	Value float64 `json:"value"`
	ETD   string  `json:"etd"`
	Note  string  `json:"note"`
}
