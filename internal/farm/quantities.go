package farm

import (
	"context"
	"net/url"

	"github.com/alexjbarnes/farmos-mcp/internal/farmos"
	"github.com/tidwall/gjson"
)

// QuantityTypes lists the quantity bundles in farmOS 3.x.
var QuantityTypes = []string{"standard", "material", "test"}

// Quantity is a flattened quantity record: a measured value attached to
// a log, optionally carrying an inventory adjustment.
type Quantity struct {
	ID                  string       `json:"id"`
	Type                string       `json:"type"`
	Measure             string       `json:"measure"`
	Value               *float64     `json:"value"`
	Label               string       `json:"label"`
	Unit                *farmos.Ref  `json:"unit"`
	InventoryAdjustment string       `json:"inventory_adjustment,omitempty"`
	MaterialType        []farmos.Ref `json:"material_type,omitempty"`
	TestMethod          *farmos.Ref  `json:"test_method,omitempty"`
}

// QuantityList is the result of a quantity listing query.
type QuantityList struct {
	Total      int        `json:"total,omitempty"`
	Returned   int        `json:"returned"`
	Quantities []Quantity `json:"quantities"`
}

// quantityValue parses a Drupal fraction field, preferring the decimal
// representation and falling back to numerator/denominator.
func quantityValue(v gjson.Result) *float64 {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}

	if d := v.Get("decimal"); d.Exists() && d.Type != gjson.Null {
		f := d.Float()
		return &f
	}

	num := v.Get("numerator")
	den := v.Get("denominator")

	if num.Exists() && den.Exists() && den.Float() != 0 {
		f := num.Float() / den.Float()
		return &f
	}

	return nil
}

func singleRef(relData gjson.Result) *farmos.Ref {
	refs := farmos.Refs(relData)
	if len(refs) == 0 {
		return nil
	}

	return &refs[0]
}

func normalizeQuantity(res gjson.Result) Quantity {
	attrs := res.Get("attributes")

	return Quantity{
		ID:                  res.Get("id").Str,
		Type:                farmos.Bundle(res.Get("type").Str),
		Measure:             attrs.Get("measure").Str,
		Value:               quantityValue(attrs.Get("value")),
		Label:               attrs.Get("label").Str,
		Unit:                singleRef(res.Get("relationships.units.data")),
		InventoryAdjustment: attrs.Get("inventory_adjustment").Str,
		MaterialType:        farmos.Refs(res.Get("relationships.material_type.data")),
		TestMethod:          singleRef(res.Get("relationships.test_method.data")),
	}
}

// Quantities lists quantity entities, optionally filtered by measure.
// With no type set it fans out across all three bundles.
func (s *Service) Quantities(ctx context.Context, quantityType, measure string, limit, offset int) (*QuantityList, error) {
	if err := validateChoice("quantity_type", quantityType, QuantityTypes); err != nil {
		return nil, err
	}

	lim := clampLimit(limit, 50)

	q := url.Values{}

	if measure != "" {
		q.Set("filter[measure]", measure)
	}

	if quantityType != "" {
		pageParams(q, lim, offset)

		doc, err := s.client.Get(ctx, "quantity/"+quantityType, q)
		if err != nil {
			return nil, err
		}

		parsed := gjson.ParseBytes(doc)

		var quantities []Quantity
		for _, r := range parsed.Get("data").Array() {
			quantities = append(quantities, normalizeQuantity(r))
		}

		total := len(quantities)
		if c := parsed.Get("meta.count"); c.Exists() {
			total = int(c.Int())
		}

		return &QuantityList{Total: total, Returned: len(quantities), Quantities: quantities}, nil
	}

	pageParams(q, lim, 0)

	var quantities []Quantity

	for _, t := range QuantityTypes {
		doc, err := s.client.Get(ctx, "quantity/"+t, q)
		if err != nil {
			if skippableBundle(err) {
				continue
			}

			return nil, err
		}

		for _, r := range gjson.ParseBytes(doc).Get("data").Array() {
			quantities = append(quantities, normalizeQuantity(r))
		}
	}

	if len(quantities) > lim {
		quantities = quantities[:lim]
	}

	return &QuantityList{Returned: len(quantities), Quantities: quantities}, nil
}
