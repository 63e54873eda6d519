package farm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestQuantities_SingleBundle(t *testing.T) {
	stub, svc := newStubFarm(t)
	stub.route(http.MethodGet, "quantity/standard", `{
		"data": [
			{
				"type": "quantity--standard",
				"id": "q1",
				"attributes": {
					"measure": "weight",
					"value": {"decimal": "12.5", "numerator": 25, "denominator": 2},
					"label": "Carrots"
				},
				"relationships": {
					"units": {"data": {"type": "taxonomy_term--unit", "id": "u1"}}
				}
			}
		],
		"meta": {"count": 7}
	}`)

	list, err := svc.Quantities(context.Background(), "standard", "weight", 10, 0)
	require.NoError(t, err)

	assert.Equal(t, 7, list.Total)
	require.Len(t, list.Quantities, 1)

	q := list.Quantities[0]
	assert.Equal(t, "standard", q.Type)
	assert.Equal(t, "weight", q.Measure)
	require.NotNil(t, q.Value)
	assert.InDelta(t, 12.5, *q.Value, 0.001)
	require.NotNil(t, q.Unit)
	assert.Equal(t, "u1", q.Unit.ID)

	req := stub.lastRequest(t, http.MethodGet, "quantity/standard")
	assert.Equal(t, "weight", req.Query.Get("filter[measure]"))
}

func TestQuantityValue_FractionFallback(t *testing.T) {
	t.Run("decimal preferred", func(t *testing.T) {
		v := quantityValue(gjson.Parse(`{"decimal": "3.25", "numerator": 13, "denominator": 4}`))
		require.NotNil(t, v)
		assert.InDelta(t, 3.25, *v, 0.001)
	})

	t.Run("fraction without decimal", func(t *testing.T) {
		v := quantityValue(gjson.Parse(`{"numerator": 13, "denominator": 4}`))
		require.NotNil(t, v)
		assert.InDelta(t, 3.25, *v, 0.001)
	})

	t.Run("zero denominator", func(t *testing.T) {
		assert.Nil(t, quantityValue(gjson.Parse(`{"numerator": 1, "denominator": 0}`)))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Nil(t, quantityValue(gjson.Result{}))
		assert.Nil(t, quantityValue(gjson.Parse(`null`)))
	})
}

func TestQuantities_FanOutSkipsDisabledBundles(t *testing.T) {
	stub, svc := newStubFarm(t)
	stub.route(http.MethodGet, "quantity/standard", `{"data": [
		{"type": "quantity--standard", "id": "q1", "attributes": {"measure": "count"}}
	]}`)
	// material and test bundles 404.

	list, err := svc.Quantities(context.Background(), "", "", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, list.Returned)
	assert.Equal(t, "q1", list.Quantities[0].ID)
}

func TestQuantities_RejectsUnknownType(t *testing.T) {
	_, svc := newStubFarm(t)

	_, err := svc.Quantities(context.Background(), "imaginary", "", 0, 0)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
