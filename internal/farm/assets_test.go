package farm

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/alexjbarnes/farmos-mcp/internal/farmos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestAssets_SingleBundle(t *testing.T) {
	stub, svc := newStubFarm(t)
	stub.route(http.MethodGet, "asset/animal", `{
		"data": [
			{
				"type": "asset--animal",
				"id": "a1",
				"attributes": {
					"name": "Dolly",
					"status": "active",
					"sex": "F",
					"nicknames": ["Dol"],
					"is_sterile": false,
					"birthdate": 1577836800
				},
				"relationships": {
					"animal_type": {"data": {"type": "taxonomy_term--animal_type", "id": "t1"}}
				}
			}
		],
		"meta": {"count": 12}
	}`)

	list, err := svc.Assets(context.Background(), AssetsQuery{
		Type:   "animal",
		Status: "active",
		Name:   "Dolly",
		Limit:  5,
	})
	require.NoError(t, err)

	assert.Equal(t, 12, list.Total)
	require.Len(t, list.Assets, 1)

	a := list.Assets[0]
	assert.Equal(t, "animal", a.Type)
	assert.Equal(t, "F", a.Sex)
	assert.Equal(t, []string{"Dol"}, a.Nicknames)
	require.NotNil(t, a.IsSterile)
	assert.False(t, *a.IsSterile)
	require.NotNil(t, a.Birthdate)
	assert.Equal(t, "2020-01-01T00:00:00Z", *a.Birthdate)
	assert.Equal(t, []farmos.Ref{{ID: "t1", Type: "animal_type"}}, a.AnimalType)

	req := stub.lastRequest(t, http.MethodGet, "asset/animal")
	assert.Equal(t, "name", req.Query.Get("sort"))
	assert.Equal(t, "active", req.Query.Get("filter[status]"))
	assert.Equal(t, "Dolly", req.Query.Get("filter[name]"))
	assert.Equal(t, "5", req.Query.Get("page[limit]"))
}

func TestAssets_FanOutSortsByNameCaseInsensitive(t *testing.T) {
	stub, svc := newStubFarm(t)
	stub.route(http.MethodGet, "asset/animal", `{"data": [
		{"type": "asset--animal", "id": "a1", "attributes": {"name": "zebra"}}
	]}`)
	stub.route(http.MethodGet, "asset/structure", `{"data": [
		{"type": "asset--structure", "id": "a2", "attributes": {"name": "Barn", "structure_type": "building"}}
	]}`)

	list, err := svc.Assets(context.Background(), AssetsQuery{})
	require.NoError(t, err)

	require.Len(t, list.Assets, 2)
	assert.Equal(t, "Barn", list.Assets[0].Name)
	assert.Equal(t, "building", list.Assets[0].StructureType)
	assert.Equal(t, "zebra", list.Assets[1].Name)
}

func TestAssets_RejectsUnknownType(t *testing.T) {
	stub, svc := newStubFarm(t)

	_, err := svc.Assets(context.Background(), AssetsQuery{Type: "vehicle"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, stub.requestCount())
}

// Instances without the full sideload set reject the include parameter;
// the lookup must retry the same bundle without it before giving up.
func TestAsset_FallsBackWhenIncludeRejected(t *testing.T) {
	stub, svc := newStubFarm(t)
	stub.handle(http.MethodGet, "asset/equipment/a1", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("include") != "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"errors":[{"status":"400","title":"Invalid include"}]}`)

			return
		}

		fmt.Fprint(w, `{"data": {
			"type": "asset--equipment",
			"id": "a1",
			"attributes": {"name": "Tractor", "manufacturer": "Fendt", "model": "211", "serial_number": "X99"}
		}}`)
	})

	asset, err := svc.Asset(context.Background(), "a1", "equipment")
	require.NoError(t, err)

	assert.Equal(t, "Tractor", asset.Name)
	assert.Equal(t, "Fendt", asset.Manufacturer)
	assert.Equal(t, "211", asset.Model)
	assert.Equal(t, "X99", asset.SerialNumber)
}

func TestAsset_SideloadsRelatedNames(t *testing.T) {
	stub, svc := newStubFarm(t)
	stub.route(http.MethodGet, "asset/plant/a1", `{
		"data": {
			"type": "asset--plant",
			"id": "a1",
			"attributes": {"name": "Carrots bed 3", "status": "active"},
			"relationships": {
				"plant_type": {"data": [{"type": "taxonomy_term--plant_type", "id": "t1"}]},
				"parent": {"data": [{"type": "asset--land", "id": "a2"}]}
			}
		},
		"included": [
			{"type": "taxonomy_term--plant_type", "id": "t1", "attributes": {"name": "Carrot"}},
			{"type": "asset--land", "id": "a2", "attributes": {"name": "North Field"}}
		]
	}`)

	asset, err := svc.Asset(context.Background(), "a1", "plant")
	require.NoError(t, err)

	assert.Equal(t, []farmos.Ref{{ID: "t1", Type: "plant_type", Name: "Carrot"}}, asset.PlantType)
	assert.Equal(t, []farmos.Ref{{ID: "a2", Type: "land", Name: "North Field"}}, asset.Parents)

	req := stub.lastRequest(t, http.MethodGet, "asset/plant/a1")
	assert.Equal(t, assetInclude, req.Query.Get("include"))
}

func TestAsset_NotFound(t *testing.T) {
	_, svc := newStubFarm(t)

	_, err := svc.Asset(context.Background(), "nope", "")

	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "asset", nferr.Entity)
}

func TestCreateAsset_AnimalPayload(t *testing.T) {
	stub, svc := newStubFarm(t)
	stub.route(http.MethodPost, "asset/animal", `{
		"data": {"type": "asset--animal", "id": "new1", "attributes": {"name": "Dolly", "status": "active"}}
	}`)

	sterile := false

	asset, err := svc.CreateAsset(context.Background(), CreateAssetInput{
		Type:         "animal",
		Name:         "Dolly",
		Sex:          "F",
		Birthdate:    "2020-01-01",
		IsSterile:    &sterile,
		AnimalTypeID: "t1",
	})
	require.NoError(t, err)
	assert.Equal(t, "new1", asset.ID)

	req := stub.lastRequest(t, http.MethodPost, "asset/animal")
	data := gjson.ParseBytes(req.Body).Get("data")

	assert.Equal(t, "asset--animal", data.Get("type").Str)
	assert.Equal(t, "active", data.Get("attributes.status").Str, "status defaults to active")
	assert.Equal(t, "F", data.Get("attributes.sex").Str)
	assert.Equal(t, int64(1577836800), data.Get("attributes.birthdate").Int(), "birthdate stored as epoch")
	assert.False(t, data.Get("attributes.is_sterile").Bool())

	ref := data.Get("relationships.animal_type.data")
	assert.Equal(t, "taxonomy_term--animal_type", ref.Get("type").Str)
	assert.Equal(t, "t1", ref.Get("id").Str)
}

func TestCreateAsset_ResolvesParentBundle(t *testing.T) {
	stub, svc := newStubFarm(t)
	stub.route(http.MethodGet, "asset/land/p1", `{"data": {"type": "asset--land", "id": "p1"}}`)
	stub.route(http.MethodPost, "asset/plant", `{
		"data": {"type": "asset--plant", "id": "new1", "attributes": {}}
	}`)

	_, err := svc.CreateAsset(context.Background(), CreateAssetInput{
		Type:      "plant",
		Name:      "Carrots bed 3",
		ParentIDs: []string{"p1"},
	})
	require.NoError(t, err)

	req := stub.lastRequest(t, http.MethodPost, "asset/plant")
	ref := gjson.ParseBytes(req.Body).Get("data.relationships.parent.data.0")

	assert.Equal(t, "asset--land", ref.Get("type").Str)
	assert.Equal(t, "p1", ref.Get("id").Str)
}

func TestCreateAsset_RejectsBadBirthdate(t *testing.T) {
	_, svc := newStubFarm(t)

	_, err := svc.CreateAsset(context.Background(), CreateAssetInput{
		Type:      "animal",
		Name:      "Dolly",
		Birthdate: "soonish",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "birthdate")
}

func TestUpdateAsset_PatchesAndClearsRelationships(t *testing.T) {
	stub, svc := newStubFarm(t)
	stub.route(http.MethodPatch, "asset/plant/a1", `{
		"data": {"type": "asset--plant", "id": "a1", "attributes": {"name": "Carrots bed 3", "status": "archived"}}
	}`)

	status := "archived"

	asset, err := svc.UpdateAsset(context.Background(), UpdateAssetInput{
		ID:           "a1",
		Type:         "plant",
		Status:       &status,
		PlantTypeIDs: []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, "archived", asset.Status)

	req := stub.lastRequest(t, http.MethodPatch, "asset/plant/a1")
	data := gjson.ParseBytes(req.Body).Get("data")

	assert.Equal(t, "archived", data.Get("attributes.status").Str)
	assert.False(t, data.Get("attributes.name").Exists(), "untouched fields stay out of the patch")

	rel := data.Get("relationships.plant_type.data")
	require.True(t, rel.IsArray())
	assert.Empty(t, rel.Array(), "empty id list clears the relationship")
}

func TestUpdateAsset_RequiresIDAndType(t *testing.T) {
	_, svc := newStubFarm(t)

	var verr *ValidationError

	_, err := svc.UpdateAsset(context.Background(), UpdateAssetInput{Type: "plant"})
	require.ErrorAs(t, err, &verr)

	_, err = svc.UpdateAsset(context.Background(), UpdateAssetInput{ID: "a1"})
	require.ErrorAs(t, err, &verr)
}
