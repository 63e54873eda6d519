package farm

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/alexjbarnes/farmos-mcp/internal/farmos"
	"github.com/tidwall/gjson"
)

// AssetTypes lists the standard asset bundles in farmOS 3.x.
var AssetTypes = []string{
	"animal",
	"compost",
	"equipment",
	"group",
	"land",
	"material",
	"plant",
	"product",
	"sensor",
	"structure",
	"water",
}

var assetStatuses = []string{"active", "archived"}

// assetInclude names the relationships sideloaded when fetching a single
// asset, so related names resolve in one request.
const assetInclude = "parent,owner,animal_type,plant_type,season,equipment_type,material_type"

// Asset is a flattened farmOS asset record. Type-specific fields are
// omitted from the JSON when empty.
type Asset struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	Notes     *string         `json:"notes"`
	Parents   []farmos.Ref    `json:"parents"`
	Owners    []farmos.Ref    `json:"owners"`
	Inventory json.RawMessage `json:"inventory,omitempty"`

	// Animal fields.
	Sex        string       `json:"sex,omitempty"`
	Nicknames  []string     `json:"nicknames,omitempty"`
	IsSterile  *bool        `json:"is_sterile,omitempty"`
	Birthdate  *string      `json:"birthdate,omitempty"`
	AnimalType []farmos.Ref `json:"animal_type,omitempty"`

	// Plant fields.
	PlantType []farmos.Ref `json:"plant_type,omitempty"`
	Season    []farmos.Ref `json:"season,omitempty"`

	// Equipment fields.
	Manufacturer  string       `json:"manufacturer,omitempty"`
	Model         string       `json:"model,omitempty"`
	SerialNumber  string       `json:"serial_number,omitempty"`
	EquipmentType []farmos.Ref `json:"equipment_type,omitempty"`

	// Land and structure classification.
	LandType      string `json:"land_type,omitempty"`
	StructureType string `json:"structure_type,omitempty"`

	// Material fields.
	MaterialType []farmos.Ref `json:"material_type,omitempty"`
}

// AssetList is the result of an asset listing query.
type AssetList struct {
	Total    int     `json:"total,omitempty"`
	Returned int     `json:"returned"`
	Assets   []Asset `json:"assets"`
}

// AssetsQuery filters an asset listing. All fields are optional.
type AssetsQuery struct {
	Type   string
	Status string
	Name   string
	Limit  int
	Offset int
}

func resolvedRefs(res gjson.Result, path string, inc farmos.Included) []farmos.Ref {
	refs := farmos.Refs(res.Get(path))
	if inc != nil {
		refs = inc.Resolve(refs)
	}

	return refs
}

func normalizeAsset(res gjson.Result, inc farmos.Included) Asset {
	attrs := res.Get("attributes")
	bundle := farmos.Bundle(res.Get("type").Str)

	asset := Asset{
		ID:      res.Get("id").Str,
		Type:    bundle,
		Name:    attrs.Get("name").Str,
		Status:  attrs.Get("status").Str,
		Notes:   farmos.Text(attrs.Get("notes")),
		Parents: resolvedRefs(res, "relationships.parent.data", inc),
		Owners:  resolvedRefs(res, "relationships.owner.data", inc),
	}

	// Inventory is computed server-side from quantity logs; pass the raw
	// summaries through untouched.
	if inv := attrs.Get("inventory"); inv.Exists() && inv.Type != gjson.Null && inv.Raw != "[]" {
		asset.Inventory = json.RawMessage(inv.Raw)
	}

	switch bundle {
	case "animal":
		asset.Sex = attrs.Get("sex").Str

		for _, n := range attrs.Get("nicknames").Array() {
			asset.Nicknames = append(asset.Nicknames, n.Str)
		}

		if v := attrs.Get("is_sterile"); v.Exists() && v.Type != gjson.Null {
			sterile := v.Bool()
			asset.IsSterile = &sterile
		}

		asset.Birthdate = farmos.EpochToISO(attrs.Get("birthdate"))
		asset.AnimalType = resolvedRefs(res, "relationships.animal_type.data", inc)

	case "plant":
		asset.PlantType = resolvedRefs(res, "relationships.plant_type.data", inc)
		asset.Season = resolvedRefs(res, "relationships.season.data", inc)

	case "equipment":
		asset.Manufacturer = attrs.Get("manufacturer").Str
		asset.Model = attrs.Get("model").Str
		asset.SerialNumber = attrs.Get("serial_number").Str
		asset.EquipmentType = resolvedRefs(res, "relationships.equipment_type.data", inc)

	case "land":
		asset.LandType = attrs.Get("land_type").Str

	case "structure":
		asset.StructureType = attrs.Get("structure_type").Str

	case "material":
		asset.MaterialType = resolvedRefs(res, "relationships.material_type.data", inc)
	}

	return asset
}

// Assets lists assets sorted by name. With no type set it fans out across
// all known bundles, skipping bundles the instance rejects.
func (s *Service) Assets(ctx context.Context, query AssetsQuery) (*AssetList, error) {
	if err := validateChoice("asset_type", query.Type, AssetTypes); err != nil {
		return nil, err
	}

	if err := validateChoice("status", query.Status, assetStatuses); err != nil {
		return nil, err
	}

	limit := clampLimit(query.Limit, 20)

	q := url.Values{}
	q.Set("sort", "name")

	if query.Status != "" {
		q.Set("filter[status]", query.Status)
	}

	if query.Name != "" {
		q.Set("filter[name]", query.Name)
	}

	if query.Type != "" {
		pageParams(q, limit, query.Offset)

		doc, err := s.client.Get(ctx, "asset/"+query.Type, q)
		if err != nil {
			return nil, err
		}

		return assetListFromDoc(gjson.ParseBytes(doc)), nil
	}

	pageParams(q, limit, 0)

	var assets []Asset

	for _, t := range AssetTypes {
		doc, err := s.client.Get(ctx, "asset/"+t, q)
		if err != nil {
			if skippableBundle(err) {
				continue
			}

			return nil, err
		}

		parsed := gjson.ParseBytes(doc)
		for _, r := range parsed.Get("data").Array() {
			assets = append(assets, normalizeAsset(r, nil))
		}
	}

	sort.SliceStable(assets, func(i, j int) bool {
		return strings.ToLower(assets[i].Name) < strings.ToLower(assets[j].Name)
	})

	if len(assets) > limit {
		assets = assets[:limit]
	}

	return &AssetList{Returned: len(assets), Assets: assets}, nil
}

func assetListFromDoc(doc gjson.Result) *AssetList {
	var assets []Asset
	for _, r := range doc.Get("data").Array() {
		assets = append(assets, normalizeAsset(r, nil))
	}

	total := len(assets)
	if c := doc.Get("meta.count"); c.Exists() {
		total = int(c.Int())
	}

	return &AssetList{Total: total, Returned: len(assets), Assets: assets}
}

// Asset fetches a single asset by UUID with related names resolved. When
// the bundle is unknown, all bundles are tried. Instances missing some of
// the sideload relationships reject the include set, so the lookup falls
// back to a plain fetch before moving to the next bundle.
func (s *Service) Asset(ctx context.Context, id, assetType string) (*Asset, error) {
	if err := validateChoice("asset_type", assetType, AssetTypes); err != nil {
		return nil, err
	}

	types := AssetTypes
	if assetType != "" {
		types = []string{assetType}
	}

	for _, t := range types {
		for _, withInclude := range []bool{true, false} {
			q := url.Values{}
			if withInclude {
				q.Set("include", assetInclude)
			}

			doc, err := s.client.Get(ctx, "asset/"+t+"/"+id, q)
			if err != nil {
				if skippableBundle(err) {
					continue
				}

				return nil, err
			}

			parsed := gjson.ParseBytes(doc)

			data := parsed.Get("data")
			if !data.IsObject() {
				break
			}

			asset := normalizeAsset(data, farmos.IndexIncluded(parsed))

			return &asset, nil
		}
	}

	return nil, &NotFoundError{Entity: "asset", ID: id}
}

// lookupAssetBundle resolves an asset UUID to its bundle by probing each
// known bundle endpoint.
func (s *Service) lookupAssetBundle(ctx context.Context, id string) (string, error) {
	for _, t := range AssetTypes {
		doc, err := s.client.Get(ctx, "asset/"+t+"/"+id, nil)
		if err != nil {
			if skippableBundle(err) {
				continue
			}

			return "", err
		}

		if gjson.ParseBytes(doc).Get("data").IsObject() {
			return t, nil
		}
	}

	return "", &NotFoundError{Entity: "asset", ID: id}
}

// CreateAssetInput holds the fields for a new asset. Type-specific fields
// are applied regardless of bundle; farmOS rejects ones that do not exist
// on the target bundle.
type CreateAssetInput struct {
	Type      string
	Name      string
	Status    string
	Notes     string
	ParentIDs []string

	// Animal.
	Sex          string
	Birthdate    string
	IsSterile    *bool
	AnimalTypeID string

	// Plant.
	PlantTypeIDs []string
	SeasonIDs    []string

	// Equipment.
	Manufacturer    string
	Model           string
	SerialNumber    string
	EquipmentTypeID string

	// Land / structure classification.
	LandType      string
	StructureType string

	// Material.
	MaterialTypeIDs []string
}

// CreateAsset creates an asset.
func (s *Service) CreateAsset(ctx context.Context, in CreateAssetInput) (*Asset, error) {
	if in.Type == "" {
		return nil, validationErrorf("asset_type is required")
	}

	if err := validateChoice("asset_type", in.Type, AssetTypes); err != nil {
		return nil, err
	}

	if in.Name == "" {
		return nil, validationErrorf("name is required")
	}

	status := in.Status
	if status == "" {
		status = "active"
	}

	if err := validateChoice("status", status, assetStatuses); err != nil {
		return nil, err
	}

	payload := resource{
		Type: "asset--" + in.Type,
		Attributes: map[string]interface{}{
			"name":   in.Name,
			"status": status,
		},
	}

	if err := s.applyAssetFields(ctx, &payload, assetFieldPatch{
		Notes:           optional(in.Notes),
		ParentIDs:       in.ParentIDs,
		Sex:             optional(in.Sex),
		Birthdate:       optional(in.Birthdate),
		IsSterile:       in.IsSterile,
		AnimalTypeID:    optional(in.AnimalTypeID),
		PlantTypeIDs:    in.PlantTypeIDs,
		SeasonIDs:       in.SeasonIDs,
		Manufacturer:    optional(in.Manufacturer),
		Model:           optional(in.Model),
		SerialNumber:    optional(in.SerialNumber),
		EquipmentTypeID: optional(in.EquipmentTypeID),
		LandType:        optional(in.LandType),
		StructureType:   optional(in.StructureType),
		MaterialTypeIDs: in.MaterialTypeIDs,
	}); err != nil {
		return nil, err
	}

	doc, err := s.client.Post(ctx, "asset/"+in.Type, payload)
	if err != nil {
		return nil, err
	}

	asset := normalizeAsset(gjson.ParseBytes(doc).Get("data"), nil)

	return &asset, nil
}

// UpdateAssetInput carries a partial asset update. Nil fields are
// untouched; empty slices clear multi-valued relationships.
type UpdateAssetInput struct {
	ID     string
	Type   string
	Name   *string
	Status *string
	Notes  *string

	ParentIDs []string

	Sex          *string
	Birthdate    *string
	IsSterile    *bool
	AnimalTypeID *string

	PlantTypeIDs []string
	SeasonIDs    []string

	Manufacturer    *string
	Model           *string
	SerialNumber    *string
	EquipmentTypeID *string

	LandType      *string
	StructureType *string

	MaterialTypeIDs []string
}

// UpdateAsset patches only the supplied fields of an existing asset.
func (s *Service) UpdateAsset(ctx context.Context, in UpdateAssetInput) (*Asset, error) {
	if in.ID == "" {
		return nil, validationErrorf("id is required")
	}

	if in.Type == "" {
		return nil, validationErrorf("asset_type is required")
	}

	if err := validateChoice("asset_type", in.Type, AssetTypes); err != nil {
		return nil, err
	}

	payload := resource{
		Type:       "asset--" + in.Type,
		ID:         in.ID,
		Attributes: map[string]interface{}{},
	}

	if in.Name != nil {
		payload.Attributes["name"] = *in.Name
	}

	if in.Status != nil {
		if err := validateChoice("status", *in.Status, assetStatuses); err != nil {
			return nil, err
		}

		payload.Attributes["status"] = *in.Status
	}

	if err := s.applyAssetFields(ctx, &payload, assetFieldPatch{
		Notes:           in.Notes,
		ParentIDs:       in.ParentIDs,
		Sex:             in.Sex,
		Birthdate:       in.Birthdate,
		IsSterile:       in.IsSterile,
		AnimalTypeID:    in.AnimalTypeID,
		PlantTypeIDs:    in.PlantTypeIDs,
		SeasonIDs:       in.SeasonIDs,
		Manufacturer:    in.Manufacturer,
		Model:           in.Model,
		SerialNumber:    in.SerialNumber,
		EquipmentTypeID: in.EquipmentTypeID,
		LandType:        in.LandType,
		StructureType:   in.StructureType,
		MaterialTypeIDs: in.MaterialTypeIDs,
	}); err != nil {
		return nil, err
	}

	doc, err := s.client.Patch(ctx, "asset/"+in.Type+"/"+in.ID, payload)
	if err != nil {
		return nil, err
	}

	asset := normalizeAsset(gjson.ParseBytes(doc).Get("data"), nil)

	return &asset, nil
}

// assetFieldPatch is the shared optional-field set for asset writes.
// Nil pointers and nil slices are skipped.
type assetFieldPatch struct {
	Notes     *string
	ParentIDs []string

	Sex          *string
	Birthdate    *string
	IsSterile    *bool
	AnimalTypeID *string

	PlantTypeIDs []string
	SeasonIDs    []string

	Manufacturer    *string
	Model           *string
	SerialNumber    *string
	EquipmentTypeID *string

	LandType      *string
	StructureType *string

	MaterialTypeIDs []string
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func (s *Service) applyAssetFields(ctx context.Context, payload *resource, p assetFieldPatch) error {
	if p.Notes != nil {
		payload.Attributes["notes"] = textField(*p.Notes)
	}

	if p.Sex != nil {
		payload.Attributes["sex"] = *p.Sex
	}

	if p.Birthdate != nil {
		ts, err := farmos.ISOToEpoch(*p.Birthdate)
		if err != nil {
			return validationErrorf("invalid birthdate: %v", err)
		}

		payload.Attributes["birthdate"] = ts
	}

	if p.IsSterile != nil {
		payload.Attributes["is_sterile"] = *p.IsSterile
	}

	if p.Manufacturer != nil {
		payload.Attributes["manufacturer"] = *p.Manufacturer
	}

	if p.Model != nil {
		payload.Attributes["model"] = *p.Model
	}

	if p.SerialNumber != nil {
		payload.Attributes["serial_number"] = *p.SerialNumber
	}

	if p.LandType != nil {
		payload.Attributes["land_type"] = *p.LandType
	}

	if p.StructureType != nil {
		payload.Attributes["structure_type"] = *p.StructureType
	}

	rels := map[string]interface{}{}

	if p.ParentIDs != nil {
		refs := make([]farmos.Ref, 0, len(p.ParentIDs))

		for _, id := range p.ParentIDs {
			bundle, err := s.lookupAssetBundle(ctx, id)
			if err != nil {
				return err
			}

			refs = append(refs, farmos.Ref{ID: id, Type: "asset--" + bundle})
		}

		rels["parent"] = map[string]interface{}{"data": refs}
	}

	if p.AnimalTypeID != nil {
		rels["animal_type"] = relOne("taxonomy_term--animal_type", *p.AnimalTypeID)
	}

	if p.PlantTypeIDs != nil {
		rels["plant_type"] = relMany("taxonomy_term--plant_type", p.PlantTypeIDs)
	}

	if p.SeasonIDs != nil {
		rels["season"] = relMany("taxonomy_term--season", p.SeasonIDs)
	}

	if p.EquipmentTypeID != nil {
		rels["equipment_type"] = relOne("taxonomy_term--equipment_type", *p.EquipmentTypeID)
	}

	if p.MaterialTypeIDs != nil {
		rels["material_type"] = relMany("taxonomy_term--material_type", p.MaterialTypeIDs)
	}

	if len(rels) > 0 {
		payload.Relationships = rels
	}

	return nil
}
