// Package mcpserver registers MCP tools that expose farmOS operations.
// It adapts the farm package to the MCP SDK's tool handler interface.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexjbarnes/farmos-mcp/internal/farm"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools adds the farmOS tools to the given MCP server. Write
// tools are registered only when writeEnabled is true; with the read-only
// flag set they are simply absent from the tool surface, not rejected at
// call time.
func RegisterTools(server *mcp.Server, svc *farm.Service, writeEnabled bool) {
	registerReadTools(server, svc)

	if writeEnabled {
		registerWriteTools(server, svc)
	}
}

func registerReadTools(server *mcp.Server, svc *farm.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_logs",
		Description: "List logs from farmOS, newest first. Filter by type, status, date range, or asset. Omit log_type to query all types.",
	}, getLogsHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_log",
		Description: "Get a single farmOS log by UUID, including full details and related asset names. Passing log_type speeds up the lookup.",
	}, getLogHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_assets",
		Description: "List assets from farmOS. Filter by type, status, or exact name. Common types: 'land' (fields, beds, greenhouses), 'plant', 'animal', 'equipment', 'structure'.",
	}, getAssetsHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_asset",
		Description: "Get a single farmOS asset by UUID, including type-specific fields, inventory, and resolved related names.",
	}, getAssetHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_terms",
		Description: "List taxonomy terms from a farmOS vocabulary ('unit', 'log_category', 'animal_type', 'plant_type', 'season', ...). Use term UUIDs when linking categories or units.",
	}, getTermsHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_quantities",
		Description: "List quantity entities (measured values on logs, e.g. weight, count, volume). Filter by bundle ('standard', 'material', 'test') or measure.",
	}, getQuantitiesHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_users",
		Description: "List farmOS user accounts. Use this to look up user UUIDs when assigning owners.",
	}, getUsersHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_plans",
		Description: "List plans from farmOS. Plans organise assets and logs around a goal; available types depend on installed modules.",
	}, getPlansHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_plan",
		Description: "Get a single farmOS plan by UUID.",
	}, getPlanHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_farm_info",
		Description: "Get information about the farmOS instance: farm name, version, system of measurement, and the authenticated user.",
	}, getFarmInfoHandler(svc))
}

func registerWriteTools(server *mcp.Server, svc *farm.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_log",
		Description: "Create a new log in farmOS. Linked asset UUIDs have their types resolved automatically.",
	}, createLogHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_log",
		Description: "Update fields on an existing farmOS log. Only the supplied fields change.",
	}, updateLogHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_asset",
		Description: "Create a new asset in farmOS. Type-specific fields (sex, land_type, manufacturer, ...) apply to the matching bundle.",
	}, createAssetHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_asset",
		Description: "Update an existing farmOS asset. Only the supplied fields change; pass empty lists to clear multi-valued relationships.",
	}, updateAssetHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_term",
		Description: "Create a new taxonomy term in a farmOS vocabulary, e.g. a unit or log category.",
	}, createTermHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_term",
		Description: "Update an existing taxonomy term. Only the supplied fields change.",
	}, updateTermHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_plan",
		Description: "Create a new plan in farmOS. The plan type must match an installed module's bundle, e.g. 'rotational_grazing'.",
	}, createPlanHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_plan",
		Description: "Update an existing farmOS plan. Only the supplied fields change.",
	}, updatePlanHandler(svc))
}

// --- Input types ---
// The MCP SDK infers JSON schema from these struct types via jsonschema tags.

// GetLogsInput holds parameters for get_logs.
type GetLogsInput struct {
	LogType  string `json:"log_type,omitempty" jsonschema:"log bundle without prefix: 'activity', 'observation', 'harvest', 'input', 'seeding', 'transplanting', 'purchase', 'sale'; omit to query all types"`
	Status   string `json:"status,omitempty" jsonschema:"'pending' or 'done', omit for both"`
	DateFrom string `json:"date_from,omitempty" jsonschema:"ISO 8601 date, e.g. '2024-06-01'; returns logs on or after this date"`
	DateTo   string `json:"date_to,omitempty" jsonschema:"ISO 8601 date; returns logs on or before this date"`
	AssetID  string `json:"asset_id,omitempty" jsonschema:"UUID of an asset; returns only logs referencing it"`
	Limit    int    `json:"limit,omitempty" jsonschema:"max logs to return, default 20, max 100"`
	Offset   int    `json:"offset,omitempty" jsonschema:"pagination offset, only applies when log_type is specified"`
}

// GetLogInput holds parameters for get_log.
type GetLogInput struct {
	ID      string `json:"id" jsonschema:"required,UUID of the log"`
	LogType string `json:"log_type,omitempty" jsonschema:"bundle name if known, e.g. 'observation'; speeds up the lookup"`
}

// GetAssetsInput holds parameters for get_assets.
type GetAssetsInput struct {
	AssetType string `json:"asset_type,omitempty" jsonschema:"asset bundle without prefix: 'land', 'plant', 'animal', 'equipment', etc.; omit to query all types"`
	Status    string `json:"status,omitempty" jsonschema:"'active' or 'archived', omit for both"`
	Name      string `json:"name,omitempty" jsonschema:"filter by exact name"`
	Limit     int    `json:"limit,omitempty" jsonschema:"max assets to return, default 20, max 100"`
	Offset    int    `json:"offset,omitempty" jsonschema:"pagination offset, only applies when asset_type is specified"`
}

// GetAssetInput holds parameters for get_asset.
type GetAssetInput struct {
	ID        string `json:"id" jsonschema:"required,UUID of the asset"`
	AssetType string `json:"asset_type,omitempty" jsonschema:"bundle if known, e.g. 'land'; speeds up the lookup"`
}

// GetTermsInput holds parameters for get_terms.
type GetTermsInput struct {
	Vocabulary string `json:"vocabulary" jsonschema:"required,vocabulary machine name: 'unit', 'log_category', 'animal_type', 'plant_type', 'crop_family', 'material_type', 'equipment_type', 'season', 'lab', 'product_type', 'test_method'"`
	Name       string `json:"name,omitempty" jsonschema:"filter by name"`
	Limit      int    `json:"limit,omitempty" jsonschema:"max terms to return, default 100"`
	Offset     int    `json:"offset,omitempty" jsonschema:"pagination offset"`
}

// GetQuantitiesInput holds parameters for get_quantities.
type GetQuantitiesInput struct {
	QuantityType string `json:"quantity_type,omitempty" jsonschema:"bundle: 'standard', 'material', or 'test'; omit to query all three"`
	Measure      string `json:"measure,omitempty" jsonschema:"filter by measure type, e.g. 'weight', 'count', 'volume', 'area', 'temperature'"`
	Limit        int    `json:"limit,omitempty" jsonschema:"max quantities to return, default 50, max 100"`
	Offset       int    `json:"offset,omitempty" jsonschema:"pagination offset, only applies when quantity_type is specified"`
}

// GetUsersInput holds parameters for get_users.
type GetUsersInput struct {
	Name   string `json:"name,omitempty" jsonschema:"filter by username"`
	Limit  int    `json:"limit,omitempty" jsonschema:"max users to return, default 50, max 100"`
	Offset int    `json:"offset,omitempty" jsonschema:"pagination offset"`
}

// GetPlansInput holds parameters for get_plans.
type GetPlansInput struct {
	PlanType string `json:"plan_type,omitempty" jsonschema:"plan bundle without prefix, e.g. 'rotational_grazing'"`
	Status   string `json:"status,omitempty" jsonschema:"'planning', 'active', 'done', or 'abandoned'"`
	Limit    int    `json:"limit,omitempty" jsonschema:"max plans to return, default 20, max 100"`
	Offset   int    `json:"offset,omitempty" jsonschema:"pagination offset, only applies when plan_type is specified"`
}

// GetPlanInput holds parameters for get_plan.
type GetPlanInput struct {
	ID       string `json:"id" jsonschema:"required,UUID of the plan"`
	PlanType string `json:"plan_type,omitempty" jsonschema:"bundle name if known; required when no plan types are configured"`
}

// GetFarmInfoInput has no parameters.
type GetFarmInfoInput struct{}

// CreateLogInput holds parameters for create_log.
type CreateLogInput struct {
	LogType   string   `json:"log_type" jsonschema:"required,log bundle, e.g. 'activity', 'observation', 'harvest'"`
	Name      string   `json:"name" jsonschema:"required,name/title of the log"`
	Status    string   `json:"status,omitempty" jsonschema:"'pending' (default) or 'done'"`
	Notes     string   `json:"notes,omitempty" jsonschema:"plain-text notes"`
	Timestamp string   `json:"timestamp,omitempty" jsonschema:"ISO 8601 datetime, defaults to now"`
	AssetIDs  []string `json:"asset_ids,omitempty" jsonschema:"UUIDs of assets to link; their types are resolved automatically"`
}

// UpdateLogInput holds parameters for update_log.
type UpdateLogInput struct {
	ID      string  `json:"id" jsonschema:"required,UUID of the log"`
	LogType string  `json:"log_type" jsonschema:"required,bundle of the log, e.g. 'observation'"`
	Name    *string `json:"name,omitempty" jsonschema:"new name"`
	Status  *string `json:"status,omitempty" jsonschema:"new status: 'pending' or 'done'"`
	Notes   *string `json:"notes,omitempty" jsonschema:"new notes text, replaces existing notes"`
}

// CreateAssetInput holds parameters for create_asset.
type CreateAssetInput struct {
	AssetType string   `json:"asset_type" jsonschema:"required,bundle: 'land', 'plant', 'animal', 'equipment', 'structure', 'water', 'material', 'sensor', 'product', 'compost', 'group'"`
	Name      string   `json:"name" jsonschema:"required,name of the asset"`
	Status    string   `json:"status,omitempty" jsonschema:"'active' (default) or 'archived'"`
	Notes     string   `json:"notes,omitempty" jsonschema:"plain-text notes"`
	ParentIDs []string `json:"parent_ids,omitempty" jsonschema:"UUIDs of parent assets, e.g. a bed's parent field"`

	Sex          string `json:"sex,omitempty" jsonschema:"animal sex: 'M' or 'F'"`
	Birthdate    string `json:"birthdate,omitempty" jsonschema:"animal birthdate as ISO 8601 date"`
	IsSterile    *bool  `json:"is_sterile,omitempty" jsonschema:"whether the animal is castrated/spayed"`
	AnimalTypeID string `json:"animal_type_id,omitempty" jsonschema:"UUID of an animal_type taxonomy term"`

	PlantTypeIDs []string `json:"plant_type_ids,omitempty" jsonschema:"UUIDs of plant_type taxonomy terms (crop variety)"`
	SeasonIDs    []string `json:"season_ids,omitempty" jsonschema:"UUIDs of season taxonomy terms"`

	Manufacturer    string `json:"manufacturer,omitempty" jsonschema:"equipment manufacturer name"`
	Model           string `json:"model,omitempty" jsonschema:"equipment model name"`
	SerialNumber    string `json:"serial_number,omitempty" jsonschema:"equipment serial number"`
	EquipmentTypeID string `json:"equipment_type_id,omitempty" jsonschema:"UUID of an equipment_type taxonomy term"`

	LandType      string `json:"land_type,omitempty" jsonschema:"land classification: 'field', 'bed', 'greenhouse', 'building', 'landmark', 'property', 'water', 'other'"`
	StructureType string `json:"structure_type,omitempty" jsonschema:"structure classification, e.g. 'greenhouse', 'barn'"`

	MaterialTypeIDs []string `json:"material_type_ids,omitempty" jsonschema:"UUIDs of material_type taxonomy terms"`
}

// UpdateAssetInput holds parameters for update_asset.
type UpdateAssetInput struct {
	ID        string   `json:"id" jsonschema:"required,UUID of the asset"`
	AssetType string   `json:"asset_type" jsonschema:"required,bundle of the asset, e.g. 'land'"`
	Name      *string  `json:"name,omitempty" jsonschema:"new name"`
	Status    *string  `json:"status,omitempty" jsonschema:"new status: 'active' or 'archived'"`
	Notes     *string  `json:"notes,omitempty" jsonschema:"new notes text, replaces existing notes"`
	ParentIDs []string `json:"parent_ids,omitempty" jsonschema:"replace parent assets; pass [] to clear all"`

	Sex          *string `json:"sex,omitempty" jsonschema:"animal sex: 'M' or 'F'"`
	Birthdate    *string `json:"birthdate,omitempty" jsonschema:"animal birthdate as ISO 8601 date"`
	IsSterile    *bool   `json:"is_sterile,omitempty" jsonschema:"whether the animal is castrated/spayed"`
	AnimalTypeID *string `json:"animal_type_id,omitempty" jsonschema:"UUID of an animal_type taxonomy term"`

	PlantTypeIDs []string `json:"plant_type_ids,omitempty" jsonschema:"UUIDs of plant_type terms; pass [] to clear"`
	SeasonIDs    []string `json:"season_ids,omitempty" jsonschema:"UUIDs of season terms; pass [] to clear"`

	Manufacturer    *string `json:"manufacturer,omitempty" jsonschema:"equipment manufacturer name"`
	Model           *string `json:"model,omitempty" jsonschema:"equipment model name"`
	SerialNumber    *string `json:"serial_number,omitempty" jsonschema:"equipment serial number"`
	EquipmentTypeID *string `json:"equipment_type_id,omitempty" jsonschema:"UUID of an equipment_type taxonomy term"`

	LandType      *string `json:"land_type,omitempty" jsonschema:"land classification string"`
	StructureType *string `json:"structure_type,omitempty" jsonschema:"structure classification string"`

	MaterialTypeIDs []string `json:"material_type_ids,omitempty" jsonschema:"UUIDs of material_type terms; pass [] to clear"`
}

// CreateTermInput holds parameters for create_term.
type CreateTermInput struct {
	Vocabulary  string `json:"vocabulary" jsonschema:"required,vocabulary machine name, e.g. 'unit', 'log_category', 'plant_type'"`
	Name        string `json:"name" jsonschema:"required,name of the new term"`
	Description string `json:"description,omitempty" jsonschema:"optional description"`
}

// UpdateTermInput holds parameters for update_term.
type UpdateTermInput struct {
	ID          string  `json:"id" jsonschema:"required,UUID of the term"`
	Vocabulary  string  `json:"vocabulary" jsonschema:"required,vocabulary machine name, e.g. 'unit'"`
	Name        *string `json:"name,omitempty" jsonschema:"new name"`
	Description *string `json:"description,omitempty" jsonschema:"new description; pass empty string to clear"`
}

// CreatePlanInput holds parameters for create_plan.
type CreatePlanInput struct {
	PlanType string   `json:"plan_type" jsonschema:"required,plan bundle, e.g. 'rotational_grazing'; must match an installed module's plan type"`
	Name     string   `json:"name" jsonschema:"required,name of the plan"`
	Status   string   `json:"status,omitempty" jsonschema:"'planning' (default), 'active', 'done', or 'abandoned'"`
	Notes    string   `json:"notes,omitempty" jsonschema:"plain-text notes"`
	OwnerIDs []string `json:"owner_ids,omitempty" jsonschema:"UUIDs of users assigned as owners"`
	Flags    []string `json:"flags,omitempty" jsonschema:"flag strings: 'priority', 'needs_review', 'monitor'"`
}

// UpdatePlanInput holds parameters for update_plan.
type UpdatePlanInput struct {
	ID       string   `json:"id" jsonschema:"required,UUID of the plan"`
	PlanType string   `json:"plan_type" jsonschema:"required,bundle of the plan, e.g. 'rotational_grazing'"`
	Name     *string  `json:"name,omitempty" jsonschema:"new name"`
	Status   *string  `json:"status,omitempty" jsonschema:"new status"`
	Notes    *string  `json:"notes,omitempty" jsonschema:"new notes text, replaces existing notes"`
	OwnerIDs []string `json:"owner_ids,omitempty" jsonschema:"replace assigned owners; pass [] to clear"`
	Flags    []string `json:"flags,omitempty" jsonschema:"replace flags; pass [] to clear"`
}

// --- Read handlers ---

func getLogsHandler(svc *farm.Service) mcp.ToolHandlerFor[GetLogsInput, *farm.LogList] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetLogsInput) (*mcp.CallToolResult, *farm.LogList, error) {
		result, err := svc.Logs(ctx, farm.LogsQuery{
			Type:     input.LogType,
			Status:   input.Status,
			DateFrom: input.DateFrom,
			DateTo:   input.DateTo,
			AssetID:  input.AssetID,
			Limit:    input.Limit,
			Offset:   input.Offset,
		})
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func getLogHandler(svc *farm.Service) mcp.ToolHandlerFor[GetLogInput, *farm.Log] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetLogInput) (*mcp.CallToolResult, *farm.Log, error) {
		result, err := svc.Log(ctx, input.ID, input.LogType)
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func getAssetsHandler(svc *farm.Service) mcp.ToolHandlerFor[GetAssetsInput, *farm.AssetList] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetAssetsInput) (*mcp.CallToolResult, *farm.AssetList, error) {
		result, err := svc.Assets(ctx, farm.AssetsQuery{
			Type:   input.AssetType,
			Status: input.Status,
			Name:   input.Name,
			Limit:  input.Limit,
			Offset: input.Offset,
		})
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func getAssetHandler(svc *farm.Service) mcp.ToolHandlerFor[GetAssetInput, *farm.Asset] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetAssetInput) (*mcp.CallToolResult, *farm.Asset, error) {
		result, err := svc.Asset(ctx, input.ID, input.AssetType)
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func getTermsHandler(svc *farm.Service) mcp.ToolHandlerFor[GetTermsInput, *farm.TermList] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetTermsInput) (*mcp.CallToolResult, *farm.TermList, error) {
		result, err := svc.Terms(ctx, input.Vocabulary, input.Name, input.Limit, input.Offset)
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func getQuantitiesHandler(svc *farm.Service) mcp.ToolHandlerFor[GetQuantitiesInput, *farm.QuantityList] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetQuantitiesInput) (*mcp.CallToolResult, *farm.QuantityList, error) {
		result, err := svc.Quantities(ctx, input.QuantityType, input.Measure, input.Limit, input.Offset)
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func getUsersHandler(svc *farm.Service) mcp.ToolHandlerFor[GetUsersInput, *farm.UserList] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetUsersInput) (*mcp.CallToolResult, *farm.UserList, error) {
		result, err := svc.Users(ctx, input.Name, input.Limit, input.Offset)
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func getPlansHandler(svc *farm.Service) mcp.ToolHandlerFor[GetPlansInput, *farm.PlanList] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetPlansInput) (*mcp.CallToolResult, *farm.PlanList, error) {
		result, err := svc.Plans(ctx, input.PlanType, input.Status, input.Limit, input.Offset)
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func getPlanHandler(svc *farm.Service) mcp.ToolHandlerFor[GetPlanInput, *farm.Plan] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetPlanInput) (*mcp.CallToolResult, *farm.Plan, error) {
		result, err := svc.Plan(ctx, input.ID, input.PlanType)
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func getFarmInfoHandler(svc *farm.Service) mcp.ToolHandlerFor[GetFarmInfoInput, map[string]interface{}] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ GetFarmInfoInput) (*mcp.CallToolResult, map[string]interface{}, error) {
		result, err := svc.Info(ctx)
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

// --- Write handlers ---

func createLogHandler(svc *farm.Service) mcp.ToolHandlerFor[CreateLogInput, *farm.Log] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateLogInput) (*mcp.CallToolResult, *farm.Log, error) {
		result, err := svc.CreateLog(ctx, farm.CreateLogInput{
			Type:      input.LogType,
			Name:      input.Name,
			Status:    input.Status,
			Notes:     input.Notes,
			Timestamp: input.Timestamp,
			AssetIDs:  input.AssetIDs,
		})
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func updateLogHandler(svc *farm.Service) mcp.ToolHandlerFor[UpdateLogInput, *farm.Log] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UpdateLogInput) (*mcp.CallToolResult, *farm.Log, error) {
		result, err := svc.UpdateLog(ctx, farm.UpdateLogInput{
			ID:     input.ID,
			Type:   input.LogType,
			Name:   input.Name,
			Status: input.Status,
			Notes:  input.Notes,
		})
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func createAssetHandler(svc *farm.Service) mcp.ToolHandlerFor[CreateAssetInput, *farm.Asset] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateAssetInput) (*mcp.CallToolResult, *farm.Asset, error) {
		result, err := svc.CreateAsset(ctx, farm.CreateAssetInput{
			Type:            input.AssetType,
			Name:            input.Name,
			Status:          input.Status,
			Notes:           input.Notes,
			ParentIDs:       input.ParentIDs,
			Sex:             input.Sex,
			Birthdate:       input.Birthdate,
			IsSterile:       input.IsSterile,
			AnimalTypeID:    input.AnimalTypeID,
			PlantTypeIDs:    input.PlantTypeIDs,
			SeasonIDs:       input.SeasonIDs,
			Manufacturer:    input.Manufacturer,
			Model:           input.Model,
			SerialNumber:    input.SerialNumber,
			EquipmentTypeID: input.EquipmentTypeID,
			LandType:        input.LandType,
			StructureType:   input.StructureType,
			MaterialTypeIDs: input.MaterialTypeIDs,
		})
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func updateAssetHandler(svc *farm.Service) mcp.ToolHandlerFor[UpdateAssetInput, *farm.Asset] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UpdateAssetInput) (*mcp.CallToolResult, *farm.Asset, error) {
		result, err := svc.UpdateAsset(ctx, farm.UpdateAssetInput{
			ID:              input.ID,
			Type:            input.AssetType,
			Name:            input.Name,
			Status:          input.Status,
			Notes:           input.Notes,
			ParentIDs:       input.ParentIDs,
			Sex:             input.Sex,
			Birthdate:       input.Birthdate,
			IsSterile:       input.IsSterile,
			AnimalTypeID:    input.AnimalTypeID,
			PlantTypeIDs:    input.PlantTypeIDs,
			SeasonIDs:       input.SeasonIDs,
			Manufacturer:    input.Manufacturer,
			Model:           input.Model,
			SerialNumber:    input.SerialNumber,
			EquipmentTypeID: input.EquipmentTypeID,
			LandType:        input.LandType,
			StructureType:   input.StructureType,
			MaterialTypeIDs: input.MaterialTypeIDs,
		})
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func createTermHandler(svc *farm.Service) mcp.ToolHandlerFor[CreateTermInput, *farm.Term] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateTermInput) (*mcp.CallToolResult, *farm.Term, error) {
		result, err := svc.CreateTerm(ctx, input.Vocabulary, input.Name, input.Description)
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func updateTermHandler(svc *farm.Service) mcp.ToolHandlerFor[UpdateTermInput, *farm.Term] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UpdateTermInput) (*mcp.CallToolResult, *farm.Term, error) {
		result, err := svc.UpdateTerm(ctx, farm.UpdateTermInput{
			ID:          input.ID,
			Vocabulary:  input.Vocabulary,
			Name:        input.Name,
			Description: input.Description,
		})
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func createPlanHandler(svc *farm.Service) mcp.ToolHandlerFor[CreatePlanInput, *farm.Plan] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreatePlanInput) (*mcp.CallToolResult, *farm.Plan, error) {
		result, err := svc.CreatePlan(ctx, farm.CreatePlanInput{
			Type:     input.PlanType,
			Name:     input.Name,
			Status:   input.Status,
			Notes:    input.Notes,
			OwnerIDs: input.OwnerIDs,
			Flags:    input.Flags,
		})
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

func updatePlanHandler(svc *farm.Service) mcp.ToolHandlerFor[UpdatePlanInput, *farm.Plan] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UpdatePlanInput) (*mcp.CallToolResult, *farm.Plan, error) {
		result, err := svc.UpdatePlan(ctx, farm.UpdatePlanInput{
			ID:       input.ID,
			Type:     input.PlanType,
			Name:     input.Name,
			Status:   input.Status,
			Notes:    input.Notes,
			OwnerIDs: input.OwnerIDs,
			Flags:    input.Flags,
		})
		if err != nil {
			return nil, nil, err
		}

		return textResult(result), result, nil
	}
}

// textResult builds a CallToolResult with JSON text content from any value.
// Every tool result is a serialized JSON document so the assistant runtime
// can treat all tool outputs uniformly as text; the SDK additionally
// populates structured output from the typed result.
func textResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error marshaling result: %v", err)}},
			IsError: true,
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}
