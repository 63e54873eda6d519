package farm

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/alexjbarnes/farmos-mcp/internal/farmos"
	"github.com/tidwall/gjson"
)

// PlanTypes lists the known plan bundles. farmOS core ships none; modules
// provide them (the most common is rotational_grazing). Bundle names are
// therefore not validated, and an explicit plan_type is required when this
// list is empty and no type was given.
var PlanTypes = []string{}

var planStatuses = []string{"planning", "active", "done", "abandoned"}

// Plan is a flattened farmOS plan record.
type Plan struct {
	ID     string       `json:"id"`
	Type   string       `json:"type"`
	Name   string       `json:"name"`
	Status string       `json:"status"`
	Notes  *string      `json:"notes"`
	Flags  []string     `json:"flags"`
	Owners []farmos.Ref `json:"owners"`
}

// PlanList is the result of a plan listing query.
type PlanList struct {
	Total    int    `json:"total,omitempty"`
	Returned int    `json:"returned"`
	Plans    []Plan `json:"plans"`
	Note     string `json:"note,omitempty"`
}

func normalizePlan(res gjson.Result) Plan {
	attrs := res.Get("attributes")

	plan := Plan{
		ID:     res.Get("id").Str,
		Type:   farmos.Bundle(res.Get("type").Str),
		Name:   attrs.Get("name").Str,
		Status: attrs.Get("status").Str,
		Notes:  farmos.Text(attrs.Get("notes")),
		Owners: farmos.Refs(res.Get("relationships.owner.data")),
	}

	for _, f := range attrs.Get("flags").Array() {
		plan.Flags = append(plan.Flags, f.String())
	}

	return plan
}

// Plans lists plans sorted by name.
func (s *Service) Plans(ctx context.Context, planType, status string, limit, offset int) (*PlanList, error) {
	if err := validateChoice("status", status, planStatuses); err != nil {
		return nil, err
	}

	lim := clampLimit(limit, 20)

	q := url.Values{}
	q.Set("sort", "name")

	if status != "" {
		q.Set("filter[status]", status)
	}

	if planType != "" {
		pageParams(q, lim, offset)

		doc, err := s.client.Get(ctx, "plan/"+planType, q)
		if err != nil {
			return nil, err
		}

		parsed := gjson.ParseBytes(doc)

		var plans []Plan
		for _, r := range parsed.Get("data").Array() {
			plans = append(plans, normalizePlan(r))
		}

		total := len(plans)
		if c := parsed.Get("meta.count"); c.Exists() {
			total = int(c.Int())
		}

		return &PlanList{Total: total, Returned: len(plans), Plans: plans}, nil
	}

	if len(PlanTypes) == 0 {
		return &PlanList{
			Returned: 0,
			Plans:    []Plan{},
			Note:     "No plan types configured. Specify plan_type explicitly if you know the bundle name.",
		}, nil
	}

	pageParams(q, lim, 0)

	var plans []Plan

	for _, t := range PlanTypes {
		doc, err := s.client.Get(ctx, "plan/"+t, q)
		if err != nil {
			if skippableBundle(err) {
				continue
			}

			return nil, err
		}

		for _, r := range gjson.ParseBytes(doc).Get("data").Array() {
			plans = append(plans, normalizePlan(r))
		}
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return strings.ToLower(plans[i].Name) < strings.ToLower(plans[j].Name)
	})

	if len(plans) > lim {
		plans = plans[:lim]
	}

	return &PlanList{Returned: len(plans), Plans: plans}, nil
}

// Plan fetches a single plan by UUID.
func (s *Service) Plan(ctx context.Context, id, planType string) (*Plan, error) {
	types := PlanTypes
	if planType != "" {
		types = []string{planType}
	}

	if len(types) == 0 {
		return nil, validationErrorf("plan_type is required when no plan types are configured")
	}

	for _, t := range types {
		doc, err := s.client.Get(ctx, "plan/"+t+"/"+id, nil)
		if err != nil {
			if skippableBundle(err) {
				continue
			}

			return nil, err
		}

		data := gjson.ParseBytes(doc).Get("data")
		if !data.IsObject() {
			continue
		}

		plan := normalizePlan(data)

		return &plan, nil
	}

	return nil, &NotFoundError{Entity: "plan", ID: id}
}

// CreatePlanInput holds the fields for a new plan.
type CreatePlanInput struct {
	Type     string
	Name     string
	Status   string
	Notes    string
	OwnerIDs []string
	Flags    []string
}

// CreatePlan creates a plan.
func (s *Service) CreatePlan(ctx context.Context, in CreatePlanInput) (*Plan, error) {
	if in.Type == "" {
		return nil, validationErrorf("plan_type is required")
	}

	if in.Name == "" {
		return nil, validationErrorf("name is required")
	}

	status := in.Status
	if status == "" {
		status = "planning"
	}

	if err := validateChoice("status", status, planStatuses); err != nil {
		return nil, err
	}

	payload := resource{
		Type: "plan--" + in.Type,
		Attributes: map[string]interface{}{
			"name":   in.Name,
			"status": status,
		},
	}

	if in.Notes != "" {
		payload.Attributes["notes"] = textField(in.Notes)
	}

	if in.Flags != nil {
		payload.Attributes["flags"] = in.Flags
	}

	if len(in.OwnerIDs) > 0 {
		payload.Relationships = map[string]interface{}{
			"owner": relMany("user--user", in.OwnerIDs),
		}
	}

	doc, err := s.client.Post(ctx, "plan/"+in.Type, payload)
	if err != nil {
		return nil, err
	}

	plan := normalizePlan(gjson.ParseBytes(doc).Get("data"))

	return &plan, nil
}

// UpdatePlanInput carries a partial plan update. Nil fields are untouched;
// empty slices clear owners or flags.
type UpdatePlanInput struct {
	ID       string
	Type     string
	Name     *string
	Status   *string
	Notes    *string
	OwnerIDs []string
	Flags    []string
}

// UpdatePlan patches only the supplied fields of an existing plan.
func (s *Service) UpdatePlan(ctx context.Context, in UpdatePlanInput) (*Plan, error) {
	if in.ID == "" {
		return nil, validationErrorf("id is required")
	}

	if in.Type == "" {
		return nil, validationErrorf("plan_type is required")
	}

	payload := resource{
		Type:       "plan--" + in.Type,
		ID:         in.ID,
		Attributes: map[string]interface{}{},
	}

	if in.Name != nil {
		payload.Attributes["name"] = *in.Name
	}

	if in.Status != nil {
		if err := validateChoice("status", *in.Status, planStatuses); err != nil {
			return nil, err
		}

		payload.Attributes["status"] = *in.Status
	}

	if in.Notes != nil {
		payload.Attributes["notes"] = textField(*in.Notes)
	}

	if in.Flags != nil {
		payload.Attributes["flags"] = in.Flags
	}

	if in.OwnerIDs != nil {
		payload.Relationships = map[string]interface{}{
			"owner": relMany("user--user", in.OwnerIDs),
		}
	}

	doc, err := s.client.Patch(ctx, "plan/"+in.Type+"/"+in.ID, payload)
	if err != nil {
		return nil, err
	}

	plan := normalizePlan(gjson.ParseBytes(doc).Get("data"))

	return &plan, nil
}
