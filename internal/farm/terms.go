package farm

import (
	"context"
	"net/url"

	"github.com/alexjbarnes/farmos-mcp/internal/farmos"
	"github.com/tidwall/gjson"
)

// Vocabularies lists the standard taxonomy vocabularies in farmOS 3.x.
var Vocabularies = []string{
	"animal_type",
	"crop_family",
	"equipment_type",
	"lab",
	"log_category",
	"material_type",
	"plant_type",
	"product_type",
	"season",
	"test_method",
	"unit",
}

// Term is a flattened taxonomy term.
type Term struct {
	ID          string  `json:"id"`
	Vocabulary  string  `json:"vocabulary"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// TermList is the result of a term listing query.
type TermList struct {
	Total    int    `json:"total,omitempty"`
	Returned int    `json:"returned"`
	Terms    []Term `json:"terms"`
}

func normalizeTerm(res gjson.Result) Term {
	attrs := res.Get("attributes")

	return Term{
		ID:          res.Get("id").Str,
		Vocabulary:  farmos.Bundle(res.Get("type").Str),
		Name:        attrs.Get("name").Str,
		Description: farmos.Text(attrs.Get("description")),
	}
}

// Terms lists taxonomy terms from one vocabulary, sorted by name.
func (s *Service) Terms(ctx context.Context, vocabulary, name string, limit, offset int) (*TermList, error) {
	if vocabulary == "" {
		return nil, validationErrorf("vocabulary is required")
	}

	if err := validateChoice("vocabulary", vocabulary, Vocabularies); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("sort", "name")

	if name != "" {
		q.Set("filter[name]", name)
	}

	pageParams(q, clampLimit(limit, 100), offset)

	doc, err := s.client.Get(ctx, "taxonomy_term/"+vocabulary, q)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(doc)

	var terms []Term
	for _, r := range parsed.Get("data").Array() {
		terms = append(terms, normalizeTerm(r))
	}

	total := len(terms)
	if c := parsed.Get("meta.count"); c.Exists() {
		total = int(c.Int())
	}

	return &TermList{Total: total, Returned: len(terms), Terms: terms}, nil
}

// CreateTerm creates a taxonomy term in the given vocabulary.
func (s *Service) CreateTerm(ctx context.Context, vocabulary, name, description string) (*Term, error) {
	if vocabulary == "" {
		return nil, validationErrorf("vocabulary is required")
	}

	if err := validateChoice("vocabulary", vocabulary, Vocabularies); err != nil {
		return nil, err
	}

	if name == "" {
		return nil, validationErrorf("name is required")
	}

	payload := resource{
		Type:       "taxonomy_term--" + vocabulary,
		Attributes: map[string]interface{}{"name": name},
	}

	if description != "" {
		payload.Attributes["description"] = textField(description)
	}

	doc, err := s.client.Post(ctx, "taxonomy_term/"+vocabulary, payload)
	if err != nil {
		return nil, err
	}

	term := normalizeTerm(gjson.ParseBytes(doc).Get("data"))

	return &term, nil
}

// UpdateTermInput carries a partial term update. Nil fields are untouched;
// an empty description string clears it.
type UpdateTermInput struct {
	ID          string
	Vocabulary  string
	Name        *string
	Description *string
}

// UpdateTerm patches only the supplied fields of an existing term.
func (s *Service) UpdateTerm(ctx context.Context, in UpdateTermInput) (*Term, error) {
	if in.ID == "" {
		return nil, validationErrorf("id is required")
	}

	if in.Vocabulary == "" {
		return nil, validationErrorf("vocabulary is required")
	}

	if err := validateChoice("vocabulary", in.Vocabulary, Vocabularies); err != nil {
		return nil, err
	}

	payload := resource{
		Type:       "taxonomy_term--" + in.Vocabulary,
		ID:         in.ID,
		Attributes: map[string]interface{}{},
	}

	if in.Name != nil {
		payload.Attributes["name"] = *in.Name
	}

	if in.Description != nil {
		payload.Attributes["description"] = textField(*in.Description)
	}

	doc, err := s.client.Patch(ctx, "taxonomy_term/"+in.Vocabulary+"/"+in.ID, payload)
	if err != nil {
		return nil, err
	}

	term := normalizeTerm(gjson.ParseBytes(doc).Get("data"))

	return &term, nil
}
