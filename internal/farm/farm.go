// Package farm implements the domain operations exposed as MCP tools:
// querying and mutating farmOS logs, assets, taxonomy terms, quantities,
// users and plans through the authenticated farmos client, and flattening
// the JSON:API responses into records an assistant can reason about.
package farm

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/alexjbarnes/farmos-mcp/internal/farmos"
)

// maxPageLimit is the largest page size requested from farmOS,
// matching the JSON:API module's own ceiling.
const maxPageLimit = 100

// Service executes farm operations against one farmOS instance.
type Service struct {
	client *farmos.Client
}

// New creates a Service backed by the given client.
func New(client *farmos.Client) *Service {
	return &Service{client: client}
}

// NotFoundError reports that an entity lookup matched nothing. The tool
// layer renders it as a not-found result rather than a failed call.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError reports tool input that failed local constraints.
// Raised before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// resource is a JSON:API resource object for write payloads. The client
// wraps it in the {"data": ...} envelope.
type resource struct {
	Type          string                 `json:"type"`
	ID            string                 `json:"id,omitempty"`
	Attributes    map[string]interface{} `json:"attributes,omitempty"`
	Relationships map[string]interface{} `json:"relationships,omitempty"`
}

// textField builds a Drupal formatted-text value.
func textField(value string) map[string]string {
	return map[string]string{"value": value, "format": "default"}
}

// relOne builds a single-valued relationship.
func relOne(entityType, id string) map[string]interface{} {
	return map[string]interface{}{
		"data": farmos.Ref{ID: id, Type: entityType},
	}
}

// relMany builds a multi-valued relationship. An empty ids slice clears
// the relationship.
func relMany(entityType string, ids []string) map[string]interface{} {
	refs := make([]farmos.Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, farmos.Ref{ID: id, Type: entityType})
	}

	return map[string]interface{}{"data": refs}
}

// clampLimit applies the default and the farmOS page-size ceiling.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}

	return min(limit, maxPageLimit)
}

// pageParams adds page[limit] and page[offset] to the query.
func pageParams(q url.Values, limit, offset int) {
	q.Set("page[limit]", strconv.Itoa(limit))

	if offset > 0 {
		q.Set("page[offset]", strconv.Itoa(offset))
	}
}

// validateChoice checks a value against a closed set, ignoring empty.
func validateChoice(field, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}

	return validationErrorf("unknown %s %q (expected one of %v)", field, value, allowed)
}

// skippableBundle reports whether a per-bundle query failure should be
// skipped during fan-out queries: a 4xx from a resource endpoint usually
// means the bundle is not enabled on this instance. Auth and transport
// failures always propagate.
func skippableBundle(err error) bool {
	var apiErr *farmos.APIError

	return errors.As(err, &apiErr)
}
