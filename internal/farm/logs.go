package farm

import (
	"context"
	"net/url"
	"sort"
	"time"

	"github.com/alexjbarnes/farmos-mcp/internal/farmos"
	"github.com/tidwall/gjson"
)

// LogTypes lists the standard log bundles in farmOS 2.x/3.x.
var LogTypes = []string{
	"activity",
	"harvest",
	"input",
	"observation",
	"purchase",
	"sale",
	"seeding",
	"transplanting",
}

// logStatuses are the workflow states a log can be in.
var logStatuses = []string{"pending", "done"}

// Log is a flattened farmOS log record.
type Log struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	Name       string       `json:"name"`
	Status     string       `json:"status"`
	Timestamp  *string      `json:"timestamp"`
	Notes      *string      `json:"notes"`
	Assets     []farmos.Ref `json:"assets"`
	Locations  []farmos.Ref `json:"locations"`
	IsMovement bool         `json:"is_movement"`
}

// LogList is the result of a log listing query.
type LogList struct {
	Total    int   `json:"total,omitempty"`
	Returned int   `json:"returned"`
	Logs     []Log `json:"logs"`
}

// LogsQuery filters a log listing. All fields are optional.
type LogsQuery struct {
	Type     string
	Status   string
	DateFrom string
	DateTo   string
	AssetID  string
	Limit    int
	Offset   int
}

func normalizeLog(res gjson.Result, inc farmos.Included) Log {
	attrs := res.Get("attributes")

	assets := farmos.Refs(res.Get("relationships.asset.data"))
	locations := farmos.Refs(res.Get("relationships.location.data"))

	if inc != nil {
		assets = inc.Resolve(assets)
		locations = inc.Resolve(locations)
	}

	return Log{
		ID:         res.Get("id").Str,
		Type:       farmos.Bundle(res.Get("type").Str),
		Name:       attrs.Get("name").Str,
		Status:     attrs.Get("status").Str,
		Timestamp:  farmos.EpochToISO(attrs.Get("timestamp")),
		Notes:      farmos.Text(attrs.Get("notes")),
		Assets:     assets,
		Locations:  locations,
		IsMovement: attrs.Get("is_movement").Bool(),
	}
}

// dateRangeParams adds timestamp range filters. Bare dates are padded to
// the start and end of day respectively.
func dateRangeParams(q url.Values, dateFrom, dateTo string) error {
	if dateFrom != "" {
		t, err := farmos.ParseISO(dateFrom)
		if err != nil {
			return validationErrorf("invalid date_from: %v", err)
		}

		q.Set("filter[date_from][condition][path]", "timestamp")
		q.Set("filter[date_from][condition][value]", t.UTC().Format(time.RFC3339))
		q.Set("filter[date_from][condition][operator]", ">=")
	}

	if dateTo != "" {
		t, err := farmos.ParseISO(dateTo)
		if err != nil {
			return validationErrorf("invalid date_to: %v", err)
		}

		// A bare date means the whole day is included.
		if len(dateTo) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Second)
		}

		q.Set("filter[date_to][condition][path]", "timestamp")
		q.Set("filter[date_to][condition][value]", t.UTC().Format(time.RFC3339))
		q.Set("filter[date_to][condition][operator]", "<=")
	}

	return nil
}

// Logs lists logs newest first, filtered server-side. With no type set it
// fans out across all known bundles, skipping bundles the instance does
// not have enabled, then merges and trims.
func (s *Service) Logs(ctx context.Context, query LogsQuery) (*LogList, error) {
	if err := validateChoice("log_type", query.Type, LogTypes); err != nil {
		return nil, err
	}

	if err := validateChoice("status", query.Status, logStatuses); err != nil {
		return nil, err
	}

	limit := clampLimit(query.Limit, 20)

	q := url.Values{}
	q.Set("sort", "-timestamp")

	if query.Status != "" {
		q.Set("filter[status]", query.Status)
	}

	if query.AssetID != "" {
		q.Set("filter[asset.id]", query.AssetID)
	}

	if err := dateRangeParams(q, query.DateFrom, query.DateTo); err != nil {
		return nil, err
	}

	if query.Type != "" {
		pageParams(q, limit, query.Offset)

		doc, err := s.client.Get(ctx, "log/"+query.Type, q)
		if err != nil {
			return nil, err
		}

		return logListFromDoc(gjson.ParseBytes(doc)), nil
	}

	// No type specified: query every known bundle, merge, trim to limit.
	// Pagination offsets do not compose across bundles, so offset is
	// ignored here.
	pageParams(q, limit, 0)

	var logs []Log

	for _, t := range LogTypes {
		doc, err := s.client.Get(ctx, "log/"+t, q)
		if err != nil {
			if skippableBundle(err) {
				continue
			}

			return nil, err
		}

		parsed := gjson.ParseBytes(doc)
		for _, r := range parsed.Get("data").Array() {
			logs = append(logs, normalizeLog(r, nil))
		}
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return deref(logs[i].Timestamp) > deref(logs[j].Timestamp)
	})

	if len(logs) > limit {
		logs = logs[:limit]
	}

	return &LogList{Returned: len(logs), Logs: logs}, nil
}

func logListFromDoc(doc gjson.Result) *LogList {
	var logs []Log
	for _, r := range doc.Get("data").Array() {
		logs = append(logs, normalizeLog(r, nil))
	}

	total := len(logs)
	if c := doc.Get("meta.count"); c.Exists() {
		total = int(c.Int())
	}

	return &LogList{Total: total, Returned: len(logs), Logs: logs}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// Log fetches a single log by UUID, sideloading related asset and
// location names. When the bundle is unknown, all bundles are tried.
func (s *Service) Log(ctx context.Context, id, logType string) (*Log, error) {
	if err := validateChoice("log_type", logType, LogTypes); err != nil {
		return nil, err
	}

	types := LogTypes
	if logType != "" {
		types = []string{logType}
	}

	q := url.Values{}
	q.Set("include", "asset,location")

	for _, t := range types {
		doc, err := s.client.Get(ctx, "log/"+t+"/"+id, q)
		if err != nil {
			if skippableBundle(err) {
				continue
			}

			return nil, err
		}

		parsed := gjson.ParseBytes(doc)

		data := parsed.Get("data")
		if !data.IsObject() {
			continue
		}

		log := normalizeLog(data, farmos.IndexIncluded(parsed))

		return &log, nil
	}

	return nil, &NotFoundError{Entity: "log", ID: id}
}

// CreateLogInput holds the fields for a new log.
type CreateLogInput struct {
	Type      string
	Name      string
	Status    string
	Notes     string
	Timestamp string
	AssetIDs  []string
}

// CreateLog creates a log. Linked asset UUIDs have their bundle resolved
// automatically so the relationship carries the full JSON:API type.
func (s *Service) CreateLog(ctx context.Context, in CreateLogInput) (*Log, error) {
	if in.Type == "" {
		return nil, validationErrorf("log_type is required")
	}

	if err := validateChoice("log_type", in.Type, LogTypes); err != nil {
		return nil, err
	}

	if in.Name == "" {
		return nil, validationErrorf("name is required")
	}

	status := in.Status
	if status == "" {
		status = "pending"
	}

	if err := validateChoice("status", status, logStatuses); err != nil {
		return nil, err
	}

	ts := time.Now().Unix()

	if in.Timestamp != "" {
		var err error
		if ts, err = farmos.ISOToEpoch(in.Timestamp); err != nil {
			return nil, validationErrorf("invalid timestamp: %v", err)
		}
	}

	payload := resource{
		Type: "log--" + in.Type,
		Attributes: map[string]interface{}{
			"name":      in.Name,
			"status":    status,
			"timestamp": ts,
		},
	}

	if in.Notes != "" {
		payload.Attributes["notes"] = textField(in.Notes)
	}

	if len(in.AssetIDs) > 0 {
		refs := make([]farmos.Ref, 0, len(in.AssetIDs))

		for _, id := range in.AssetIDs {
			bundle, err := s.lookupAssetBundle(ctx, id)
			if err != nil {
				return nil, err
			}

			refs = append(refs, farmos.Ref{ID: id, Type: "asset--" + bundle})
		}

		payload.Relationships = map[string]interface{}{
			"asset": map[string]interface{}{"data": refs},
		}
	}

	doc, err := s.client.Post(ctx, "log/"+in.Type, payload)
	if err != nil {
		return nil, err
	}

	log := normalizeLog(gjson.ParseBytes(doc).Get("data"), nil)

	return &log, nil
}

// UpdateLogInput carries a partial log update. Nil fields are untouched.
type UpdateLogInput struct {
	ID     string
	Type   string
	Name   *string
	Status *string
	Notes  *string
}

// UpdateLog patches only the supplied fields of an existing log.
func (s *Service) UpdateLog(ctx context.Context, in UpdateLogInput) (*Log, error) {
	if in.ID == "" {
		return nil, validationErrorf("id is required")
	}

	if in.Type == "" {
		return nil, validationErrorf("log_type is required")
	}

	if err := validateChoice("log_type", in.Type, LogTypes); err != nil {
		return nil, err
	}

	payload := resource{
		Type:       "log--" + in.Type,
		ID:         in.ID,
		Attributes: map[string]interface{}{},
	}

	if in.Name != nil {
		payload.Attributes["name"] = *in.Name
	}

	if in.Status != nil {
		if err := validateChoice("status", *in.Status, logStatuses); err != nil {
			return nil, err
		}

		payload.Attributes["status"] = *in.Status
	}

	if in.Notes != nil {
		payload.Attributes["notes"] = textField(*in.Notes)
	}

	doc, err := s.client.Patch(ctx, "log/"+in.Type+"/"+in.ID, payload)
	if err != nil {
		return nil, err
	}

	log := normalizeLog(gjson.ParseBytes(doc).Get("data"), nil)

	return &log, nil
}
