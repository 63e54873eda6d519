package farm

import (
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// infoKeys are the farmOS-specific fields in the JSON:API root document's
// meta object.
var infoKeys = []string{"farm_name", "farmos_version", "system_of_measurement", "user"}

// Info returns metadata about the connected farmOS instance: farm name,
// version, system of measurement, and the authenticated user. When the
// meta shape is unexpected, the raw meta object is returned for
// inspection instead of failing.
func (s *Service) Info(ctx context.Context) (map[string]interface{}, error) {
	doc, err := s.client.Get(ctx, "", nil)
	if err != nil {
		return nil, err
	}

	meta := gjson.ParseBytes(doc).Get("meta")

	info := map[string]interface{}{}

	for _, key := range infoKeys {
		if v := meta.Get(key); v.Exists() {
			info[key] = json.RawMessage(v.Raw)
		}
	}

	if len(info) == 0 {
		raw := meta.Raw
		if raw == "" {
			raw = "{}"
		}

		info["raw_meta"] = json.RawMessage(raw)
	}

	return info, nil
}
