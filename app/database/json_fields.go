package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// marshalList serializes a list-valued field to its JSON text column
// representation. Empty lists are stored as NULL, matching how absent
// scraper fields arrive.
func marshalList(values []string) (interface{}, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list field: %w", err)
	}
	return string(data), nil
}

// unmarshalList decodes a JSON text column into a list. NULL and
// malformed values both decode to an empty list so a single bad row
// cannot break result scanning.
func unmarshalList(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
		return nil
	}
	return values
}
