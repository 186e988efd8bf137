package postgres

import "encoding/json"

// nonNil keeps JSONB list columns as [] instead of the JSON literal null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// rawJSON turns an empty payload into SQL NULL.
func rawJSON(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
