package gqlcore

import "encoding/json"

// parseJSON parses JSON data into the provided interface, matching the
// teacher's pkg/mythic/client.go helper of the same name.
func parseJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
