package clinicaltables

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseResponse normalizes the positional array response from the Clinical
// Tables API:
//
//	[0] total_count
//	[1] codes
//	[2] extra_data (field -> values, positional)
//	[3] display_strings (one row per code)
//	[4] code_systems (unused)
//
// Missing or short arrays degrade to empty displays and extras rather than
// failing the whole response.
func parseResponse(raw []json.RawMessage, extraFields []string) []Record {
	if len(raw) < 4 {
		return nil
	}

	var codes []string
	if err := json.Unmarshal(raw[1], &codes); err != nil || len(codes) == 0 {
		return nil
	}

	extraData := map[string][]any{}
	_ = json.Unmarshal(raw[2], &extraData)

	var displayRows []json.RawMessage
	_ = json.Unmarshal(raw[3], &displayRows)

	records := make([]Record, 0, len(codes))
	for i, code := range codes {
		record := Record{
			Code:    code,
			Display: displayAt(displayRows, i, code),
		}

		if len(extraFields) > 0 && len(extraData) > 0 {
			record.Extra = map[string]any{}
			for _, field := range extraFields {
				if values, ok := extraData[field]; ok && i < len(values) {
					record.Extra[field] = values[i]
				}
			}
		}

		records = append(records, record)
	}

	return records
}

// displayAt builds the display string for index i. Multi-field rows drop a
// leading element that exactly equals the code and join the rest with " - ".
func displayAt(rows []json.RawMessage, i int, code string) string {
	if i >= len(rows) {
		return ""
	}

	var fields []any
	if err := json.Unmarshal(rows[i], &fields); err != nil {
		var single string
		if json.Unmarshal(rows[i], &single) == nil {
			return single
		}
		return ""
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		if s := fmt.Sprintf("%v", f); s != "" {
			parts = append(parts, s)
		}
	}

	if len(parts) > 1 && parts[0] == code {
		parts = parts[1:]
	}
	return strings.Join(parts, " - ")
}
