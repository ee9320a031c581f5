package entities

// Source records the provenance of a result: which adapter produced it and
// which search term it was found with. Every consolidated result must trace
// back to a real adapter response through its Source.
type Source struct {
	Adapter string `json:"adapter"`
	Term    string `json:"term"`
}

// CodeRecord is a raw normalized hit from one coding-system search.
// Code is the natural dedup key within a system. Confidence is zero until
// the consolidator scores the record.
type CodeRecord struct {
	Code       string         `json:"code"`
	Display    string         `json:"display"`
	SearchTerm string         `json:"search_term,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	Source     Source         `json:"source"`
}

// CodeResult is a ranked, consolidated result. Immutable once produced;
// Confidence is a heuristic relevance score in [0,1], not a calibrated
// probability.
type CodeResult struct {
	System     string         `json:"system"`
	Code       string         `json:"code"`
	Display    string         `json:"display"`
	Confidence float64        `json:"confidence"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Source     Source         `json:"source"`
}

// ParentInfo holds hierarchy information for a code (currently ICD-10-CM only).
type ParentInfo struct {
	ParentCode    string `json:"parent_code"`
	ParentDisplay string `json:"parent_display"`
}

// CallRecord is a diagnostic trace entry for one dispatched search.
type CallRecord struct {
	System string `json:"system"`
	Term   string `json:"term"`
	Status string `json:"status"` // "success" or "error"
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}
