package domain

// RewriteRequest is the composer's content-improvement request. Request-scoped
// only; nothing here is persisted.
type RewriteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tone    string `json:"tone"`
}

// RewriteResult always carries all three text fields. Note is set when a
// heuristic fallback was used instead of a genuine upstream rewrite.
type RewriteResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Summary string `json:"summary"`
	Note    string `json:"note,omitempty"`
}
