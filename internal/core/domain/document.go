package domain

// Document is a retrieved unit of text plus free-form metadata, treated as
// evidence for answer synthesis. Documents are immutable once returned by a
// retrieval backend and live only for the duration of one pipeline call.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Answer is the result of one question-answering invocation. Sources is
// populated only when the pipeline was built with source documents enabled.
type Answer struct {
	Text    string     `json:"text"`
	Sources []Document `json:"sources,omitempty"`
}

type SearchMode string

const (
	// SearchModeSimilarity ranks purely by relevance to the question.
	SearchModeSimilarity SearchMode = "similarity"
	// SearchModeDiversity trades top relevance for reduced redundancy
	// among the returned results (max marginal relevance).
	SearchModeDiversity SearchMode = "diversity"
)
