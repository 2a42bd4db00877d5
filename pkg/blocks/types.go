// Package blocks decodes streamed answer payloads and extracts the answer
// text, source citations and related queries from their block lists.
//
// A payload carries blocks in several incompatible shapes: final values
// (a markdown block holding the whole answer), JSON-patch style diffs whose
// values are resolved by context, and legacy top-level fields. The extractors
// in this package reconcile all of them into one semantic view.
package blocks

import (
	"cmp"
	"encoding/json"

	"github.com/tidwall/gjson"
)

const (
	// UsageAskText marks a block carrying answer text.
	UsageAskText = "ask_text"

	// UsageSourcesAnswerMode marks a block carrying source citations.
	UsageSourcesAnswerMode = "sources_answer_mode"

	// StatusCompleted is the payload status sent once the answer is final.
	StatusCompleted = "COMPLETED"

	// UntitledSource is the title given to a source with no name, title or url.
	UntitledSource = "Untitled"
)

// Block is one semantic unit of a streamed turn. Exactly which of the
// optional parts is set depends on the block's variant; unknown fields are
// ignored.
type Block struct {
	IntendedUsage    string            `json:"intended_usage,omitempty"`
	MarkdownBlock    *MarkdownBlock    `json:"markdown_block,omitempty"`
	DiffBlock        *DiffBlock        `json:"diff_block,omitempty"`
	SourcesModeBlock *SourcesModeBlock `json:"sources_mode_block,omitempty"`
}

// MarkdownBlock is the final form of an answer block.
type MarkdownBlock struct {
	Answer string `json:"answer,omitempty"`
}

// DiffBlock describes changes to the block part named by Field as an ordered
// list of patches.
type DiffBlock struct {
	Field   string  `json:"field,omitempty"`
	Patches []Patch `json:"patches,omitempty"`
}

// Patch is a single patch operation. Value may be a plain string, an object
// with an "answer" field or an object holding a web results list. Its shape
// is only known from the block it belongs to, so it is kept raw.
type Patch struct {
	Op    string          `json:"op,omitempty"`
	Path  string          `json:"path,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// value parses the raw patch value. A missing value yields a Null result.
func (p Patch) value() gjson.Result {
	if len(p.Value) == 0 {
		return gjson.Result{}
	}
	return gjson.ParseBytes(p.Value)
}

// SourcesModeBlock lists the web results an answer cites.
type SourcesModeBlock struct {
	WebResults []WebResult `json:"web_results,omitempty"`
	Rows       []SourceRow `json:"rows,omitempty"`
}

// SourceRow wraps a web result with its retrieval status.
type SourceRow struct {
	WebResult *WebResult `json:"web_result,omitempty"`
	Status    string     `json:"status,omitempty"`
}

// WebResult is a source record as sent by the server.
type WebResult struct {
	Name    string `json:"name,omitempty"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// NormalizedSource is a source citation ready for display.
type NormalizedSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Name  string `json:"name,omitempty"`
}

// Normalize resolves the display title of a web result through the chain
// name, title, url, "Untitled".
func Normalize(wr WebResult) NormalizedSource {
	return NormalizedSource{
		Title: cmp.Or(wr.Name, wr.Title, wr.URL, UntitledSource),
		URL:   wr.URL,
		Name:  wr.Name,
	}
}

// RelatedQueryItem is the structured form of a related query.
type RelatedQueryItem struct {
	Text string `json:"text"`
	Type string `json:"type,omitempty"`
}
