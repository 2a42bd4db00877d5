package blocks

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidJSON is returned for a payload that is not valid JSON.
	ErrInvalidJSON = errors.New("payload is not valid JSON")

	// ErrNotObject is returned for valid JSON that is not an object.
	ErrNotObject = errors.New("payload is not a JSON object")
)

// Payload is one decoded SSE data payload. Every field is optional.
//
// RelatedQueries and RelatedQueryItems are nil when the payload does not
// carry them, and non-nil (possibly empty) when it does.
type Payload struct {
	Blocks            []Block
	FinalSSEMessage   bool
	Status            string
	RelatedQueries    []string
	RelatedQueryItems []RelatedQueryItem

	// DirectAnswer and DirectSources are the legacy top-level "answer" and
	// "sources" fields.
	DirectAnswer  string
	DirectSources []WebResult
}

// ParsePayload decodes a data payload leniently: a field with an unexpected
// type is ignored instead of failing the whole payload. This holds inside
// blocks too, so one mistyped field or web result leaves the rest of its
// block intact. Blocks that are not objects are skipped.
func ParsePayload(data []byte) (*Payload, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrNotObject
	}

	p := &Payload{
		FinalSSEMessage: root.Get("final_sse_message").Type == gjson.True,
	}

	if status := root.Get("status"); status.Type == gjson.String {
		p.Status = status.Str
	}
	if answer := root.Get("answer"); answer.Type == gjson.String {
		p.DirectAnswer = answer.Str
	}

	if blocks := root.Get("blocks"); blocks.IsArray() {
		blocks.ForEach(func(_, raw gjson.Result) bool {
			if raw.IsObject() {
				p.Blocks = append(p.Blocks, decodeBlock(raw))
			}
			return true
		})
	}

	if sources := root.Get("sources"); sources.IsArray() {
		p.DirectSources = decodeWebResults(sources)
	}

	if items := root.Get("related_query_items"); items.IsArray() {
		p.RelatedQueryItems = make([]RelatedQueryItem, 0, len(items.Array()))
		items.ForEach(func(_, item gjson.Result) bool {
			p.RelatedQueryItems = append(p.RelatedQueryItems, RelatedQueryItem{
				Text: item.Get("text").String(),
				Type: item.Get("type").String(),
			})
			return true
		})
	}

	if queries := root.Get("related_queries"); queries.IsArray() {
		p.RelatedQueries = make([]string, 0, len(queries.Array()))
		queries.ForEach(func(_, q gjson.Result) bool {
			p.RelatedQueries = append(p.RelatedQueries, q.String())
			return true
		})
	}

	return p, nil
}

// Completed reports whether the payload marks the stream as complete.
func (p *Payload) Completed() bool {
	return p.FinalSSEMessage || p.Status == StatusCompleted
}

// decodeBlock reads the known parts of one block object field by field.
func decodeBlock(raw gjson.Result) Block {
	b := Block{IntendedUsage: stringOf(raw.Get("intended_usage"))}

	if mb := raw.Get("markdown_block"); mb.IsObject() {
		b.MarkdownBlock = &MarkdownBlock{Answer: stringOf(mb.Get("answer"))}
	}

	if db := raw.Get("diff_block"); db.IsObject() {
		diff := &DiffBlock{Field: stringOf(db.Get("field"))}
		db.Get("patches").ForEach(func(_, pt gjson.Result) bool {
			if !pt.IsObject() {
				return true
			}
			patch := Patch{Op: stringOf(pt.Get("op")), Path: stringOf(pt.Get("path"))}
			if v := pt.Get("value"); v.Exists() {
				patch.Value = json.RawMessage(v.Raw)
			}
			diff.Patches = append(diff.Patches, patch)
			return true
		})
		b.DiffBlock = diff
	}

	if smb := raw.Get("sources_mode_block"); smb.IsObject() {
		block := &SourcesModeBlock{}
		if list := smb.Get("web_results"); list.IsArray() {
			block.WebResults = decodeWebResults(list)
		}
		smb.Get("rows").ForEach(func(_, row gjson.Result) bool {
			if !row.IsObject() {
				return true
			}
			sr := SourceRow{Status: stringOf(row.Get("status"))}
			if wr := row.Get("web_result"); wr.IsObject() {
				res := webResultOf(wr)
				sr.WebResult = &res
			}
			block.Rows = append(block.Rows, sr)
			return true
		})
		b.SourcesModeBlock = block
	}

	return b
}

// stringOf returns r's value when it is a JSON string and "" otherwise.
func stringOf(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}

// decodeWebResults reads every object in a JSON array as a WebResult.
// Non-object entries are skipped, and so are fields that are not strings.
func decodeWebResults(list gjson.Result) []WebResult {
	var results []WebResult
	list.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		results = append(results, webResultOf(item))
		return true
	})
	return results
}

func webResultOf(item gjson.Result) WebResult {
	return WebResult{
		Name:    stringOf(item.Get("name")),
		Title:   stringOf(item.Get("title")),
		URL:     stringOf(item.Get("url")),
		Snippet: stringOf(item.Get("snippet")),
	}
}
