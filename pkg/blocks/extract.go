package blocks

import (
	"strings"

	"github.com/tidwall/gjson"
)

// answerFields are the diff block fields whose patches target answer content.
var answerFields = map[string]bool{
	"markdown_block": true,
	"answer":         true,
}

// sourceListKeys are the keys a patch value may hold a web results list under.
var sourceListKeys = []string{"web_results", "sources"}

// Extraction is the semantic content of a single payload.
type Extraction struct {
	// Answer is the current full answer, or empty when the payload carries
	// no answer. Empty never means the answer was reset.
	Answer string

	// Sources is the full source list carried by the payload.
	Sources []NormalizedSource

	// RelatedQueries is set when HasRelatedQueries is true.
	RelatedQueries    []string
	HasRelatedQueries bool

	// Completed is set when the payload marks the stream as complete.
	Completed bool
}

// Extract runs every extractor over the payload.
func Extract(p *Payload) Extraction {
	queries, ok := ExtractRelatedQueries(p)

	return Extraction{
		Answer:            ExtractPayloadAnswer(p),
		Sources:           ExtractPayloadSources(p),
		RelatedQueries:    queries,
		HasRelatedQueries: ok,
		Completed:         p.Completed(),
	}
}

// ExtractPayloadAnswer extracts the answer from the payload's blocks, falling
// back to the legacy top-level answer field.
func ExtractPayloadAnswer(p *Payload) string {
	if answer := ExtractAnswer(p.Blocks); answer != "" {
		return answer
	}
	return p.DirectAnswer
}

// ExtractPayloadSources extracts sources from the payload's blocks, falling
// back to the legacy top-level sources field.
func ExtractPayloadSources(p *Payload) []NormalizedSource {
	if sources := ExtractSources(p.Blocks); len(sources) > 0 {
		return sources
	}

	var sources []NormalizedSource
	for _, wr := range p.DirectSources {
		sources = append(sources, Normalize(wr))
	}
	return sources
}

// ExtractAnswer returns the answer carried by the first qualifying block.
// Answers are never concatenated across blocks. Per block, in order:
//  1. a final markdown block with a direct answer string
//  2. a diff block targeting the answer whose answer patch value is a string
//     or an object with an "answer" string
//  3. any diff block whose first patch value has a key matching "answer"
//     case-insensitively
//
// An empty result means the blocks carry no answer.
func ExtractAnswer(blocks []Block) string {
	for _, b := range blocks {
		if answer := answerFromBlock(b); answer != "" {
			return answer
		}
	}
	return ""
}

func answerFromBlock(b Block) string {
	if b.MarkdownBlock != nil && b.MarkdownBlock.Answer != "" {
		return b.MarkdownBlock.Answer
	}

	diff := b.DiffBlock
	if diff == nil || len(diff.Patches) == 0 {
		return ""
	}

	if answerFields[diff.Field] {
		if answer := answerFromValue(answerPatch(diff).value()); answer != "" {
			return answer
		}
	}

	return answerByKey(diff.Patches[0].value())
}

// answerPatch picks the patch replacing the answer, or the first patch.
func answerPatch(diff *DiffBlock) Patch {
	for _, p := range diff.Patches {
		if p.Path == "/answer" {
			return p
		}
	}
	return diff.Patches[0]
}

func answerFromValue(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	if v.IsObject() {
		if answer := v.Get("answer"); answer.Type == gjson.String {
			return answer.Str
		}
	}
	return ""
}

func answerByKey(v gjson.Result) string {
	if !v.IsObject() {
		return ""
	}

	var answer string
	v.ForEach(func(key, val gjson.Result) bool {
		if strings.EqualFold(key.String(), "answer") && val.Type == gjson.String {
			answer = val.Str
			return false
		}
		return true
	})
	return answer
}

// ExtractSources accumulates the sources of every block in the list: direct
// web results, source rows and web result lists carried by diff patches.
func ExtractSources(blocks []Block) []NormalizedSource {
	var sources []NormalizedSource

	for _, b := range blocks {
		if smb := b.SourcesModeBlock; smb != nil {
			for _, wr := range smb.WebResults {
				sources = append(sources, Normalize(wr))
			}
			for _, row := range smb.Rows {
				if row.WebResult != nil {
					sources = append(sources, Normalize(*row.WebResult))
				}
			}
		}

		if b.DiffBlock != nil {
			for _, p := range b.DiffBlock.Patches {
				for _, wr := range webResultsFromPatch(p) {
					sources = append(sources, Normalize(wr))
				}
			}
		}
	}

	return sources
}

func webResultsFromPatch(p Patch) []WebResult {
	v := p.value()

	switch {
	case v.IsObject():
		for _, key := range sourceListKeys {
			if list := v.Get(key); list.IsArray() {
				return decodeWebResults(list)
			}
		}
		if rows := v.Get("rows"); rows.IsArray() {
			return decodeWebResults(rows.Get("#.web_result"))
		}
	case v.IsArray() && (p.Path == "/web_results" || p.Path == "/sources"):
		return decodeWebResults(v)
	}

	return nil
}

// ExtractRelatedQueries returns the payload's related queries, preferring the
// structured items over the flat list. The boolean reports whether the
// payload carried either form.
func ExtractRelatedQueries(p *Payload) ([]string, bool) {
	if p.RelatedQueryItems != nil {
		queries := make([]string, 0, len(p.RelatedQueryItems))
		for _, item := range p.RelatedQueryItems {
			queries = append(queries, item.Text)
		}
		return queries, true
	}

	if p.RelatedQueries != nil {
		return append([]string{}, p.RelatedQueries...), true
	}

	return nil, false
}
