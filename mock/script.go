package mock

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/papercomputeco/askstream/pkg/blocks"
)

// Script describes the answer the mock server streams.
type Script struct {
	// Answer is the final answer text. A "%s" verb is replaced with the
	// question.
	Answer string

	Sources           []blocks.WebResult
	RelatedQueryItems []blocks.RelatedQueryItem

	// Steps is the number of growing answer patches sent before the final
	// answer block.
	Steps int
}

// DefaultScript is streamed when no script is configured.
func DefaultScript() Script {
	return Script{
		Answer: "You asked: **%s**\n\n" +
			"This answer is streamed by the askstream mock server. " +
			"It grows through diff patches, then arrives whole in a final markdown block.",
		Sources: []blocks.WebResult{
			{Name: "Server-sent events", URL: "https://html.spec.whatwg.org/multipage/server-sent-events.html"},
			{Title: "JSON Patch", URL: "https://datatracker.ietf.org/doc/html/rfc6902"},
		},
		RelatedQueryItems: []blocks.RelatedQueryItem{
			{Text: "How does SSE reconnect?"},
			{Text: "What is a JSON patch?"},
		},
		Steps: 4,
	}
}

type payload struct {
	Blocks            []blocks.Block            `json:"blocks,omitempty"`
	FinalSSEMessage   bool                      `json:"final_sse_message,omitempty"`
	Status            string                    `json:"status,omitempty"`
	RelatedQueries    []string                  `json:"related_queries,omitempty"`
	RelatedQueryItems []blocks.RelatedQueryItem `json:"related_query_items,omitempty"`
}

// Frames renders the script for question as complete SSE frames.
//
// The first patch carries the answer inside an object value, later patches
// replace the answer string. Sources arrive in their own block, related
// queries come with the final markdown block, and a final message plus a
// [DONE] sentinel close the stream.
func (s Script) Frames(question string) ([]string, error) {
	answer := s.Answer
	if strings.Contains(answer, "%s") {
		answer = fmt.Sprintf(answer, question)
	}

	var frames []string
	add := func(p payload) error {
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshaling frame: %w", err)
		}
		frames = append(frames, "data: "+string(b)+"\n\n")
		return nil
	}

	for i, prefix := range prefixes(answer, s.Steps) {
		patch, err := answerPatch(i, prefix)
		if err != nil {
			return nil, err
		}
		err = add(payload{Blocks: []blocks.Block{{
			IntendedUsage: blocks.UsageAskText,
			DiffBlock: &blocks.DiffBlock{
				Field:   "markdown_block",
				Patches: []blocks.Patch{patch},
			},
		}}})
		if err != nil {
			return nil, err
		}
	}

	if len(s.Sources) > 0 {
		err := add(payload{Blocks: []blocks.Block{{
			IntendedUsage:    blocks.UsageSourcesAnswerMode,
			SourcesModeBlock: &blocks.SourcesModeBlock{WebResults: s.Sources},
		}}})
		if err != nil {
			return nil, err
		}
	}

	final := payload{
		Blocks: []blocks.Block{{
			IntendedUsage: blocks.UsageAskText,
			MarkdownBlock: &blocks.MarkdownBlock{Answer: answer},
		}},
		RelatedQueryItems: s.RelatedQueryItems,
	}
	if err := add(final); err != nil {
		return nil, err
	}

	if err := add(payload{FinalSSEMessage: true, Status: blocks.StatusCompleted}); err != nil {
		return nil, err
	}

	return append(frames, "data: [DONE]\n\n"), nil
}

func answerPatch(i int, prefix string) (blocks.Patch, error) {
	if i == 0 {
		v, err := json.Marshal(map[string]any{"answer": prefix, "chunks": []string{}})
		if err != nil {
			return blocks.Patch{}, fmt.Errorf("marshaling patch: %w", err)
		}
		return blocks.Patch{Op: "add", Path: "", Value: v}, nil
	}

	v, err := json.Marshal(prefix)
	if err != nil {
		return blocks.Patch{}, fmt.Errorf("marshaling patch: %w", err)
	}
	return blocks.Patch{Op: "replace", Path: "/answer", Value: v}, nil
}

// prefixes cuts answer into n growing word-aligned prefixes, the last of
// which is the whole answer.
func prefixes(answer string, n int) []string {
	words := strings.SplitAfter(answer, " ")
	if n <= 0 || answer == "" {
		return nil
	}
	n = min(n, len(words))

	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		end := i * len(words) / n
		out = append(out, strings.TrimRight(strings.Join(words[:end], ""), " "))
	}
	return out
}
