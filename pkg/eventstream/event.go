package eventstream

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/askstream/pkg/blocks"
	"github.com/papercomputeco/askstream/pkg/stream"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeAnswerCompleted is emitted after a streamed answer completed.
	EventTypeAnswerCompleted = "askstream.answer.completed"
)

// AnswerCompletedEvent is a transport-neutral event payload for a completed answer.
type AnswerCompletedEvent struct {
	SchemaVersion int               `json:"schema_version"`
	EventType     string            `json:"event_type"`
	EventID       string            `json:"event_id"`
	EmittedAt     time.Time         `json:"emitted_at"`
	Source        EventSource       `json:"source"`
	RequestMeta   AnswerRequestMeta `json:"request_meta"`
	Answer        AnswerPayload     `json:"answer"`
}

// EventSource identifies where the answer came from.
type EventSource struct {
	Endpoint string `json:"endpoint"`
}

// AnswerRequestMeta captures request lifecycle metadata for the event.
type AnswerRequestMeta struct {
	RequestID   string    `json:"request_id"`
	Generation  uint64    `json:"generation"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
}

// AnswerPayload is the question and the assembled answer.
type AnswerPayload struct {
	Question       string                    `json:"question"`
	Text           string                    `json:"text"`
	Sources        []blocks.NormalizedSource `json:"sources"`
	RelatedQueries []string                  `json:"related_queries,omitempty"`
}

// NewAnswerCompletedEvent builds the event for a completed stream response.
func NewAnswerCompletedEvent(question, endpoint string, resp *stream.Response, startedAt, completedAt time.Time) *AnswerCompletedEvent {
	return &AnswerCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeAnswerCompleted,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        EventSource{Endpoint: endpoint},
		RequestMeta: AnswerRequestMeta{
			RequestID:   resp.RequestID,
			Generation:  resp.Generation,
			StartedAt:   startedAt.UTC(),
			CompletedAt: completedAt.UTC(),
			DurationMs:  completedAt.Sub(startedAt).Milliseconds(),
		},
		Answer: AnswerPayload{
			Question:       question,
			Text:           resp.Answer,
			Sources:        slices.Clone(resp.Sources),
			RelatedQueries: slices.Clone(resp.RelatedQueries),
		},
	}
}
