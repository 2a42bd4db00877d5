package stream_test

import (
	"errors"
	"io"
	"sync"

	"github.com/papercomputeco/askstream/pkg/stream"
)

const (
	parisFrame   = `data: {"blocks":[{"intended_usage":"ask_text","markdown_block":{"answer":"Paris"}}]}` + "\n\n"
	sourcesFrame = `data: {"blocks":[{"intended_usage":"sources_answer_mode","sources_mode_block":{"web_results":[{"name":"Wiki","url":"https://wiki"}]}}]}` + "\n\n"
	finalFrame   = `data: {"final_sse_message":true,"blocks":[]}` + "\n\n"
)

func answerFrame(answer string) string {
	return `data: {"blocks":[{"intended_usage":"ask_text","diff_block":{"field":"markdown_block","patches":[{"op":"replace","path":"/answer","value":"` + answer + `"}]}}]}` + "\n\n"
}

// recorder captures every callback of a stream.
type recorder struct {
	chunks    []string
	completed []*stream.Response
	errs      []error

	// onChunk runs after a chunk is recorded.
	onChunk func(answer string)
}

func (r *recorder) OnChunk(answer string) {
	r.chunks = append(r.chunks, answer)
	if r.onChunk != nil {
		r.onChunk(answer)
	}
}

func (r *recorder) OnComplete(resp *stream.Response) {
	r.completed = append(r.completed, resp)
}

func (r *recorder) OnError(err error) {
	r.errs = append(r.errs, err)
}

// chunkReader hands out its data in reads of at most size bytes.
type chunkReader struct {
	data []byte
	size int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := min(c.size, len(c.data), len(p))
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

// blockingBody serves data once, then blocks further reads until closed.
type blockingBody struct {
	data   []byte
	served bool

	once   sync.Once
	closed chan struct{}
}

func newBlockingBody(data string) *blockingBody {
	return &blockingBody{data: []byte(data), closed: make(chan struct{})}
}

func (b *blockingBody) Read(p []byte) (int, error) {
	if !b.served {
		b.served = true
		return copy(p, b.data), nil
	}
	<-b.closed
	return 0, io.ErrClosedPipe
}

func (b *blockingBody) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

func (b *blockingBody) isClosed() bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}

// failAfter returns data and then fails with err.
func failAfter(data string, err error) io.Reader {
	return io.MultiReader(&chunkReader{data: []byte(data), size: len(data)}, errReader{err})
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

var errConnReset = errors.New("connection reset by peer")
