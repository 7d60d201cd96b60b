package monitor

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// WriterSink writes each event as a line.
type WriterSink struct {
	sync.Mutex

	W io.Writer

	// JSON, if true, writes each event as JSON.
	JSON bool
}

func (s *WriterSink) Emit(e Event) error {
	s.Lock()
	defer s.Unlock()

	if s.JSON {
		js, err := json.Marshal(&e)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(s.W, "%s\n", js)
		return err
	}

	_, err := fmt.Fprintf(s.W, "%s\n", e)
	return err
}

// SinkFunc makes a Sink from a function.
type SinkFunc func(e Event) error

func (f SinkFunc) Emit(e Event) error {
	return f(e)
}
