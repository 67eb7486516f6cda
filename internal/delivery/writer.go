// internal/delivery/writer.go
package delivery

import (
	"context"
	"fmt"
	"io"
	"sync"

	"package-provider/internal/models"
)

// WriterSink writes one JSON envelope per line. Used by the CLI tools.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Name() string { return "stdout" }

func (s *WriterSink) Push(ctx context.Context, envelope models.OutputEnvelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encode(envelope)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(body, '\n')); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}
