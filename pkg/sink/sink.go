// Package sink ships stringified safe trees to log destinations.
//
// Each [Record] carries one safe tree line plus the metadata a log pipeline
// indexes on. Records go to an io.Writer as JSON lines ([WriterSink]) or into
// a MongoDB collection ([MongoSink]); [Open] picks the sink from a target
// string:
//
//	s, err := sink.Open(ctx, "mongodb://localhost:27017/logs?collection=values")
//	defer s.Close(ctx)
//	err = s.Write(ctx, sink.NewRecord("info", "loaded config", line))
package sink

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/safetree/pkg/errors"
)

// Record is one shipped log entry. Line is the single-line JSON rendering
// of a safe tree.
type Record struct {
	ID      uuid.UUID `json:"id"`
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"msg"`
	Source  string    `json:"source,omitempty"`
	Line    string    `json:"-"`
}

// NewRecord stamps a record with a fresh random ID and the current time.
func NewRecord(level, message, line string) Record {
	return Record{
		ID:      uuid.New(),
		Time:    time.Now().UTC(),
		Level:   level,
		Message: message,
		Line:    line,
	}
}

// Sink receives records.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close(ctx context.Context) error
}

// Open returns the sink for target:
//
//   - "" or "-": stdout
//   - mongodb:// or mongodb+srv:// URIs: a MongoSink
//   - anything else: a file, opened for appending
func Open(ctx context.Context, target string) (Sink, error) {
	switch {
	case target == "" || target == "-":
		return NewWriterSink(nopCloser{os.Stdout}), nil
	case strings.Contains(target, "://"):
		if err := errors.ValidateURL(target, "mongodb", "mongodb+srv"); err != nil {
			return nil, err
		}
		return DialMongo(ctx, target)
	}

	if err := errors.ValidatePath(target); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open sink %s", target)
	}
	return NewWriterSink(f), nil
}

// WriterSink writes each record as one JSON line. It is safe for concurrent
// use.
type WriterSink struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// NewWriterSink wraps w. Close closes w.
func NewWriterSink(w io.WriteCloser) *WriterSink {
	return &WriterSink{w: w}
}

// jsonRecord embeds the safe tree line as a raw value rather than a string.
type jsonRecord struct {
	Record
	Value json.RawMessage `json:"value"`
}

func (s *WriterSink) Write(_ context.Context, rec Record) error {
	if !json.Valid([]byte(rec.Line)) {
		return errors.New(errors.ErrCodeInvalidInput, "record %s: line is not valid JSON", rec.ID)
	}
	data, err := json.Marshal(jsonRecord{Record: rec, Value: json.RawMessage(rec.Line)})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode record %s", rec.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(append(data, '\n'))
	return err
}

func (s *WriterSink) Close(context.Context) error {
	return s.w.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
