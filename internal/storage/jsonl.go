package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// JSONLSink writes one JSON object per record, one record per line.
type JSONLSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{enc: json.NewEncoder(w)}
}

func (s *JSONLSink) Save(ctx context.Context, batch Batch) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res SaveResult
	for i := range batch.Records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.enc.Encode(&batch.Records[i]); err != nil {
			return res, fmt.Errorf("encode record %s: %w", batch.Records[i].ID, err)
		}
		res.Inserted++
	}
	return res, nil
}

// Close does not close the underlying writer; stdout outlives the sink.
func (s *JSONLSink) Close() error {
	return nil
}
