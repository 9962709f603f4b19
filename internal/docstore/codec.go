package docstore

import (
	"encoding/json"
	"fmt"
)

// Encode converts a struct into a Record using its json tags.
func Encode(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to convert document to record: %w", err)
	}
	return rec, nil
}

// Decode fills v from a Record using v's json tags.
func Decode(rec Record, v any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

func checkSize(rec Record) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	if len(raw) > MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, len(raw))
	}
	return raw, nil
}
