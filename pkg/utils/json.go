package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// DecodePayload converts a message payload into T. Payloads that crossed the
// wire arrive as generic JSON values and are re-encoded; in-process payloads
// already of type T are returned as is.
func DecodePayload[T any](v any) (T, error) {
	switch p := v.(type) {
	case T:
		return p, nil
	case *T:
		if p == nil {
			return *new(T), errors.New("nil payload")
		}
		return *p, nil
	}
	data, err := jsoniter.Marshal(v)
	if err != nil {
		return *new(T), errors.WithMessage(err, "marshal json")
	}
	var result T
	if err := jsoniter.Unmarshal(data, &result); err != nil {
		return *new(T), errors.WithMessage(err, "unmarshal json")
	}
	return result, nil
}
