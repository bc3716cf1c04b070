package protocol

import (
	"fmt"
)

// recordCodec puts a Record on a gRPC stream as its type byte followed by
// the body. Bodies are already encoded by an Encoder, so no protobuf
// message types are involved.
type recordCodec struct{}

func (recordCodec) Marshal(v any) ([]byte, error) {
	r, ok := v.(*Record)
	if !ok {
		return nil, fmt.Errorf("record codec: cannot marshal %T", v)
	}
	b := make([]byte, 1+len(r.Body))
	b[0] = byte(r.Type)
	copy(b[1:], r.Body)
	return b, nil
}

func (recordCodec) Unmarshal(data []byte, v any) error {
	r, ok := v.(*Record)
	if !ok {
		return fmt.Errorf("record codec: cannot unmarshal into %T", v)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty frame", ErrInvalidRecordType)
	}
	r.Type = RecordType(data[0])
	r.Body = nil
	if len(data) > 1 {
		// The transport may reuse data once Unmarshal returns.
		r.Body = make([]byte, len(data)-1)
		copy(r.Body, data[1:])
	}
	return nil
}

func (recordCodec) Name() string {
	return "pathfinder-record"
}
