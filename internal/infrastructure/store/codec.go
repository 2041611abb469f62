package store

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"balanced.io/internal/domain/entity"
)

// record is the persisted projection of a balance. The identity lives in the key.
type record struct {
	Free uint64 `json:"free" msgpack:"free"`
	Lock uint64 `json:"lock" msgpack:"lock"`
}

// Codec converts balances to and from their stored form.
type Codec interface {
	Name() string
	Encode(b entity.Balance) ([]byte, error)
	Decode(data []byte) (entity.Balance, error)
}

// NewCodec returns the codec registered under name ("json" or "msgpack").
func NewCodec(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown store codec %q", name)
	}
}

// JSONCodec stores {"free":N,"lock":N}.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(b entity.Balance) ([]byte, error) {
	return json.Marshal(record{Free: b.Free, Lock: b.Lock})
}

func (JSONCodec) Decode(data []byte) (entity.Balance, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return entity.Balance{}, err
	}
	return entity.Balance{Free: r.Free, Lock: r.Lock}, nil
}

// MsgpackCodec stores the same two fields as a msgpack map.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Encode(b entity.Balance) ([]byte, error) {
	return msgpack.Marshal(&record{Free: b.Free, Lock: b.Lock})
}

func (MsgpackCodec) Decode(data []byte) (entity.Balance, error) {
	var r record
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return entity.Balance{}, err
	}
	return entity.Balance{Free: r.Free, Lock: r.Lock}, nil
}
