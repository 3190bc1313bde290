package serializer

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
)

// NewJSONSerializer creates a new serializer using json encoding.
// Useful when debugging traffic against a metadata or store server by hand.
func NewJSONSerializer() IRPCSerializer {
	return jsonSerializerImpl{}
}

// NewGOBSerializer creates a new serializer using Go's gob format
func NewGOBSerializer() IRPCSerializer {
	return gobSerializerImpl{}
}

type jsonSerializerImpl struct{}

type gobSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	return json.Unmarshal(b, msg)
}

func (gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	return gob.NewDecoder(bytes.NewReader(b)).Decode(msg)
}

// New returns the serializer registered under name (binary, json or gob)
func New(name string) (IRPCSerializer, bool) {
	switch name {
	case "binary":
		return NewBinarySerializer(), true
	case "json":
		return NewJSONSerializer(), true
	case "gob":
		return NewGOBSerializer(), true
	default:
		return nil, false
	}
}
