package serializer

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format.
//
// Layout: 1 byte message type, 1 byte flags, then every present field in
// flag order. Key, Value and Err are length-prefixed (uint32, big endian),
// Ok is a single byte.
type binarySerializerImpl struct{}

// Bit flags to indicate which optional fields are present
const (
	hasKey   byte = 1 << 0
	hasValue byte = 1 << 1
	hasOk    byte = 1 << 2
	hasErr   byte = 1 << 3
)

const headerSize = 2

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, headerSize, b.sizeBytes(msg))
	result[0] = byte(msg.MsgType)

	var flags byte
	if msg.Key != "" {
		flags |= hasKey
		result = appendField(result, []byte(msg.Key))
	}
	// a non-nil empty value is kept distinct from an absent one
	if msg.Value != nil {
		flags |= hasValue
		result = appendField(result, msg.Value)
	}
	if msg.Ok {
		flags |= hasOk
		result = append(result, 1)
	}
	if msg.Err != "" {
		flags |= hasErr
		result = appendField(result, []byte(msg.Err))
	}

	result[1] = flags
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < headerSize {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{MsgType: common.MessageType(data[0])}
	flags := data[1]
	pos := headerSize

	if flags&hasKey != 0 {
		key, next, err := readField(data, pos, "key")
		if err != nil {
			return err
		}
		msg.Key = string(key)
		pos = next
	}

	if flags&hasValue != 0 {
		value, next, err := readField(data, pos, "value")
		if err != nil {
			return err
		}
		// copy, the caller may reuse data
		msg.Value = make([]byte, len(value))
		copy(msg.Value, value)
		pos = next
	}

	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}
		msg.Ok = data[pos] != 0
		pos++
	}

	if flags&hasErr != 0 {
		errBytes, _, err := readField(data, pos, "error")
		if err != nil {
			return err
		}
		msg.Err = string(errBytes)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// appendField appends a length-prefixed byte field
func appendField(dst []byte, field []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(field)))
	return append(dst, field...)
}

// readField reads a length-prefixed byte field starting at pos.
// It returns the field (aliasing data) and the position after it.
func readField(data []byte, pos int, name string) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, 0, fmt.Errorf("data too short for %s length", name)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4

	if pos+n > len(data) {
		return nil, 0, fmt.Errorf("data too short for %s data", name)
	}
	return data[pos : pos+n], pos + n, nil
}

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := headerSize

	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Ok {
		size++
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}

	return size
}
