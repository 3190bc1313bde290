package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   string `json:"key,omitempty"`   // Used for: all meta and store operations
	Value []byte `json:"value,omitempty"` // Used for: Set (request), Get (response)

	// Response only fields
	Ok  bool   `json:"ok,omitempty"`  // Used for: Get responses
	Err string `json:"err,omitempty"` // Empty if no error, otherwise contains the error message
}

// --------------------------------------------------------------------------
// Message Factory Functions (metadata service)
// --------------------------------------------------------------------------

// NewMetaSetRequest creates a new SetMeta request
func NewMetaSetRequest(key string, value []byte) *Message {
	return &Message{
		MsgType: MsgTMetaSet,
		Key:     key,
		Value:   value,
	}
}

// NewMetaGetRequest creates a new GetMeta request
func NewMetaGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTMetaGet,
		Key:     key,
	}
}

// NewMetaDeleteRequest creates a new DeleteMeta request
func NewMetaDeleteRequest(key string) *Message {
	return &Message{
		MsgType: MsgTMetaDelete,
		Key:     key,
	}
}

// --------------------------------------------------------------------------
// Message Factory Functions (store service)
// --------------------------------------------------------------------------

// NewStoreSetRequest creates a new Set request
func NewStoreSetRequest(key string, value []byte) *Message {
	return &Message{
		MsgType: MsgTStoreSet,
		Key:     key,
		Value:   value,
	}
}

// NewStoreGetRequest creates a new Get request
func NewStoreGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTStoreGet,
		Key:     key,
	}
}

// NewStoreDeleteRequest creates a new Delete request
func NewStoreDeleteRequest(key string) *Message {
	return &Message{
		MsgType: MsgTStoreDelete,
		Key:     key,
	}
}

// --------------------------------------------------------------------------
// Response Factory Functions
// --------------------------------------------------------------------------

// NewResponse creates a response of the given type.
// It is used by servers (and test doubles) answering meta and store requests.
func NewResponse(msgType MessageType, value []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType: msgType,
		Ok:      ok,
		Value:   value,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTMetaSet:
		return "metaSet"
	case MsgTMetaGet:
		return "metaGet"
	case MsgTMetaDelete:
		return "metaDelete"
	case MsgTStoreSet:
		return "set"
	case MsgTStoreGet:
		return "get"
	case MsgTStoreDelete:
		return "delete"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "metaSet":
		*t = MsgTMetaSet
	case "metaGet":
		*t = MsgTMetaGet
	case "metaDelete":
		*t = MsgTMetaDelete
	case "set":
		*t = MsgTStoreSet
	case "get":
		*t = MsgTStoreGet
	case "delete":
		*t = MsgTStoreDelete
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IMetaService operations

	MsgTMetaSet    // Store metadata for a key
	MsgTMetaGet    // Look up metadata for a key
	MsgTMetaDelete // Remove metadata for a key

	// IStoreService operations

	MsgTStoreSet    // Set a key-value pair
	MsgTStoreGet    // Get a value by key
	MsgTStoreDelete // Delete a key-value pair
)
