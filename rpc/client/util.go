package client

import (
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
	"github.com/ValentinKolb/dKV-proxy/rpc/serializer"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// RemoteError is returned when the server answered with an error message
type RemoteError struct {
	Op  common.MessageType
	Msg string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %s", e.Op, e.Msg)
}

// rpcClientAdapter stores all data needed by an RPC client implementation.
// Used by rpcMetaService and rpcStoreService with composition
type rpcClientAdapter struct {
	shardId    uint64
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invoke sends a request to the adapter's shard.
// It checks that the response is not an error response and matches the request type.
func (a *rpcClientAdapter) invoke(req *common.Message) (*common.Message, error) {
	reqBytes, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, fmt.Errorf("serialize %s request: %w", req.MsgType, err)
	}

	respBytes, err := a.transport.Send(a.shardId, reqBytes)
	if err != nil {
		Logger.Debugf("%s request to shard %d failed: %v", req.MsgType, a.shardId, err)
		return nil, err
	}

	resp := &common.Message{}
	if err := a.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("deserialize %s response: %w", req.MsgType, err)
	}

	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, &RemoteError{Op: req.MsgType, Msg: resp.Err}
	}

	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	return resp, nil
}
