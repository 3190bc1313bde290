package client

import (
	"github.com/ValentinKolb/dKV-proxy/lib/api"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
	"github.com/ValentinKolb/dKV-proxy/rpc/serializer"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport"
)

// NewRPCStoreService builds an api.IStoreService proxy for one store shard
// over an already connected transport.
func NewRPCStoreService(
	shardId uint64,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) api.IStoreService {
	return &rpcStoreService{
		rpcClientAdapter{
			shardId:    shardId,
			transport:  transport,
			serializer: serializer,
		},
	}
}

type rpcStoreService struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the api package in interface.go)
// --------------------------------------------------------------------------

func (s *rpcStoreService) Set(key string, value []byte) error {
	_, err := s.invoke(common.NewStoreSetRequest(key, value))
	return err
}

func (s *rpcStoreService) Get(key string) ([]byte, bool, error) {
	resp, err := s.invoke(common.NewStoreGetRequest(key))
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (s *rpcStoreService) Delete(key string) error {
	_, err := s.invoke(common.NewStoreDeleteRequest(key))
	return err
}
