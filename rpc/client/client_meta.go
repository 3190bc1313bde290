package client

import (
	"github.com/ValentinKolb/dKV-proxy/lib/api"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
	"github.com/ValentinKolb/dKV-proxy/rpc/serializer"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport"
)

// NewRPCMetaService builds an api.IMetaService proxy for one metadata shard
// over an already connected transport.
func NewRPCMetaService(
	shardId uint64,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) api.IMetaService {
	return &rpcMetaService{
		rpcClientAdapter{
			shardId:    shardId,
			transport:  transport,
			serializer: serializer,
		},
	}
}

type rpcMetaService struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the api package in interface.go)
// --------------------------------------------------------------------------

func (m *rpcMetaService) SetMeta(key string, value []byte) error {
	_, err := m.invoke(common.NewMetaSetRequest(key, value))
	return err
}

func (m *rpcMetaService) GetMeta(key string) ([]byte, bool, error) {
	resp, err := m.invoke(common.NewMetaGetRequest(key))
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (m *rpcMetaService) DeleteMeta(key string) error {
	_, err := m.invoke(common.NewMetaDeleteRequest(key))
	return err
}
