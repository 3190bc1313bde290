// Package client implements the typed RPC proxies the registry attaches to
// each shard: NewRPCMetaService returns an api.IMetaService for a metadata
// shard and NewRPCStoreService returns an api.IStoreService for a store shard.
//
// Both are thin adapters: a call is turned into a common.Message, serialized,
// sent over the shard's transport with the shard index as the frame's shard
// id, and the response is decoded. Error responses from the server surface as
// *RemoteError.
//
// Usage Example:
//
//	t, err := tcp.Factory(common.ClientConfig{Endpoints: []string{"10.0.1.1:9100"}})
//	if err != nil {
//		return err
//	}
//	store := client.NewRPCStoreService(0, t, serializer.NewBinarySerializer())
//	value, found, err := store.Get("user:42")
//
// Thread Safety:
//
//	The proxies hold no mutable state and are safe for concurrent use as long
//	as the underlying transport is.
package client
