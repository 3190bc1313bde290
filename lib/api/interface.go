package api

// IMetaService is the contract of the metadata servers. The metadata pool
// records, per key, opaque metadata (typically which store shard owns the key).
type IMetaService interface {
	// SetMeta inserts or updates the metadata of a key.
	SetMeta(key string, value []byte) (err error)
	// GetMeta returns the metadata of a key. The boolean reports whether the key is known.
	GetMeta(key string) (value []byte, found bool, err error)
	// DeleteMeta removes the metadata of a key. Deleting an unknown key is not an error.
	DeleteMeta(key string) (err error)
}

// IStoreService is the contract of the data-store servers.
type IStoreService interface {
	// Set inserts or updates a key-value pair.
	Set(key string, value []byte) (err error)
	// Get returns the value for a key. The boolean reports whether a value was found.
	Get(key string) (value []byte, found bool, err error)
	// Delete removes a key-value pair. Deleting an unknown key is not an error.
	Delete(key string) (err error)
}
