package kv

import (
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/cmd/util"
	"github.com/ValentinKolb/dKV-proxy/lib/api"
	"github.com/ValentinKolb/dKV-proxy/lib/registry"
	"github.com/ValentinKolb/dKV-proxy/lib/topology"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcStore api.IStoreService
	rpcMeta  api.IMetaService

	// KeyValueCommands represents the command group for a single store shard
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value operations on one store shard",
		PersistentPreRunE: setupStoreClient,
	}

	// MetaCommands represents the command group for a single metadata shard
	MetaCommands = &cobra.Command{
		Use:               "meta",
		Short:             "Perform metadata operations on one metadata shard",
		PersistentPreRunE: setupMetaClient,
	}
)

func init() {
	KeyValueCommands.PersistentFlags().Int("shard", 0, util.WrapString("Index of the store shard to use"))
	MetaCommands.PersistentFlags().Int("meta-shard", 0, util.WrapString("Position of the metadata shard in the topology file (metadata shards are addressed by declaration order)"))

	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)

	MetaCommands.AddCommand(metaSetCmd)
	MetaCommands.AddCommand(metaGetCmd)
	MetaCommands.AddCommand(metaDelCmd)
}

// loadRegistry binds the flags and builds the registry from the topology file
func loadRegistry(cmd *cobra.Command) (*registry.Registry, error) {
	if err := util.BindCommandFlags(cmd); err != nil {
		return nil, err
	}
	if err := util.InitLogging(); err != nil {
		return nil, err
	}

	loader, err := util.NewLoader()
	if err != nil {
		return nil, err
	}
	return loader.Get()
}

// setupStoreClient resolves the store shard selected by --shard
func setupStoreClient(cmd *cobra.Command, _ []string) error {
	r, err := loadRegistry(cmd)
	if err != nil {
		return err
	}

	shard, err := r.StoreShard(topology.ShardIndex(viper.GetInt("shard")))
	if err != nil {
		return err
	}
	rpcStore = shard.Store()
	return nil
}

// setupMetaClient resolves the metadata shard selected by --meta-shard
func setupMetaClient(cmd *cobra.Command, _ []string) error {
	r, err := loadRegistry(cmd)
	if err != nil {
		return err
	}

	shards := r.MetaShards()
	pos := viper.GetInt("meta-shard")
	if pos < 0 || pos >= len(shards) {
		return fmt.Errorf("meta shard position %d out of range (%d metadata shards)", pos, len(shards))
	}
	rpcMeta = shards[pos].Meta()
	return nil
}
