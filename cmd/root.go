package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/cmd/kv"
	"github.com/ValentinKolb/dKV-proxy/cmd/serve"
	"github.com/ValentinKolb/dKV-proxy/cmd/topology"
	"github.com/ValentinKolb/dKV-proxy/cmd/util"
	"github.com/ValentinKolb/dKV-proxy/lib/registry"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dkv-proxy",
		Short: "sharding proxy for dKV metadata and store servers",
		Long: fmt.Sprintf(`dKV proxy (v%s)

Connects to a pool of metadata servers and a pool of store servers as
declared in a topology file and keeps one connected client per shard.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dKV proxy",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dKV proxy v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(topology.TopologyCommands)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(kv.MetaCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "config"
	RootCmd.PersistentFlags().String(key, registry.DefaultConfigPath, util.WrapString("Topology file (toml, yaml or json)"))
	key = "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix, http, grpc)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
