package topology

import (
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/cmd/util"
	libTopology "github.com/ValentinKolb/dKV-proxy/lib/topology"
	"github.com/spf13/cobra"
)

var (
	// TopologyCommands groups the commands that work on the topology file only
	TopologyCommands = &cobra.Command{
		Use:               "topology",
		Short:             "Inspect and validate the topology file",
		PersistentPreRunE: setup,
	}

	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the parsed topology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := libTopology.Load(util.GetConfigPath())
			if err != nil {
				return err
			}
			fmt.Println(cfg.String())
			return nil
		},
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Validate the topology file without connecting to any server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := util.GetConfigPath()
			cfg, err := libTopology.Load(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s is valid: %d meta shards, %d store shards\n", path, len(cfg.MetaShards), len(cfg.StoreShards))
			return nil
		},
	}
)

func init() {
	TopologyCommands.AddCommand(showCmd)
	TopologyCommands.AddCommand(checkCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	return util.InitLogging()
}
