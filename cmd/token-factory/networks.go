package main

import (
	"github.com/spf13/cobra"

	"github.com/XTakerDAO/token-factory-sub001/internal/networks"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "Manage the supported network registry",
}

func openNetworks(cmd *cobra.Command) (*networks.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	nets, err := networks.NewManager("")
	if err != nil {
		return nil, err
	}
	if err := nets.EnsureFromConfig(cmd.Context(), cfg.NetworkDefaults()); err != nil {
		return nil, err
	}
	return nets, nil
}

var networksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		nets, err := openNetworks(cmd)
		if err != nil {
			return err
		}
		printJSON(cmd.OutOrStdout(), nets.List())
		return nil
	},
}

var (
	addNetwork networks.Network
	addProbe   bool
)

var networksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a network",
	RunE: func(cmd *cobra.Command, _ []string) error {
		nets, err := openNetworks(cmd)
		if err != nil {
			return err
		}
		n := addNetwork
		if addProbe {
			if n, err = networks.Verify(cmd.Context(), n); err != nil {
				return err
			}
		}
		added, err := nets.AddNetwork(cmd.Context(), n)
		if err != nil {
			return err
		}
		printJSON(cmd.OutOrStdout(), added)
		return nil
	},
}

var networksRemoveCmd = &cobra.Command{
	Use:   "remove <chainIdHex>",
	Short: "Remove a network by chain id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nets, err := openNetworks(cmd)
		if err != nil {
			return err
		}
		return nets.RemoveNetworkByChainIdHex(cmd.Context(), args[0])
	},
}

func init() {
	fs := networksAddCmd.Flags()
	fs.StringVar(&addNetwork.Name, "name", "", "network name (default: known chain name)")
	fs.Uint64Var(&addNetwork.ChainId, "chain-id", 0, "chain id")
	fs.StringVar(&addNetwork.ChainIdHex, "chain-id-hex", "", "chain id as hex")
	fs.StringVar(&addNetwork.Explorer, "explorer", "", "block explorer URL")
	fs.StringVar(&addNetwork.RpcUrl, "rpc", "", "JSON-RPC endpoint")
	fs.BoolVar(&addProbe, "probe", false, "ask the RPC endpoint for its chain id first")

	networksCmd.AddCommand(networksListCmd, networksAddCmd, networksRemoveCmd)
}
