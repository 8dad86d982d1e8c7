package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/XTakerDAO/token-factory-sub001/internal/addressing"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

type assetFlags struct {
	name      string
	symbol    string
	supply    string
	decimals  uint8
	owner     string
	mintable  bool
	burnable  bool
	pausable  bool
	capped    bool
	maxSupply string
}

func (a *assetFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&a.name, "name", "", "token name")
	fs.StringVar(&a.symbol, "symbol", "", "token symbol (A-Z, 0-9)")
	fs.StringVar(&a.supply, "supply", "", "initial supply in base units (decimal)")
	fs.Uint8Var(&a.decimals, "decimals", 18, "decimals")
	fs.StringVar(&a.owner, "owner", "", "initial owner address")
	fs.BoolVar(&a.mintable, "mintable", false, "enable mint")
	fs.BoolVar(&a.burnable, "burnable", false, "enable burn")
	fs.BoolVar(&a.pausable, "pausable", false, "enable pause")
	fs.BoolVar(&a.capped, "capped", false, "enforce max supply")
	fs.StringVar(&a.maxSupply, "max-supply", "", "max supply in base units (decimal)")
}

func (a *assetFlags) config() (token.Config, error) {
	cfg := token.Config{
		Name:     a.name,
		Symbol:   a.symbol,
		Decimals: a.decimals,
		Mintable: a.mintable,
		Burnable: a.burnable,
		Pausable: a.pausable,
		Capped:   a.capped,
	}
	var err error
	if cfg.TotalSupply, err = flagAmount("supply", a.supply); err != nil {
		return token.Config{}, err
	}
	if a.maxSupply != "" {
		if cfg.MaxSupply, err = flagAmount("max-supply", a.maxSupply); err != nil {
			return token.Config{}, err
		}
	}
	if a.owner != "" {
		if !common.IsHexAddress(a.owner) {
			return token.Config{}, fmt.Errorf("invalid --owner %q", a.owner)
		}
		cfg.InitialOwner = common.HexToAddress(a.owner)
	}
	return cfg, nil
}

func flagAmount(name, s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q", name, s)
	}
	return v, nil
}

var validateFlags assetFlags

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check an asset configuration without deploying it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := validateFlags.config()
		if err != nil {
			return err
		}
		v := token.Validate(cfg, nil)
		printJSON(cmd.OutOrStdout(), map[string]any{
			"valid":    v.Valid,
			"reason":   v.Reason,
			"code":     v.Code,
			"template": registry.SelectTemplate(cfg),
		})
		if !v.Valid {
			return v.Err()
		}
		return nil
	},
}

var (
	predictFlags    assetFlags
	predictCreator  string
	predictTemplate string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the address a configuration would deploy to",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := predictFlags.config()
		if err != nil {
			return err
		}
		if !common.IsHexAddress(predictCreator) {
			return fmt.Errorf("invalid --creator %q", predictCreator)
		}
		creator := common.HexToAddress(predictCreator)

		conf, err := loadConfig()
		if err != nil {
			return err
		}
		f, _, closeAll, err := openFactory(cmd.Context(), conf)
		if err != nil {
			return err
		}
		defer closeAll()

		var p addressing.Prediction
		if predictTemplate == "" {
			p, err = f.PredictAssetAddress(cfg, creator)
		} else {
			p, err = f.PredictAssetAddressWithTemplate(cfg, creator, registry.TemplateID(predictTemplate))
		}
		if err != nil {
			return err
		}
		printJSON(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	validateFlags.bind(validateCmd)
	predictFlags.bind(predictCmd)
	predictCmd.Flags().StringVar(&predictCreator, "creator", "", "creator address")
	predictCmd.Flags().StringVar(&predictTemplate, "template", "", "template label (default: chosen from feature flags)")
	_ = predictCmd.MarkFlagRequired("creator")
}
