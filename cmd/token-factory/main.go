package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	clientconfig "github.com/XTakerDAO/token-factory-sub001/cmd/token-factory/config"
	"github.com/XTakerDAO/token-factory-sub001/internal/constants"
	"github.com/XTakerDAO/token-factory-sub001/internal/factory"
	"github.com/XTakerDAO/token-factory-sub001/internal/networks"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage/memory"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage/sqlite"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           constants.AppName,
	Short:         "Deploy and manage feature-flagged ERC-20 style assets",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search ~/.config/token-factory, ./config, .)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(networksCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		printJSON(cmd.OutOrStdout(), map[string]string{
			"version":    Version,
			"commit":     Commit,
			"build_date": BuildDate,
		})
	},
}

func loadConfig() (*clientconfig.Config, error) {
	cfg, err := clientconfig.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *clientconfig.Config) (storage.Store, error) {
	if cfg.Storage.Driver == clientconfig.DriverMemory {
		return memory.New(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), constants.DirectoryPerm); err != nil {
		return nil, fmt.Errorf("mkdir storage dir: %w", err)
	}
	s, err := sqlite.Open(ctx, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// openFactory opens the configured store, network registry and facade.
// The returned close func releases them in reverse order.
func openFactory(ctx context.Context, cfg *clientconfig.Config) (*factory.Facade, *networks.Manager, func(), error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	nets, err := networks.NewManager("")
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}
	if err := nets.EnsureFromConfig(ctx, cfg.NetworkDefaults()); err != nil {
		_ = store.Close()
		return nil, nil, nil, fmt.Errorf("networks: %w", err)
	}
	fcfg, err := cfg.FactoryConfig()
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}
	f, err := factory.Open(ctx, store, fcfg, factory.WithNetworks(nets))
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}
	return f, nets, func() {
		f.Close()
		_ = store.Close()
	}, nil
}

func printJSON(w io.Writer, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintln(w, err)
		return
	}
	_, _ = fmt.Fprintln(w, string(b))
}
