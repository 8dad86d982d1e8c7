package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/viper"

	"github.com/XTakerDAO/token-factory-sub001/internal/constants"
	"github.com/XTakerDAO/token-factory-sub001/internal/factory"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/networks"
	"github.com/XTakerDAO/token-factory-sub001/internal/securefile"
)

const EnvPrefix = "TOKEN_FACTORY"

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type ServerSettings struct {
	Host            string
	Port            string
	SignatureWindow time.Duration
	AllowOrigins    []string
}

type FactorySettings struct {
	Address          string
	Owner            string
	ChainID          uint64
	ServiceFee       string // decimal wei
	FeeRecipient     string
	GasPerDeployment uint64
	GasPrice         string // decimal wei
}

type StorageSettings struct {
	Driver string
	Path   string
}

type NetworkSettings struct {
	ChainId    uint64
	ChainIdHex string
	Explorer   string
	RpcUrl     string
}

type Config struct {
	Server   ServerSettings
	Factory  FactorySettings
	Storage  StorageSettings
	KeyFile  string
	Networks map[string]NetworkSettings
}

// Load reads the embedded defaults, merges the first config.yaml found on
// the search path (or file, when set) and applies TOKEN_FACTORY_* overrides.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(EmbeddedConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		for _, p := range searchPaths() {
			v.AddConfigPath(p)
		}
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("merge config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.ApplyEnvironment(); err != nil {
		return nil, err
	}
	if err := c.Normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

func searchPaths() []string {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(".", "config"),
		".",
	}
	if env, err := securefile.EnvFolder(); err == nil && env != "" {
		paths = append([]string{filepath.Join(home, ".config", constants.AppName, env)}, paths...)
	}
	return paths
}

// ApplyEnvironment adjusts defaults for the TF_ENV environment.
func (c *Config) ApplyEnvironment() error {
	env, err := securefile.EnvFolder()
	if err != nil {
		return err
	}
	switch env {
	case "local":
		if c.Factory.ChainID == 0 {
			c.Factory.ChainID = 31337
		}
		if c.Storage.Driver == "" {
			c.Storage.Driver = DriverMemory
		}
	case "develop":
		if c.Factory.ChainID == 0 {
			c.Factory.ChainID = 11155111
		}
	}
	return nil
}

// Normalize validates the settings and rewrites addresses in checksummed form.
func (c *Config) Normalize() error {
	var err error
	if c.Factory.Address, err = canonicalAddress("Factory.Address", c.Factory.Address); err != nil {
		return err
	}
	if c.Factory.Owner, err = canonicalAddress("Factory.Owner", c.Factory.Owner); err != nil {
		return err
	}
	if strings.TrimSpace(c.Factory.FeeRecipient) == "" {
		c.Factory.FeeRecipient = c.Factory.Owner
	}
	if c.Factory.FeeRecipient, err = canonicalAddress("Factory.FeeRecipient", c.Factory.FeeRecipient); err != nil {
		return err
	}
	if c.Factory.ChainID == 0 {
		return fmt.Errorf("Factory.ChainID is required")
	}
	if _, err := decimal("Factory.ServiceFee", c.Factory.ServiceFee); err != nil {
		return err
	}
	if _, err := decimal("Factory.GasPrice", c.Factory.GasPrice); err != nil {
		return err
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = DriverSQLite
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("Storage.Driver %q (allowed: sqlite, memory)", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverSQLite && strings.TrimSpace(c.Storage.Path) == "" {
		p, err := securefile.ResolvePath(constants.AppName, constants.DatabaseFile)
		if err != nil {
			return err
		}
		c.Storage.Path = p
	}

	if c.Server.SignatureWindow <= 0 {
		c.Server.SignatureWindow = 5 * time.Minute
	}
	if c.Networks == nil {
		c.Networks = map[string]NetworkSettings{}
	}
	return nil
}

// FactoryConfig converts the settings into the factory's own types.
func (c *Config) FactoryConfig() (factory.Config, error) {
	fee, err := decimal("Factory.ServiceFee", c.Factory.ServiceFee)
	if err != nil {
		return factory.Config{}, err
	}
	price, err := decimal("Factory.GasPrice", c.Factory.GasPrice)
	if err != nil {
		return factory.Config{}, err
	}
	return factory.Config{
		Address: common.HexToAddress(c.Factory.Address),
		ChainID: c.Factory.ChainID,
		Owner:   common.HexToAddress(c.Factory.Owner),
		Fees:    fees.NewSchedule(fee, common.HexToAddress(c.Factory.FeeRecipient)),
		Estimator: fees.Estimator{
			GasPerDeployment: c.Factory.GasPerDeployment,
			GasPrice:         price,
		},
	}, nil
}

// NetworkDefaults lists the configured networks for networks.Manager.
func (c *Config) NetworkDefaults() []networks.Network {
	out := make([]networks.Network, 0, len(c.Networks))
	for name, n := range c.Networks {
		out = append(out, networks.Network{
			Name:       name,
			ChainId:    n.ChainId,
			ChainIdHex: n.ChainIdHex,
			Explorer:   n.Explorer,
			RpcUrl:     n.RpcUrl,
		})
	}
	return out
}

func canonicalAddress(field, raw string) (string, error) {
	a := strings.TrimSpace(raw)
	if a == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if !strings.HasPrefix(a, "0x") && !strings.HasPrefix(a, "0X") {
		a = "0x" + a
	}
	if !common.IsHexAddress(a) {
		return "", fmt.Errorf("%s invalid address: %q", field, raw)
	}
	return common.HexToAddress(a).Hex(), nil
}

func decimal(field, raw string) (*uint256.Int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%s invalid decimal: %q", field, raw)
	}
	return v, nil
}
