package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XTakerDAO/token-factory-sub001/internal/constants"
)

func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv(constants.EnvVar, "")
	t.Chdir(t.TempDir())
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	isolate(t)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8645", c.Server.Port)
	assert.Equal(t, 5*time.Minute, c.Server.SignatureWindow)
	assert.Equal(t, uint64(31337), c.Factory.ChainID)
	assert.Equal(t, c.Factory.Owner, c.Factory.FeeRecipient)
	assert.Equal(t, DriverSQLite, c.Storage.Driver)
	assert.Equal(t, constants.DatabaseFile, filepath.Base(c.Storage.Path))
	assert.Contains(t, c.Networks, "localhost")

	fc, err := c.FactoryConfig()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(c.Factory.Address), fc.Address)
	assert.Equal(t, "10000000000000000", fc.Fees.Fee().Dec())
	assert.Equal(t, uint64(250000), fc.Estimator.GasPerDeployment)
	assert.Len(t, c.NetworkDefaults(), len(c.Networks))
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "factory.yaml")
	body := `
Factory:
  Owner: "70997970c51812dc3a010c7d01b50e0d17dc79c8"
  ServiceFee: "5"
Storage:
  Driver: Memory
`
	require.NoError(t, os.WriteFile(file, []byte(body), 0o600))
	t.Setenv("TOKEN_FACTORY_FACTORY_CHAINID", "11155111")
	t.Setenv("TOKEN_FACTORY_SERVER_PORT", "9000")

	c, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", c.Factory.Owner)
	assert.Equal(t, "5", c.Factory.ServiceFee)
	assert.Equal(t, uint64(11155111), c.Factory.ChainID)
	assert.Equal(t, "9000", c.Server.Port)
	assert.Equal(t, DriverMemory, c.Storage.Driver)
	assert.Empty(t, c.Storage.Path)
}

func TestNormalizeRejectsBadSettings(t *testing.T) {
	base := func() Config {
		return Config{Factory: FactorySettings{
			Address: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
			Owner:   "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
			ChainID: 1,
		}, Storage: StorageSettings{Driver: DriverMemory}}
	}
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing owner", func(c *Config) { c.Factory.Owner = "" }},
		{"bad address", func(c *Config) { c.Factory.Address = "0x1234" }},
		{"bad recipient", func(c *Config) { c.Factory.FeeRecipient = "nope" }},
		{"zero chain", func(c *Config) { c.Factory.ChainID = 0 }},
		{"bad fee", func(c *Config) { c.Factory.ServiceFee = "1.5" }},
		{"bad driver", func(c *Config) { c.Storage.Driver = "postgres" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			require.Error(t, c.Normalize())
		})
	}

	c := base()
	require.NoError(t, c.Normalize())
	assert.Equal(t, c.Factory.Owner, c.Factory.FeeRecipient)
}

func TestInvalidEnvironmentIsRejected(t *testing.T) {
	isolate(t)
	t.Setenv(constants.EnvVar, "staging")
	_, err := Load("")
	require.Error(t, err)
}
