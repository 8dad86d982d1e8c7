package securefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type secret struct {
	Key string `json:"key"`
}

// cheap parameters keep the tests fast
var testKDF = KDFParams{Version: 1, ArgonTime: 1, ArgonMemory: 1024, ArgonThreads: 1, ArgonKeyLen: 32}

func TestEncryptedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "secret.json")
	opt := Options{KDF: testKDF, AAD: []byte("test:v1")}

	require.NoError(t, WriteEncryptedJSON(path, secret{Key: "abc"}, []byte("pw"), opt))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "abc")

	got, err := ReadEncryptedJSON[secret](path, []byte("pw"), opt)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Key)

	_, err = ReadEncryptedJSON[secret](path, []byte("wrong"), opt)
	require.ErrorIs(t, err, ErrInvalidPasswordOrCorrupt)

	_, err = ReadEncryptedJSON[secret](path, []byte("pw"), Options{KDF: testKDF, AAD: []byte("other")})
	require.ErrorIs(t, err, ErrInvalidPasswordOrCorrupt)
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadEncryptedJSON[secret](filepath.Join(t.TempDir(), "none.json"), []byte("pw"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestAtomicWriteReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.json")
	require.NoError(t, WriteJSON(path, map[string]int{"a": 1}, 0o600))
	require.NoError(t, WriteJSON(path, map[string]int{"a": 2}, 0o600))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(b))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestConfigPathCandidates(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SNAP_REAL_HOME", "")

	t.Setenv("TF_ENV", "")
	paths, err := ConfigPathCandidates("token-factory", "networks.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "token-factory", "networks.json"), paths[0])

	t.Setenv("TF_ENV", "dev")
	paths, err = ConfigPathCandidates("token-factory", "networks.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "token-factory", "develop", "networks.json"), paths[0])

	t.Setenv("TF_ENV", "staging")
	_, err = ConfigPathCandidates("token-factory", "networks.json")
	require.Error(t, err)
}

func TestResolvePathPrefersExisting(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TF_ENV", "")
	snap := t.TempDir()
	t.Setenv("SNAP_REAL_HOME", snap)

	p, err := ResolvePath("token-factory", "networks.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(snap, ".config", "token-factory", "networks.json"), p)

	existing := filepath.Join(home, ".config", "token-factory", "networks.json")
	require.NoError(t, WriteJSON(existing, []int{}, 0o600))
	p, err = ResolvePath("token-factory", "networks.json")
	require.NoError(t, err)
	assert.Equal(t, existing, p)
}
