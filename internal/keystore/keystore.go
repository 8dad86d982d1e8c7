// Package keystore keeps the operator's signing key encrypted on disk.
package keystore

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/XTakerDAO/token-factory-sub001/internal/constants"
	"github.com/XTakerDAO/token-factory-sub001/internal/securefile"
)

var ErrKeyExists = errors.New("keystore: key file already exists")

type Key struct {
	Version    int    `json:"version"`
	AddressHex string `json:"address"`
	PrivKeyHex string `json:"priv_key_hex"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func (k *Key) Address() common.Address {
	return common.HexToAddress(k.AddressHex)
}

func (k *Key) PrivateKey() (*ecdsa.PrivateKey, error) {
	b, err := hexutil.Decode(k.PrivKeyHex)
	if err != nil {
		return nil, fmt.Errorf("keystore: decode key: %w", err)
	}
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, fmt.Errorf("keystore: to ecdsa: %w", err)
	}
	return key, nil
}

type Store struct {
	Path string
	Opt  securefile.Options
}

// NewStore returns a store at path, or at the canonical config path when
// path is empty.
func NewStore(path string) (*Store, error) {
	if path == "" {
		p, err := securefile.ResolvePath(constants.AppName, constants.KeyFile)
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{
		Path: path,
		Opt:  securefile.Options{AAD: []byte(constants.KeyAAD)},
	}, nil
}

// Create generates a fresh key and persists it. It refuses to overwrite.
func (s *Store) Create(password []byte) (*Key, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("keystore: generate key: %w", err)
	}
	return s.save(priv, password)
}

// Import persists an existing hex-encoded secp256k1 key.
func (s *Store) Import(hexKey string, password []byte) (*Key, error) {
	priv, err := crypto.HexToECDSA(trimHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("keystore: parse key: %w", err)
	}
	return s.save(priv, password)
}

func (s *Store) Load(password []byte) (*Key, error) {
	k, err := securefile.ReadEncryptedJSON[Key](s.Path, password, s.Opt)
	if err != nil {
		return nil, fmt.Errorf("keystore: load %s: %w", s.Path, err)
	}
	return &k, nil
}

func (s *Store) save(priv *ecdsa.PrivateKey, password []byte) (*Key, error) {
	if _, err := os.Stat(s.Path); err == nil {
		return nil, ErrKeyExists
	}
	k := &Key{
		Version:    1,
		AddressHex: crypto.PubkeyToAddress(priv.PublicKey).Hex(),
		PrivKeyHex: hexutil.Encode(crypto.FromECDSA(priv)),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := securefile.WriteEncryptedJSON(s.Path, *k, password, s.Opt); err != nil {
		return nil, fmt.Errorf("keystore: save: %w", err)
	}
	return k, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
