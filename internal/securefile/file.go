// Package securefile writes files atomically and keeps secrets in
// password-encrypted JSON envelopes (Argon2id + XChaCha20-Poly1305).
package securefile

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/XTakerDAO/token-factory-sub001/internal/constants"
)

// ErrInvalidPasswordOrCorrupt is returned when decryption fails.
var ErrInvalidPasswordOrCorrupt = errors.New("invalid password or corrupted file")

// KDFParams is the on-disk envelope: KDF settings plus ciphertext.
type KDFParams struct {
	Version int `json:"version"`

	ArgonTime    uint32 `json:"argon_time"`
	ArgonMemory  uint32 `json:"argon_memory_kib"`
	ArgonThreads uint8  `json:"argon_threads"`
	ArgonKeyLen  uint32 `json:"argon_key_len"`

	SaltB64  string `json:"salt_b64"`
	NonceB64 string `json:"nonce_b64"`
	CTB64    string `json:"ct_b64"`
}

var DefaultKDF = KDFParams{
	Version:      1,
	ArgonTime:    2,
	ArgonMemory:  64 * 1024, // KiB
	ArgonThreads: 1,
	ArgonKeyLen:  32,
}

type Options struct {
	KDF KDFParams

	FilePerm      os.FileMode
	DirectoryPerm os.FileMode

	// AAD must be identical on read and write.
	AAD []byte
}

func mergeOptions(opt ...Options) Options {
	o := Options{
		KDF:           DefaultKDF,
		FilePerm:      constants.FilePerm,
		DirectoryPerm: constants.DirectoryPerm,
	}
	if len(opt) == 0 {
		return o
	}
	in := opt[0]
	if in.KDF.Version != 0 {
		o.KDF = in.KDF
	}
	if in.FilePerm != 0 {
		o.FilePerm = in.FilePerm
	}
	if in.DirectoryPerm != 0 {
		o.DirectoryPerm = in.DirectoryPerm
	}
	o.AAD = in.AAD
	return o
}

// WriteJSON marshals v as indented JSON and writes it atomically.
func WriteJSON(path string, v any, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirectoryPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return AtomicWriteFile(path, b, perm)
}

// WriteEncryptedJSON marshals v, encrypts it under password and writes it atomically.
func WriteEncryptedJSON[T any](path string, v T, password []byte, opt ...Options) error {
	o := mergeOptions(opt...)
	if o.KDF.Version != 1 {
		return fmt.Errorf("unsupported kdf version: %d", o.KDF.Version)
	}
	if err := os.MkdirAll(filepath.Dir(path), o.DirectoryPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	plain, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	defer zero(plain)

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("rand salt: %w", err)
	}
	key := argon2.IDKey(password, salt, o.KDF.ArgonTime, o.KDF.ArgonMemory, o.KDF.ArgonThreads, o.KDF.ArgonKeyLen)
	defer zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("aead: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("rand nonce: %w", err)
	}

	out := o.KDF
	out.SaltB64 = base64.StdEncoding.EncodeToString(salt)
	out.NonceB64 = base64.StdEncoding.EncodeToString(nonce)
	out.CTB64 = base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plain, o.AAD))

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return AtomicWriteFile(path, b, o.FilePerm)
}

// ReadEncryptedJSON reads path, decrypts it with password and unmarshals into T.
// A missing file surfaces as os.ErrNotExist.
func ReadEncryptedJSON[T any](path string, password []byte, opt ...Options) (T, error) {
	var empty T
	o := mergeOptions(opt...)

	b, err := os.ReadFile(path)
	if err != nil {
		return empty, fmt.Errorf("read file: %w", err)
	}
	var ef KDFParams
	if err := json.Unmarshal(b, &ef); err != nil {
		return empty, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if ef.Version != 1 {
		return empty, fmt.Errorf("unsupported file version: %d", ef.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(ef.SaltB64)
	if err != nil {
		return empty, fmt.Errorf("decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(ef.NonceB64)
	if err != nil {
		return empty, fmt.Errorf("decode nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(ef.CTB64)
	if err != nil {
		return empty, fmt.Errorf("decode ciphertext: %w", err)
	}

	key := argon2.IDKey(password, salt, ef.ArgonTime, ef.ArgonMemory, ef.ArgonThreads, ef.ArgonKeyLen)
	defer zero(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return empty, fmt.Errorf("aead: %w", err)
	}
	plain, err := aead.Open(nil, nonce, ct, o.AAD)
	if err != nil {
		return empty, ErrInvalidPasswordOrCorrupt
	}
	defer zero(plain)

	var out T
	if err := json.Unmarshal(plain, &out); err != nil {
		return empty, fmt.Errorf("unmarshal json: %w", err)
	}
	return out, nil
}

// AtomicWriteFile writes through a sibling temp file and renames it into place.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ConfigPathCandidates returns paths to try for filename, in priority order.
// TF_ENV adds an environment subfolder (local/ or develop/).
func ConfigPathCandidates(app, filename string) ([]string, error) {
	envFolder, err := EnvFolder()
	if err != nil {
		return nil, err
	}
	if app == "" {
		return nil, errors.New("app must not be empty")
	}
	if filename == "" {
		return nil, errors.New("filename must not be empty")
	}

	var paths []string
	seen := map[string]bool{}
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	// <home>/.config/<app>/<env?>/<filename>
	homeStyle := func(home string) string {
		dir := filepath.Join(home, ".config", app)
		if envFolder != "" {
			dir = filepath.Join(dir, envFolder)
		}
		return filepath.Join(dir, filename)
	}
	if realHome := os.Getenv("SNAP_REAL_HOME"); realHome != "" {
		add(homeStyle(realHome))
	}
	if home := os.Getenv("HOME"); home != "" {
		add(homeStyle(home))
	}

	if dir, err := os.UserConfigDir(); err == nil {
		base := filepath.Join(dir, app)
		if envFolder != "" {
			base = filepath.Join(base, envFolder)
		}
		add(filepath.Join(base, filename))
	} else if len(paths) == 0 {
		return nil, fmt.Errorf("UserConfigDir: %w", err)
	}
	return paths, nil
}

// ResolvePath returns the first existing candidate, or the first candidate
// when none exists yet.
func ResolvePath(app, filename string) (string, error) {
	cands, err := ConfigPathCandidates(app, filename)
	if err != nil {
		return "", err
	}
	if len(cands) == 0 {
		return "", errors.New("no config path candidates")
	}
	for _, p := range cands {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return cands[0], nil
}

func EnvFolder() (string, error) {
	raw := strings.TrimSpace(os.Getenv(constants.EnvVar))
	switch strings.ToLower(raw) {
	case "", "prod", "production":
		return "", nil
	case "local":
		return "local", nil
	case "dev", "develop", "development":
		return "develop", nil
	default:
		return "", fmt.Errorf("invalid %s %q (allowed: local, develop, empty)", constants.EnvVar, raw)
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
