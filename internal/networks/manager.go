// Package networks persists the chains a factory deployment supports.
package networks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/XTakerDAO/token-factory-sub001/internal/constants"
	"github.com/XTakerDAO/token-factory-sub001/internal/securefile"
)

type Manager struct {
	mu    sync.RWMutex
	path  string
	store Store
}

// NewManager manages the networks file at path, or at the canonical config
// path when path is empty.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		p, err := securefile.ResolvePath(constants.AppName, constants.NetworksFile)
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Manager{path: path, store: NewEmptyStore()}, nil
}

func (m *Manager) Path() string { return m.path }

// Load replaces the in-memory set with the file's contents. Entries without
// a usable chain id are dropped.
func (m *Manager) Load(ctx context.Context) error {
	_ = ctx
	b, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("read networks file: %w", err)
	}
	var s Store
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("unmarshal networks file: %w", err)
	}

	norm := NewEmptyStore()
	if s.Schema != 0 {
		norm.Schema = s.Schema
	}
	for k, n := range s.Networks {
		if n.Name == "" {
			n.Name = k
		}
		n, err := normalize(n)
		if err != nil {
			continue
		}
		norm.Networks[n.Name] = n
	}

	m.mu.Lock()
	m.store = norm
	m.mu.Unlock()
	return nil
}

// EnsureFromConfig merges configured networks into the file: missing ones
// are added, and existing ones only get their blank fields filled.
func (m *Manager) EnsureFromConfig(ctx context.Context, defaults []Network) error {
	if err := m.loadIfExists(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := !exists(m.path)
	for _, dn := range defaults {
		dn, err := normalize(dn)
		if err != nil {
			continue
		}
		key, ok := m.keyByChainLocked(dn.ChainId)
		if !ok {
			if _, taken := m.store.Networks[dn.Name]; taken {
				continue
			}
			m.store.Networks[dn.Name] = dn
			changed = true
			continue
		}
		cur := m.store.Networks[key]
		if cur.Explorer == "" && dn.Explorer != "" {
			cur.Explorer = dn.Explorer
			changed = true
		}
		if cur.RpcUrl == "" && dn.RpcUrl != "" {
			cur.RpcUrl = dn.RpcUrl
			changed = true
		}
		m.store.Networks[key] = cur
	}

	if !changed {
		return nil
	}
	return m.persistLocked()
}

func (m *Manager) AddNetwork(ctx context.Context, n Network) (Network, error) {
	if err := m.loadIfExists(ctx); err != nil {
		return Network{}, err
	}
	n, err := normalize(Enrich(n))
	if err != nil {
		return Network{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if key, ok := m.keyByChainLocked(n.ChainId); ok {
		return Network{}, fmt.Errorf("network already exists for chainIdHex %s (name: %s)", n.ChainIdHex, key)
	}
	if _, ok := m.store.Networks[n.Name]; ok {
		return Network{}, fmt.Errorf("network name already exists: %s", n.Name)
	}
	m.store.Networks[n.Name] = n
	if err := m.persistLocked(); err != nil {
		delete(m.store.Networks, n.Name)
		return Network{}, err
	}
	return n, nil
}

// RemoveNetworkByChainIdHex is idempotent.
func (m *Manager) RemoveNetworkByChainIdHex(ctx context.Context, chainIdHex string) error {
	if err := m.loadIfExists(ctx); err != nil {
		return err
	}
	id, err := parseChainIdHex(chainIdHex)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keyByChainLocked(id)
	if !ok {
		return nil
	}
	delete(m.store.Networks, key)
	return m.persistLocked()
}

func (m *Manager) List() []Network {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Network, 0, len(m.store.Networks))
	for _, n := range m.store.Networks {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Manager) FindByChainID(chainID uint64) (Network, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.keyByChainLocked(chainID)
	if !ok {
		return Network{}, false
	}
	return m.store.Networks[key], true
}

func (m *Manager) IsSupported(chainID uint64) bool {
	_, ok := m.FindByChainID(chainID)
	return ok
}

func (m *Manager) loadIfExists(ctx context.Context) error {
	m.mu.RLock()
	loaded := len(m.store.Networks) > 0
	m.mu.RUnlock()
	if loaded || !exists(m.path) {
		return nil
	}
	return m.Load(ctx)
}

func (m *Manager) persistLocked() error {
	return securefile.WriteJSON(m.path, m.store, constants.FilePerm)
}

func (m *Manager) keyByChainLocked(chainID uint64) (string, bool) {
	for k, n := range m.store.Networks {
		if n.ChainId == chainID {
			return k, true
		}
	}
	return "", false
}

// normalize lowercases the name and makes ChainId and ChainIdHex agree.
func normalize(n Network) (Network, error) {
	n.Name = strings.ToLower(strings.TrimSpace(n.Name))
	n.Explorer = strings.TrimSpace(n.Explorer)
	n.RpcUrl = strings.TrimSpace(n.RpcUrl)
	if n.Name == "" {
		return Network{}, fmt.Errorf("network.name is required")
	}

	switch {
	case strings.TrimSpace(n.ChainIdHex) != "":
		id, err := parseChainIdHex(n.ChainIdHex)
		if err != nil {
			return Network{}, err
		}
		if n.ChainId != 0 && n.ChainId != id {
			return Network{}, fmt.Errorf("chainId %d does not match chainIdHex %s", n.ChainId, n.ChainIdHex)
		}
		n.ChainId = id
	case n.ChainId != 0:
	default:
		return Network{}, fmt.Errorf("network.chainIdHex is required")
	}
	n.ChainIdHex = hexutil.EncodeUint64(n.ChainId)
	return n, nil
}

func parseChainIdHex(s string) (uint64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("missing chainIdHex")
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	id, err := hexutil.DecodeUint64(s)
	if err != nil {
		return 0, fmt.Errorf("invalid chainIdHex %q: %w", s, err)
	}
	if id == 0 {
		return 0, fmt.Errorf("chain id must be non-zero")
	}
	return id, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
