package networks

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
)

var chainDefaults = map[uint64]struct {
	Name     string
	Explorer string
}{
	1:        {"mainnet", "https://etherscan.io"},
	11155111: {"sepolia", "https://sepolia.etherscan.io"},
	56:       {"bsc", "https://bscscan.com"},
	97:       {"bsc-testnet", "https://testnet.bscscan.com"},
	137:      {"polygon", "https://polygonscan.com"},
	42161:    {"arbitrum", "https://arbiscan.io"},
	10:       {"optimism", "https://optimistic.etherscan.io"},
	8453:     {"base", "https://basescan.org"},
	84532:    {"base-sepolia", "https://sepolia.basescan.org"},
	31337:    {"localhost", ""},
}

// Enrich fills a blank name or explorer from the built-in chain table.
func Enrich(n Network) Network {
	id := n.ChainId
	if id == 0 && n.ChainIdHex != "" {
		id, _ = parseChainIdHex(n.ChainIdHex)
	}
	d, ok := chainDefaults[id]
	if !ok {
		return n
	}
	if n.Name == "" {
		n.Name = d.Name
	}
	if n.Explorer == "" {
		n.Explorer = d.Explorer
	}
	return n
}

// ProbeChainID asks the node behind rpcURL which chain it serves.
func ProbeChainID(ctx context.Context, rpcURL string) (uint64, error) {
	client, err := w3.Dial(rpcURL)
	if err != nil {
		return 0, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	defer client.Close()

	var chainID uint64
	if err := client.CallCtx(ctx, eth.ChainID().Returns(&chainID)); err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}
	return chainID, nil
}

// Verify fills a missing chain id from the node and rejects a node that
// serves a different chain than the one declared.
func Verify(ctx context.Context, n Network) (Network, error) {
	if n.RpcUrl == "" {
		return n, nil
	}
	got, err := ProbeChainID(ctx, n.RpcUrl)
	if err != nil {
		return Network{}, err
	}
	want := n.ChainId
	if want == 0 && n.ChainIdHex != "" {
		if want, err = parseChainIdHex(n.ChainIdHex); err != nil {
			return Network{}, err
		}
	}
	if want != 0 && want != got {
		return Network{}, fmt.Errorf("rpc %s serves chain %d, not %d", n.RpcUrl, got, want)
	}
	n.ChainId = got
	n.ChainIdHex = hexutil.EncodeUint64(got)
	return n, nil
}
