package networks

import "github.com/XTakerDAO/token-factory-sub001/internal/constants"

type Network struct {
	Name       string `json:"name"`
	ChainId    uint64 `json:"chainId,omitempty"`
	ChainIdHex string `json:"chainIdHex"`
	Explorer   string `json:"explorer,omitempty"`
	RpcUrl     string `json:"rpcUrl,omitempty"`
}

type Store struct {
	Schema   int                `json:"schema"`
	Networks map[string]Network `json:"networks"` // key = normalized name
}

func NewEmptyStore() Store {
	return Store{
		Schema:   constants.SchemaV1,
		Networks: map[string]Network{},
	}
}
