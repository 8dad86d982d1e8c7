package fees

import (
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

// Gas added on top of the base deployment for each enabled capability.
const FeatureGas uint64 = 20_000

// Quote is an advisory cost breakdown; nothing is reserved by it.
type Quote struct {
	GasEstimate   uint64
	GasPrice      *uint256.Int
	EstimatedCost *uint256.Int
	ServiceFee    *uint256.Int
}

// Total is the estimated execution cost plus the service fee.
func (q Quote) Total() *uint256.Int {
	return new(uint256.Int).Add(q.EstimatedCost, q.ServiceFee)
}

// Estimator prices a deployment from a per-deployment gas figure.
type Estimator struct {
	GasPerDeployment uint64
	GasPrice         *uint256.Int
}

func (e Estimator) Gas(cfg token.Config) uint64 {
	gas := e.GasPerDeployment
	f := cfg.Features()
	for _, on := range []bool{f.Mintable, f.Burnable, f.Pausable, f.Capped} {
		if on {
			gas += FeatureGas
		}
	}
	return gas
}

func (e Estimator) Quote(s Schedule, cfg token.Config) Quote {
	gas := e.Gas(cfg)
	price := clone(e.GasPrice)
	return Quote{
		GasEstimate:   gas,
		GasPrice:      price,
		EstimatedCost: new(uint256.Int).Mul(uint256.NewInt(gas), price),
		ServiceFee:    s.Fee(),
	}
}
