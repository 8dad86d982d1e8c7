package factory

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/ledger"
)

// Migration moves committed state to the version it is registered under.
// It runs inside the upgrade's commit and must not touch token instances.
type Migration func(tx *ledger.Tx) error

func defaultMigrations() map[uint64]Migration {
	return map[uint64]Migration{
		2: normalizeSymbols,
	}
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// normalizeSymbols prepares version 2, where symbol queries are trimmed and
// upper-cased before lookup (see symbolKey). The stored index is rebuilt
// under the same normalization; records that passed validation are already
// upper-case, so for them the rebuild keeps every key and only proves that
// no two records collide. A collision aborts the upgrade.
func normalizeSymbols(tx *ledger.Tx) error {
	seen := map[string]common.Address{}
	for _, r := range tx.View().Records() {
		key := normalizeSymbol(r.Symbol)
		if other, dup := seen[key]; dup {
			return apperrors.Newf(apperrors.CodeSymbolAlreadyExists,
				"symbols of %s and %s collide as %s", other.Hex(), r.Address.Hex(), key)
		}
		seen[key] = r.Address
	}
	tx.RebuildSymbolIndex(normalizeSymbol)
	return nil
}

// symbolKey is the index key a symbol query maps to at the state's version.
// Before version 2 lookups are exact.
func symbolKey(s *ledger.State, sym string) string {
	if s.Version() >= 2 {
		return normalizeSymbol(sym)
	}
	return sym
}

// UpgradeTo advances the factory to version, which must be the next one
// and have a registered migration.
func (f *Facade) UpgradeTo(ctx context.Context, caller common.Address, version uint64) error {
	var from uint64
	_, err := f.commit(ctx, "upgradeTo", caller, func(tx *ledger.Tx) error {
		if err := f.authorize(tx, caller); err != nil {
			return err
		}
		from = tx.View().Version()
		migrate, ok := f.migrations[version]
		if version != from+1 || !ok {
			return apperrors.Newf(apperrors.CodeUnsupportedVersion,
				"cannot upgrade from version %d to %d", from, version)
		}
		if err := migrate(tx); err != nil {
			return err
		}
		tx.SetVersion(version)
		_, err := tx.Emit(events.Upgraded, f.address, events.UpgradedPayload{From: from, To: version})
		return err
	})
	if err != nil {
		return err
	}
	log.Info("factory upgraded", "from", from, "to", version)
	return nil
}

func (f *Facade) Version() uint64 {
	return f.ledger.View().Version()
}
