package keeper

import (
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/gametrade/zkescrow/modules/escrow/types"
)

// Keeper owns all trade records and is the only component authorized to move
// escrowed funds. Trades are kept in an indexed table keyed by a monotonically
// assigned id; terminal trades are retained as an audit trail.
type Keeper struct {
	mu sync.Mutex

	logger    log.Logger
	bank      types.BankKeeper
	clock     types.Clock
	authority common.Address
	params    types.Params

	trades map[uint64]types.Trade
	nextID uint64
}

// NewKeeper creates a new trade escrow Keeper instance.
func NewKeeper(logger log.Logger, bank types.BankKeeper, clock types.Clock, authority common.Address, params types.Params) (*Keeper, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if authority == (common.Address{}) {
		return nil, errorsmod.Wrap(types.ErrInvalidInput, "authority cannot be the zero address")
	}

	return &Keeper{
		logger:    logger,
		bank:      bank,
		clock:     clock,
		authority: authority,
		params:    params,
		trades:    make(map[uint64]types.Trade),
		nextID:    1,
	}, nil
}

// Logger returns a module-specific logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger.With("module", "x/"+types.ModuleName)
}

// GetParams returns the current ledger parameters.
func (k *Keeper) GetParams() types.Params {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.params
}

// SetStakePercent updates the seller stake percentage for subsequent
// acknowledgments. Restricted to the ledger authority.
func (k *Keeper) SetStakePercent(caller common.Address, stakePercent uint32) error {
	if stakePercent > types.MaxStakePercent {
		return errorsmod.Wrapf(types.ErrInvalidStakePercent, "got %d", stakePercent)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if caller != k.authority {
		return errorsmod.Wrapf(types.ErrUnauthorized, "caller %s is not the ledger authority", caller)
	}

	k.params.StakePercent = stakePercent
	k.Logger().Info("stake percent updated", types.AttributeKeyStake, stakePercent)

	return nil
}

// SetResolver updates the identity permitted to resolve trades by proof.
// Restricted to the ledger authority.
func (k *Keeper) SetResolver(caller, resolver common.Address) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if caller != k.authority {
		return errorsmod.Wrapf(types.ErrUnauthorized, "caller %s is not the ledger authority", caller)
	}

	k.params.Resolver = resolver
	k.Logger().Info("resolver updated", "resolver", resolver)

	return nil
}

// GetTrade returns the trade record for the given id.
func (k *Keeper) GetTrade(id uint64) (types.Trade, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	trade, found := k.trades[id]
	return trade, found
}

// HasTrade reports whether a trade record exists for the given id.
func (k *Keeper) HasTrade(id uint64) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	_, found := k.trades[id]
	return found
}

// GetAllTrades returns every trade record, including terminal ones, in
// ascending id order.
func (k *Keeper) GetAllTrades() []types.Trade {
	k.mu.Lock()
	defer k.mu.Unlock()

	trades := make([]types.Trade, 0, len(k.trades))
	for _, trade := range k.trades {
		trades = append(trades, trade)
	}
	sort.Slice(trades, func(i, j int) bool { return trades[i].ID < trades[j].ID })

	return trades
}

// AcknowledgedAt returns the acknowledgment time of a trade. It fails if the
// trade does not exist or has not been acknowledged yet.
func (k *Keeper) AcknowledgedAt(id uint64) (time.Time, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	trade, found := k.trades[id]
	if !found {
		return time.Time{}, errorsmod.Wrapf(types.ErrTradeNotFound, "trade %d", id)
	}
	if trade.AcknowledgedAt.IsZero() {
		return time.Time{}, errorsmod.Wrapf(types.ErrInvalidState, "trade %d has not been acknowledged", id)
	}

	return trade.AcknowledgedAt, nil
}
