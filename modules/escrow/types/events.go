package types

// Trade escrow events
const (
	EventTypeCreateTrade  = "create_trade"
	EventTypeCancelTrade  = "cancel_trade"
	EventTypeReclaimTrade = "reclaim_trade"
	EventTypeAcknowledge  = "acknowledge_trade"
	EventTypeClaim        = "claim_after_window"
	EventTypeResolve      = "resolve_with_proof"

	AttributeKeyTradeID  = "trade_id"
	AttributeKeyBuyer    = "buyer"
	AttributeKeySeller   = "seller"
	AttributeKeyGoodID   = "good_id"
	AttributeKeyAmount   = "amount"
	AttributeKeyStake    = "stake"
	AttributeKeyStatus   = "status"
	AttributeKeyOwnsGood = "owns_good"
)
