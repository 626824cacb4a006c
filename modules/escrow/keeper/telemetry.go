package keeper

import (
	"strconv"

	metrics "github.com/hashicorp/go-metrics"

	"github.com/gametrade/zkescrow/modules/escrow/types"
)

func emitTradeMetric(event string, trade types.Trade) {
	labels := []metrics.Label{
		{Name: types.AttributeKeyStatus, Value: trade.Status.String()},
		{Name: types.AttributeKeyGoodID, Value: strconv.FormatUint(trade.GoodID, 10)},
	}

	metrics.IncrCounterWithLabels([]string{types.ModuleName, event}, 1, labels)

	if trade.Amount.IsInt64() {
		metrics.SetGaugeWithLabels(
			[]string{types.ModuleName, event, types.AttributeKeyAmount},
			float32(trade.Amount.Int64()),
			labels,
		)
	}
}
