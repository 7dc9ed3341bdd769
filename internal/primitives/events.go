package primitives

import (
	"context"

	"github.com/forgebase/depengine/internal/ports"
)

func publishTransactionSent(pc Context, actionName, txHash string) {
	publish(pc, ports.EventTransactionSent, ports.SeverityInfo, map[string]interface{}{
		"action": actionName,
		"txHash": txHash,
	})
}

func publishTransactionConfirmed(pc Context, actionName string, receipt *ports.Receipt) {
	publish(pc, ports.EventTransactionConfirmed, ports.SeverityInfo, map[string]interface{}{
		"action":      actionName,
		"txHash":      receipt.TxHash,
		"blockNumber": receipt.BlockNumber,
		"gasUsed":     receipt.GasUsed,
	})
}

func publish(pc Context, eventType string, severity ports.Severity, payload interface{}) {
	publisher := pc.Publisher()
	if publisher == nil {
		return
	}
	_ = publisher.Publish(context.Background(), ports.NewEvent(eventType, severity, payload))
}
