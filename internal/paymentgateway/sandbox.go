package paymentgateway

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Sandbox — песочная реализация шлюза. В режиме development списание всегда
// успешно, иначе имитируется отказ примерно в 20% случаев.
type Sandbox struct {
	alwaysSucceed bool
}

// NewSandbox создаёт песочный шлюз. alwaysSucceed включается вне production.
func NewSandbox(alwaysSucceed bool) *Sandbox {
	return &Sandbox{alwaysSucceed: alwaysSucceed}
}

// Charge имитирует обращение к шлюзу, уважая отмену контекста.
func (g *Sandbox) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if req.OrderID == "" || req.Amount <= 0 {
		return &ChargeResponse{
			Status:  "failed",
			Message: "incomplete charge request",
		}, nil
	}

	if !g.alwaysSucceed && rand.Float64() < 0.2 {
		return &ChargeResponse{
			Status:  "failed",
			Message: "simulated gateway decline",
		}, nil
	}

	return &ChargeResponse{
		TransactionID: fmt.Sprintf("TXN_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8]),
		Status:        "succeeded",
		Message:       "charge accepted",
	}, nil
}
