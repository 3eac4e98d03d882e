// Package paymentgateway содержит клиент платежного шлюза и его песочную
// реализацию. Шлюз — внешний коллаборатор: ядро платежей знает только про
// интерфейс Gateway и ограничивает вызов таймаутом через контекст.
package paymentgateway

import "context"

// ChargeRequest представляет запрос на списание средств.
type ChargeRequest struct {
	OrderID       string  `json:"order_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"payment_method"` // card, yape, plin и т.п.
	Description   string  `json:"description"`
	CustomerEmail string  `json:"customer_email"`
}

// ChargeResponse представляет ответ шлюза на списание.
type ChargeResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"` // succeeded или failed
	Message       string `json:"message,omitempty"`
}

// Succeeded сообщает, что шлюз подтвердил списание.
func (r *ChargeResponse) Succeeded() bool {
	return r.Status == "succeeded"
}

// Gateway описывает интерфейс платежного шлюза.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
}
