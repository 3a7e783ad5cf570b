package rabbit

import (
	"context"
	"encoding/json"

	"billing-service/internal/dto"
	"billing-service/internal/service"

	"go.uber.org/zap"
)

type CreateOrderConsumer struct {
	Service *service.OrderService
	Logger  *zap.Logger
}

func NewCreateOrderConsumer(s *service.OrderService, logger *zap.Logger) *CreateOrderConsumer {
	return &CreateOrderConsumer{Service: s, Logger: logger}
}

type PlacedOrderMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		Name    string  `json:"name"`
		Email   string  `json:"email"`
		Amount  float64 `json:"amount"`
		Lang    string  `json:"lang"`
		Product string  `json:"product"`
	} `json:"message"`
}

func (c *CreateOrderConsumer) Handle(msg []byte) error {
	c.Logger.Info("evento recibido: order_placed")

	var event PlacedOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		c.Logger.Error("error parseando mensaje", zap.Error(err))
		return err
	}

	res, err := c.Service.CreateOrder(context.Background(), dto.CreateOrderRequest{
		Name:    event.Message.Name,
		Email:   event.Message.Email,
		Amount:  event.Message.Amount,
		Lang:    event.Message.Lang,
		Product: event.Message.Product,
	})
	if err != nil {
		c.Logger.Error("error creando orden desde evento", zap.Error(err))
		return err
	}

	c.Logger.Info("orden creada desde evento",
		zap.String("order", res.OrderCode),
		zap.Bool("emailSent", res.EmailSent))
	return nil
}
