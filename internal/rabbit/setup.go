// setup.go
package rabbit

import (
	"billing-service/internal/service"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// SetupConsumers suscribe el servicio al exchange fanout order_placed.
// Las órdenes que llegan por acá pasan por el mismo workflow que la API.
func SetupConsumers(ch *amqp091.Channel, svc *service.OrderService, logger *zap.Logger) {
	consumer := NewCreateOrderConsumer(svc, logger)

	q, err := ch.QueueDeclare(
		"billing_service_orders",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("error declarando queue", zap.Error(err))
		return
	}

	err = ch.QueueBind(
		q.Name,
		"", // fanout ignora routing key
		"order_placed",
		false,
		nil,
	)
	if err != nil {
		logger.Error("error binding exchange", zap.Error(err))
		return
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("error al consumir queue", zap.Error(err))
		return
	}

	go func() {
		for m := range msgs {
			consumer.Handle(m.Body)
		}
	}()

	logger.Info("suscrito a exchange order_placed (fanout)")
}
