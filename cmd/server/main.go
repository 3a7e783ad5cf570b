package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"billing-service/internal/config"
	"billing-service/internal/controller"
	"billing-service/internal/email"
	"billing-service/internal/middleware"
	"billing-service/internal/ordercode"
	"billing-service/internal/rabbit"
	"billing-service/internal/repository"
	"billing-service/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("no se pudo inicializar el logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	// Conexión a MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("error conectando a MongoDB", zap.Error(err))
	}
	db := client.Database(cfg.MongoDBName)

	// Repositorios
	orderRepo := repository.NewMongoOrderRepository(db)
	counterRepo := repository.NewMongoCounterRepository(db)
	companyRepo := repository.NewMongoCompanyRepository(db)

	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("error creando índices de órdenes", zap.Error(err))
	}
	if err := companyRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("error creando índices de empresas", zap.Error(err))
	}

	// Colaboradores del workflow
	codes := ordercode.New(cfg.OrderPrefix, counterRepo)
	sender := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromName)

	settings := service.Settings{
		BaseURL:    cfg.BaseURL,
		AdminEmail: cfg.AdminEmail,
		Bank: email.BankDetails{
			Name:   cfg.BankName,
			Holder: cfg.BankHolder,
			CBU:    cfg.BankCBU,
			Alias:  cfg.BankAlias,
		},
		Currency:    cfg.CurrencySymbol,
		DefaultLang: cfg.DefaultLang,
	}

	orderService := service.NewOrderService(orderRepo, codes, sender, settings, logger)
	companyService := service.NewCompanyService(companyRepo, sender, settings, logger)

	// Handlers
	ctl := controller.NewOrderController(orderService, companyService, cfg.UploadDir, logger)

	// Router
	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())

	r.GET("/metrics", middleware.PrometheusHandler())

	api := r.Group("/api")
	api.GET("/health", ctl.Health)

	// Rutas públicas
	api.POST("/orders", ctl.CreateOrder)
	api.POST("/orders/:code/receipt", ctl.UploadReceipt)
	api.POST("/companies", ctl.RegisterCompany)

	// Rutas protegidas (requieren API key)
	auth := api.Group("/")
	auth.Use(middleware.APIKeyAuth(companyService))
	auth.GET("/orders", ctl.ListOrders)
	auth.GET("/orders/:code", ctl.GetOrder)
	auth.PATCH("/orders/:code/status", ctl.UpdateStatus)

	// Conexión a RabbitMQ (opcional: sin broker el servicio sigue sirviendo HTTP)
	if cfg.RabbitURL != "" {
		conn, err := amqp091.Dial(cfg.RabbitURL)
		if err != nil {
			logger.Warn("no se pudo conectar a RabbitMQ, se omite el consumer", zap.Error(err))
		} else {
			ch, err := conn.Channel()
			if err != nil {
				logger.Warn("error creando canal en RabbitMQ", zap.Error(err))
			} else {
				rabbit.SetupConsumers(ch, orderService, logger)
			}
		}
	}

	logger.Info("billing service escuchando", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("el servidor terminó con error", zap.Error(err))
	}
}
