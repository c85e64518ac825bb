package main

import (
	"net/http"

	"modakarina-be/internal/cart"
	"modakarina-be/internal/config"
	"modakarina-be/internal/db"
	"modakarina-be/internal/logger"
	"modakarina-be/internal/order"
	"modakarina-be/internal/payment"
	"modakarina-be/internal/product"
	"modakarina-be/internal/shipping"
	"modakarina-be/internal/transport/rest"
	"modakarina-be/internal/user"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo)

	paymentRepo := payment.NewRepository(database)
	gateway := payment.NewMercadoPagoGateway(
		cfg.MercadoPagoAccessToken,
		cfg.WebhookBaseURL+"/webhook/mercadopago",
	)
	estimator := shipping.NewViaCEPEstimator(cfg.FreeShippingThreshold)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(
		orderRepo, cartRepo, productRepo, userRepo, paymentRepo, gateway, estimator,
	)

	router := rest.NewRouter(rest.Services{
		Users:     userSvc,
		Products:  productSvc,
		Carts:     cartSvc,
		Orders:    orderSvc,
		Estimator: estimator,
	})

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
