package main

import (
	"context"
	"fmt"

	"github.com/microshop/orders-service/internal/adapter/bus"
	"github.com/microshop/orders-service/internal/adapter/cache"
	"github.com/microshop/orders-service/internal/adapter/client/catalog"
	"github.com/microshop/orders-service/internal/adapter/client/payment"
	"github.com/microshop/orders-service/internal/adapter/config"
	"github.com/microshop/orders-service/internal/adapter/handler/http"
	"github.com/microshop/orders-service/internal/adapter/handler/rpc"
	"github.com/microshop/orders-service/internal/adapter/logger"
	"github.com/microshop/orders-service/internal/adapter/storage"
	"github.com/microshop/orders-service/internal/adapter/storage/repository"
	"github.com/microshop/orders-service/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("order repo creating error", zap.Error(err))
		return
	}

	serviceBus, err := bus.NewBus(conf.Bus, log.Named("Bus"))
	if err != nil {
		log.Error("bus connection error", zap.Error(err))
		return
	}
	defer func() {
		if err := serviceBus.Drain(); err != nil {
			log.Error("bus drain error", zap.Error(err))
		}
	}()

	nameCache := cache.NewRedisCache(conf.Redis)

	catalogClient, err := catalog.NewCatalogClient(serviceBus, nameCache, log.Named("Catalog"))
	if err != nil {
		log.Error("catalog client creating error", zap.Error(err))
		return
	}
	paymentClient, err := payment.NewPaymentClient(serviceBus, log.Named("Payment"))
	if err != nil {
		log.Error("payment client creating error", zap.Error(err))
		return
	}

	svc, err := service.NewService(repo, catalogClient, paymentClient, conf.Payment.Currency, log.Named("Service"))
	if err != nil {
		log.Error("order service creating error", zap.Error(err))
		return
	}

	orderHandler, err := rpc.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}

	router, err := rpc.NewRouter(serviceBus, orderHandler, log.Named("Router"))
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}
	err = router.Subscribe()
	if err != nil {
		log.Error("router subscribe error", zap.Error(err))
		return
	}
	defer router.Unsubscribe()

	ops, err := http.NewRouter(conf.App)
	if err != nil {
		log.Error("ops router creating error", zap.Error(err))
		return
	}

	err = ops.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("ops serve error", zap.Error(err))
		return
	}
}
