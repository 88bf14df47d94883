package main

import (
	"context"

	"fabricstore/internal/config"
	"fabricstore/internal/db"
	"fabricstore/internal/logging"
	"fabricstore/internal/seed"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New("seed")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	res, err := seed.Apply(ctx, pool)
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied",
		zap.Strings("order_numbers", res.OrderNumbers),
		zap.String("customer_phone", res.CustomerPhone),
		zap.String("customer_token", res.CustomerToken),
	)
}
