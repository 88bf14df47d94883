package main

import (
	"context"
	"fmt"
	"os"

	"fabricstore/internal/config"
	"fabricstore/internal/logging"
	"fabricstore/internal/storefront/api"
	"fabricstore/internal/storefront/cart"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const usage = `usage: storefront <command> [flags]

commands:
  cart add <product-id> [-name N -price P -image URL]
  cart remove <product-id>
  cart set <product-id> <quantity>
  cart list
  cart clear
  checkout -phone PHONE [-name NAME] [-delivery pickup|kigali|upcountry] [-location LOC]
  track (-id ORDER_ID | -number ORDER_NUMBER -phone PHONE) [-once]
  history [-token TOKEN]
`

type app struct {
	cfg    config.Config
	logger *zap.Logger
	client *api.Client
	closer func()
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger, err := logging.New("storefront")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	a := &app{
		cfg:    cfg,
		logger: logger,
		client: api.New(cfg.APIBaseURL, nil),
		closer: func() {},
	}
	defer func() { a.closer() }()

	ctx := context.Background()
	args := os.Args[2:]
	switch os.Args[1] {
	case "cart":
		err = a.runCart(ctx, args)
	case "checkout":
		err = a.runCheckout(ctx, args)
	case "track":
		err = a.runTrack(ctx, args)
	case "history":
		err = a.runHistory(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		a.closer()
		os.Exit(1)
	}
}

// cartStore opens the cart in Redis when REDIS_ADDR is set, otherwise in CART_FILE.
func (a *app) cartStore() *cart.Store {
	if a.cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		a.closer = func() { _ = rdb.Close() }
		return cart.NewStore(cart.NewRedis(rdb, a.cfg.CartKey), a.logger.Named("cart"))
	}
	return cart.NewStore(cart.NewFile(a.cfg.CartFile), a.logger.Named("cart"))
}
