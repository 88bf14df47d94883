package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fabricstore/internal/delivery"
	"fabricstore/internal/domain"
	"fabricstore/internal/importer"
	"fabricstore/internal/storefront/checkout"
	"fabricstore/internal/storefront/history"
	"fabricstore/internal/storefront/tracker"
)

const flushTimeout = 10 * time.Second

func (a *app) runCart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("missing cart subcommand")
	}
	store := a.cartStore()
	sub, rest := args[0], args[1:]

	switch sub {
	case "add":
		fs := flag.NewFlagSet("cart add", flag.ContinueOnError)
		name := fs.String("name", "", "product name when no catalog is configured")
		price := fs.Int64("price", 0, "unit price in RWF when no catalog is configured")
		image := fs.String("image", "", "product image URL")
		if len(rest) == 0 {
			return errors.New("product id required")
		}
		id := rest[0]
		if err := fs.Parse(rest[1:]); err != nil {
			return err
		}
		p, err := a.lookupProduct(ctx, id, *name, *price, *image)
		if err != nil {
			return err
		}
		store.AddItem(p)
	case "remove":
		if len(rest) != 1 {
			return errors.New("usage: cart remove <product-id>")
		}
		store.RemoveItem(rest[0])
	case "set":
		if len(rest) != 2 {
			return errors.New("usage: cart set <product-id> <quantity>")
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", rest[1])
		}
		store.SetQuantity(rest[0], n)
	case "clear":
		store.Clear()
	case "list":
	default:
		return fmt.Errorf("unknown cart subcommand %q", sub)
	}

	printCart(store.Items())
	return nil
}

func (a *app) lookupProduct(ctx context.Context, id, name string, price int64, image string) (domain.Product, error) {
	if a.cfg.CatalogFile != "" && name == "" {
		catalog, err := importer.LoadCatalogFile(ctx, a.cfg.CatalogFile)
		if err != nil {
			return domain.Product{}, err
		}
		return catalog.Get(id)
	}
	if name == "" || price <= 0 {
		return domain.Product{}, errors.New("set CATALOG_FILE or pass -name and -price")
	}
	return domain.Product{ID: id, Name: name, Price: price, Image: image}, nil
}

func printCart(items []domain.CartItem) {
	if len(items) == 0 {
		fmt.Println("Cart is empty")
		return
	}
	for _, it := range items {
		fmt.Printf("%-16s %-28s %3d x %10s = %12s RWF\n", it.ID, it.Name, it.Quantity,
			checkout.FormatAmount(it.Price), checkout.FormatAmount(it.LineTotal()))
	}
	fmt.Printf("%d items, total %s RWF\n", domain.CartCount(items), checkout.FormatAmount(domain.CartTotal(items)))
}

type printNavigator struct{}

func (printNavigator) Navigate(url string) {
	fmt.Printf("Open WhatsApp to send your order:\n%s\n", url)
}

func (a *app) runCheckout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	name := fs.String("name", "", "customer name (defaults to Guest)")
	phone := fs.String("phone", "", "customer phone")
	option := fs.String("delivery", string(domain.DeliveryPickup), "pickup, kigali or upcountry")
	location := fs.String("location", "", "delivery location, required unless pickup")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opt, err := domain.ParseDeliveryOption(*option)
	if err != nil {
		return err
	}

	store := a.cartStore()
	submitter := checkout.NewBeaconSubmitter(a.client, a.logger.Named("beacon"))
	orch := checkout.New(store, submitter, a.cfg.MerchantWhatsApp,
		checkout.WithNavigator(printNavigator{}),
		checkout.WithLogger(a.logger.Named("checkout")),
	)

	handoff, err := orch.Checkout(checkout.Draft{
		CustomerName:  *name,
		CustomerPhone: *phone,
		Delivery:      checkout.Selection{Option: opt, Location: *location},
	})
	if err != nil {
		return err
	}
	fmt.Printf("Subtotal %s RWF, %s %s RWF, total %s RWF\n",
		checkout.FormatAmount(handoff.Subtotal), delivery.Label(opt),
		checkout.FormatAmount(handoff.DeliveryFee), checkout.FormatAmount(handoff.GrandTotal))

	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := submitter.Flush(flushCtx); err != nil {
		a.logger.Warn("checkout: order submission still in flight at exit")
	}
	return nil
}

func (a *app) runTrack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("track", flag.ContinueOnError)
	id := fs.String("id", "", "order id")
	number := fs.String("number", "", "order number, e.g. FAB-250301-AB12")
	phone := fs.String("phone", "", "phone used at checkout")
	once := fs.Bool("once", false, "print the current status and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settled := make(chan struct{}, 1)
	t := tracker.New(tracker.FromClient(a.client),
		tracker.WithInterval(a.cfg.TrackPollInterval),
		tracker.WithEmptyMessage("No tracking information available yet."),
		tracker.WithLogger(a.logger.Named("tracker")),
		tracker.WithOnChange(func(v tracker.View) {
			printView(v)
			if v.Loading {
				return
			}
			if *once || v.Empty || (v.Info != nil && v.Info.Status.Terminal()) {
				select {
				case settled <- struct{}{}:
				default:
				}
			}
		}),
	)
	defer t.Stop()

	t.Watch(tracker.Query{OrderID: *id, OrderNumber: *number, Phone: *phone})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-settled:
	case <-sigCh:
	case <-ctx.Done():
	}
	return nil
}

func printView(v tracker.View) {
	switch {
	case v.Loading:
		fmt.Println("Loading...")
	case v.Empty:
		fmt.Println(v.EmptyMessage)
	default:
		fmt.Printf("%s  %s\n", v.Info.OrderNumber, v.Info.Status)
		if v.Cancelled {
			fmt.Println("  This order was cancelled.")
			return
		}
		for _, s := range v.Steps {
			mark := "[ ]"
			if s.Completed {
				mark = "[x]"
			}
			fmt.Printf("  %s %s\n", mark, s.Label)
		}
		if v.Info.TrackingNumber != "" {
			fmt.Printf("  Tracking number: %s\n", v.Info.TrackingNumber)
		}
	}
}

func (a *app) runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	token := fs.String("token", a.cfg.CustomerToken, "customer access token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := history.NewService(a.client, a.logger.Named("history")).List(ctx, *token)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-16s %-12s %12s RWF\n", e.Order.CreatedAt.Format("2006-01-02"),
			e.Order.OrderNumber, e.Stage, checkout.FormatAmount(e.Order.Total))
	}
	return nil
}
