package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChristianDiazS/miappventas-sub002/internal/catalog"
	"github.com/ChristianDiazS/miappventas-sub002/internal/config"
	"github.com/ChristianDiazS/miappventas-sub002/internal/httpx"
	kafkax "github.com/ChristianDiazS/miappventas-sub002/internal/kafka"
	"github.com/ChristianDiazS/miappventas-sub002/internal/obs"
	"github.com/ChristianDiazS/miappventas-sub002/internal/orders"
	"github.com/ChristianDiazS/miappventas-sub002/internal/postgres"
	"github.com/ChristianDiazS/miappventas-sub002/internal/redisx"
	"github.com/ChristianDiazS/miappventas-sub002/internal/stock"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	obs.InitLogger(cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per lifecycle topic
	producers := map[string]*kafkax.Producer{
		orders.EventOrderCreated:       kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024),
		orders.EventOrderCancelled:     kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024),
		orders.EventOrderStatusChanged: kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 1024),
		orders.EventPaymentUpdated:     kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPayment, 1024),
	}
	for _, p := range producers {
		p.Start(ctx)
	}

	// Catalog behind the redis read cache
	cached := catalog.NewCached(&catalog.PG{DB: db}, rdb)
	cached.TTL = cfg.CatalogCacheTTL

	svc := &orders.Service{
		Resolver: &orders.Resolver{Catalog: cached},
		Calc: &orders.Calculator{
			TaxRateBps: cfg.TaxRateBps,
			ShippingCents: map[orders.ShippingMethod]int{
				orders.ShippingStandard: cfg.ShippingStandardCents,
				orders.ShippingExpress:  cfg.ShippingExpressCents,
			},
		},
		Ledger:    &stock.PG{DB: db},
		Repo:      &orders.PGRepo{DB: db},
		Publisher: &orders.KafkaPublisher{Producers: producers, ServiceName: cfg.ServiceName},
		Cache:     cached,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Service: svc, Redis: rdb}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close() // close inbox -> flush & close writer
	}
	for _, p := range producers {
		p.WaitClosed()
	}
}
