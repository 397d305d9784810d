package main

import (
	"context"
	"net/http"
	"time"

	"github.com/orderflow-io/orderflow/libs/config"
	"github.com/orderflow-io/orderflow/libs/httpx"
	"github.com/orderflow-io/orderflow/libs/kafkax"
	otelx "github.com/orderflow-io/orderflow/libs/otel"
	"github.com/orderflow-io/orderflow/libs/runtime"
	"github.com/orderflow-io/orderflow/services/consumer-service/internal/consumer"
	"github.com/orderflow-io/orderflow/services/consumer-service/internal/events"
)

func main() {
	service := config.String("SERVICE_NAME", "consumer-service")
	port, err := config.Port("PORT", "3001")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	brokers, err := config.RequiredString("KAFKA_BROKERS")
	if err != nil {
		panic(err)
	}

	consumerCfg := consumer.Config{
		Brokers: brokers,
		GroupID: config.String("KAFKA_GROUP_ID", "order-service"),
		Topic:   config.String("KAFKA_TOPIC", "order"),
	}

	// Logging is the only side effect today; a projection would slot in
	// here without touching the decode path.
	apply := func(_ context.Context, evt events.Event, kind events.Kind) {
		logger.Info("order event received",
			"order_id", evt.OrderID,
			"status", evt.Status,
			"enveloped", kind == events.KindEnveloped,
		)
	}

	eventConsumer := consumer.New(logger, consumerCfg, events.NewRecordHandler(logger, apply))
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("Kafka consumer is running"))
	})

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
