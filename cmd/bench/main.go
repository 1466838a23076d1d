// Command bench drives the matcher against a synthetic feed and reports
// throughput and final counters to stdout. The core keeps no persisted
// state and speaks no wire protocol; this binary is the only place
// trade and statistics reporting happens.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/clobcore/matching-engine/pkg/clob"
	"github.com/clobcore/matching-engine/pkg/config"
	"github.com/clobcore/matching-engine/pkg/feed"
	"github.com/clobcore/matching-engine/pkg/marketdata"
	"github.com/clobcore/matching-engine/pkg/telemetry"
)

func main() {
	cfg := config.LoadFromEnv("")

	logger, err := telemetry.NewLoggerWithFile("data/bench.log")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("bench_starting",
		"instrument", cfg.Instrument,
		"price_min", cfg.PriceMin,
		"price_max", cfg.PriceMax,
		"max_orders", cfg.MaxOrders,
		"ring_buffer_size", cfg.RingBufferSize,
		"total_orders", cfg.TotalOrdersToGenerate,
	)

	stopProfiling, err := telemetry.StartProfiling(telemetry.ProfileConfig{
		ApplicationName: "clob-bench",
		ServerAddress:   cfg.PyroscopeAddr,
		Tags:            map[string]string{"instrument": cfg.Instrument},
	})
	if err != nil {
		sugar.Warnw("profiling_start_failed", "err", err)
		stopProfiling = func() {}
	}
	defer stopProfiling()

	queue, err := clob.NewQueue(cfg.RingBufferSize)
	if err != nil {
		log.Fatalf("queue: %v", err)
	}

	engine := clob.NewEngine(clob.EngineConfig{
		Instrument: cfg.Instrument,
		PriceMin:   clob.Price(cfg.PriceMin),
		PriceMax:   clob.Price(cfg.PriceMax),
		MaxOrders:  cfg.MaxOrders,
		Logger:     sugar,
	})

	if cfg.MarketDataAddr != "" {
		mdServer := marketdata.NewServer(cfg.Instrument, engine, engine.Stats)
		engine.SetPublisher(mdServer)
		go func() {
			if err := mdServer.Start(cfg.MarketDataAddr); err != nil {
				sugar.Errorw("marketdata_server_stopped", "err", err)
			}
		}()
	}

	gen := feed.NewGenerator(cfg, time.Now().UnixNano(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.Run(ctx, queue)
		close(done)
	}()

	start := time.Now()
	enqueued, dropped := gen.Run(queue, cfg.TotalOrdersToGenerate, 1000)
	generateElapsed := time.Since(start)

	// Give the matcher a chance to drain the ring before we ask it to stop.
	for queue.Len() > 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done
	totalElapsed := time.Since(start)

	stats := engine.Stats()
	sugar.Infow("bench_finished",
		"enqueued", enqueued,
		"dropped", dropped,
		"generate_elapsed", generateElapsed.String(),
		"total_elapsed", totalElapsed.String(),
	)

	report := struct {
		Instrument      string     `json:"instrument"`
		Enqueued        uint64     `json:"enqueued"`
		Dropped         uint64     `json:"dropped"`
		GenerateElapsed string     `json:"generateElapsed"`
		TotalElapsed    string     `json:"totalElapsed"`
		OrdersPerSecond float64    `json:"ordersPerSecond"`
		Stats           clob.Stats `json:"stats"`
	}{
		Instrument:      cfg.Instrument,
		Enqueued:        enqueued,
		Dropped:         dropped,
		GenerateElapsed: generateElapsed.String(),
		TotalElapsed:    totalElapsed.String(),
		OrdersPerSecond: float64(enqueued) / totalElapsed.Seconds(),
		Stats:           stats,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("encode report: %v", err)
	}
	fmt.Fprintf(os.Stderr, "processed %d orders (%d rejected) across %d trades in %s\n",
		stats.OrdersProcessed, stats.OrdersRejected, stats.TradesExecuted, totalElapsed)
}
