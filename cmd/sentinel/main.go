package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CoinSentinel/internal/background"
	"CoinSentinel/internal/collector"
	"CoinSentinel/internal/config"
	"CoinSentinel/internal/dashboard"
	"CoinSentinel/internal/metrics"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/monitor"
	"CoinSentinel/internal/notifier"
	"CoinSentinel/internal/recorder"
	"CoinSentinel/internal/scheduler"
	"CoinSentinel/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CoinSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.Kind == "mock" {
		fetcher = collector.NewDemoFetcher(cfg.Assets, 2000, uint64(time.Now().UnixNano()))
	} else {
		fetcher = collector.NewCoinGeckoFetcher(cfg.DataSource.BaseURL, cfg.DataSource.VsCurrency, cfg.Proxy, cfg.DataSource.Timeout)
	}
	log.Printf("[INFO] data source: %s (%d assets, %s)", fetcher.Name(), len(cfg.Assets), cfg.DataSource.VsCurrency)

	col := collector.NewCollector(fetcher, cfg.Assets)
	col.Attempts = cfg.DataSource.Attempts
	col.RetryDelay = cfg.DataSource.RetryDelay

	// Init notifier
	var base notifier.Notifier = notifier.LogNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		base = tn
	} else {
		log.Println("[WARN] telegram not configured, notifications go to the log")
	}
	gate := notifier.NewGate(base, cfg.Notifications.Permission)

	// Init state store
	var st store.Store
	if cfg.State.RedisAddr != "" {
		rs, err := store.NewRedisStore(store.RedisConfig{
			Addr: cfg.State.RedisAddr, DB: cfg.State.RedisDB, Prefix: cfg.State.Prefix,
		})
		if err != nil {
			log.Printf("[WARN] init redis store failed, using state file: %v", err)
		} else {
			st = rs
		}
	}
	if st == nil {
		fs, err := store.NewFileStore(cfg.State.File)
		if err != nil {
			log.Fatalf("[FATAL] init state file: %v", err)
		}
		st = fs
	}
	defer st.Close()

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	prom := metrics.NewMetrics(nil)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mon, err := monitor.New(ctx, monitor.Deps{
		Collector: col,
		Store:     st,
		Recorder:  rec,
		Notifier:  gate,
		Metrics:   prom,
		Currency:  cfg.DataSource.VsCurrency,
	})
	if err != nil {
		log.Fatalf("[FATAL] init monitor: %v", err)
	}

	// Dashboard
	hub := dashboard.NewHub(prom)
	mon.Subscribe(func(snap *model.Snapshot) {
		if err := hub.Broadcast(dashboard.TypeSnapshot, snap); err != nil {
			log.Printf("[ERROR] broadcast snapshot: %v", err)
		}
	})
	srv := dashboard.NewServer(cfg.Dashboard.Addr, mon, rec, hub, nil)
	srv.Start()

	// Background sync: separate collectors and history, outbox only.
	var syncer *background.Syncer
	if cfg.Background.Enabled {
		syncAssets, _ := cfg.AssetsByID(cfg.Background.SyncAssets)
		updateAssets, _ := cfg.AssetsByID(cfg.Background.UpdateAssets)
		syncer = background.NewSyncer(fetcher, gate, background.Config{
			SyncAssets:   syncAssets,
			UpdateAssets: updateAssets,
			Threshold:    cfg.Background.Threshold,
			Metrics:      prom,
		})
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case upd := <-syncer.Outbox():
					if err := hub.Broadcast(dashboard.TypeBackground, upd); err != nil {
						log.Printf("[ERROR] broadcast background update: %v", err)
					}
				}
			}
		}()
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, mon, syncer)
	sched.AllowAnyInterval = cfg.Schedule.AllowAnyInterval
	if err := sched.RegisterAll(cfg.Schedule.UpdateInterval, cfg.Schedule.BackgroundCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// First cycle right away instead of waiting a full interval.
	go func() {
		if err := sched.RefreshNow(); err != nil {
			log.Printf("[WARN] initial refresh: %v", err)
		}
	}()

	log.Println("[INFO] CoinSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Printf("[WARN] dashboard shutdown: %v", err)
	}
	hub.Close()
	log.Println("[INFO] CoinSentinel stopped")
}
