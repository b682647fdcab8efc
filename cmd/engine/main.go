package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/yanun0323/decimal"

	"github.com/mostrub/nautilus-trader/internal/engine"
	"github.com/mostrub/nautilus-trader/internal/execclient"
	"github.com/mostrub/nautilus-trader/internal/execdb"
	"github.com/mostrub/nautilus-trader/internal/ops"
	"github.com/mostrub/nautilus-trader/internal/portfolio"
	"github.com/mostrub/nautilus-trader/internal/schema"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON engine config")
	overridesPath := flag.String("overrides", "", "Path to YAML hot-reload overrides")
	overridesReload := flag.Duration("overrides-reload-interval", 2*time.Second, "Overrides reload interval (0=disable)")
	venueURL := flag.String("venue-url", "", "Simulated venue websocket URL (empty disables the execution client)")
	postgresDSN := flag.String("postgres-dsn", "", "Postgres connection string for a durable execution database (empty uses in-memory)")
	enableProfiling := flag.Bool("enable-profiling", false, "Enable continuous profiling via Pyroscope")
	pyroscopeAddr := flag.String("pyroscope-addr", "http://localhost:4040", "Pyroscope server address")
	flag.Parse()

	if *enableProfiling {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "nautilus-trader-engine",
			ServerAddress:   *pyroscopeAddr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer profiler.Stop()
	}

	if *configPath == "" {
		log.Fatal("-config is required")
	}
	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	overrides, err := ops.LoadOverrides(*overridesPath)
	if err != nil {
		log.Fatalf("overrides load failed: %v", err)
	}
	loaded = loaded.Apply(overrides)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	database, err := buildDatabase(engine.TraderID(loaded.TraderID), *postgresDSN)
	if err != nil {
		log.Fatalf("execution database init failed: %v", err)
	}

	port := portfolio.New()

	// live is assigned below, before the simulated client's callback can
	// ever actually fire: SimClient.Start (which spawns the goroutine that
	// invokes this closure) is only called once live is non-nil.
	var live *engine.Live
	var client engine.ExecutionClient
	var simClient *execclient.SimClient
	if *venueURL != "" {
		simClient = execclient.NewSimClient(ctx, *venueURL, func(evt engine.Event) {
			if err := live.SubmitEvent(evt); err != nil {
				log.Printf("engine: dropping event, queue error: %v", err)
			}
		})
		client = simClient
	} else {
		client = noopClient{}
	}

	e, err := engine.New(engine.Config{
		TraderID:  engine.TraderID(loaded.TraderID),
		AccountID: engine.AccountID(loaded.AccountID),
		OMS:       parseOMS(loaded.OMS),
		Database:  database,
		Client:    client,
		Portfolio: port,
		Symbols:   symbolRegistry(loaded.Registry),
	})
	if err != nil {
		log.Fatalf("engine init failed: %v", err)
	}
	e.SetPaused(loaded.Features.PauseOrderFlow)

	if *overridesPath != "" && *overridesReload > 0 {
		go watchOverrides(ctx, *overridesPath, *overridesReload, e.SetPaused)
	}

	live = engine.NewLive(e, 0)

	if simClient != nil {
		if err := simClient.Start(ctx); err != nil {
			log.Fatalf("simulated venue connection failed: %v", err)
		}
		defer simClient.Close()
	}

	live.Start()

	log.Printf("engine started: trader=%s account=%s oms=%s", loaded.TraderID, loaded.AccountID, loaded.OMS)

	<-ctx.Done()
	log.Print("shutdown requested, draining live loop")
	live.Stop()

	residuals, err := e.CheckResiduals()
	if err != nil {
		log.Printf("residual check failed: %v", err)
	} else {
		log.Printf("shutdown complete: open_orders=%d open_positions=%d commands=%d events=%d",
			len(residuals.OpenOrders), len(residuals.OpenPositions),
			e.CommandCount(), e.EventCount())
	}
}

func buildDatabase(trader engine.TraderID, postgresDSN string) (engine.ExecutionDatabase, error) {
	if postgresDSN == "" {
		return execdb.NewMemory(trader), nil
	}
	return execdb.Open(trader, execdb.Option{ConnString: postgresDSN})
}

// symbolRegistry returns reg, or nil if the config named no symbols at all —
// an engine with no configured symbol list accepts any symbol rather than
// rejecting every order.
func symbolRegistry(reg *schema.Registry) *schema.Registry {
	if reg == nil || reg.SymbolCount() == 0 {
		return nil
	}
	return reg
}

func parseOMS(s string) engine.OMSType {
	switch s {
	case "NETTING":
		return engine.OMSNetting
	case "HEDGING":
		return engine.OMSHedging
	default:
		return engine.OMSUndefined
	}
}

// watchOverrides polls path for modifications and, on every change, applies
// the override's PauseOrderFlow setting via setPaused — the engine's
// operational kill switch, toggled without a process restart.
func watchOverrides(ctx context.Context, path string, interval time.Duration, setPaused func(bool)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastMod time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			overrides, err := ops.LoadOverrides(path)
			if err != nil {
				log.Printf("overrides reload failed: %v", err)
				continue
			}
			if overrides.PauseOrderFlow != nil {
				setPaused(*overrides.PauseOrderFlow)
			}
			lastMod = info.ModTime()
			log.Printf("overrides reloaded: %s", path)
		}
	}
}

// noopClient is used when no simulated venue URL is configured, so the
// engine can still run (and be driven purely by injected events, e.g. in
// tests or a dry-run) without a live connection.
type noopClient struct{}

func (noopClient) SubmitOrder(engine.Order) error               { return nil }
func (noopClient) SubmitBracketOrder(engine.BracketOrder) error { return nil }
func (noopClient) ModifyOrder(engine.ClOrdID, decimal.Decimal, decimal.Decimal) error {
	return nil
}
func (noopClient) CancelOrder(engine.ClOrdID) error      { return nil }
func (noopClient) AccountInquiry(engine.AccountID) error { return nil }
