package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"github.com/vitos/crypto_strategy_bot/internal/infrastructure/exchange"
	"github.com/vitos/crypto_strategy_bot/internal/infrastructure/logger"
	"github.com/vitos/crypto_strategy_bot/internal/infrastructure/storage"
	"github.com/vitos/crypto_strategy_bot/internal/strategies"
	"github.com/vitos/crypto_strategy_bot/internal/usecase"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type StrategyConfig struct {
	Name                   string  `yaml:"name"`
	Symbol                 string  `yaml:"symbol"`
	Interval               string  `yaml:"interval"`
	ParentInterval         string  `yaml:"parent_interval"`
	Balance                float64 `yaml:"balance"`
	RiskPercentage         float64 `yaml:"risk_percentage"`
	StopLossPercentage     float64 `yaml:"stop_loss_percentage"`
	TrailingStopPercentage float64 `yaml:"trailing_stop_percentage"`
	SlippagePercentage     float64 `yaml:"slippage_percentage"`
	TakeProfitGainPct      float64 `yaml:"take_profit_gain_pct"`
	TakeProfitClosePct     float64 `yaml:"take_profit_close_pct"`
	Live                   bool    `yaml:"live"`
}

type Config struct {
	Exchange struct {
		Name         string   `yaml:"name"`
		RESTEndpoint string   `yaml:"rest_endpoint"`
		WSEndpoint   string   `yaml:"ws_endpoint"`
		WSPairs      []string `yaml:"ws_pairs"`
	} `yaml:"exchange"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Strategies []StrategyConfig `yaml:"strategies"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	// 1. Load Config
	cfg, err := loadConfig("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = "bot.db"
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Init Exchange (Kraken)
	kraken := exchange.NewKrakenAdapter(cfg.Exchange.RESTEndpoint, cfg.Exchange.WSEndpoint)

	// 5. Build Runners
	if len(cfg.Strategies) == 0 {
		log.Fatal("No strategies configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runners []*usecase.Runner
	for _, sc := range cfg.Strategies {
		dm, err := usecase.NewDataManager(kraken, log, sc.Symbol,
			domain.Interval(sc.Interval), domain.Interval(sc.ParentInterval))
		if err != nil {
			log.Fatal("Invalid strategy configuration",
				zap.String("strategy", sc.Name), zap.String("symbol", sc.Symbol), zap.Error(err))
		}

		engine := usecase.NewEngine(usecase.EngineConfig{
			Symbol:                 sc.Symbol,
			Interval:               domain.Interval(sc.Interval),
			Balance:                sc.Balance,
			RiskPercentage:         sc.RiskPercentage,
			StopLossPercentage:     sc.StopLossPercentage,
			TrailingStopPercentage: sc.TrailingStopPercentage,
			SlippagePercentage:     sc.SlippagePercentage,
		}, log, store)

		strat, err := strategies.New(sc.Name, dm, engine, log, strategies.Params{
			TakeProfitGainPct:  sc.TakeProfitGainPct,
			TakeProfitClosePct: sc.TakeProfitClosePct,
		})
		if err != nil {
			log.Fatal("Failed to build strategy",
				zap.String("strategy", sc.Name), zap.Error(err))
		}

		runner := usecase.NewRunner(strat, engine, dm, log)
		if sc.Live {
			runner.PutLive()
		}
		runners = append(runners, runner)
	}

	// 6. Connect WS for streaming prices (trade ticks are informational;
	// strategies act on completed candles from REST polling)
	if len(cfg.Exchange.WSPairs) > 0 {
		kraken.OnTradeUpdate(func(pair, side string, size, price float64) {
			log.Debug("trade tick",
				zap.String("pair", pair), zap.String("side", side),
				zap.Float64("size", size), zap.Float64("price", price))
		})
		if err := kraken.ConnectWS(cfg.Exchange.WSPairs); err != nil {
			log.Error("Failed to connect websocket", zap.Error(err))
		}
	}

	// 7. Start Runners
	var wg sync.WaitGroup
	for _, r := range runners {
		wg.Add(1)
		go func(r *usecase.Runner) {
			defer wg.Done()
			r.Run(ctx)
		}(r)
	}
	log.Info("Bot started", zap.Int("runners", len(runners)))

	// 8. Wait for Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	cancel()
	kraken.Close()
	wg.Wait()
}
