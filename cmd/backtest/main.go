package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"github.com/vitos/crypto_strategy_bot/internal/infrastructure/exchange"
	"github.com/vitos/crypto_strategy_bot/internal/infrastructure/logger"
	"github.com/vitos/crypto_strategy_bot/internal/infrastructure/storage"
	"github.com/vitos/crypto_strategy_bot/internal/report"
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
}

type Config struct {
	Exchange struct {
		Name         string `yaml:"name"`
		RESTEndpoint string `yaml:"rest_endpoint"`
	} `yaml:"exchange"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Reporting struct {
		Dir string `yaml:"dir"`
	} `yaml:"reporting"`
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
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	duration := flag.Int("duration", 500, "number of candles to replay")
	offset := flag.Int("offset", usecase.DefaultBacktestOffset, "warm-up candles before the replay window")
	concurrency := flag.Int("concurrency", 4, "parallel backtests when running multiple strategies")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = "bot.db"
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	reporter, err := report.NewHTMLReporter(cfg.Reporting.Dir)
	if err != nil {
		log.Fatal("Failed to init reporter", zap.Error(err))
	}

	kraken := exchange.NewKrakenAdapter(cfg.Exchange.RESTEndpoint, "")

	if len(cfg.Strategies) == 0 {
		log.Fatal("No strategies configured")
	}

	var backtests []*usecase.Backtester
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
		}, log, nil)

		strat, err := strategies.New(sc.Name, dm, engine, log, strategies.Params{
			TakeProfitGainPct:  sc.TakeProfitGainPct,
			TakeProfitClosePct: sc.TakeProfitClosePct,
		})
		if err != nil {
			log.Fatal("Failed to build strategy",
				zap.String("strategy", sc.Name), zap.Error(err))
		}

		bt := usecase.NewBacktester(strat, engine, dm, log, *duration).
			WithOffset(*offset).
			WithReporter(reporter).
			WithResultStore(store).
			WithProgress(len(cfg.Strategies) == 1)
		backtests = append(backtests, bt)
	}

	ctx := context.Background()

	var results []*domain.BacktestResult
	if len(backtests) == 1 {
		res, err := backtests[0].Run(ctx)
		if err != nil {
			log.Fatal("Backtest failed", zap.Error(err))
		}
		results = append(results, res)
	} else {
		results = usecase.RunBatch(ctx, backtests, *concurrency, log)
	}

	for _, res := range results {
		if res == nil {
			continue
		}
		printSummary(res)
	}
}

func printSummary(res *domain.BacktestResult) {
	profitFactor := fmt.Sprintf("%.2f", res.Metrics.ProfitFactor)
	if math.IsInf(res.Metrics.ProfitFactor, 1) {
		profitFactor = "inf"
	}
	fmt.Printf("\n%s %s %s", res.StrategyName, res.Symbol, res.Interval)
	if res.ParentInterval != "" {
		fmt.Printf(" (parent %s)", res.ParentInterval)
	}
	fmt.Printf("\n  candles:       %d\n", res.Duration)
	fmt.Printf("  trades:        %d (%d win / %d loss)\n",
		res.Metrics.TotalTrades, res.Metrics.WinTrades, res.Metrics.LossTrades)
	fmt.Printf("  win rate:      %.2f%%\n", res.Metrics.WinRate*100)
	fmt.Printf("  profit factor: %s\n", profitFactor)
	fmt.Printf("  p&l:           %.2f (%.2f%%)\n",
		res.Metrics.TotalProfitLoss, res.Metrics.TotalProfitLossPct)
	fmt.Printf("  final balance: %.2f\n", res.FinalBalance)
}
