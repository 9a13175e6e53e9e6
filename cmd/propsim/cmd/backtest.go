package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"propsim/config"
	"propsim/data"
	"propsim/journal"
	"propsim/market"
	"propsim/sim"
	"propsim/stats"
	"propsim/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a backtest under prop-firm account rules",
	Long: `Backtest replays historical bar data against a strategy while enforcing
the selected firm's risk rules.

Supported strategies:
  - noop: Does nothing (baseline test)
  - open-once: Opens a single position at the first bar
  - sma-cross: SMA crossover entries with bracket exits

Example:
  propsim backtest --data data/MES_1m.csv --firm topstep_50k --strategy sma-cross`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btDataPaths  []string
	btFirm       string
	btStrategy   string
	btSymbol     string
	btSize       int
	btSMAPeriod  int
	btTPTicks    float64
	btSLTicks    float64
	btJournalTyp string
	btDBPath     string
	btTradesCSV  string
	btEquityCSV  string
	btBaseStep   string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to YAML/JSON config (flags override)")
	backtestCmd.Flags().StringSliceVarP(&btDataPaths, "data", "d", nil, "bar data file(s), CSV or Parquet")
	backtestCmd.Flags().StringVarP(&btFirm, "firm", "f", "topstep_50k", "firm rule preset (see 'propsim firms')")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "noop", "strategy name (noop, open-once, sma-cross)")
	backtestCmd.Flags().StringVarP(&btSymbol, "symbol", "i", "MES", "strategy instrument symbol")
	backtestCmd.Flags().IntVarP(&btSize, "size", "n", 1, "order size in contracts")
	backtestCmd.Flags().IntVar(&btSMAPeriod, "sma", 20, "sma-cross: SMA period")
	backtestCmd.Flags().Float64Var(&btTPTicks, "tp-ticks", 20, "sma-cross: take profit in ticks")
	backtestCmd.Flags().Float64Var(&btSLTicks, "sl-ticks", 10, "sma-cross: stop loss in ticks")
	backtestCmd.Flags().StringVar(&btJournalTyp, "journal", "none", "journal type (none, csv, sqlite)")
	backtestCmd.Flags().StringVar(&btDBPath, "db", "./backtest.sqlite", "path to SQLite journal DB")
	backtestCmd.Flags().StringVar(&btTradesCSV, "trades-csv", "./trades.csv", "path to CSV trade journal")
	backtestCmd.Flags().StringVar(&btEquityCSV, "equity-csv", "./equity.csv", "path to CSV equity journal")
	backtestCmd.Flags().StringVar(&btBaseStep, "base-step", "", "timeline granularity (e.g. 1m, 5m)")
}

func backtestConfig() (*config.Config, error) {
	if btConfigPath != "" {
		return config.LoadFromFile(btConfigPath)
	}

	cfg := &config.Config{
		Account: config.AccountConfig{Firm: btFirm},
		Strategy: config.StrategyConfig{
			Name:      btStrategy,
			Symbol:    btSymbol,
			Size:      btSize,
			SMAPeriod: btSMAPeriod,
			TPTicks:   btTPTicks,
			SLTicks:   btSLTicks,
		},
		Journal: config.JournalConfig{
			Type:       btJournalTyp,
			TradesFile: btTradesCSV,
			EquityFile: btEquityCSV,
			DBPath:     btDBPath,
		},
		BaseStep: btBaseStep,
	}
	for _, p := range btDataPaths {
		cfg.Data = append(cfg.Data, config.DataFileConfig{Path: p})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := backtestConfig()
	if err != nil {
		return err
	}

	rules, err := cfg.Account.Rules()
	if err != nil {
		return err
	}

	feed := market.NewFeed()
	if step, err := cfg.ParseBaseStep(); err == nil {
		feed.BaseStep = step
	}
	for _, d := range cfg.Data {
		series, err := data.Load(d.Path, d.Symbol, d.Timeframe)
		if err != nil {
			return err
		}
		if err := feed.Add(series); err != nil {
			return err
		}
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, strategies.Params{
		Symbol:    cfg.Strategy.Symbol,
		Size:      cfg.Strategy.Size,
		SMAPeriod: cfg.Strategy.SMAPeriod,
		TPTicks:   cfg.Strategy.TPTicks,
		SLTicks:   cfg.Strategy.SLTicks,
	})
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	var jrnl journal.Journal
	switch cfg.Journal.Type {
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer j.Close()
		jrnl = j
	case "csv":
		j, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
		if err != nil {
			return fmt.Errorf("open csv journal: %w", err)
		}
		defer j.Close()
		jrnl = j
	}

	engine, err := sim.New(sim.Config{
		Rules:    rules,
		Feed:     feed,
		Strategy: strat,
		Journal:  jrnl,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Running backtest with strategy: %s\n", cfg.Strategy.Name)
	fmt.Printf("  Firm:    %s\n", rules.Name)
	fmt.Printf("  Symbols: %v\n\n", feed.Symbols())

	result, err := engine.Run()
	if err != nil {
		return err
	}

	summary := stats.Compute(result.Trades, result.Equity, rules.InitialBalance)
	stats.Print(os.Stdout, summary)

	state := engine.RiskState()
	if state.MaxLossHit {
		fmt.Println("Account blown: max loss limit was breached.")
	} else if state.DailyLossHit {
		fmt.Println("Run ended with the daily loss limit in force.")
	}
	fmt.Printf("Final Equity:  $%.2f\n", result.FinalEquity(rules.InitialBalance))

	return nil
}
