package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charlerive/pricing/blackscholes"
	"github.com/charlerive/pricing/compare"
	"github.com/charlerive/pricing/config"
	"github.com/charlerive/pricing/logger"
	"go.uber.org/zap"
)

func main() {
	envPath := flag.String("env", "", "path to a .env file, ./.env when empty")
	flag.Parse()

	cfg := config.LoadFromEnv(*envPath)
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("pricing failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	p, err := cfg.Params()
	if err != nil {
		return err
	}
	s := cfg.Settings()
	log.Info("pricing",
		zap.Any("params", p),
		zap.Any("settings", s),
	)

	report, err := compare.Run(p, s)
	if err != nil {
		return err
	}
	log.Info("results",
		zap.Float64("black_scholes", report.BlackScholes),
		zap.Float64("binomial", report.Binomial),
		zap.Float64("binomial_american", report.American),
		zap.Float64("monte_carlo", report.MonteCarlo.Price),
		zap.Float64("monte_carlo_std_err", report.MonteCarlo.StdErr),
		zap.Float64("binomial_diff", report.BinomialDiff()),
		zap.Float64("monte_carlo_diff", report.MonteCarloDiff()),
	)
	log.Debug("greeks", zap.Any("greeks", report.Greeks.MarketConvention()))

	// round trip the closed form price through the implied vol solver
	iv, err := blackscholes.ImpliedVolatility(report.BlackScholes, p)
	if err != nil {
		log.Warn("implied vol", zap.Error(err))
	} else {
		log.Info("implied vol", zap.Float64("iv", iv), zap.Float64("sigma", p.Vol))
	}

	fmt.Print(report.Table())
	return nil
}
