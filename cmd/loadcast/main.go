// Command loadcast trains an LSTM forecaster on a single client of the
// UCI electricity load dataset and plots its predictions against the
// held-out tail of the series.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresilva/loadcast/internal/dataset"
	"github.com/andresilva/loadcast/internal/loss"
	"github.com/andresilva/loadcast/internal/model"
	"github.com/andresilva/loadcast/internal/opt"
	"github.com/andresilva/loadcast/internal/report"
	"github.com/andresilva/loadcast/internal/train"
)

func main() {
	configPath := flag.String("config", "", "config file path (defaults apply if empty)")
	client := flag.Int("client", 1, "dataset client id (1..370)")
	cacheDir := flag.String("cache", ".cache", "download cache directory")
	plotPath := flag.String("plot", "plots/forecast.png", "forecast plot output path")
	historyPath := flag.String("history", "plots/mae.png", "validation MAE plot output path")
	basisPath := flag.String("basis", "plots/basis.png", "seasonal basis plot output path")
	synthetic := flag.Bool("synthetic", false, "train on a generated series instead of downloading")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := train.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = train.LoadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("config load failed")
		}
	}

	series, err := loadSeries(ctx, log, *synthetic, *cacheDir, *client)
	if err != nil {
		log.Fatal().Err(err).Msg("dataset load failed")
	}

	min, max, mean := series.Stats()
	log.Info().Int("observations", series.Len()).
		Float64("min", min).Float64("max", max).Float64("mean", mean).
		Msg("series loaded")

	// Seasonal encoding of the calendar: plot the basis functions over
	// the year and log the series start's position in the cycle.
	rb, err := dataset.NewRepeatingBasis(12, 1, 365)
	if err != nil {
		log.Fatal().Err(err).Msg("basis setup failed")
	}
	if err := report.WriteBasisPNG(*basisPath, rb, 1, 365); err != nil {
		log.Fatal().Err(err).Msg("basis plot failed")
	}
	if series.Len() > 0 {
		log.Debug().Floats64("seasonal_basis", rb.Transform(dataset.DayOfYear(series.Timestamps[0]))).
			Msg("first observation encoded")
	}

	trainSeries, testSeries := series.Split(cfg.TrainRatio)

	trainBatches, err := windowed(trainSeries.Values, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("training set build failed")
	}
	valBatches, err := windowed(testSeries.Values, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("validation set build failed")
	}

	m := model.NewLSTMForecaster(cfg.Lookback, cfg.HiddenSize, cfg.NumLayers,
		loss.MSE{}, opt.NewAdam(cfg.LearnRate))
	log.Info().Int("parameters", m.NumParams()).
		Int("lookback", cfg.Lookback).Int("hidden", cfg.HiddenSize).
		Msg("model built")

	trainer, err := train.NewTrainer(cfg, m, log)
	if err != nil {
		log.Fatal().Err(err).Msg("trainer setup failed")
	}

	res, err := trainer.Run(trainBatches, valBatches)
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}
	if len(res.History) > 0 {
		final := res.History[len(res.History)-1]
		log.Info().Int("epoch", final.Epoch).Float64("val_mae", final.MAE).
			Msg("training finished")
	}

	if err := report.WriteForecastPNG(*plotPath, testSeries, res.LastStepPreds, cfg.Lookback); err != nil {
		log.Fatal().Err(err).Msg("forecast plot failed")
	}
	epochs := make([]int, len(res.History))
	maes := make([]float64, len(res.History))
	for i, h := range res.History {
		epochs[i] = h.Epoch
		maes[i] = h.MAE
	}
	if err := report.WriteHistoryPNG(*historyPath, epochs, maes); err != nil {
		log.Fatal().Err(err).Msg("history plot failed")
	}
	log.Info().Str("forecast", *plotPath).Str("history", *historyPath).
		Str("basis", *basisPath).Msg("plots written")
}

// loadSeries returns either the synthetic series or one client of the
// downloaded dataset, trimmed to observations after 2012-01-01 as the
// earlier readings are all zero.
func loadSeries(ctx context.Context, log zerolog.Logger, synthetic bool, cacheDir string, client int) (*dataset.Series, error) {
	if synthetic {
		start := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
		return dataset.Synthetic(start, 4*365*24, 42), nil
	}

	archive, err := dataset.Fetch(ctx, cacheDir)
	if err != nil {
		return nil, err
	}
	log.Info().Str("archive", archive).Int("client", client).Msg("dataset ready")

	series, err := dataset.LoadClient(archive, client)
	if err != nil {
		return nil, err
	}
	cutoff := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	return series.After(cutoff), nil
}

// windowed builds ordered sliding-window batches from raw values.
func windowed(values []float64, cfg train.Config) ([][]dataset.Sample, error) {
	samples, err := dataset.Windows(values, cfg.Lookback)
	if err != nil {
		return nil, err
	}
	return dataset.Batches(samples, cfg.BatchSize)
}
