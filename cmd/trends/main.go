package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"cryptoTrends/internal/config"
	"cryptoTrends/internal/finance"
	"cryptoTrends/internal/logging"
	"cryptoTrends/internal/openai"
	"cryptoTrends/internal/pipeline"
	"cryptoTrends/internal/server"
	"cryptoTrends/internal/telegram"
	"cryptoTrends/internal/trends"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	yahoo := finance.NewYahooClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.YahooBaseURL)
	tc, err := trends.NewClient(trends.ClientOptions{
		BaseURL: cfg.TrendsBaseURL,
		HL:      cfg.TrendsHL,
		TZ:      cfg.TrendsTZ,
		QPS:     cfg.TrendsQPS,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("trends client")
	}

	p := pipeline.New(yahoo, tc, pipeline.Options{
		QuoteCurrency: cfg.QuoteCurrency,
		Lookback:      time.Duration(cfg.LookbackDays) * 24 * time.Hour,
	})
	if cfg.OpenAIKey != "" {
		p.WithCaptioner(openai.NewCommentator(cfg.OpenAIKey, cfg.OpenAIModel))
		log.Info().Str("model", cfg.OpenAIModel).Msg("openai: commentary enabled")
	}

	gallery := finance.NewGallery()
	failed := 0
	for _, r := range p.Run(ctx, cfg.Currencies) {
		if !r.OK() {
			failed++
			continue
		}
		gallery.Add(r.Figure)
	}
	log.Info().Int("rendered", gallery.Len()).Int("failed", failed).Msg("all currencies processed")
	if gallery.Len() == 0 {
		log.Error().Msg("no charts rendered")
		os.Exit(1)
	}

	if cfg.TelegramEnabled() {
		pub, err := telegram.NewPublisher(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("telegram: init failed, skipping delivery")
		} else {
			for _, f := range gallery.List() {
				if err := pub.Publish(f); err != nil {
					log.Error().Err(err).Msg("telegram: publish failed")
				}
			}
		}
	}

	mux := server.NewHTTPMux(gallery)
	log.Info().Str("addr", cfg.GalleryAddr).Msg("http: serving charts, press Ctrl+C to exit")
	if err := server.ListenAndServe(ctx, cfg.GalleryAddr, mux); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
	log.Info().Msg("stopped")
}
