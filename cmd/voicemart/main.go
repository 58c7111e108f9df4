// cmd/voicemart/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ravin00/VoiceMart-Shopping-Assistant/api"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/config"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/finder"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/logger"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/nlu"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/stt"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/websocket"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", 0, "override HTTP port")
	eventPort := flag.Int("event-port", 0, "override websocket event port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *eventPort != 0 {
		cfg.Server.EventPort = *eventPort
	}

	log := logger.GetLogger()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	log.SetJSONFormat(cfg.LogJSON)
	log.SetService("voicemart")

	var tagger nlu.Tagger
	if cfg.Pipeline.UseNER && cfg.Tagger.BaseURL != "" {
		tagger = nlu.NewHTTPTagger(cfg.Tagger.BaseURL)
	}

	processor := nlu.New(nlu.Options{
		MaxTextLen:        cfg.Pipeline.MaxTextLen,
		ClarifierMode:     cfg.Pipeline.ClarifierMode,
		ClarifierOverride: cfg.Pipeline.ClarifierOverride,
		UseNER:            cfg.Pipeline.UseNER,
		Tagger:            tagger,
		Logger:            log.WithField("component", "nlu"),
	})

	var transcriber api.Transcriber
	if cfg.STT.BaseURL != "" {
		transcriber = stt.NewClient(cfg.STT.BaseURL)
	}
	var searcher api.ProductSearcher
	if cfg.ProductFinder.BaseURL != "" {
		searcher = finder.NewClient(cfg.ProductFinder.BaseURL, cfg.ProductFinder.APIKey)
	}

	events := websocket.NewEventServer(cfg.Server.EventPort)
	if err := events.Start(); err != nil {
		log.Error("event server start", err)
		os.Exit(1)
	}

	server := api.NewServer(processor, transcriber, searcher, events, cfg.Server.MaxUploadMB)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Handler(),
	}

	go func() {
		log.Infof("listening on :%d", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("http shutdown", err)
	}
	if err := events.Stop(); err != nil {
		log.Error("event server stop", err)
	}
}
