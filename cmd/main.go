package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/auth"
	"github.com/ukydev/service-ledger/internal/config"
	"github.com/ukydev/service-ledger/internal/db"
	"github.com/ukydev/service-ledger/internal/events"
	"github.com/ukydev/service-ledger/internal/handlers"
	"github.com/ukydev/service-ledger/internal/ledger"
)

// app holds everything the server needs, plus the cleanup for it.
type app struct {
	ledger  *ledger.Ledger
	journal handlers.EventJournal
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// setup connects the optional backends and opens the ledger. Without
// MONGO_URI the ledger lives in memory only.
func setup(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	sinks := events.Multi{events.NewLogSink(log.WithField("component", "events"))}
	var store ledger.Store

	if cfg.MongoURI != "" {
		client, err := db.ConnectMongo(cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		log.Info("Connected to MongoDB successfully")

		database := client.Database(cfg.MongoDB)
		if err := db.EnsureIndexes(ctx, database); err != nil {
			a.close()
			return nil, err
		}
		store = db.NewMongoStore(database)
		journal := db.NewMongoEventJournal(database)
		a.journal = journal
		sinks = append(sinks, journal)
	} else {
		log.Warn("MONGO_URI not set, ledger state is kept in memory only")
	}

	if cfg.MQTTBroker != "" {
		sink, disconnect, err := events.ConnectMQTT(events.MQTTConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Topic:    cfg.MQTTTopic,
		})
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, disconnect)
		sinks = append(sinks, sink)
		log.WithField("broker", cfg.MQTTBroker).Info("Publishing events over MQTT")
	}

	l, err := ledger.Open(ctx, ledger.Config{
		Brand:  cfg.Brand,
		Domain: cfg.Domain,
		Store:  store,
		Sink:   sinks,
		Logger: log.WithField("component", "ledger"),
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.ledger = l
	return a, nil
}

func newServer(cfg *config.Config, a *app) *http.Server {
	router := handlers.NewRouter(handlers.RouterConfig{
		Ledger:        a.ledger,
		Journal:       a.journal,
		Auth:          auth.NewService(cfg.JWTSecret, cfg.JWTExpiry, cfg.SignInMaxAge),
		RateLimit:     cfg.RateLimit,
		RateWindowSec: cfg.RateWindowSec,
	})
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to start ledger")
	}
	defer a.close()

	srv := newServer(cfg, a)
	go func() {
		log.WithFields(log.Fields{
			"port":    cfg.Port,
			"brand":   cfg.Brand,
			"domain":  cfg.Domain,
			"records": a.ledger.RecordCount(),
		}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
}
