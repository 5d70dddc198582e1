// Command shopper is a line-oriented storefront client.  It keeps the
// cart, the session and the catalog in a store synchronizer and mirrors
// every change to the storefront API in the background.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/iliyamo/crimson-storefront/internal/checkout"
	"github.com/iliyamo/crimson-storefront/internal/config"
	"github.com/iliyamo/crimson-storefront/internal/logging"
	"github.com/iliyamo/crimson-storefront/internal/persist"
	"github.com/iliyamo/crimson-storefront/internal/remote"
	"github.com/iliyamo/crimson-storefront/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadClient()
	log := logging.NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr}, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge := sessionBridge(cfg, log)

	// Seed the client with the persisted token so the first sync is
	// authenticated.
	var opts []remote.Option
	if tok, ok, err := bridge.Load(persist.KeyToken); err == nil && ok {
		opts = append(opts, remote.WithToken(tok))
	}
	client := remote.New(cfg.APIBase, opts...)

	st := store.New(client, bridge,
		store.WithLogger(log),
		store.WithInitTimeout(cfg.InitTimeout),
	)
	st.Start(ctx)

	c := newConsole(st, checkout.DefaultRunner(), os.Stdout)
	if err := c.run(ctx, os.Stdin); err != nil {
		log.Error().Err(err).Msg("console")
	}
	st.Wait()
}

func sessionBridge(cfg config.ClientConfig, log zerolog.Logger) persist.Bridge {
	if cfg.SessionBackend == config.SessionRedis {
		if rdb := config.NewRedisClient(config.LoadRedisConfig()); rdb != nil {
			return persist.NewRedisStore(rdb, cfg.SessionPrefix)
		}
		log.Warn().Msg("redis unavailable, keeping the session in a file")
	}
	path := cfg.SessionFile
	if path == "" {
		path = persist.DefaultSessionPath()
	}
	return persist.NewFileStore(path)
}
