package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/voicelink/internal/adapters/http"
	ws "github.com/dkeye/voicelink/internal/adapters/signal"
	"github.com/dkeye/voicelink/internal/adapters/turn"
	"github.com/dkeye/voicelink/internal/app"
	"github.com/dkeye/voicelink/internal/app/orch"
	"github.com/dkeye/voicelink/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config loading can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read environment")
	}
	cfg, err := config.Load(env.ConfigEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		log.Warn().Err(err).Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping info")
	} else {
		zerolog.SetGlobalLevel(level)
	}

	policy, err := app.ParsePolicy(cfg.Backpressure, cfg.SpoofPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid policy")
	}

	peerCfg := config.LoadPeer(env.PeerConfig, env.ICEServers)
	peers := &app.PeerConfigs{
		ForceRelayOnly: peerCfg.ForceRelayOnly,
		ICEServers:     peerCfg.ICEServers,
	}

	var relay *turn.Server
	if r := peerCfg.IntegratedRelay; r.Enabled {
		if env.Hostname == "" {
			log.Fatal().Msg("You must set the HOSTNAME environment variable to use the TURN server.")
		}
		relay = turn.New(turn.Config{
			ListeningPort: r.ListeningPort,
			ListeningIPs:  r.ListeningIPs,
			RelayIPs:      r.RelayIPs,
			ExternalIPs:   r.ExternalIPs,
			MinPort:       uint16(r.MinPort),
			MaxPort:       uint16(r.MaxPort),
			Realm:         r.Realm,
			LogLevel:      r.DebugLevel,
		})
		relay.AddUser(r.DefaultUsername, r.DefaultPassword)
		if err := relay.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start TURN relay")
		}
		peers.Relay = &app.IntegratedRelay{
			Server:        relay,
			Hostname:      env.Hostname,
			Port:          r.ListeningPort,
			Username:      r.DefaultUsername,
			Password:      r.DefaultPassword,
			PerConnection: r.PerConnectionCredentials,
		}
	}

	store := app.NewStore()
	orchestrator := orch.New(store, policy, peers, cfg.Lobbies.Enabled)
	ctl := ws.NewSignalWSController(orchestrator, ws.NewOptions(cfg))

	info := router.ServerInfo{Name: env.Name, Started: time.Now()}
	r := router.SetupRouter(ctx, cfg, info, store, ctl)
	addr := fmt.Sprintf(":%d", cfg.ListenPort(env))

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info().Str("addr", addr).Bool("https", bool(env.HTTPS)).Bool("lobbies", cfg.Lobbies.Enabled).Msg("VoiceLink server started")
		var err error
		if env.HTTPS {
			dir := env.SSLPath
			if dir == "" {
				dir, _ = os.Getwd()
			}
			err = srv.ListenAndServeTLS(filepath.Join(dir, "fullchain.pem"), filepath.Join(dir, "privkey.pem"))
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		orchestrator.Shutdown()
		ctl.Wait()
		if relay != nil {
			if err := relay.Stop(); err != nil && !errors.Is(err, turn.ErrNotStarted) {
				log.Error().Err(err).Msg("TURN relay stop")
			}
		}
		store.Reset()
		return nil
	})

	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("Server exited gracefully")
}
