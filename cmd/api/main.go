package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/berfenger/touchlinesl2mqtt/internal/adapter/actor"
	"github.com/berfenger/touchlinesl2mqtt/internal/adapter/store"
	"github.com/berfenger/touchlinesl2mqtt/internal/config"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/actor"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/service"
	"github.com/berfenger/touchlinesl2mqtt/internal/server"
	"github.com/berfenger/touchlinesl2mqtt/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	rootCtx := as.Root

	coordinators := service.NewCoordinatorRegistry()
	entities := service.NewEntityRegistry()

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, coordinators, entities,
			coordinatorActorProvider(cfg, logger), mqttActorProvider(cfg, logger), logger)
	})
	pid, err := rootCtx.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		logger.Error("could not spawn master actor", zap.Error(err))
		return
	}

	apiServer := server.NewServer(*cfg, rootCtx, pid, coordinators, entities)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		logger.Info("http server listening", zap.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	grp.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down gracefully, press Ctrl+C again to force")
		stop()

		// the server has 5 seconds to finish the request it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server forced to shutdown", zap.Error(err))
		}
		return nil
	})

	if err := grp.Wait(); err != nil {
		logger.Error("exiting", zap.Error(err))
	}

	rootCtx.Stop(pid)
	as.Shutdown()
	logger.Info("graceful shutdown complete")
}

func initConfig() (*config.Config, error) {

	// alias PORT => TOUCHLINESL_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("TOUCHLINESL_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("touchlinesl")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	encoding, err := config.CheckEncoding(cfg.Snapshot.Encoding)
	if err != nil {
		return nil, fmt.Errorf("config param snapshot.encoding: %w", err)
	}
	cfg.Snapshot.Encoding = string(encoding)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func coordinatorActorProvider(cfg *config.Config, logger *zap.Logger) actor.CoordinatorActorProvider {
	var snapshotStore *store.SnapshotStore
	if cfg.Snapshot.StateFile != "" {
		snapshotStore = store.NewSnapshotStore(cfg.Snapshot.StateFile)
	}
	return func(registry *service.CoordinatorRegistry, eventStream *eventstream.EventStream) *adactor.CoordinatorActor {
		return adactor.NewCoordinatorActor(cfg, registry, snapshotStore, eventStream, logger)
	}
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func() *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.host", "localhost")
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.ha_discovery_enable", true)
	viper.SetDefault("mqtt.base_topic", "touchlinesl")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("snapshot.encoding", "json")
	viper.SetDefault("snapshot.state_file", "")
	viper.SetDefault("snapshot.stale_after_millis", 120000)
	viper.SetDefault("snapshot.check_interval_millis", 10000)
	viper.SetDefault("platform.entry_id", "touchline_sl")
	viper.SetDefault("platform.setup_delay_millis", 5000)
	viper.SetDefault("port", 8080)
	viper.SetDefault("http_log", false)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
