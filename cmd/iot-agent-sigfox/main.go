package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iot-for-tillgenglighet/messaging-golang/pkg/messaging"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/application"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/domain/correlation"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/domain/credentials"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/config"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/dojot"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/logging"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/repositories/database"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/sigfox"
)

func main() {

	serviceName := "iot-agent-sigfox"

	log := logging.NewLogger()
	log.Infof("Starting up %s ...", serviceName)

	configPath := os.Getenv("SIGFOX_AGENT_CONFIG")
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %s", err.Error())
	}
	logging.SetLevel(cfg.LogLevel)

	messenger, err := messaging.Initialize(messaging.LoadConfiguration(serviceName))
	if err != nil {
		log.Fatalf("Failed to connect to message queue: %s", err.Error())
	}

	db, err := connectCredentialStore(log, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to credential store: %s", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := correlation.NewStore()
	resolver := credentials.NewResolver(db)
	directory := dojot.NewDirectory(cfg.Dojot.AuthURL, cfg.Dojot.DeviceManagerURL)
	pool := application.NewWorkerPool(cfg.WorkerCount, log)

	dispatcher := application.NewDispatcher(
		log,
		store,
		resolver,
		sigfox.NewClient(cfg.DeviceProvisioning.Sigfox.NetworkServer),
		directory,
		dojot.NewAttributeUpdater(messenger),
		pool,
	)

	application.RegisterLifecycleHandlers(log, messenger, dispatcher)
	go application.Replay(ctx, log, directory, dispatcher)

	err = application.CreateRouterAndStartServing(ctx, log, cfg.ServicePort, store, dispatcher, resolver)
	if err != nil {
		log.Errorf("Server stopped: %s", err.Error())
	}

	log.Infof("Shutting down %s, waiting for background tasks ...", serviceName)
	pool.Shutdown()
	messenger.Close()
}

func connectCredentialStore(log logging.Logger, cfg *config.Config) (database.Datastore, error) {
	settings := cfg.CredentialStore

	switch settings.Kind {
	case config.StorePostgres:
		return database.NewDatabaseConnection(database.NewPostgreSQLConnector(log, database.PostgreSQLSettings{
			Host:     settings.Host,
			User:     settings.User,
			Name:     settings.Name,
			Password: settings.Password,
			SSLMode:  settings.SSLMode,
		}), log)
	case config.StoreSQLite:
		return database.NewDatabaseConnection(database.NewSQLiteConnector(), log)
	default:
		return database.NewRedisConnection(database.NewRedisDialer(settings.Host), log)
	}
}
