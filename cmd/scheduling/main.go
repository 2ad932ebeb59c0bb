package main

import (
	"staffbook/internal/bootstrap"
	"staffbook/pkg/app"
	"staffbook/pkg/config"
)

const ServiceName = "scheduling"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Scheduling service")
	services, err := bootstrap.Build(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize services", "error", err)
	}

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, services.Router(), services.Health())
	serverApp.OnShutdown(services.Close)
	serverApp.Run()
}
