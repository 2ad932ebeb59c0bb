// Package bootstrap wires the repositories, engine and services that the
// scheduling API and the waitlist notifier share.
package bootstrap

import (
	"context"

	"staffbook/internal/api"
	appthandler "staffbook/internal/appointments/handler"
	apptrepo "staffbook/internal/appointments/repository"
	apptservice "staffbook/internal/appointments/service"
	apptvalidator "staffbook/internal/appointments/validator"
	"staffbook/internal/directory"
	"staffbook/internal/events"
	rulehandler "staffbook/internal/recurring/handler"
	rulerepo "staffbook/internal/recurring/repository"
	ruleservice "staffbook/internal/recurring/service"
	rulevalidator "staffbook/internal/recurring/validator"
	schedhandler "staffbook/internal/schedules/handler"
	schedrepo "staffbook/internal/schedules/repository"
	schedservice "staffbook/internal/schedules/service"
	schedvalidator "staffbook/internal/schedules/validator"
	"staffbook/internal/scheduling"
	waithandler "staffbook/internal/waitlist/handler"
	waitrepo "staffbook/internal/waitlist/repository"
	waitservice "staffbook/internal/waitlist/service"
	waitvalidator "staffbook/internal/waitlist/validator"
	"staffbook/pkg/client"
	"staffbook/pkg/config"
	"staffbook/pkg/kafka"
	kafkamw "staffbook/pkg/kafka/middleware"
	"staffbook/pkg/lock"
)

type Services struct {
	Schedules    schedservice.ScheduleService
	Appointments apptservice.AppointmentService
	Rules        ruleservice.RuleService
	Waitlist     waitservice.WaitlistService

	cfg       *config.Config
	producers []*kafka.Producer
}

// Build expects cfg.SetMongo to have been called, and cfg.SetRedis when the
// redis lock backend is selected.
func Build(cfg *config.Config) (*Services, error) {
	publisher, producers, err := newPublisher(cfg)
	if err != nil {
		return nil, err
	}
	dir := newDirectory(cfg)

	schedules := schedrepo.NewMongoScheduleRepository(cfg)
	appointments := apptrepo.NewMongoAppointmentRepository(cfg)
	engine := scheduling.NewEngine(cfg, schedules, appointments)

	apptSvc := apptservice.NewAppointmentService(
		appointments,
		engine,
		newLocker(cfg),
		apptvalidator.NewAppointmentValidator(cfg.Log),
		dir,
		publisher,
		cfg,
	)

	s := &Services{
		Schedules: schedservice.NewScheduleService(
			schedules,
			schedvalidator.NewScheduleValidator(cfg.Log),
			dir,
			cfg,
		),
		Appointments: apptSvc,
		Rules: ruleservice.NewRuleService(
			rulerepo.NewMongoRuleRepository(cfg),
			appointments,
			apptSvc,
			rulevalidator.NewRuleValidator(cfg.Log),
			dir,
			cfg,
		),
		Waitlist: waitservice.NewWaitlistService(
			waitrepo.NewMongoEntryRepository(cfg),
			apptSvc,
			waitvalidator.NewEntryValidator(cfg.Log),
			dir,
			publisher,
			cfg,
		),
		cfg:       cfg,
		producers: producers,
	}

	cfg.Log.Info("Scheduling services initialized",
		"database", cfg.MongoDatabaseName,
		"lock_backend", cfg.LockBackend,
		"events_enabled", cfg.EventsEnabled,
	)
	return s, nil
}

func (s *Services) Router() *api.Router {
	return api.NewRouter(
		schedhandler.NewScheduleHandler(s.Schedules, s.cfg.Log),
		appthandler.NewAppointmentHandler(s.Appointments, s.cfg.Log),
		rulehandler.NewRuleHandler(s.Rules, s.cfg.Log),
		waithandler.NewWaitlistHandler(s.Waitlist, s.cfg.Log),
	)
}

func (s *Services) Health() *api.HealthHandler {
	checks := map[string]api.Check{"mongo": api.MongoCheck(s.cfg.Client.Mongo)}
	if s.cfg.Client.Redis != nil {
		checks["redis"] = api.RedisCheck(s.cfg.Client.Redis)
	}
	return api.NewHealthHandler(checks, s.cfg.Log)
}

// Close flushes the event producers and then releases the store connections.
func (s *Services) Close(_ context.Context) {
	for _, p := range s.producers {
		if err := p.Close(); err != nil {
			s.cfg.Log.Error("Failed to close producer", "topic", p.Topic(), "error", err)
		}
	}
	s.cfg.GracefulShutdown()
}

func newLocker(cfg *config.Config) lock.Locker {
	if cfg.LockBackend == config.LockBackendRedis {
		return lock.NewRedisLocker(cfg.Client.Redis, cfg.SlotLockTTL)
	}
	return lock.NewMongoLocker(cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.SlotLockTTL)
}

func newDirectory(cfg *config.Config) directory.Directory {
	if cfg.DirectoryBaseURL == "" {
		cfg.Log.Warn("No directory configured, staff, client and service references are not verified")
		return directory.NewOpenDirectory()
	}
	hc := client.NewHttpClient(cfg.DirectoryBaseURL, cfg.DirectoryTimeout)
	if cfg.DirectoryToken != "" {
		hc.WithHeader("X-Service-Token", cfg.DirectoryToken)
	}
	return directory.NewHTTPDirectory(hc, cfg.Log)
}

func newPublisher(cfg *config.Config) (events.Publisher, []*kafka.Producer, error) {
	if !cfg.EventsEnabled {
		return events.NewNopPublisher(cfg.Log), nil, nil
	}

	kcfg, err := kafka.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var producers []*kafka.Producer
	for _, topic := range []string{cfg.AppointmentEventsTopic, cfg.WaitlistEventsTopic} {
		p, err := kafka.NewProducer(kcfg, topic, cfg.EventsDLQTopic, cfg.Log)
		if err != nil {
			for _, open := range producers {
				_ = open.Close()
			}
			return nil, nil, err
		}
		p.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))
		p.Use(kafkamw.MetricsProducerMiddleware())
		producers = append(producers, p)
	}
	return events.NewKafkaPublisher(producers[0], producers[1], cfg.Log), producers, nil
}
