package main

import (
	"context"
	"salonbook/internal/bookings/events"
	"salonbook/internal/bookings/handler"
	"salonbook/internal/bookings/repository"
	"salonbook/internal/bookings/service"
	"salonbook/internal/bookings/validator"
	"salonbook/internal/locking"
	"salonbook/internal/staff/consumer"
	staffhandler "salonbook/internal/staff/handler"
	staffrepository "salonbook/internal/staff/repository"
	staffservice "salonbook/internal/staff/service"
	staffvalidator "salonbook/internal/staff/validator"
	"salonbook/pkg/app"
	"salonbook/pkg/config"
	"salonbook/pkg/kafka"
	kafka_config "salonbook/pkg/kafka/config"
	kafkamiddleware "salonbook/pkg/kafka/middleware"
	"salonbook/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	connectBackends(cfg)

	cfg.Log.Info("Starting Bookings service")
	m := metrics.New(prometheus.DefaultRegisterer)
	serverApp := app.NewApplication(cfg, m)

	var kafkaCfg *kafka_config.Config
	if cfg.EventsEnabled {
		var err error
		kafkaCfg, err = kafka_config.Load()
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
		kafkaCfg.LogConfiguration(cfg.Log.Info)
	}

	staffService := initStaff(cfg, m)
	dispatcher := initEvents(cfg, kafkaCfg, m, serverApp)
	bookingService := initBookings(cfg, m, staffService, dispatcher)

	if kafkaCfg != nil {
		initStaffSync(cfg, kafkaCfg, m, staffService, serverApp)
	}

	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		staffhandler.NewStaffHandler(staffService, cfg.Log),
	)
	serverApp.Run()
}

func connectBackends(cfg *config.Config) {
	if cfg.UsesMongo() {
		cfg.SetMongo()
	}
	if cfg.LockBackend == config.BackendRedis {
		cfg.SetRedis()
	}
}

func initStaff(cfg *config.Config, m *metrics.Metrics) staffservice.StaffService {
	var repo staffrepository.StaffRepository
	if cfg.StorageBackend == config.BackendMongo {
		repo = staffrepository.NewMongoStaffRepository(cfg)
	} else {
		repo = staffrepository.NewMemoryStaffRepository()
	}

	svc := staffservice.NewStaffService(repo, staffvalidator.NewStaffValidator(cfg.Log), m, cfg)
	cfg.Log.Info("Staff service initialized", "storage", cfg.StorageBackend, "cache_ttl", cfg.StaffCacheTTL)
	return svc
}

// initEvents returns the dispatcher the ledger emits into. Without Kafka, events are logged.
// Shutdown hooks run in order, so the dispatcher drains before the producer closes.
func initEvents(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics, serverApp *app.Application) *events.Dispatcher {
	var publisher events.Publisher = events.NewLogPublisher(cfg.Log)

	var producer *kafka.Producer
	if kafkaCfg != nil {
		topic := cfg.BookingEventsTopic
		var err error
		producer, err = kafka.NewProducer(kafkaCfg, topic, kafkaCfg.DLQTopic(topic), cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create booking events producer", "error", err)
		}
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkamiddleware.MetricsProducerMiddleware(m))
		publisher = events.NewKafkaPublisher(producer, ServiceName)
	}

	dispatcher := events.NewDispatcher(publisher, cfg.EventBufferSize, cfg.Log, m)
	serverApp.OnShutdown("booking-events-dispatcher", dispatcher.Close)
	if producer != nil {
		serverApp.OnShutdown("booking-events-producer", func(context.Context) error {
			return producer.Close()
		})
	}
	return dispatcher
}

func initBookings(cfg *config.Config, m *metrics.Metrics, staff staffservice.StaffService, emitter service.Emitter) service.BookingService {
	var repo repository.BookingRepository
	if cfg.StorageBackend == config.BackendMongo {
		repo = repository.NewMongoBookingRepository(cfg)
	} else {
		repo = repository.NewMemoryBookingRepository()
	}

	svc := service.NewBookingService(service.Deps{
		Repo:      repo,
		Locker:    newLocker(cfg),
		Staff:     staff,
		Validator: validator.NewBookingValidator(cfg.Log),
		Policy:    cfg.RefundPolicy(),
		Events:    emitter,
		Metrics:   m,
	}, cfg)

	cfg.Log.Info("Booking service initialized",
		"storage", cfg.StorageBackend,
		"lock_backend", cfg.LockBackend,
		"database", cfg.MongoDatabaseName,
	)
	return svc
}

func newLocker(cfg *config.Config) locking.Locker {
	storeCfg := locking.StoreLockerConfig{Wait: cfg.LockWait, TTL: cfg.LockTTL, Log: cfg.Log}
	switch cfg.LockBackend {
	case config.BackendRedis:
		return locking.NewStoreLocker(locking.NewRedisStore(cfg.Client.Redis), storeCfg)
	case config.BackendMongo:
		return locking.NewStoreLocker(repository.NewMongoLockStore(cfg), storeCfg)
	default:
		return locking.NewMemoryLocker(cfg.LockWait)
	}
}

// initStaffSync keeps the staff read model current from the upstream staff topic.
func initStaffSync(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics, staff staffservice.StaffService, serverApp *app.Application) {
	topic := cfg.StaffEventsTopic
	eventHandler := consumer.NewStaffEventHandler(staff, cfg.Log)
	staffConsumer, err := kafka.NewConsumer(kafkaCfg, topic, cfg.StaffSyncGroupID, kafkaCfg.DLQTopic(topic), eventHandler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create staff events consumer", "error", err)
	}
	staffConsumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
	staffConsumer.Use(kafkamiddleware.MetricsConsumerMiddleware(m))

	serverApp.Go("staff-sync", staffConsumer.Start)
	serverApp.OnShutdown("staff-sync-consumer", func(context.Context) error {
		return staffConsumer.Close()
	})
}
