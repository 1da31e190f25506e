package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/drfrankproulx-cmd/OProom/internal/calendar"
	"github.com/drfrankproulx-cmd/OProom/internal/config"
	"github.com/drfrankproulx-cmd/OProom/internal/email"
	authHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/auth"
	conferenceHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/conference"
	"github.com/drfrankproulx-cmd/OProom/internal/handler/health"
	notificationHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/notification"
	patientHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/patient"
	promHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/prometheus"
	scheduleHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/schedule"
	staffHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/staff"
	taskHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/task"
	usageHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/usage"
	vspHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/vsp"
	"github.com/drfrankproulx-cmd/OProom/internal/middleware"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/internal/router"
	authService "github.com/drfrankproulx-cmd/OProom/internal/service/auth"
	conferenceService "github.com/drfrankproulx-cmd/OProom/internal/service/conference"
	"github.com/drfrankproulx-cmd/OProom/internal/service/invite"
	notificationService "github.com/drfrankproulx-cmd/OProom/internal/service/notification"
	patientService "github.com/drfrankproulx-cmd/OProom/internal/service/patient"
	scheduleService "github.com/drfrankproulx-cmd/OProom/internal/service/schedule"
	staffService "github.com/drfrankproulx-cmd/OProom/internal/service/staff"
	taskService "github.com/drfrankproulx-cmd/OProom/internal/service/task"
	usageService "github.com/drfrankproulx-cmd/OProom/internal/service/usage"
	vspService "github.com/drfrankproulx-cmd/OProom/internal/service/vsp"
	"github.com/drfrankproulx-cmd/OProom/pkg/auth"
	"github.com/drfrankproulx-cmd/OProom/pkg/messaging"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
	"github.com/drfrankproulx-cmd/OProom/pkg/security"
)

// Deps are the outside resources an App is built on. Only Config and Store are required.
type Deps struct {
	Config   *config.Config
	Store    *repository.Store
	Broker   messaging.Broker
	Email    email.Service
	Calendar calendar.Provider
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zerolog.Logger

	// BcryptCost overrides the hashing cost; zero means bcrypt.DefaultCost.
	BcryptCost int
}

// App holds the wired services and the HTTP router.
type App struct {
	Router        *router.Router
	Patients      *patientService.Service
	Notifications *notificationService.Service
}

func New(deps Deps) (*App, error) {
	cfg := deps.Config
	store := deps.Store

	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	broker := deps.Broker
	if broker == nil {
		broker = messaging.NopBroker{}
	}
	mailer := deps.Email
	if mailer == nil {
		mailer = email.Disabled{}
	}
	provider := deps.Calendar
	if provider == nil {
		provider = calendar.NewBreakerProvider(calendar.Unavailable{}, logger)
	}
	cost := deps.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	loc, err := calendar.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar timezone: %w", err)
	}

	tokens, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	// Services
	staffSvc := staffService.NewService(store.Residents, store.Attendings)
	usageSvc := usageService.NewService(store.Usage)
	notificationSvc := notificationService.NewService(store.Notifications, staffSvc, mailer, broker, m, logger)
	invites := invite.NewSender(mailer, cfg.Calendar.SyncEnabled, loc, cfg.SMTP.From, m, logger)

	patientSvc := patientService.NewService(store, usageSvc, notificationSvc, broker, m, logger, patientService.Config{
		AutoArchiveDelayHours: cfg.Archive.AutoArchiveDelayHours,
		EnforceTransitions:    cfg.Lifecycle.EnforceTransitions,
	})
	scheduleSvc := scheduleService.NewService(store.Schedules, store.Users, notificationSvc, invites, cfg.Calendar.ORDuration, logger)
	taskSvc := taskService.NewService(store.Tasks, store.Users, notificationSvc, logger)
	conferenceSvc := conferenceService.NewService(store.Conferences, invites, cfg.Calendar.ConferenceDuration)
	vspSvc := vspService.NewService(store.VSPSessions, provider, cfg.Calendar.Timezone, m, logger)
	authSvc := authService.NewService(store.Users, tokens, security.NewBcryptHasher(cost), logger)

	// Handlers
	metricsRoute := promHandler.New(deps.Gatherer).Handler()
	healthH := health.NewHandler(health.Pinger(store.Ping), metricsRoute)

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		authHandler.NewHandler(authSvc),
		healthH,
		m,
		logger,
		router.Config{
			RateLimit:      rate.Limit(cfg.RateLimit.RPS),
			RateBurst:      cfg.RateLimit.Burst,
			CORSConfig:     cors,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		},
		patientHandler.NewHandler(patientSvc),
		scheduleHandler.NewHandler(scheduleSvc),
		taskHandler.NewHandler(taskSvc),
		notificationHandler.NewHandler(notificationSvc),
		usageHandler.NewHandler(usageSvc),
		staffHandler.NewHandler(staffSvc),
		conferenceHandler.NewHandler(conferenceSvc),
		vspHandler.NewHandler(vspSvc),
	)
	r.Setup()

	return &App{
		Router:        r,
		Patients:      patientSvc,
		Notifications: notificationSvc,
	}, nil
}
