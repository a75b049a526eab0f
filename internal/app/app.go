package app

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"talentreach/internal/config"
	"talentreach/internal/database"
	"talentreach/internal/dnc"
	"talentreach/internal/logger"
	"talentreach/internal/outreach"
	"talentreach/internal/workflow"
	"talentreach/pkg/models"
)

// App is the dependency container for the CLI application. Commands reach it
// through the context set up in the root command.
type App struct {
	DB       *sql.DB
	Config   *config.Config
	Log      *zap.Logger
	Store    *database.Store
	Registry *dnc.Registry
	Engine   *workflow.Engine

	Dispatcher     *outreach.Dispatcher
	DeliveryPoller *outreach.DeliveryPoller
	ReplyPoller    *outreach.ReplyPoller

	matchMu sync.Mutex
	matches map[string][]models.MatchResult
}

// NewApp initializes and returns a new App instance
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Initialize()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	log, err := logger.New(false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(filepath.Join(dataDir, "talentreach.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := database.NewStore(db)
	registry := dnc.NewRegistry(store, log)
	engine := workflow.NewEngine(store, log)

	a := &App{
		DB:       db,
		Config:   cfg,
		Log:      log,
		Store:    store,
		Registry: registry,
		Engine:   engine,
		matches:  make(map[string][]models.MatchResult),
	}

	var sms *outreach.TwilioProvider
	if cfg.SMSConfigured() {
		sms = outreach.NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}
	var email *outreach.SMTPProvider
	if cfg.EmailConfigured() {
		email = outreach.NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	dispatcher := outreach.NewDispatcher(store, registry, providerOrNil(sms), emailOrNil(email), log)
	dispatcher.SetNotifier(engine)
	a.Dispatcher = dispatcher

	engine.SetContactAttempter(&contactAttempter{app: a})

	if sms != nil {
		a.DeliveryPoller = outreach.NewDeliveryPoller(store, sms, cfg.DeliveryPollInterval(), log)
		a.ReplyPoller = outreach.NewReplyPoller(store, sms, registry, cfg.ReplyPollInterval(), log)
		a.ReplyPoller.SetNotifier(engine)
	}

	return a, nil
}

// providerOrNil avoids storing a typed nil behind the SMSProvider interface.
func providerOrNil(p *outreach.TwilioProvider) outreach.SMSProvider {
	if p == nil {
		return nil
	}
	return p
}

func emailOrNil(p *outreach.SMTPProvider) outreach.EmailProvider {
	if p == nil {
		return nil
	}
	return p
}

// Close closes all resources
func (a *App) Close() error {
	if a.DeliveryPoller != nil {
		a.DeliveryPoller.StopAll()
	}
	if a.ReplyPoller != nil {
		a.ReplyPoller.StopAll()
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
