package app

import (
	"context"

	"github.com/worklane/worklane-client/internal/api"
	"github.com/worklane/worklane-client/internal/auth"
	"github.com/worklane/worklane-client/internal/chat"
	"github.com/worklane/worklane-client/internal/dashboard"
	"github.com/worklane/worklane-client/internal/notify"
	"go.uber.org/zap"
)

// Config describes the endpoints the client talks to.
type Config struct {
	APIBaseURL string
	WSURL      string
	Logger     *zap.Logger
}

// App wires the session, REST client, stores, and transports into one
// dependency graph with a defined lifecycle: containers are created here,
// populated after login, and emptied by Logout. Consumers receive them by
// reference; nothing in the SDK is ambient package state.
type App struct {
	Session       *auth.Session
	API           *api.Client
	Notifications *notify.Store
	NotifySyncer  *notify.Syncer
	Rooms         *chat.RoomList
	RoomPoller    *chat.RoomPoller
	Feed          *chat.Feed
	Presence      *chat.PresenceChecker
	Stats         *dashboard.StatsLoader
	Logger        *zap.Logger
}

// New constructs the full client dependency graph.
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	session := auth.NewSession()

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.APIBaseURL,
		Session: session,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	notifications := notify.NewStore()
	notifySyncer, err := notify.NewSyncer(notify.SyncerConfig{
		Store:   notifications,
		Backend: client,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	rooms := chat.NewRoomList()
	roomPoller, err := chat.NewRoomPoller(chat.RoomPollerConfig{
		List:    rooms,
		Backend: client,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	dialer, err := chat.NewWebsocketDialer(chat.WebsocketDialerConfig{
		WSURL:   cfg.WSURL,
		Session: session,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	feed, err := chat.NewFeed(chat.FeedConfig{
		Dialer:   dialer,
		Uploader: client,
		Session:  session,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	presence, err := chat.NewPresenceChecker(chat.PresenceCheckerConfig{
		Backend: client,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	stats, err := dashboard.NewStatsLoader(dashboard.StatsLoaderConfig{
		Backend: client,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Session:       session,
		API:           client,
		Notifications: notifications,
		NotifySyncer:  notifySyncer,
		Rooms:         rooms,
		RoomPoller:    roomPoller,
		Feed:          feed,
		Presence:      presence,
		Stats:         stats,
		Logger:        logger,
	}, nil
}

// Login authenticates and establishes the session from the issued token.
func (a *App) Login(ctx context.Context, accountType int, email, password string) error {
	token, err := a.API.Login(ctx, accountType, email, password)
	if err != nil {
		return err
	}
	return a.Session.Establish(token)
}

// Establish activates the session from a pre-issued access token.
func (a *App) Establish(token string) error {
	return a.Session.Establish(token)
}

// Logout ends the session fail-open: the server is notified best-effort and
// local state is cleared regardless of the outcome.
func (a *App) Logout(ctx context.Context) {
	if err := a.API.Logout(ctx); err != nil {
		a.Logger.Warn("logout request failed, clearing local session anyway", zap.Error(err))
	}
	a.Feed.Close()
	a.Session.Clear()
	a.Notifications.Clear()
	a.Rooms.Clear()
}
