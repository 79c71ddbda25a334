package internal

import (
	"context"
	"errors"
	"strings"

	"commitsonic/internal/ci"
	"commitsonic/internal/db"
	"commitsonic/internal/env"
	"commitsonic/internal/eventbus"
	"commitsonic/internal/events"
	"commitsonic/internal/ghub"
	"commitsonic/internal/githubhooks"
	"commitsonic/internal/listeners"
	"commitsonic/internal/logger"
	"commitsonic/internal/motifs"
	"commitsonic/internal/relay"
	"commitsonic/internal/repos"
	"commitsonic/internal/store"
	"commitsonic/internal/stream"
	"commitsonic/internal/swagger"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

const webhookPath = "/api/webhooks/github"

// ErrPreforkUnsupported is returned when PREFORK is set. Each forked child
// would own a separate event bus, so a push served by one child would never
// reach streams held by another.
var ErrPreforkUnsupported = errors.New("prefork is not supported: live streams need a single process-wide event bus")

func checkProcessModel(prefork bool) error {
	if prefork {
		return ErrPreforkUnsupported
	}
	return nil
}

// Deps are the collaborators shared by the route groups. Relay, CI and
// Hooks are optional.
type Deps struct {
	Store       store.Store
	Bus         *eventbus.Bus
	Relay       relay.Relay
	CI          githubhooks.CIScheduler
	Hooks       repos.HookCreator
	CallbackURL string
	Stream      stream.Config
}

// NewApp builds the HTTP surface on top of deps.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New()
	app.Use(logger.Middleware)

	api := app.Group("/api")

	api.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("PONG")
	})

	api.Get("/version", func(c fiber.Ctx) error {
		return c.SendString("v" + env.VERSION)
	})

	githubhooks.Routes(api, githubhooks.Deps{
		Registry: deps.Store,
		Commits:  deps.Store,
		Bus:      deps.Bus,
		Relay:    deps.Relay,
		CI:       deps.CI,
	})
	stream.Routes(api, app.Group("/ws"), stream.NewHandler(deps.Bus, deps.Stream))
	listeners.Routes(api, deps.Store)
	repos.Routes(api, repos.Deps{
		Registry:    deps.Store,
		Commits:     deps.Store,
		Hooks:       deps.Hooks,
		CallbackURL: deps.CallbackURL,
	})
	motifs.Routes(api)
	swagger.Register(app)

	return app
}

// Server is the running application and everything it must release on
// shutdown.
type Server struct {
	App *fiber.App

	deps    Deps
	checker *ci.Checker
}

// SetupApp loads the environment, connects the configured backends and
// builds the app.
func SetupApp(deployment string, envRoot string, appVersion string) (*Server, error) {
	deploy := strings.TrimSpace(deployment)

	env.Init(deploy, envRoot, appVersion)

	if err := logger.Initialize(env.LOG_LEVEL); err != nil {
		return nil, err
	}

	if err := checkProcessModel(env.PREFORK); err != nil {
		return nil, err
	}

	ctx := context.Background()

	st, err := store.Open(ctx, env.STORE_DRIVER)
	if err != nil {
		return nil, err
	}

	if db.Events != nil {
		events.Em = events.NewEmitter(db.Events, deploy)
	} else {
		events.Em = nil
	}

	rl, err := relay.Open(env.RELAY_DRIVER)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}

	srv := &Server{
		deps: Deps{
			Store: st,
			Bus:   eventbus.New(),
			Relay: rl,
			Stream: stream.Config{
				Heartbeat: env.STREAM_HEARTBEAT,
				Buffer:    env.STREAM_BUFFER,
			},
		},
	}

	gh, err := ghub.New(env.GITHUB_TOKEN, env.GITHUB_API_URL)
	if err != nil {
		srv.close(ctx)
		return nil, err
	}

	if env.GITHUB_TOKEN != "" && env.PUBLIC_WEBHOOK_URL != "" {
		srv.deps.Hooks = gh
		srv.deps.CallbackURL = env.PUBLIC_WEBHOOK_URL + webhookPath
	} else {
		logger.Warn("repository registration disabled: GITHUB_TOKEN or PUBLIC_WEBHOOK_URL not set")
	}

	if env.CI_CHECK_ENABLED {
		srv.checker = ci.NewChecker(gh, st, env.CI_CHECK_DELAY)
		srv.deps.CI = srv.checker
	}

	srv.App = NewApp(srv.deps)

	logger.Info("app ready",
		zap.String("deployment", deploy),
		zap.String("version", env.VERSION),
		zap.String("store", env.STORE_DRIVER),
		zap.String("relay", env.RELAY_DRIVER),
		zap.Bool("ci_checks", env.CI_CHECK_ENABLED))

	return srv, nil
}

// Shutdown ends live streams, stops accepting requests and releases the
// backends in dependency order. The bus goes first: an open stream holds its
// connection until its subscription is cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.deps.Bus != nil {
		s.deps.Bus.Close()
	}

	var errs []error
	if s.App != nil {
		errs = append(errs, s.App.ShutdownWithContext(ctx))
	}
	errs = append(errs, s.close(ctx))
	return errors.Join(errs...)
}

func (s *Server) close(ctx context.Context) error {
	var errs []error

	// no-op after Shutdown
	if s.deps.Bus != nil {
		s.deps.Bus.Close()
	}
	if s.checker != nil {
		s.checker.Close()
	}
	if s.deps.Relay != nil {
		errs = append(errs, s.deps.Relay.Close())
	}

	events.Em.Close()

	if s.deps.Store != nil {
		errs = append(errs, s.deps.Store.Close(ctx))
	}
	if db.Client != nil {
		errs = append(errs, db.CloseDB(ctx))
	}
	if db.RDB != nil {
		errs = append(errs, db.CloseCache())
	}

	return errors.Join(errs...)
}
