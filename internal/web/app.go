package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ankitson/clankerhub/internal/config"
	"github.com/ankitson/clankerhub/internal/event"
	"github.com/ankitson/clankerhub/internal/service"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

// Module assembles `todone serve`: the wired runtime, the handlers and an
// HTTP server bound to the application lifecycle.
func Module(cfg config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			newRuntime,
			func(rt *service.Runtime) Backend { return rt.Service },
			NewServer,
			newHTTPServer,
		),
		fx.Invoke(logEvents),
		fx.Invoke(func(*http.Server) {}),
	)
}

func newRuntime(lc fx.Lifecycle, cfg config.Config) (*service.Runtime, error) {
	rt, err := service.Open(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return rt.Close() },
	})
	return rt, nil
}

func newHTTPServer(lc fx.Lifecycle, cfg config.Config, s *Server) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Web.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info().Str("addr", ln.Addr().String()).Msg("web server listening")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("web server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	return srv
}

func logEvents(rt *service.Runtime) {
	rt.Bus.Subscribe(func(m event.Message) {
		log.Info().Str("task_id", m.Subject()).Str("kind", string(m.Kind())).Msg(event.Describe(m))
	})
}
