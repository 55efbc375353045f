package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ChuLiYu/sokoban-player/internal/controller"
	"github.com/ChuLiYu/sokoban-player/internal/logging"
	"github.com/ChuLiYu/sokoban-player/internal/metrics"
	"github.com/ChuLiYu/sokoban-player/internal/playback"
	"github.com/ChuLiYu/sokoban-player/internal/render"
	"github.com/ChuLiYu/sokoban-player/internal/solver"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// session wires one controller to its logger, registry and solver.
type session struct {
	cfg       *Config
	log       zerolog.Logger
	logCloser io.Closer
	reg       *prometheus.Registry
	ctrl      *controller.Controller
}

// newSession builds and starts a controller reporting to adapter. With
// tui set, terminal logging is discarded so it cannot corrupt the screen.
func newSession(cfg *Config, adapter render.Adapter, tui bool) (*session, error) {
	var (
		log    zerolog.Logger
		closer io.Closer = nopCloser{}
		err    error
	)
	if tui && cfg.Logging.ToTerminal() {
		log = logging.NewWithWriter(cfg.Logging, io.Discard)
	} else {
		log, closer, err = logging.New(cfg.Logging)
		if err != nil {
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	locator := solver.NewLocator(cfg.Solver.Executable, cfg.Solver.SearchDirs...)
	runner := solver.NewRunner(locator,
		solver.WithTimeout(cfg.Solver.Timeout),
		solver.WithEnv(cfg.Solver.Env...),
		solver.WithLogger(logging.Component(log, "runner")),
	)
	exec := solver.New(runner, logging.Component(log, "solver"))

	ctrl, err := controller.NewController(exec, adapter, controller.Config{
		PlaybackInterval: cfg.Playback.Interval,
		TracePath:        cfg.Storage.TracePath,
		JournalPath:      cfg.Storage.JournalPath,
		SyncJournal:      cfg.Storage.SyncJournal,
	},
		controller.WithLogger(logging.Component(log, "controller")),
		controller.WithMetrics(metrics.NewCollector(reg)),
	)
	if err != nil {
		closer.Close()
		return nil, err
	}
	if err := ctrl.Start(); err != nil {
		ctrl.Stop()
		closer.Close()
		return nil, err
	}

	return &session{cfg: cfg, log: log, logCloser: closer, reg: reg, ctrl: ctrl}, nil
}

// run executes front alongside the metrics server until front returns,
// either fails, or a shutdown signal arrives.
func (s *session) run(ctx context.Context, front func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.Metrics.Enabled {
		g.Go(func() error {
			return metrics.Serve(gctx, s.cfg.Metrics.Port, s.reg, logging.Component(s.log, "metrics"))
		})
	}
	g.Go(func() error {
		defer cancel()
		return front(gctx)
	})
	return g.Wait()
}

// close stops the controller and releases the log file
func (s *session) close() {
	s.ctrl.Stop()
	if err := s.logCloser.Close(); err != nil {
		s.log.Error().Err(err).Msg("Failed to close log output")
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// plainAdapter prints through render.Text and reports solve outcomes and
// the end of auto-play to the command waiting on them.
type plainAdapter struct {
	*render.Text

	outcomes chan error
	finished chan struct{}
	playing  bool // touched only from the render queue goroutine
}

func newPlainAdapter(w io.Writer) *plainAdapter {
	return &plainAdapter{
		Text:     render.NewText(w),
		outcomes: make(chan error, 8),
		finished: make(chan struct{}, 1),
	}
}

func (a *plainAdapter) OnSolveSucceeded(steps int) {
	a.Text.OnSolveSucceeded(steps)
	a.report(nil)
}

func (a *plainAdapter) OnSolveFailed(kind types.ErrorKind, message string) {
	a.Text.OnSolveFailed(kind, message)
	a.report(&types.SolveError{Kind: kind, Message: message})
}

func (a *plainAdapter) OnModeChanged(mode playback.Mode) {
	switch {
	case mode == playback.ModePlaying:
		a.playing = true
	case a.playing:
		a.playing = false
		select {
		case a.finished <- struct{}{}:
		default:
		}
	}
}

func (a *plainAdapter) report(err error) {
	select {
	case a.outcomes <- err:
	default:
	}
}

// runPlain plays each solution to the end. Without keepAlive it returns
// after the first outcome: nil once playback finishes, the error of a
// failed solve otherwise.
func runPlain(ctx context.Context, ctrl *controller.Controller, a *plainAdapter, keepAlive bool) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-a.outcomes:
			if err != nil {
				if keepAlive {
					continue
				}
				return err
			}
			ctrl.Player().TogglePlay()
			if keepAlive {
				continue
			}
			select {
			case <-a.finished:
			case <-ctx.Done():
			}
			return nil
		}
	}
}

// issue sends the first request. Failures that carry a kind are also
// delivered through the adapter, so only the others are returned.
func issue(ctrl *controller.Controller, req types.SolveRequest) error {
	_, err := ctrl.Solve(req)
	if err != nil && types.KindOf(err) == types.KindUnknown && !errors.Is(err, controller.ErrSolveInProgress) {
		return err
	}
	return nil
}
