package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/focusflow/internal/tui"
)

const metricsShutdownTimeout = 2 * time.Second

func newTUICmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive tracker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), env)
		},
	}
}

// runTUI runs the program alongside the periodic reset check, the state
// change bridge and the optional metrics endpoint. When any of them fails,
// or the program exits, the rest are stopped. A session still running at
// that point is committed before the store closes.
func runTUI(ctx context.Context, env *cmdEnv) (err error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "cli").Logger()

	rt, err := openRuntime(env.cfg, *zerolog.Ctx(ctx))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()

	if _, err := rt.service.EnsureProfile(ctx, ""); err != nil {
		logger.Warn().Err(err).Msg("profile not created")
	}

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = "."
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	model := tui.NewApp(tui.Deps{
		State:     rt.state,
		Engine:    rt.engine,
		Service:   rt.service,
		Logger:    *zerolog.Ctx(ctx),
		ExportDir: exportDir,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))

	// Snapshots arrive on store goroutines; the callback must not block on
	// the program, so changes are coalesced into one pending signal.
	changes := make(chan struct{}, 1)
	rt.state.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	rt.session.Start()

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run program: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-changes:
				p.Send(tui.StateChangedMsg{})
			}
		}
	})

	g.Go(func() error {
		rt.coordinator.Run(gctx, env.cfg.Reset.CheckInterval, rt.state.Projects)
		return nil
	})

	if addr := env.cfg.Metrics.Addr; addr != "" {
		serveMetrics(gctx, g, rt, addr, logger)
	}

	err = g.Wait()
	rt.state.OnChange(nil)
	return err
}

func serveMetrics(ctx context.Context, g *errgroup.Group, rt *runtime, addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve metrics: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
