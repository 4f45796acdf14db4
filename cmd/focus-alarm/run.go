package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lixenwraith/focus-alarm/audio"
	"github.com/lixenwraith/focus-alarm/config"
	"github.com/lixenwraith/focus-alarm/constant"
	"github.com/lixenwraith/focus-alarm/core"
	"github.com/lixenwraith/focus-alarm/engine"
	"github.com/lixenwraith/focus-alarm/status"
	"github.com/lixenwraith/focus-alarm/ui"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a focus session",
		Long: `Count down a focus session, play a reminder tone every 3-5 minutes and a
completion chime when time is up.

The interactive screen starts immediately when a duration flag is given,
otherwise press s to start the preset. Plain mode prints progress lines and
exits after the session ends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			logDir = cfg.Log.Dir
			if f := setupLogging(cfg.Log.Debug); f != nil {
				defer f.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			autoStart := cmd.Flags().Changed("hours") || cmd.Flags().Changed("minutes") || cmd.Flags().Changed("seconds")

			reg := status.NewRegistry()
			tone := audio.NewToneEngine(&cfg.Audio, nil, reg)
			defer tone.Close()
			core.Go(tone.Preload)

			loop := engine.NewLoop(nil)
			loop.Start()
			defer loop.Stop()

			if plain {
				err = runPlain(ctx, loop, tone, v, cfg, reg)
			} else {
				err = runInteractive(ctx, loop, tone, v, cfg, reg, autoStart)
			}

			if cfg.Log.Debug {
				log.Printf("=== metrics ===")
				_ = reg.Dump(log.Writer())
			}
			return err
		},
	}

	f := cmd.Flags()
	f.Int("hours", 0, "session hours")
	f.Int("minutes", 0, "session minutes")
	f.Int("seconds", 0, "session seconds")
	f.String("sound", audio.DefaultSound, "reminder and completion sound (see `focus-alarm sounds`)")
	f.BoolVar(&plain, "plain", false, "print progress lines instead of the interactive screen")
	return cmd
}

// watchSource applies live edits of the config file to a running app
func watchSource(v *viper.Viper, a *app, cfg *config.Config) {
	current := cfg
	watched := config.Watch(v, func(updated *config.Config, err error) {
		if err != nil {
			log.Printf("[config] ignoring edit: %v", err)
			return
		}
		a.applyConfig(current, updated)
		current = updated
	})
	if watched {
		log.Printf("[config] watching %s", v.ConfigFileUsed())
	}
}

func runPlain(ctx context.Context, loop *engine.Loop, tone *audio.ToneEngine, v *viper.Viper, cfg *config.Config, reg *status.Registry) error {
	secs, err := cfg.SessionSeconds()
	if err != nil {
		return fmt.Errorf("plain mode needs a duration (--hours/--minutes/--seconds): %w", err)
	}

	printer := ui.NewPlain(os.Stdout, isatty.IsTerminal(os.Stdout.Fd()))
	a := newApp(loop, tone, withEventLog(printer), nil, cfg, reg)
	defer a.close()
	watchSource(v, a, cfg)

	var startErr error
	loop.Do(func() { startErr = a.ctrl.Start(secs) })
	if startErr != nil {
		return startErr
	}

	select {
	case <-printer.Done():
		// The last chime may still be sounding at acknowledgment
		var sound string
		loop.Do(func() { sound = a.ctrl.Sound() })
		if tail := chimeTail(tone.Catalog().Lookup(sound)); tail > 0 {
			select {
			case <-time.After(tail):
			case <-ctx.Done():
			}
		}
	case <-ctx.Done():
		loop.Do(a.ctrl.Stop)
	}
	tone.Wait()
	return nil
}

// chimeTail is how long the final completion render outlasts the acknowledgment
func chimeTail(r audio.Recipe) time.Duration {
	lastStart := time.Duration(constant.CompletionRepeats-1) * constant.CompletionSpacing
	return lastStart + r.Duration() - constant.CompletionAckDelay
}

func runInteractive(ctx context.Context, loop *engine.Loop, tone *audio.ToneEngine, v *viper.Viper, cfg *config.Config, reg *status.Registry, autoStart bool) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	core.SetCrashTerminal(screen)
	defer func() {
		core.SetCrashTerminal(nil)
		screen.Fini()
	}()

	model := ui.NewModel(cfg.Session.Sound)
	a := newApp(loop, tone, withEventLog(model), model, cfg, reg)
	defer a.close()
	watchSource(v, a, cfg)

	display := ui.NewDisplay(screen, model, a)
	if autoStart {
		a.StartSession()
	}
	display.Run(ctx.Done())
	return nil
}
