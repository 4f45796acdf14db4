package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/focus-alarm/audio"
	"github.com/lixenwraith/focus-alarm/status"
	"github.com/lixenwraith/focus-alarm/ui"
)

func newSoundsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sounds",
		Short: "List the available sounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			cat := audio.DefaultCatalog()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ui.SoundList(cat, cat.Resolve(cfg.Session.Sound)))
			return err
		},
	}
}

// knownSound rejects names the catalog would silently replace with the default
func knownSound(cat *audio.Catalog, name string) error {
	if !cat.Has(name) {
		return fmt.Errorf("unknown sound %q (see `focus-alarm sounds`)", name)
	}
	return nil
}

func newPlayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play [NAME]",
		Short: "Play a sound and wait for it to finish",
		Long:  "Play NAME, or the configured sound when no name is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			setupLogging(false)

			name := cfg.Session.Sound
			if len(args) == 1 {
				name = args[0]
			}
			cat := audio.DefaultCatalog()
			if err := knownSound(cat, name); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tone := audio.NewToneEngine(&cfg.Audio, nil, status.NewRegistry())
			defer tone.Close()

			d, err := tone.RenderSync(ctx, name)
			if err != nil {
				return fmt.Errorf("playing %s: %w", name, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%dms)\n", name, d.Milliseconds())
			return err
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME FILE.wav",
		Short: "Write a sound to a WAV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			name, path := args[0], args[1]
			cat := audio.DefaultCatalog()
			if err := knownSound(cat, name); err != nil {
				return err
			}

			if err := audio.ExportFile(path, cat.Lookup(name), cfg.Audio.SampleRate, cfg.Audio.MasterVolume); err != nil {
				return fmt.Errorf("exporting %s: %w", name, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s to %s\n", name, path)
			return err
		},
	}
}
