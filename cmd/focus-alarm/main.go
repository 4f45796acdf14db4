package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lixenwraith/focus-alarm/config"
	"github.com/lixenwraith/focus-alarm/core"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every subcommand
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "focus-alarm",
		Short:         "Terminal focus timer with randomized reminder tones",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.Bool("debug", false, "write a debug log to logs/"+logFileName)
	pf.Float64("volume", 1.0, "master volume 0.0-1.0")
	pf.String("backend", "auto", "audio backend: auto, speaker, pipe, none")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newSoundsCmd(opts))
	root.AddCommand(newPlayCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

// loadConfig merges defaults, file, environment and the command's flags
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*viper.Viper, *config.Config, error) {
	v := config.NewViper(opts.configPath)
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	return v, cfg, nil
}
