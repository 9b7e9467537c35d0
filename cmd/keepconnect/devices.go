package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keep-connect/internal/infra/audio"
)

var devicesAll bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List output devices matching the configured name filter",
	RunE:  runDevices,
}

func init() {
	devicesCmd.Flags().BoolVarP(&devicesAll, "all", "a", false, "list every output device, ignoring device.name_filter")
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	filter := cfg.Device.NameFilter
	if devicesAll {
		filter = ""
	}

	backend := newBackend(cfg.Audio.Backend, logger)
	devices := audio.NewLocator(backend, logger).FindOutputDevices(filter)
	if len(devices) == 0 {
		return fmt.Errorf("no %s output device matches %q", backend.Name(), filter)
	}

	out := cmd.OutOrStdout()
	for _, d := range devices {
		fmt.Fprintf(out, "%3d  %-40s  %d ch  %s\n", d.Index, d.Name, d.MaxOutputChannels, d.ID)
	}
	return nil
}
