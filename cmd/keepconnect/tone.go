package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keep-connect/internal/tone"
)

var toneOutput string

var toneCmd = &cobra.Command{
	Use:   "tone",
	Short: "Write the configured tone to a WAV file",
	RunE:  runTone,
}

func init() {
	toneCmd.Flags().StringVarP(&toneOutput, "output", "o", "keepconnect.wav", "destination file")
	rootCmd.AddCommand(toneCmd)
}

func runTone(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	buf := buildTone(cfg.Tone)
	data, err := tone.EncodeWAV(buf)
	if err != nil {
		return fmt.Errorf("encoding tone: %w", err)
	}

	if err := os.WriteFile(toneOutput, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", toneOutput, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d Hz, %d ch)\n", toneOutput, buf.Duration(), buf.SampleRate, buf.Channels)
	return nil
}
