// SPDX-License-Identifier: MIT

// Package cmd parses command line arguments into a validated pipeline
// configuration.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"visualizer/internal/config"
)

// ParseArgs builds the configuration from defaults, an optional YAML
// file, environment overrides, and finally any explicitly set flags.
// command is "list" for the device listing, "" for a normal run.
func ParseArgs() (cfg *config.Config, command string, err error) {
	var configPath string
	var verbose bool
	flags := config.New()

	rootCmd := &cobra.Command{
		Use:           "visualizer",
		Short:         "Real-time audio visualizer pipeline",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err = buildConfig(c, flags, configPath, verbose)
			return err
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(c *cobra.Command, args []string) {
			command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	pf := rootCmd.PersistentFlags()

	// Input selection
	pf.IntVarP(&flags.DeviceID, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use 'list' command to see available devices.")
	pf.StringVarP(&flags.InputFile, "file", "f", "",
		"Play a WAV file instead of capturing live input")
	pf.Float64VarP(&flags.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")

	// Analysis shape
	pf.IntVar(&flags.ChunkSize, "chunk", config.DefaultChunkSize,
		"Samples per analysis chunk")
	pf.IntVar(&flags.FFTSize, "fft", config.DefaultFFTSize,
		"FFT size (power of two, at least the chunk size)")
	pf.IntVarP(&flags.BarCount, "bars", "b", config.DefaultBarCount,
		"Number of display bars")
	pf.Float64Var(&flags.Smoothing, "smoothing", config.DefaultSmoothing,
		"Temporal smoothing factor in (0, 1]; 1 disables smoothing")
	pf.IntVar(&flags.HistoryDepth, "depth", config.DefaultHistoryDepth,
		"Spectrogram history depth in frames")

	// Output
	pf.IntVar(&flags.FrameRate, "fps", config.DefaultFrameRate,
		"Target output frame rate")
	pf.StringVarP(&flags.Mode, "mode", "m", config.DefaultMode,
		"Initial mode: bars, curve, spectrogram or scope")
	pf.Float64Var(&flags.Scale, "scale", 0,
		"Manual amplitude scale (0.5, 1, 2, 5, 10); 0 enables auto")
	pf.StringVar(&flags.WSAddr, "addr", config.DefaultWSAddr,
		"Listen address for the WebSocket frame stream")

	pf.StringVar(&configPath, "config", "",
		"Path to a YAML config file")
	pf.StringVar(&flags.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn or error")
	pf.BoolVarP(&verbose, "verbose", "v", false,
		"Shorthand for --log-level debug")

	rootCmd.SetArgs(os.Args[1:])
	if execErr := rootCmd.Execute(); execErr != nil {
		return nil, "", execErr
	}
	return cfg, command, err
}

// buildConfig layers explicitly set flags over the file/env configuration
// and validates the result. Flags left at their defaults do not override
// file settings.
func buildConfig(c *cobra.Command, flags *config.Config, configPath string, verbose bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	set := map[string]func(){
		"device":      func() { cfg.DeviceID = flags.DeviceID },
		"file":        func() { cfg.InputFile = flags.InputFile },
		"sample-rate": func() { cfg.SampleRate = flags.SampleRate },
		"chunk":       func() { cfg.ChunkSize = flags.ChunkSize },
		"fft":         func() { cfg.FFTSize = flags.FFTSize },
		"bars":        func() { cfg.BarCount = flags.BarCount },
		"smoothing":   func() { cfg.Smoothing = flags.Smoothing },
		"depth":       func() { cfg.HistoryDepth = flags.HistoryDepth },
		"fps":         func() { cfg.FrameRate = flags.FrameRate },
		"mode":        func() { cfg.Mode = flags.Mode },
		"scale":       func() { cfg.Scale = flags.Scale },
		"addr":        func() { cfg.WSAddr = flags.WSAddr },
		"log-level":   func() { cfg.LogLevel = flags.LogLevel },
	}
	for name, apply := range set {
		if c.Flags().Changed(name) {
			apply()
		}
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
