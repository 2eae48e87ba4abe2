package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"

	"github.com/ChristosDalamarinis/RIFT/engine"
)

func init() {
	// SDL3 requires the main thread for some operations.
	runtime.LockOSThread()
}

func main() {
	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	configFile := flag.String("config", "", "YAML config file")
	outputFile := flag.String("output", "", "Output CSV file")
	refresh := flag.Float64("refresh", -1, "Display refresh rate in Hz (0 = query the display)")
	waveform := flag.String("waveform", "", "Flicker waveform: square or sine")
	screenW := flag.Int("width", 0, "Screen width")
	screenH := flag.Int("height", 0, "Screen height")
	fullscreen := flag.Bool("fullscreen", false, "Enable fullscreen")
	noVSync := flag.Bool("no-vsync", false, "Disable VSync")
	noFixation := flag.Bool("no-fixation", false, "Disable fixation cross")
	strict := flag.Bool("strict", false, "Refuse frequencies needing an adaptive schedule")
	measure := flag.Bool("measure-rate", false, "Measure the refresh rate before the trial")
	audioTag := flag.Bool("audio", false, "Enable the auditory tag")
	trigger := flag.String("trigger", "", "DLP-IO8-G trigger device")
	duration := flag.Float64("duration", -1, "Trial duration in seconds (0 = until key press)")
	setup := flag.Bool("setup", false, "Show the setup screen before the run")
	jsonLog := flag.Bool("json-log", false, "Structured JSON log on stdout")
	writeConfig := flag.String("write-config", "", "Write the effective config as YAML and exit")
	flag.Parse()

	level := slog.LevelWarn
	if *jsonLog {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg := engine.DefaultConfig()
	if *configFile != "" {
		loaded, err := engine.LoadConfig(*configFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// flags override the file
	if *outputFile != "" {
		cfg.OutputFile = *outputFile
	}
	if *refresh >= 0 {
		cfg.RefreshRate = *refresh
	}
	if *waveform != "" {
		cfg.Waveform = *waveform
	}
	if *screenW > 0 {
		cfg.ScreenWidth = *screenW
	}
	if *screenH > 0 {
		cfg.ScreenHeight = *screenH
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *noVSync {
		cfg.VSync = false
	}
	if *noFixation {
		cfg.Fixation = false
	}
	if *strict {
		cfg.Strict = true
	}
	if *measure {
		cfg.MeasureRate = true
	}
	if *audioTag {
		cfg.Audio.Enabled = true
	}
	if *trigger != "" {
		cfg.TriggerDevice = *trigger
	}
	if *duration >= 0 {
		cfg.TrialSeconds = *duration
	}

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", *writeConfig)
		return
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if *setup {
		if !engine.RunSetup(cfg) {
			return
		}
	}

	if err := engine.Run(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
