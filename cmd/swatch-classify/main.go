package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/swatch/internal/cli"
	"github.com/okian/swatch/pkg/logger"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		crop     = flag.String("crop", "", `Pixel crop "x,y,width,height"`)
		face     = flag.String("face", "", `Normalized face box "x,y,width,height"`)
		garments = flag.String("garments", "", "Comma separated hex colors to score")
		nearFace = flag.Bool("near-face", false, "Score garments as worn near the face")
		workers  = flag.Int("workers", runtime.NumCPU(), "Files classified concurrently")
		timeout  = flag.Duration("timeout", defaultTimeout, "Per-file deadline")
		pretty   = flag.Bool("pretty", false, "Indent JSON output")
		verbose  = flag.Bool("verbose", false, "Enable debug logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || flag.NArg() == 0 {
		cli.ShowHelp()
		if !*help {
			os.Exit(2)
		}
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	level := "warn"
	if *verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	cfg := cli.Config{
		Files:    flag.Args(),
		NearFace: *nearFace,
		Workers:  *workers,
		Timeout:  *timeout,
		Pretty:   *pretty,
	}
	var err error
	if *crop != "" {
		if cfg.Crop, err = cli.ParseRegion(*crop); err != nil {
			fatal(err)
		}
	}
	if *face != "" {
		if cfg.FaceBox, err = cli.ParseBox(*face); err != nil {
			fatal(err)
		}
	}
	if cfg.Garments, err = cli.ParseGarments(*garments); err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed, err := cli.Run(ctx, cfg, os.Stdout)
	if err != nil {
		fatal(err)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func fatal(err error) {
	os.Stderr.WriteString("swatch-classify: " + err.Error() + "\n")
	os.Exit(2)
}
