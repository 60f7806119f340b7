// Command sweeper recompresses image trees in place: walks a directory,
// normalizes every jpg/jpeg/png over 100 KB and reports the bytes saved.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Eissaali11/nuzum/internal"
	"github.com/Eissaali11/nuzum/internal/media"
)

func run() error {
	var (
		dir     = flag.String("dir", "./storage", "directory tree to sweep")
		quality = flag.Int("quality", media.SweeperQuality, "JPEG quality for re-encoded images")
		maxSize = flag.Int("max", media.DefaultMaxWidth, "bounding box edge in pixels")
		verbose = flag.Bool("v", false, "print a line per processed file")
	)
	flag.Parse()

	logger := internal.NewLogger(os.Stderr, os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	media.RegisterHEIF()
	normalizer := media.NewNormalizer(*maxSize, *maxSize, *quality, logger)

	report, err := normalizer.Sweep(ctx, *dir)
	if err != nil {
		return err
	}

	if *verbose {
		for _, f := range report.Files {
			switch {
			case f.Err != nil:
				fmt.Printf("FAIL  %s: %v\n", f.Path, f.Err)
			case f.Skipped:
				fmt.Printf("SKIP  %s (%d bytes)\n", f.Path, f.OriginalSize)
			default:
				fmt.Printf("OK    %s: %d -> %d bytes\n", f.Path, f.OriginalSize, f.NewSize)
			}
		}
	}

	fmt.Printf("processed %d, skipped %d, failed %d, saved %d bytes\n",
		report.Processed, report.Skipped, report.Failed, report.BytesSaved)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
