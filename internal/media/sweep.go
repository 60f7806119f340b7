package media

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

// =============================================================================
// Batch Sweeper
// =============================================================================

// MinSweepSize is the threshold below which the sweeper leaves files alone;
// re-encoding already-small files costs more than it saves.
const MinSweepSize = 100 * 1024 // 100 KB

// sweepExtensions are the file extensions the sweeper will touch. HEIC files
// are deliberately excluded: anything reaching long-term storage has already
// been normalized to JPEG by the upload path.
var sweepExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// FileReport describes a single file visited by the sweeper.
type FileReport struct {
	Path         string
	OriginalSize int64
	NewSize      int64 // Equals OriginalSize for skipped files
	Skipped      bool
	Err          error
}

// Saved returns the bytes recovered for this file (zero when skipped/failed).
func (r *FileReport) Saved() int64 {
	if r.Skipped || r.Err != nil {
		return 0
	}
	return r.OriginalSize - r.NewSize
}

// SweepReport aggregates a full sweeper run.
type SweepReport struct {
	Files      []FileReport
	Processed  int
	Skipped    int
	Failed     int
	BytesSaved int64
}

// Sweep walks the directory tree rooted at root and re-encodes every JPEG or
// PNG of at least MinSweepSize, reporting per-file and aggregate savings.
// The walk honors ctx cancellation between files.
func (n *Normalizer) Sweep(ctx context.Context, root string) (*SweepReport, error) {
	report := &SweepReport{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !sweepExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		file := FileReport{Path: path, OriginalSize: info.Size(), NewSize: info.Size()}

		if info.Size() < MinSweepSize {
			file.Skipped = true
			report.Skipped++
			report.Files = append(report.Files, file)
			return nil
		}

		result, nerr := n.NormalizeFile(path)
		if nerr != nil {
			file.Err = nerr
			report.Failed++
			report.Files = append(report.Files, file)
			// A single bad file doesn't abort the sweep
			return nil
		}

		file.NewSize = result.NewSize
		report.Processed++
		report.BytesSaved += file.Saved()
		report.Files = append(report.Files, file)

		n.logger.Info("swept image",
			"path", path,
			"original_size", file.OriginalSize,
			"new_size", file.NewSize,
			"saved", file.Saved(),
		)

		return nil
	})
	if err != nil {
		return report, err
	}

	n.logger.Info("sweep complete",
		"root", root,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"bytes_saved", report.BytesSaved,
	)

	return report, nil
}
