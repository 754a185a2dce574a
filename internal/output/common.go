package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// commitDateLayout renders author dates as "2020-01-02 15:04:05+01:00".
	commitDateLayout     = "2006-01-02 15:04:05-07:00"
	reportDateTimeLayout = "2006-01-02T15:04:05Z07:00"
)

// writeReport runs fn against stdout, or against a temporary file next to
// outputPath that is renamed into place once fn succeeds. A failed write
// leaves no file behind.
func writeReport(outputPath string, fn func(io.Writer) error) error {
	if outputPath == "" {
		return fn(os.Stdout)
	}

	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := fn(tmp); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("move report into place: %w", err)
	}
	return nil
}

// versionPtr returns nil for an absent version so it encodes as JSON null.
func versionPtr(declared bool, value string) *string {
	if !declared {
		return nil
	}
	return &value
}
