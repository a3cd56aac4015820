package annotation

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/user/vidmark/pkg/ports"
)

// ErrNothingToSave is returned when there are no records to export.
var ErrNothingToSave = errors.New("annotation: no records to save")

// LockName is the lock file taken in the output directory while choosing a file name.
const LockName = ".vidmark.lock"

// maxSuffix bounds the search for a free file name.
const maxSuffix = 10000

// Columns is the CSV header.
var Columns = []string{
	"session",
	"role",
	"behaviour",
	"start_time",
	"duration",
	"record_type",
	"tag",
	"end_time",
	"observations",
	"start_time_str",
	"end_time_str",
}

// Exporter writes records as CSV files through a FileSystem.
type Exporter struct {
	fs     ports.FileSystem
	logger ports.Logger
}

// NewExporter creates an Exporter.
func NewExporter(fs ports.FileSystem, logger ports.Logger) *Exporter {
	return &Exporter{fs: fs, logger: logger.WithComponent("export")}
}

// Save writes records to <dir>/<video stem>.csv. Existing files are never overwritten:
// the first free name of <stem>_1.csv, <stem>_2.csv ... is used instead.
// It returns the path written.
func (e *Exporter) Save(dir, videoName string, records []Record) (string, error) {
	if len(records) == 0 {
		return "", ErrNothingToSave
	}

	data, err := EncodeCSV(records)
	if err != nil {
		return "", err
	}

	if err := e.fs.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	unlock, err := e.fs.Lock(filepath.Join(dir, LockName))
	if err != nil {
		return "", fmt.Errorf("lock output dir: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			e.logger.Warn("Releasing lock in %s failed: %v", dir, err)
		}
	}()

	path, err := e.freePath(dir, Stem(videoName), ".csv")
	if err != nil {
		return "", err
	}
	if err := e.fs.WriteFile(path, data); err != nil {
		return "", fmt.Errorf("write records: %w", err)
	}

	e.logger.Info("Saved %d records to %s", len(records), path)
	return path, nil
}

func (e *Exporter) freePath(dir, stem, ext string) (string, error) {
	path := filepath.Join(dir, stem+ext)
	for i := 1; i <= maxSuffix; i++ {
		exists, err := e.fs.Exists(path)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", path, err)
		}
		if !exists {
			return path, nil
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
	return "", fmt.Errorf("no free file name for %s in %s", stem, dir)
}

// Stem returns the base name of a video without its extension.
func Stem(videoName string) string {
	base := filepath.Base(videoName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		return "records"
	}
	return stem
}

// EncodeCSV renders records with the Columns header.
func EncodeCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(row(r)); err != nil {
			return nil, fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func row(r Record) []string {
	var end, endStr string
	if r.Kind == KindState && r.Closed {
		end = formatSeconds(r.End)
		endStr = FormatTime(r.End)
	}
	return []string{
		strconv.Itoa(r.Session),
		r.Role,
		r.Behaviour,
		formatSeconds(r.Start),
		formatSeconds(r.Duration),
		string(r.Kind),
		r.Tag,
		end,
		r.Observations,
		FormatTime(r.Start),
		endStr,
	}
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
