package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Entry is one captioned image of a batch run
type Entry struct {
	Filename     string  `yaml:"filename" parquet:"filename"`
	Caption      string  `yaml:"caption" parquet:"caption"`
	CaptionPath  string  `yaml:"captionpath,omitempty" parquet:"caption_path"`
	InputTokens  int64   `yaml:"inputtokens" parquet:"input_tokens"`
	OutputTokens int64   `yaml:"outputtokens" parquet:"output_tokens"`
	Cost         float64 `yaml:"cost" parquet:"cost"`
	FailedStage  string  `yaml:"failedstage,omitempty" parquet:"failed_stage"`
	Error        string  `yaml:"error,omitempty" parquet:"error"`
}

// Config describes how the batch was run
type Config struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Style     string `yaml:"style"`
	Folder    string `yaml:"folder"`
	Timestamp string `yaml:"timestamp"`
}

// Summary totals a batch run
type Summary struct {
	Images       int     `yaml:"images"`
	Captioned    int     `yaml:"captioned"`
	Failed       int     `yaml:"failed"`
	InputTokens  int64   `yaml:"inputtokens"`
	OutputTokens int64   `yaml:"outputtokens"`
	Cost         float64 `yaml:"cost"`
}

// Report is the complete record of a batch run
type Report struct {
	Config  Config  `yaml:"config"`
	Summary Summary `yaml:"summary"`
	Entries []Entry `yaml:"entries"`
}

// Add appends an entry and updates the summary
func (r *Report) Add(e Entry) {
	r.Entries = append(r.Entries, e)
	r.Summary.Images++
	if e.Error != "" {
		r.Summary.Failed++
	} else {
		r.Summary.Captioned++
	}
	r.Summary.InputTokens += e.InputTokens
	r.Summary.OutputTokens += e.OutputTokens
	r.Summary.Cost += e.Cost
}

// SaveYAML writes the report, including config and summary, as YAML
func (r *Report) SaveYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	slog.Info("Report saved", "path", path, "entries", len(r.Entries))
	return nil
}

// LoadYAML reads a report written by SaveYAML
func LoadYAML(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}

	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return &r, nil
}

// SaveParquet writes the entries as a Parquet table
func (r *Report) SaveParquet(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := parquet.WriteFile(path, r.Entries); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}

	slog.Info("Parquet report saved", "path", path, "rows", len(r.Entries))
	return nil
}

// LoadParquet reads entries written by SaveParquet
func LoadParquet(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	var entries []Entry
	rows := make([]Entry, 128)
	for {
		n, err := reader.Read(rows)
		entries = append(entries, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return entries, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return entries, nil
}
