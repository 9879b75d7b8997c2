package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/config"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/passenger"
)

// Outputs lists the files a Reporter wrote. Empty fields were disabled.
type Outputs struct {
	SummaryCSV  string `json:"summary_csv,omitempty"`
	SummaryJSON string `json:"summary_json,omitempty"`
	SummaryText string `json:"summary_text,omitempty"`
	Workbook    string `json:"workbook,omitempty"`
}

// Files returns the written paths in a stable order
func (o Outputs) Files() []string {
	var files []string
	for _, f := range []string{o.SummaryCSV, o.SummaryJSON, o.SummaryText, o.Workbook} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Reporter writes every enabled report artifact for a run
type Reporter struct {
	cfg       config.ReportConfig
	csvWriter *CSVWriter
	workbook  *Workbook
	logger    *slog.Logger
}

// NewReporter creates a reporter writing into cfg.OutputDir
func NewReporter(cfg config.ReportConfig, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "reporter")
	return &Reporter{
		cfg:       cfg,
		csvWriter: NewCSVWriter(cfg.OutputDir, logger),
		workbook:  NewWorkbook(cfg.Language, cfg.Precision),
		logger:    logger,
	}
}

// Write renders result into the output directory
func (r *Reporter) Write(ctx context.Context, info RunInfo, result *passenger.Result) (*Outputs, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	out := &Outputs{}

	if r.cfg.WriteCSV {
		path, err := r.csvWriter.WriteCSV(config.SummaryCSVFile, WriteOptions{
			Headers:   SummaryHeaders(result.Horizon),
			Records:   SummaryRows(result.Records, result.Horizon, r.cfg.Precision),
			BOMPrefix: r.cfg.CSVBOM,
		})
		if err != nil {
			return nil, fmt.Errorf("write summary CSV: %w", err)
		}
		out.SummaryCSV = path
	}

	if r.cfg.WriteJSON {
		path := filepath.Join(r.cfg.OutputDir, config.SummaryJSONFile)
		if err := SaveSummaryJSON(info, result, path); err != nil {
			return nil, fmt.Errorf("write summary JSON: %w", err)
		}
		out.SummaryJSON = path
	}

	if r.cfg.WriteSummary {
		path := filepath.Join(r.cfg.OutputDir, config.SummaryTextFile)
		if err := SaveSummaryReport(info, result, r.cfg.Language, r.cfg.Precision, path); err != nil {
			return nil, fmt.Errorf("write summary report: %w", err)
		}
		out.SummaryText = path
	}

	if r.cfg.WriteWorkbook {
		path := filepath.Join(r.cfg.OutputDir, config.ChartsWorkbookFile)
		if err := r.workbook.Save(result, path); err != nil {
			return nil, fmt.Errorf("write chart workbook: %w", err)
		}
		out.Workbook = path
	}

	r.logger.InfoContext(ctx, "reports written",
		"output_dir", r.cfg.OutputDir,
		"files", len(out.Files()),
		"records", len(result.Records),
	)

	return out, nil
}
