package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "github.com/EugenEistrach/mockfn/internal/model"
)

const reportFileName = "transform-report.yaml"

// ReportStore persists per-unit transform reports so a run can be reviewed
// later with the view command.
type ReportStore interface {
	SaveReports(dir m.Path, reports []m.TransformReport) error
	LoadReports(dir m.Path) ([]m.TransformReport, error)
}

// YAMLReportStore stores reports as a single YAML document per run directory.
type YAMLReportStore struct{}

// NewReportStore constructs a YAMLReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReports writes reports to dir, creating it when necessary.
func (s *YAMLReportStore) SaveReports(dir m.Path, reports []m.TransformReport) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to marshal reports: %w", err)
	}

	target := filepath.Join(string(dir), reportFileName)
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	return nil
}

// LoadReports reads the reports previously saved under dir.
func (s *YAMLReportStore) LoadReports(dir m.Path) ([]m.TransformReport, error) {
	data, err := os.ReadFile(filepath.Join(string(dir), reportFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}

	var reports []m.TransformReport
	if err := yaml.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reports: %w", err)
	}

	return reports, nil
}
