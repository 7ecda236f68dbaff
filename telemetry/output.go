package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/frap/config"
)

// FluorescenceRecord is one fluorescence.csv row.
type FluorescenceRecord struct {
	Time  int `csv:"time"`
	Green int `csv:"green"`
}

// MeanRecord is one mean_fluorescence.csv row.
type MeanRecord struct {
	Time   int     `csv:"time"`
	Mean   float64 `csv:"mean"`
	StdDev float64 `csv:"stddev"`
}

// TrajectoryRecord is one trajectory.csv row.
type TrajectoryRecord struct {
	Step     int     `csv:"step"`
	Particle int     `csv:"particle"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Bleached bool    `csv:"bleached"`
}

// Output file names.
const (
	FileConfig           = "config.yaml"
	FileFluorescence     = "fluorescence.csv"
	FileMeanFluorescence = "mean_fluorescence.csv"
	FileSteps            = "steps.csv"
	FileTrajectory       = "trajectory.csv"
	FilePerf             = "perf.csv"
	FileSummary          = "summary.csv"
)

// OutputManager writes run results into a directory.
// A nil manager (output disabled) accepts every write as a no-op.
type OutputManager struct {
	dir string
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{dir: dir}, nil
}

// Sub returns a manager for a subdirectory, e.g. one per run.
func (om *OutputManager) Sub(name string) (*OutputManager, error) {
	if om == nil {
		return nil, nil
	}
	return NewOutputManager(filepath.Join(om.dir, name))
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, FileConfig))
}

// WriteFluorescence writes fluorescence.csv.
func (om *OutputManager) WriteFluorescence(records []FluorescenceRecord) error {
	return om.writeCSV(FileFluorescence, records)
}

// WriteMean writes mean_fluorescence.csv.
func (om *OutputManager) WriteMean(records []MeanRecord) error {
	return om.writeCSV(FileMeanFluorescence, records)
}

// WriteSteps writes steps.csv.
func (om *OutputManager) WriteSteps(stats []StepStats) error {
	return om.writeCSV(FileSteps, stats)
}

// WriteTrajectory writes trajectory.csv.
func (om *OutputManager) WriteTrajectory(records []TrajectoryRecord) error {
	return om.writeCSV(FileTrajectory, records)
}

// WritePerf writes perf.csv.
func (om *OutputManager) WritePerf(records []PerfRecord) error {
	return om.writeCSV(FilePerf, records)
}

// WriteSummary writes summary.csv.
func (om *OutputManager) WriteSummary(rows []RunSummary) error {
	return om.writeCSV(FileSummary, rows)
}

func (om *OutputManager) writeCSV(name string, records any) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := gocsv.MarshalFile(records, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// ReadFluorescence loads a fluorescence.csv written by WriteFluorescence.
func ReadFluorescence(path string) ([]FluorescenceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fluorescence file: %w", err)
	}
	defer f.Close()

	var records []FluorescenceRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("parsing fluorescence file: %w", err)
	}
	return records, nil
}
