package evalcmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/metrics"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Environment fallbacks for the run command
const (
	envDataFolder    = "ORPHAEVAL_DATA_FOLDER"
	envResultsFolder = "ORPHAEVAL_RESULTS_FOLDER"
	envMetrics       = "ORPHAEVAL_METRICS"
)

// Default file names inside the data folder
const (
	defaultCandidatesFile   = "full_data_df.json"
	defaultTranslationsFile = "gct_translation.json"
)

// RunOptions configures an evaluation run. It can be read from a YAML file
// and every field can be overridden by the matching flag.
type RunOptions struct {
	DataFolder    string   `yaml:"data_folder"`
	ResultsFolder string   `yaml:"results_folder"`
	Candidates    string   `yaml:"candidates"`
	Translations  string   `yaml:"translations"`
	Metrics       []string `yaml:"metrics"`
	Scenarios     []string `yaml:"scenarios"`
	NoGCT         bool     `yaml:"no_gct"`
	Normalize     string   `yaml:"normalize"`
	Formats       []string `yaml:"formats"`
	Histograms    bool     `yaml:"histograms"`
	Join          string   `yaml:"join"`
	Sample        int      `yaml:"sample"`
}

// DefaultRunOptions returns the options used when nothing is configured
func DefaultRunOptions() RunOptions {
	return RunOptions{
		DataFolder:    "data",
		ResultsFolder: "results",
		Metrics:       append([]string{}, metrics.DefaultMetrics...),
		Normalize:     "none",
		Join:          "inner",
	}
}

// applyEnv overrides folders and metrics from the environment when set
func applyEnv(opts *RunOptions) {
	if v := os.Getenv(envDataFolder); v != "" {
		opts.DataFolder = v
	}
	if v := os.Getenv(envResultsFolder); v != "" {
		opts.ResultsFolder = v
	}
	if v := os.Getenv(envMetrics); v != "" {
		opts.Metrics = splitList([]string{v})
	}
}

// loadConfigFile merges the YAML file at path into opts
func loadConfigFile(path string, opts *RunOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// resolveRunOptions layers defaults, environment, config file and changed flags, in that order
func resolveRunOptions(flags *pflag.FlagSet, configPath string, fromFlags RunOptions) (RunOptions, error) {
	opts := DefaultRunOptions()
	applyEnv(&opts)

	if configPath != "" {
		if err := loadConfigFile(configPath, &opts); err != nil {
			return RunOptions{}, err
		}
	}

	if flags != nil {
		if flags.Changed("data-folder") {
			opts.DataFolder = fromFlags.DataFolder
		}
		if flags.Changed("results-folder") {
			opts.ResultsFolder = fromFlags.ResultsFolder
		}
		if flags.Changed("candidates") {
			opts.Candidates = fromFlags.Candidates
		}
		if flags.Changed("translations") {
			opts.Translations = fromFlags.Translations
		}
		if flags.Changed("metrics") {
			opts.Metrics = fromFlags.Metrics
		}
		if flags.Changed("scenarios") {
			opts.Scenarios = fromFlags.Scenarios
		}
		if flags.Changed("no-gct") {
			opts.NoGCT = fromFlags.NoGCT
		}
		if flags.Changed("normalize") {
			opts.Normalize = fromFlags.Normalize
		}
		if flags.Changed("formats") {
			opts.Formats = fromFlags.Formats
		}
		if flags.Changed("histograms") {
			opts.Histograms = fromFlags.Histograms
		}
		if flags.Changed("join") {
			opts.Join = fromFlags.Join
		}
		if flags.Changed("sample") {
			opts.Sample = fromFlags.Sample
		}
	}

	opts.finalize()
	return opts, nil
}

// finalize fills file defaults relative to the data folder and cleans list values
func (o *RunOptions) finalize() {
	if o.Candidates == "" {
		o.Candidates = filepath.Join(o.DataFolder, defaultCandidatesFile)
	}
	if o.Translations == "" {
		o.Translations = filepath.Join(o.DataFolder, defaultTranslationsFile)
	}
	o.Metrics = splitList(o.Metrics)
	o.Scenarios = splitList(o.Scenarios)
	o.Formats = splitList(o.Formats)
	if len(o.Metrics) == 0 {
		o.Metrics = append([]string{}, metrics.DefaultMetrics...)
	}
}

// splitList accepts repeated values as well as comma separated ones
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
