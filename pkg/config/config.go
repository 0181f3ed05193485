package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// PropertyConfig describes one simulated measurement stream. The alias
// may carry ASSET and LINE placeholders resolved per asset.
type PropertyConfig struct {
	Alias      string  `yaml:"alias"`
	MinNormal  float64 `yaml:"min_normal"`
	MaxNormal  float64 `yaml:"max_normal"`
	MinAnomaly float64 `yaml:"min_anomaly"`
	MaxAnomaly float64 `yaml:"max_anomaly"`
}

type Config struct {
	Region string `yaml:"region"`

	// Anomaly Detection
	AssetID             string   `yaml:"asset_id"`
	ModelName           string   `yaml:"model_name"`
	InputPropertyIDs    []string `yaml:"input_property_ids"`
	ResultPropertyID    string   `yaml:"result_property_id"`
	TrainingDataDays    int      `yaml:"training_data_days"`
	TargetSamplingRate  string   `yaml:"target_sampling_rate"`
	EvaluationBucket    string   `yaml:"evaluation_bucket"`
	EvaluationPrefix    string   `yaml:"evaluation_prefix"`
	TrainingPollSeconds int      `yaml:"training_poll_seconds"`

	// Inference
	DataDelayOffsetMinutes      int    `yaml:"data_delay_offset_minutes"`
	DataUploadFrequency         string `yaml:"data_upload_frequency"`
	WeeklyOperatingWindow       string `yaml:"weekly_operating_window"`
	InferencePropagationSeconds int    `yaml:"inference_propagation_seconds"`
	InferencePollSeconds        int    `yaml:"inference_poll_seconds"`

	// Data Import
	DataBucket        string `yaml:"data_bucket"`
	DataPrefix        string `yaml:"data_prefix"`
	ErrorPrefix       string `yaml:"error_prefix"`
	ImportRoleARN     string `yaml:"import_role_arn"`
	DataDir           string `yaml:"data_dir"`
	LabelsDir         string `yaml:"labels_dir"`
	LabelsBucket      string `yaml:"labels_bucket"`
	LabelsPrefix      string `yaml:"labels_prefix"`
	JobSpacingSeconds int    `yaml:"job_spacing_seconds"`
	ImportPollSeconds int    `yaml:"import_poll_seconds"`

	// Metadata Import
	MetadataBucket      string `yaml:"metadata_bucket"`
	MetadataKeyPrefix   string `yaml:"metadata_key_prefix"`
	MetadataJobIDPrefix string `yaml:"metadata_job_id_prefix"`
	MetadataPollSeconds int    `yaml:"metadata_poll_seconds"`

	// Detector (equipment anomaly detection)
	DetectorNamePrefix          string   `yaml:"detector_name_prefix"`
	DetectorRoleARN             string   `yaml:"detector_role_arn"`
	DetectorActionName          string   `yaml:"detector_action_name"`
	TrainingPropertyExternalIDs []string `yaml:"training_property_external_ids"`
	DetectorUpdatePollSeconds   int      `yaml:"detector_update_poll_seconds"`
	DetectorStatusPollSeconds   int      `yaml:"detector_status_poll_seconds"`
	DetectorStopPollSeconds     int      `yaml:"detector_stop_poll_seconds"`

	// Cleanup
	ComputationAssetID    string `yaml:"computation_asset_id"`
	StreamPrefix          string `yaml:"stream_prefix"`
	SimulatorPattern      string `yaml:"simulator_pattern"`
	CleanupPollSeconds    int    `yaml:"cleanup_poll_seconds"`
	ModelUpdateDelay      int    `yaml:"model_update_delay_seconds"`
	DependentAssetRetries int    `yaml:"dependent_asset_retries"`

	// Simulation
	SimulatedAssets        []string         `yaml:"simulated_assets"`
	Properties             []PropertyConfig `yaml:"properties"`
	LiveIntervalSeconds    int              `yaml:"live_interval_seconds"`
	AnomalyDurationMinutes int              `yaml:"anomaly_duration_minutes"`
	AnomalyIntervalSeconds int              `yaml:"anomaly_interval_seconds"`

	// UI Settings
	ColorTheme string `yaml:"color_theme"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		Region:                      "us-east-1",
		ModelName:                   "workshop-anomaly-model",
		TrainingDataDays:            30,
		TargetSamplingRate:          "PT5M",
		TrainingPollSeconds:         10,
		DataDelayOffsetMinutes:      3,
		DataUploadFrequency:         "PT5M",
		InferencePropagationSeconds: 60,
		InferencePollSeconds:        10,
		DataPrefix:                  "data/",
		ErrorPrefix:                 "errors/",
		LabelsPrefix:                "labels/",
		DataDir:                     "historical_data",
		LabelsDir:                   "labels",
		JobSpacingSeconds:           1,
		ImportPollSeconds:           10,
		MetadataKeyPrefix:           "metadata/",
		MetadataJobIDPrefix:         "Workshop_AD_Import",
		MetadataPollSeconds:         5,
		DetectorNamePrefix:          "AnomalyDetection_",
		DetectorActionName:          "AWS/L4E_ANOMALY_WORKFLOW",
		DetectorUpdatePollSeconds:   10,
		DetectorStatusPollSeconds:   30,
		DetectorStopPollSeconds:     15,
		StreamPrefix:                "/Tag Providers/AD/default/UR",
		SimulatorPattern:            "simulate_live_data",
		CleanupPollSeconds:          5,
		ModelUpdateDelay:            2,
		DependentAssetRetries:       10,
		LiveIntervalSeconds:         5,
		AnomalyDurationMinutes:      60,
		AnomalyIntervalSeconds:      10,
		ColorTheme:                  "auto",
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults for essential values if missing
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.TargetSamplingRate == "" {
		cfg.TargetSamplingRate = "PT5M"
	}
	if cfg.TrainingDataDays <= 0 {
		cfg.TrainingDataDays = 30
	}
	if cfg.TrainingPollSeconds <= 0 {
		cfg.TrainingPollSeconds = 10
	}
	if cfg.InferencePollSeconds <= 0 {
		cfg.InferencePollSeconds = 10
	}
	if cfg.ImportPollSeconds <= 0 {
		cfg.ImportPollSeconds = 10
	}
	if cfg.MetadataPollSeconds <= 0 {
		cfg.MetadataPollSeconds = 5
	}
	if cfg.CleanupPollSeconds <= 0 {
		cfg.CleanupPollSeconds = 5
	}
	if cfg.DependentAssetRetries <= 0 {
		cfg.DependentAssetRetries = 10
	}
	if cfg.AnomalyDurationMinutes <= 0 {
		cfg.AnomalyDurationMinutes = 60
	}
	if cfg.AnomalyIntervalSeconds <= 0 {
		cfg.AnomalyIntervalSeconds = 10
	}
	if cfg.DetectorActionName == "" {
		cfg.DetectorActionName = "AWS/L4E_ANOMALY_WORKFLOW"
	}
	if cfg.MetadataJobIDPrefix == "" {
		cfg.MetadataJobIDPrefix = "Workshop_AD_Import"
	}

	return cfg, nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Seconds converts a whole-second config value to a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
