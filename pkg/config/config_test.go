package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Region != "us-east-1" {
		t.Errorf("expected default Region='us-east-1', got %q", cfg.Region)
	}

	if cfg.TargetSamplingRate != "PT5M" {
		t.Errorf("expected default TargetSamplingRate='PT5M', got %q", cfg.TargetSamplingRate)
	}

	if cfg.TrainingDataDays != 30 {
		t.Errorf("expected default TrainingDataDays=30, got %d", cfg.TrainingDataDays)
	}

	if cfg.MetadataJobIDPrefix != "Workshop_AD_Import" {
		t.Errorf("expected default MetadataJobIDPrefix='Workshop_AD_Import', got %q", cfg.MetadataJobIDPrefix)
	}

	if cfg.DataDelayOffsetMinutes != 3 {
		t.Errorf("expected default DataDelayOffsetMinutes=3, got %d", cfg.DataDelayOffsetMinutes)
	}

	if cfg.AnomalyDurationMinutes != 60 {
		t.Errorf("expected default AnomalyDurationMinutes=60, got %d", cfg.AnomalyDurationMinutes)
	}

	if cfg.AnomalyIntervalSeconds != 10 {
		t.Errorf("expected default AnomalyIntervalSeconds=10, got %d", cfg.AnomalyIntervalSeconds)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	// Loading a non-existent file should return default config
	cfg, err := Load("/nonexistent/path/config.yaml")

	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Region != "us-east-1" {
		t.Errorf("expected default Region='us-east-1', got %q", cfg.Region)
	}

	if cfg.TrainingPollSeconds != 10 {
		t.Errorf("expected default TrainingPollSeconds=10, got %d", cfg.TrainingPollSeconds)
	}
}

func TestSave_And_Load(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	cfg := &Config{
		Region:     "eu-central-1",
		AssetID:    "asset-123",
		ModelName:  "line-1-model",
		DataBucket: "my-data-bucket",
		InputPropertyIDs: []string{
			"prop-1",
			"prop-2",
		},
	}

	err := cfg.Save(configPath)
	if err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loadedCfg.Region != cfg.Region {
		t.Errorf("Region: expected %q, got %q", cfg.Region, loadedCfg.Region)
	}

	if loadedCfg.AssetID != cfg.AssetID {
		t.Errorf("AssetID: expected %q, got %q", cfg.AssetID, loadedCfg.AssetID)
	}

	if loadedCfg.ModelName != cfg.ModelName {
		t.Errorf("ModelName: expected %q, got %q", cfg.ModelName, loadedCfg.ModelName)
	}

	if len(loadedCfg.InputPropertyIDs) != 2 || loadedCfg.InputPropertyIDs[0] != "prop-1" {
		t.Errorf("InputPropertyIDs: expected [prop-1 prop-2], got %v", loadedCfg.InputPropertyIDs)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	// A partial config file keeps its values and backfills the rest.
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `asset_id: asset-42
data_bucket: workshop-bucket
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Region != "us-east-1" {
		t.Errorf("expected default Region='us-east-1', got %q", cfg.Region)
	}

	if cfg.TargetSamplingRate != "PT5M" {
		t.Errorf("expected default TargetSamplingRate='PT5M', got %q", cfg.TargetSamplingRate)
	}

	if cfg.AssetID != "asset-42" {
		t.Errorf("expected AssetID='asset-42', got %q", cfg.AssetID)
	}

	if cfg.DataBucket != "workshop-bucket" {
		t.Errorf("expected DataBucket='workshop-bucket', got %q", cfg.DataBucket)
	}
}

func TestLoad_ZeroPollIntervals(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `training_poll_seconds: 0
cleanup_poll_seconds: -3
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.TrainingPollSeconds != 10 {
		t.Errorf("expected default TrainingPollSeconds=10 for zero value, got %d", cfg.TrainingPollSeconds)
	}

	if cfg.CleanupPollSeconds != 5 {
		t.Errorf("expected default CleanupPollSeconds=5 for negative value, got %d", cfg.CleanupPollSeconds)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `region: us-east-1
properties: [invalid yaml structure
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected error loading invalid YAML, got nil")
	}
}

func TestLoad_Properties(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `properties:
  - alias: /path/ASSET/joint1_current
    min_normal: 0.5
    max_normal: 1.0
    min_anomaly: 2.0
    max_anomaly: 4.0
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.Properties) != 1 {
		t.Fatalf("expected 1 property, got %d", len(cfg.Properties))
	}

	p := cfg.Properties[0]
	if p.Alias != "/path/ASSET/joint1_current" {
		t.Errorf("Alias: got %q", p.Alias)
	}
	if p.MinNormal != 0.5 || p.MaxNormal != 1.0 {
		t.Errorf("normal range: got [%v, %v]", p.MinNormal, p.MaxNormal)
	}
	if p.MinAnomaly != 2.0 || p.MaxAnomaly != 4.0 {
		t.Errorf("anomaly range: got [%v, %v]", p.MinAnomaly, p.MaxAnomaly)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "dir", "config.yaml")

	cfg := DefaultConfig()
	err := cfg.Save(configPath)

	if err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Fatal("directory was not created")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(10); got != 10*time.Second {
		t.Errorf("Seconds(10) = %v, want 10s", got)
	}
	if got := Seconds(0); got != 0 {
		t.Errorf("Seconds(0) = %v, want 0", got)
	}
}
