package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// PropertySpec describes one simulated measurement. Alias is a template
// with ASSET and LINE placeholders resolved per asset.
type PropertySpec struct {
	Alias      string
	MinNormal  float64
	MaxNormal  float64
	MinAnomaly float64
	MaxAnomaly float64
}

// SimulationSettings shapes the generated history.
type SimulationSettings struct {
	DataDir   string
	LabelsDir string

	// Window length and sample spacing of the generated history.
	Duration time.Duration
	Sampling time.Duration

	// Two labeled anomaly windows, positioned backwards from the end of
	// the window. Each lasts AnomalySamples sampling intervals.
	Anomaly1Offset time.Duration
	Anomaly2Offset time.Duration
	AnomalySamples int
}

// DefaultSimulationSettings returns the standard 30-day, 5-minute
// profile with anomalies 25 and 11 days before the end.
func DefaultSimulationSettings(dataDir, labelsDir string) SimulationSettings {
	return SimulationSettings{
		DataDir:        dataDir,
		LabelsDir:      labelsDir,
		Duration:       30 * 24 * time.Hour,
		Sampling:       5 * time.Minute,
		Anomaly1Offset: 25 * 24 * time.Hour,
		Anomaly2Offset: 11 * 24 * time.Hour,
		AnomalySamples: 24,
	}
}

const labelTimeLayout = "2006-01-02T15:04:05.000000"

// SimulationService generates historical measurement data as bulk
// import CSVs and replays a sample file as live telemetry.
type SimulationService struct {
	telemetry ports.TelemetryAPI
	sleeper   ports.Sleeper
	log       *slog.Logger

	now  func() time.Time
	rand *rand.Rand
}

// NewSimulationService creates a simulation service.
func NewSimulationService(telemetry ports.TelemetryAPI, sleeper ports.Sleeper, log *slog.Logger) *SimulationService {
	if log == nil {
		log = slog.Default()
	}
	return &SimulationService{
		telemetry: telemetry,
		sleeper:   sleeper,
		log:       log,
		now:       time.Now,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GenerateHistory writes one data CSV and one labels CSV per asset
// external id. Data rows follow the bulk import column contract; the
// first anomaly window drives the joint1 sensors, the second the joint2
// sensors.
func (s *SimulationService) GenerateHistory(externalIDs []string, specs []PropertySpec, settings SimulationSettings) error {
	if err := os.MkdirAll(settings.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(settings.LabelsDir, 0o755); err != nil {
		return fmt.Errorf("creating labels directory: %w", err)
	}
	for _, externalID := range externalIDs {
		if err := s.generateForAsset(externalID, specs, settings); err != nil {
			return err
		}
	}
	return nil
}

func (s *SimulationService) generateForAsset(externalID string, specs []PropertySpec, settings SimulationSettings) error {
	s.log.Info("generating simulated historical data", "assetExternalId", externalID)

	// Window ends at the start of the current UTC day.
	now := s.now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	toEpoch := end.Unix()
	fromEpoch := toEpoch - int64(settings.Duration.Seconds())
	sampling := int64(settings.Sampling.Seconds())

	anomalyDuration := sampling * int64(settings.AnomalySamples)
	anomaly1Start := toEpoch - int64(settings.Anomaly1Offset.Seconds())
	anomaly2Start := toEpoch - int64(settings.Anomaly2Offset.Seconds())

	if err := s.writeLabels(externalID, settings.LabelsDir, []domain.LabelWindow{
		{Start: time.Unix(anomaly1Start, 0).UTC(), End: time.Unix(anomaly1Start+anomalyDuration, 0).UTC()},
		{Start: time.Unix(anomaly2Start, 0).UTC(), End: time.Unix(anomaly2Start+anomalyDuration, 0).UTC()},
	}); err != nil {
		return err
	}

	dataPath := filepath.Join(settings.DataDir, strings.ToLower(externalID)+"_historical_data.csv")
	f, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating data file: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)

	for _, spec := range specs {
		alias := resolveAlias(spec.Alias, externalID)
		for ts := fromEpoch; ts < toEpoch; ts += sampling {
			anomalous := false
			switch {
			case ts >= anomaly1Start && ts <= anomaly1Start+anomalyDuration:
				anomalous = containsAny(spec.Alias, "joint1_current", "joint1_temperature")
			case ts >= anomaly2Start && ts <= anomaly2Start+anomalyDuration:
				anomalous = containsAny(spec.Alias, "joint2_current", "joint2_temperature")
			}
			var value float64
			if anomalous {
				value = s.uniform(spec.MinAnomaly, spec.MaxAnomaly)
			} else {
				value = s.uniform(spec.MinNormal, spec.MaxNormal)
			}
			row := []string{
				alias, "DOUBLE",
				strconv.FormatInt(ts, 10), "0", "GOOD",
				strconv.FormatFloat(value, 'f', 2, 64),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("writing data row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing data file: %w", err)
	}
	s.log.Info("data file created", "path", dataPath)
	return nil
}

func (s *SimulationService) writeLabels(externalID, labelsDir string, windows []domain.LabelWindow) error {
	path := filepath.Join(labelsDir, strings.ToLower(externalID)+"_labels.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating labels file: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	for _, win := range windows {
		s.log.Info("anomaly window", "start", win.Start, "end", win.End)
		if err := w.Write([]string{win.Start.Format(labelTimeLayout), win.End.Format(labelTimeLayout)}); err != nil {
			return fmt.Errorf("writing label row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing labels file: %w", err)
	}
	s.log.Info("labels file created", "path", path)
	return nil
}

// uniform returns a value in [min, max) rounded to two decimals.
func (s *SimulationService) uniform(min, max float64) float64 {
	v := min + s.rand.Float64()*(max-min)
	return float64(int(v*100+0.5)) / 100
}

// resolveAlias fills the ASSET and LINE placeholders of an alias
// template. The line number is taken from external ids shaped like
// Workshop_Robot_1-1.
func resolveAlias(template, externalID string) string {
	alias := strings.ReplaceAll(template, "ASSET", strings.ToLower(externalID))
	parts := strings.Split(externalID, "_")
	if len(parts) >= 3 {
		line := strings.SplitN(parts[2], "-", 2)[0]
		alias = strings.ReplaceAll(alias, "LINE", "line_"+line)
	}
	return alias
}

func containsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// liveBatchSize bounds how many aliases go into one publish call.
const liveBatchSize = 10

// ReplayLive publishes the rows of a wide sample file (time column
// followed by one column per alias) as live values, one row per
// interval, looping back to the first row at the end. Runs until the
// context is cancelled.
func (s *SimulationService) ReplayLive(ctx context.Context, dataFile string, interval time.Duration) error {
	aliases, rows, err := readWideSample(dataFile)
	if err != nil {
		return err
	}
	s.log.Info("replaying sample data", "rows", len(rows), "interval", interval)

	for i := 0; ; i = (i + 1) % len(rows) {
		now := s.now()
		values := rows[i]
		batch := make([]domain.PropertyValue, len(values))
		for j, v := range values {
			batch[j] = domain.PropertyValue{
				Alias:     aliases[j],
				Timestamp: now,
				Value:     v,
			}
		}
		if err := s.publishChunked(ctx, batch); err != nil {
			return err
		}
		s.log.Info("published data", "timestamp", now.Unix())
		if err := s.sleeper.Sleep(ctx, interval); err != nil {
			if errors.Is(err, context.Canceled) {
				s.log.Info("stopping simulation")
				return nil
			}
			return err
		}
	}
}

// AnomalySettings bounds one real-time anomaly run.
type AnomalySettings struct {
	Duration time.Duration
	Interval time.Duration
}

// SimulateAnomaly publishes one batch per interval built from the
// property specs, with the joint1 sensors drawn from their anomaly
// range and every other sensor from its normal range. Runs until the
// duration elapses or the context is cancelled.
func (s *SimulationService) SimulateAnomaly(ctx context.Context, externalID string, specs []PropertySpec, settings AnomalySettings) error {
	start := s.now()
	s.log.Info("simulating real-time anomaly data", "assetExternalId", externalID, "duration", settings.Duration)

	for {
		now := s.now()
		if now.Sub(start) >= settings.Duration {
			s.log.Info("simulation duration reached")
			return nil
		}

		batch := make([]domain.PropertyValue, 0, len(specs))
		for _, spec := range specs {
			alias := resolveAlias(spec.Alias, externalID)
			var value float64
			if containsAny(alias, "joint1_current", "joint1_temperature") {
				value = s.uniform(spec.MinAnomaly, spec.MaxAnomaly)
			} else {
				value = s.uniform(spec.MinNormal, spec.MaxNormal)
			}
			batch = append(batch, domain.PropertyValue{
				Alias:     alias,
				Timestamp: now,
				Value:     value,
			})
		}
		if err := s.publishChunked(ctx, batch); err != nil {
			return err
		}
		s.log.Info("published data", "timestamp", now.Unix())

		if err := s.sleeper.Sleep(ctx, settings.Interval); err != nil {
			if errors.Is(err, context.Canceled) {
				s.log.Info("stopping simulation")
				return nil
			}
			return err
		}
	}
}

// publishChunked publishes values in calls of at most liveBatchSize
// aliases each.
func (s *SimulationService) publishChunked(ctx context.Context, values []domain.PropertyValue) error {
	for start := 0; start < len(values); start += liveBatchSize {
		stop := start + liveBatchSize
		if stop > len(values) {
			stop = len(values)
		}
		if err := s.telemetry.PublishValues(ctx, values[start:stop]); err != nil {
			return fmt.Errorf("publishing batch: %w", err)
		}
	}
	return nil
}

// readWideSample parses a sample file whose header is a time column
// followed by alias columns.
func readWideSample(path string) ([]string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sample file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading sample file: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, errors.New("sample file has no data")
	}

	aliases := records[0][1:]
	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(aliases)+1 {
			return nil, nil, fmt.Errorf("row has %d columns, want %d", len(record), len(aliases)+1)
		}
		row := make([]float64, len(aliases))
		for i, cell := range record[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("parsing value %q: %w", cell, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return aliases, rows, nil
}
