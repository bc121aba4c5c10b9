package fov

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/evas-ssec/shis2mirto/internal/shis"
	"github.com/evas-ssec/shis2mirto/pkg/logger"
)

// Service converts Scanning HIS granules into FOV subset products.
type Service struct {
	log    *logger.Logger
	schema shis.Schema
	layout Layout
	match  MatchOptions
}

// NewService wires a converter with the granule schema, the output
// layout, and the channel matching options to use for every request.
func NewService(log *logger.Logger, schema shis.Schema, layout Layout, match MatchOptions) *Service {
	return &Service{
		log:    log.Named("fov"),
		schema: schema,
		layout: layout,
		match:  match,
	}
}

// ConvertRequest describes one granule conversion.
type ConvertRequest struct {
	ScanPath     string
	ChannelsPath string
	ChannelsVar  string
	OutputDir    string
	CenterAngle  float64
	AngleRange   float64
	RunID        string
	History      string
}

// ConvertResult reports what Convert wrote.
type ConvertResult struct {
	Path         string
	Observations int
	Selected     int
	Channels     int
	SelChannels  int
}

// Convert reads the granule and the desired channel list, keeps the
// observations inside the angle window and the channels nearest each
// desired wavenumber, and writes the subset product into OutputDir.
// An empty angle window still produces a structurally complete file.
func (s *Service) Convert(req ConvertRequest) (*ConvertResult, error) {
	start := time.Now()

	scan, err := shis.ReadScan(req.ScanPath, s.schema)
	if err != nil {
		return nil, fmt.Errorf("reading scan: %w", err)
	}
	s.log.Info("scan loaded",
		logger.String("path", req.ScanPath),
		logger.Int("observations", scan.Observations()),
		logger.Int("channels", scan.Channels()))

	desired, err := LoadDesired(req.ChannelsPath, req.ChannelsVar)
	if err != nil {
		return nil, fmt.Errorf("reading channel list: %w", err)
	}

	channels, err := MatchChannels(scan.Wavenumber, desired, s.match)
	if err != nil {
		return nil, fmt.Errorf("matching channels: %w", err)
	}
	s.log.Debug("channels matched",
		logger.Int("desired", len(desired)),
		logger.Int("matched", len(channels)))

	mask := AngleMask(scan.FOVAngle, req.CenterAngle, req.AngleRange)
	selected := CountSelected(mask)
	if selected == 0 {
		s.log.Warn("no observations inside angle window",
			logger.Float64("center", req.CenterAngle),
			logger.Float64("range", req.AngleRange))
	}

	product := Assemble(scan, mask, channels)

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	meta := Metadata{
		RunID:   runID,
		History: req.History,
		Source:  filepath.Base(req.ScanPath),
	}

	path := filepath.Join(req.OutputDir, s.layout.FileName)
	if err := product.WriteFile(path, s.layout, meta); err != nil {
		return nil, fmt.Errorf("writing product: %w", err)
	}

	s.log.Info("product written",
		logger.String("path", path),
		logger.Int("observations", product.Observations()),
		logger.Int("selected_channels", len(channels)),
		logger.Duration("elapsed", time.Since(start)))

	return &ConvertResult{
		Path:         path,
		Observations: product.Observations(),
		Selected:     selected,
		Channels:     scan.Channels(),
		SelChannels:  len(channels),
	}, nil
}
