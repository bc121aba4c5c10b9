package firstguess

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/evas-ssec/shis2mirto/internal/fov"
	"github.com/evas-ssec/shis2mirto/internal/sonde"
	"github.com/evas-ssec/shis2mirto/pkg/logger"
)

// Service drives the first-guess path: FOV product in, narrated
// profiles from the radiosonde collaborator, first-guess product out.
type Service struct {
	log       *logger.Logger
	fovLayout fov.Layout
	layout    Layout
	narrator  sonde.Narrator
}

// NewService wires the first-guess builder. fovLayout names the
// variables to read back from the FOV product.
func NewService(log *logger.Logger, fovLayout fov.Layout, layout Layout, narrator sonde.Narrator) *Service {
	return &Service{
		log:       log.Named("firstguess"),
		fovLayout: fovLayout,
		layout:    layout,
		narrator:  narrator,
	}
}

// Request describes one first-guess run.
type Request struct {
	FovPath    string
	LevelsPath string
	LevelsVar  string
	OutputDir  string
	RunID      string
	History    string
}

// Create collects a profile for every observation in the FOV product
// and writes the first-guess product into OutputDir. A failure anywhere
// leaves the FOV product untouched and writes nothing.
func (s *Service) Create(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	levels, err := LoadPressureLevels(req.LevelsPath, req.LevelsVar)
	if err != nil {
		return "", fmt.Errorf("reading pressure levels: %w", err)
	}
	points, err := ReadPoints(req.FovPath, s.fovLayout)
	if err != nil {
		return "", fmt.Errorf("reading observation points: %w", err)
	}
	s.log.Info("collecting profiles",
		logger.String("fov", req.FovPath),
		logger.Int("points", len(points)),
		logger.Int("levels", len(levels)))

	profiles, err := s.narrator.Profiles(ctx, points, levels)
	if err != nil {
		return "", fmt.Errorf("collecting profiles: %w", err)
	}
	if len(profiles) != len(points) {
		return "", fmt.Errorf("%w: got %d profiles for %d points",
			sonde.ErrProfileShortfall, len(profiles), len(points))
	}

	product, err := AssembleStates(profiles, levels)
	if err != nil {
		return "", fmt.Errorf("assembling state vectors: %w", err)
	}

	path := filepath.Join(req.OutputDir, s.layout.FileName)
	meta := Metadata{
		RunID:   req.RunID,
		History: req.History,
		Source:  filepath.Base(req.FovPath),
	}
	if err := product.WriteFile(path, s.layout, meta); err != nil {
		return "", fmt.Errorf("writing product: %w", err)
	}

	s.log.Info("product written",
		logger.String("path", path),
		logger.Int("observations", product.Observations()),
		logger.Duration("elapsed", time.Since(start)))
	return path, nil
}
