package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/evas-ssec/shis2mirto/internal/config"
	"github.com/evas-ssec/shis2mirto/internal/firstguess"
	"github.com/evas-ssec/shis2mirto/internal/fov"
	"github.com/evas-ssec/shis2mirto/internal/sonde"
	"github.com/evas-ssec/shis2mirto/internal/storage/sqlite"
	"github.com/evas-ssec/shis2mirto/pkg/logger"
)

var cmdCreateFg = &Command{
	UsageLine: "create_fg_file -fov fov.nc -plevels plevels.nc [-output dir]",
	Short:     "build a first-guess atmospheric state for the Mirto retrieval",
	Long: `
Create_fg_file reads the observation points of a field-of-view product,
asks the radiosonde narrator service for an atmospheric profile at each
point, and writes the first-guess state product to firstguess.nc in the
output directory.

The plevels file is a NetCDF file holding the pressure levels of the
retrieval grid; the variable name is taken from the configuration
(selection.plevels_variable, "plevels" by default).

The narrator service endpoint comes from the configuration
(sonde.base_url) and must be set for this command.
`,
}

var (
	fgFovPath string
	fgPlevels string
	fgOutput  string
)

func init() {
	cmdCreateFg.Run = runCreateFg // break init cycle

	cmdCreateFg.Flag.StringVar(&fgFovPath, "fov", "", "field-of-view product to read points from")
	cmdCreateFg.Flag.StringVar(&fgPlevels, "plevels", "", "NetCDF file naming the retrieval pressure levels")
	cmdCreateFg.Flag.StringVar(&fgOutput, "output", "", "output directory (default from configuration)")
}

func runCreateFg(cmd *Command, args []string) {
	if fgFovPath == "" || fgPlevels == "" {
		fmt.Fprintf(os.Stderr, "shis2mirto: create_fg_file requires -fov and -plevels\nRun 'shis2mirto help create_fg_file' for usage.\n")
		setExitStatus(2)
		return
	}
	if cfg.Sonde.BaseURL == "" {
		fmt.Fprintf(os.Stderr, "shis2mirto: create_fg_file requires sonde.base_url in the configuration\n")
		setExitStatus(2)
		return
	}

	outDir := fgOutput
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	var store *sqlite.ProfileStore
	if cfg.Sonde.CacheDir != "" {
		cacheDir := config.CleanPath(cfg.Sonde.CacheDir)
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			log.Error("creating cache directory", logger.Error(err))
			setExitStatus(1)
			return
		}
		var err error
		store, err = sqlite.NewProfileStore(filepath.Join(cacheDir, "profiles.db"), log)
		if err != nil {
			log.Error("opening profile cache", logger.Error(err))
			setExitStatus(1)
			return
		}
		defer store.Close()
	}

	narrator := sonde.NewClient(sonde.Config{
		BaseURL:               cfg.Sonde.BaseURL,
		RequestTimeoutSeconds: cfg.Sonde.RequestTimeoutSeconds,
		MaxRetries:            cfg.Sonde.MaxRetries,
	}, store, log)

	svc := firstguess.NewService(log, fov.DefaultLayout(), firstguess.DefaultLayout(), narrator)
	path, err := svc.Create(context.Background(), firstguess.Request{
		FovPath:    config.CleanPath(fgFovPath),
		LevelsPath: config.CleanPath(fgPlevels),
		LevelsVar:  cfg.Selection.PlevelsVariable,
		OutputDir:  config.CleanPath(outDir),
		RunID:      uuid.NewString(),
		History:    historyLine(),
	})
	if err != nil {
		log.Error("first-guess build failed", logger.Error(err))
		setExitStatus(1)
		return
	}

	log.Info("done", logger.String("path", path))
}
