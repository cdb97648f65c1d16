package game

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Setup is everything a binary needs before it can build a Battle.
type Setup struct {
	Config  Config
	Catalog *Catalog
	Logger  *zap.Logger
}

// LoadSetup reads the config at cfgPath, or uses the defaults when cfgPath is
// empty. The unit catalogue comes from catalogPath if set, else from the
// config's catalog key resolved against the config file's directory, else
// the built-in types.
func LoadSetup(cfgPath, catalogPath string) (Setup, error) {
	cfg := DefaultConfig()
	if cfgPath != "" {
		var err error
		if cfg, err = LoadConfig(cfgPath); err != nil {
			return Setup{}, err
		}
		if catalogPath == "" && cfg.CatalogPath != "" {
			catalogPath = cfg.CatalogPath
			if !filepath.IsAbs(catalogPath) {
				catalogPath = filepath.Join(filepath.Dir(cfgPath), catalogPath)
			}
		}
	}

	catalog := DefaultCatalog()
	if catalogPath != "" {
		var err error
		if catalog, err = LoadCatalog(catalogPath); err != nil {
			return Setup{}, err
		}
	}

	logger, err := NewCombatLogger(cfg.CombatLog)
	if err != nil {
		return Setup{}, fmt.Errorf("combat log: %w", err)
	}
	return Setup{Config: cfg, Catalog: catalog, Logger: logger}, nil
}
