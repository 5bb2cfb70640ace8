package providers

import (
	"github.com/samber/do/v2"

	"github.com/utubapp/utub-server/internal/config"
	"github.com/utubapp/utub-server/internal/logger"
	"github.com/utubapp/utub-server/internal/store"
	"github.com/utubapp/utub-server/internal/store/sqlite"
	"github.com/utubapp/utub-server/internal/urlcheck"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the relational store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Database.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Database.Path)

	return &StoreHandle{Store: db}, nil
}

// FlagStoreHandle wraps the flag cache with shutdown capability.
type FlagStoreHandle struct {
	*urlcheck.FlagStore
}

// Shutdown implements do.Shutdownable.
func (h *FlagStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideFlagStore provides the shared rate-limit flag cache.
func ProvideFlagStore(i do.Injector) (*FlagStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	flags, err := urlcheck.OpenFlagStore(cfg.Database.CachePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Flag cache initialized", "path", cfg.Database.CachePath)

	return &FlagStoreHandle{FlagStore: flags}, nil
}

// ProvideChecker provides the URL liveness checker.
func ProvideChecker(i do.Injector) (*urlcheck.Checker, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	flags := do.MustInvoke[*FlagStoreHandle](i)

	return urlcheck.New(urlcheck.Config{
		ProbeTimeout:    cfg.URLCheck.ProbeTimeout,
		WaybackBackoff:  cfg.URLCheck.WaybackBackoff,
		ProbesPerSecond: cfg.URLCheck.ProbesPerSecond,
	}, flags.FlagStore, log.Logger), nil
}
