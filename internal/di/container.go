// Package di provides dependency injection configuration for the UTub server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/utubapp/utub-server/internal/auth"
	"github.com/utubapp/utub-server/internal/config"
	"github.com/utubapp/utub-server/internal/di/providers"
	"github.com/utubapp/utub-server/internal/logger"
	"github.com/utubapp/utub-server/internal/service"
	"github.com/utubapp/utub-server/internal/urlcheck"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideFlagStore)
	do.Provide(injector, providers.ProvideChecker)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideGate)
	do.Provide(injector, providers.ProvideUTubService)
	do.Provide(injector, providers.ProvideURLService)
	do.Provide(injector, providers.ProvideTagService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap triggers lazy initialization of every provider so that
// construction errors surface at startup rather than on first use.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.FlagStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*urlcheck.Checker](injector); err != nil {
		return err
	}

	if _, err := do.Invoke[*auth.Service](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.Gate](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.UTubService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.URLService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.TagService](injector); err != nil {
		return err
	}

	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
