package providers

import (
	"github.com/samber/do/v2"

	"github.com/utubapp/utub-server/internal/auth"
	"github.com/utubapp/utub-server/internal/logger"
	"github.com/utubapp/utub-server/internal/service"
	"github.com/utubapp/utub-server/internal/urlcheck"
)

// ProvideSessionService provides the session resolver.
func ProvideSessionService(i do.Injector) (*auth.Service, error) {
	st := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return auth.NewService(st.Store, log.Logger), nil
}

// ProvideGate provides the authorization gate.
func ProvideGate(i do.Injector) (*service.Gate, error) {
	st := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewGate(st.Store, log.Logger), nil
}

// ProvideUTubService provides the UTub lifecycle service.
func ProvideUTubService(i do.Injector) (*service.UTubService, error) {
	st := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewUTubService(st.Store, log.Logger), nil
}

// ProvideURLService provides the URL engine.
func ProvideURLService(i do.Injector) (*service.URLService, error) {
	st := do.MustInvoke[*StoreHandle](i)
	checker := do.MustInvoke[*urlcheck.Checker](i)
	gate := do.MustInvoke[*service.Gate](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewURLService(st.Store, checker, gate, log.Logger), nil
}

// ProvideTagService provides the tag engine.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	st := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewTagService(st.Store, log.Logger), nil
}
