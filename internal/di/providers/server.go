package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/utubapp/utub-server/internal/api"
	"github.com/utubapp/utub-server/internal/auth"
	"github.com/utubapp/utub-server/internal/config"
	"github.com/utubapp/utub-server/internal/logger"
	"github.com/utubapp/utub-server/internal/service"
	"github.com/utubapp/utub-server/internal/urlcheck"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	sessions := do.MustInvoke[*auth.Service](i)
	utubService := do.MustInvoke[*service.UTubService](i)
	urlService := do.MustInvoke[*service.URLService](i)
	tagService := do.MustInvoke[*service.TagService](i)

	// Resolving the checker here keeps it alive for the server's lifetime.
	_ = do.MustInvoke[*urlcheck.Checker](i)

	handler := api.NewServer(sessions, utubService, urlService, tagService, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
