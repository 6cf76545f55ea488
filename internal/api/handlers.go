package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nvrdash/nvrdash/models"
)

// getHardware answers the cached hardware profile. Resolution never
// faults; unresolvable facts arrive as their absent values.
func (s *Server) getHardware(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"profile":     s.resolver.Hardware(ctx),
		"accelerator": s.resolver.Accelerator(ctx),
	})
}

// getStats answers the aggregated dashboard snapshot.
func (s *Server) getStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.aggregator.Snapshot(c.Request().Context()))
}

// getNetwork answers the resolved host network identity. A host where
// every strategy failed still answers 200 with unknown fields.
func (s *Server) getNetwork(c echo.Context) error {
	return c.JSON(http.StatusOK, s.resolver.Network(c.Request().Context()))
}

// getStorage enumerates block devices fresh on every call.
func (s *Server) getStorage(c echo.Context) error {
	devices, err := s.resolver.Storage(c.Request().Context())
	if err != nil {
		return InternalError("storage enumeration failed", err.Error())
	}
	if devices == nil {
		devices = []models.StorageDevice{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"devices": devices})
}

// getIdentity answers the process's own container identity. A failed
// resolution is reported in the body and retried on the next call; it
// is never cached.
func (s *Server) getIdentity(c echo.Context) error {
	identity, err := s.resolver.Identity(c.Request().Context())
	if err != nil {
		s.log.Warn().Err(err).Msg("container identity unresolved")
		return c.JSON(http.StatusOK, map[string]interface{}{
			"resolved": false,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"resolved": true,
		"identity": identity,
	})
}
