package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nvrdash/nvrdash/internal/probe"
)

// restartSystem reboots the physical host. The container runs with a
// sudo rule for exactly this command; anything beyond a reboot goes
// through the host, not the dashboard.
func (s *Server) restartSystem(c echo.Context) error {
	s.log.Warn().Str("remote", c.RealIP()).Msg("host restart requested")

	// shutdown schedules the reboot one minute out, which leaves time
	// to deliver this response before the connection dies.
	if _, err := probe.RunCommand(c.Request().Context(), 10*time.Second, "sudo", "shutdown", "-r", "+1"); err != nil {
		return NewAPIError(http.StatusServiceUnavailable, "host restart failed", err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"message": "host restart scheduled",
	})
}

// proxyBackupGet forwards a GET to the backup service, passing the
// caller's credentials through verbatim.
func (s *Server) proxyBackupGet(c echo.Context) error {
	if s.backup == nil {
		return NewAPIError(http.StatusServiceUnavailable, "backup service not configured", "")
	}

	body, err := s.backup.Get(c.Request().Context(), backupPath(c), c.Request().Header.Get("Authorization"))
	if err != nil {
		return BadGatewayError("backup service unreachable", err.Error())
	}
	return c.JSONBlob(http.StatusOK, body)
}

// proxyBackupPost forwards a POST with its JSON body.
func (s *Server) proxyBackupPost(c echo.Context) error {
	if s.backup == nil {
		return NewAPIError(http.StatusServiceUnavailable, "backup service not configured", "")
	}

	body, err := s.backup.Post(c.Request().Context(), backupPath(c), c.Request().Header.Get("Authorization"), c.Request().Body)
	if err != nil {
		return BadGatewayError("backup service unreachable", err.Error())
	}
	return c.JSONBlob(http.StatusOK, body)
}

// backupPath maps /api/backup/<rest> onto the backup API's /<rest>.
func backupPath(c echo.Context) string {
	path := strings.TrimPrefix(c.Request().URL.Path, "/api/backup")
	if path == "" {
		path = "/"
	}
	if q := c.Request().URL.RawQuery; q != "" {
		path += "?" + q
	}
	return path
}
