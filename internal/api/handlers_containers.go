package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// containerSummary is a trimmed container listing entry.
type containerSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	State  string `json:"state"`
	Status string `json:"status"`
}

// listContainers lists running containers.
func (s *Server) listContainers(c echo.Context) error {
	if s.docker == nil {
		return NewAPIError(http.StatusServiceUnavailable, "container runtime unavailable", "")
	}

	list, err := s.docker.RunningContainers(c.Request().Context())
	if err != nil {
		return NewAPIError(http.StatusServiceUnavailable, "container runtime unavailable", err.Error())
	}

	out := make([]containerSummary, 0, len(list))
	for _, cont := range list {
		name := cont.ID
		if len(cont.Names) > 0 {
			name = strings.TrimPrefix(cont.Names[0], "/")
		}
		out = append(out, containerSummary{
			ID:     cont.ID,
			Name:   name,
			Image:  cont.Image,
			State:  cont.State,
			Status: cont.Status,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"containers": out})
}

// getContainerLogs returns the tail of a container's combined output.
func (s *Server) getContainerLogs(c echo.Context) error {
	if s.docker == nil {
		return NewAPIError(http.StatusServiceUnavailable, "container runtime unavailable", "")
	}

	name := c.Param("name")
	if name == "" {
		return BadRequestError("container name is required", "")
	}

	tail := c.QueryParam("lines")
	if tail == "" {
		tail = "100"
	} else if n, err := strconv.Atoi(tail); err != nil || n < 1 || n > 5000 {
		return BadRequestError("invalid lines parameter", "lines must be an integer between 1 and 5000")
	}

	logs, err := s.docker.Logs(c.Request().Context(), name, tail)
	if err != nil {
		return NewAPIError(http.StatusServiceUnavailable, "container logs unavailable", err.Error())
	}
	return c.String(http.StatusOK, logs)
}

// Container lifecycle control is restricted to the monitored NVR
// service. The dashboard manages one appliance service, not arbitrary
// containers.
func (s *Server) controlContainer(c echo.Context, action func(name string) error) error {
	if s.docker == nil {
		return NewAPIError(http.StatusServiceUnavailable, "container runtime unavailable", "")
	}

	name := c.Param("name")
	if name != s.config.Docker.ServiceName {
		return NewAPIError(http.StatusForbidden, "container not managed", "only the monitored NVR service can be controlled")
	}

	if err := action(name); err != nil {
		return NewAPIError(http.StatusServiceUnavailable, "container control failed", err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "container": name})
}

func (s *Server) startContainer(c echo.Context) error {
	return s.controlContainer(c, func(name string) error {
		return s.docker.Start(c.Request().Context(), name)
	})
}

func (s *Server) stopContainer(c echo.Context) error {
	return s.controlContainer(c, func(name string) error {
		return s.docker.Stop(c.Request().Context(), name)
	})
}

func (s *Server) restartContainer(c echo.Context) error {
	return s.controlContainer(c, func(name string) error {
		return s.docker.Restart(c.Request().Context(), name)
	})
}
