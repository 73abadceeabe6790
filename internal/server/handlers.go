package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/exp/slices"

	"github.com/dreamware/iconshard/internal/lookup"
	"github.com/dreamware/iconshard/internal/registry"
	"github.com/dreamware/iconshard/internal/shard"
	"github.com/dreamware/iconshard/internal/storage"
)

// GenericStatus is the body of health responses and errors.
type GenericStatus struct {
	Status  string `json:"status"`
	Daemon  string `json:"daemon"`
	Message string `json:"message,omitempty"`
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	GenericStatus
	Version     string                `json:"version,omitempty"`
	IconSets    int                   `json:"iconSets"`
	Storage     storage.Stats         `json:"storage"`
	Files       []registry.FileStatus `json:"files,omitempty"`
	FailedFiles int                   `json:"failedFiles,omitempty"`
}

const daemon = "iconshard"

func (srv *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var errorMessage string
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		errorMessage = fmt.Sprintf("%s", he.Message)
	}
	if code >= 500 {
		srv.logger.Warn("http internal error", "err", err)
	}
	if c.Response().Committed {
		return
	}
	if err := c.JSON(code, GenericStatus{Status: "error", Daemon: daemon, Message: errorMessage}); err != nil {
		srv.logger.Error("failed to write error response", "err", err)
	}
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	status := HealthStatus{
		GenericStatus: GenericStatus{Status: "ok", Daemon: daemon},
		Version:       srv.version,
		IconSets:      srv.registry.Len(),
	}
	if srv.storage != nil {
		status.Storage = srv.storage.Stats()
	}
	if srv.reloader != nil {
		status.Files = srv.reloader.Files()
		for _, file := range status.Files {
			if file.Status == registry.StatusFailed {
				status.FailedFiles++
			}
		}
	}
	return c.JSON(http.StatusOK, status)
}

func (srv *Server) HandleCollections(c echo.Context) error {
	collections := srv.registry.Collections()
	if collections == nil {
		collections = []registry.Collection{}
	}
	return c.JSON(http.StatusOK, collections)
}

func (srv *Server) iconSet(prefix string) (*shard.StoredIconSet, error) {
	set, ok := srv.registry.Get(prefix)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown icon set %q", prefix))
	}
	return set, nil
}

// HandleIcons serves GET /:prefix.json?icons=a,b,c.
func (srv *Server) HandleIcons(c echo.Context) error {
	prefix, ok := strings.CutSuffix(c.Param("file"), ".json")
	if !ok {
		return echo.ErrNotFound
	}
	set, err := srv.iconSet(prefix)
	if err != nil {
		return err
	}

	names := splitNames(c.QueryParam("icons"))
	if len(names) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing icons parameter")
	}

	key := cacheKey(set, names)
	if srv.cache != nil {
		if body, ok := srv.cache.Get(key); ok {
			responseCache.WithLabelValues("hit").Inc()
			return c.JSONBlob(http.StatusOK, body)
		}
		responseCache.WithLabelValues("miss").Inc()
	}

	result, err := lookup.GetIcons(c.Request().Context(), set, names)
	if err != nil {
		return err
	}
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}

	// Partial answers may succeed later once a chunk becomes readable again.
	if srv.cache != nil && len(result.NotFound) == 0 {
		srv.cache.Add(key, body)
	}
	return c.JSONBlob(http.StatusOK, body)
}

// HandleIcon serves GET /:prefix/:name.json and GET /:prefix/:name.svg.
func (srv *Server) HandleIcon(c echo.Context) error {
	file := c.Param("file")
	name, asSVG := strings.CutSuffix(file, ".svg")
	if !asSVG {
		var ok bool
		if name, ok = strings.CutSuffix(file, ".json"); !ok {
			return echo.ErrNotFound
		}
	}

	set, err := srv.iconSet(c.Param("prefix"))
	if err != nil {
		return err
	}

	icon, err := lookup.GetIcon(c.Request().Context(), set, name)
	if err != nil {
		return err
	}
	if icon == nil {
		srv.logger.Debug("icon not found", slog.String("prefix", set.Common.Prefix), slog.String("name", name))
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown icon %q", name))
	}

	if asSVG {
		return c.Blob(http.StatusOK, "image/svg+xml", []byte(RenderSVG(icon)))
	}
	return c.JSON(http.StatusOK, icon)
}

// splitNames parses a comma separated list, dropping empty entries.
func splitNames(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func cacheKey(set *shard.StoredIconSet, names []string) string {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return fmt.Sprintf("%s:%d:%s", set.Common.Prefix, set.Version, strings.Join(sorted, ","))
}
