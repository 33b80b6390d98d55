package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TestimonyAdegoke/montessa-sub006/version"
)

var startedAt = time.Now()

type infoResponse struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Build     string `json:"build"`
	Commit    string `json:"git_commit,omitempty"`
	BuiltAt   string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Release   bool   `json:"is_release"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
}

// Info reports what is running and for how long.
func Info(serviceName string) gin.HandlerFunc {
	v := version.GetVersionInfo()
	base := infoResponse{
		Service:   serviceName,
		Version:   v.Version,
		Build:     v.String(),
		Commit:    v.GitCommit,
		BuiltAt:   v.BuildTime,
		GoVersion: v.GoVersion,
		Release:   v.IsRelease,
		StartedAt: startedAt.UTC().Format(time.RFC3339),
	}
	return func(c *gin.Context) {
		resp := base
		resp.Uptime = time.Since(startedAt).Round(time.Second).String()
		c.JSON(http.StatusOK, resp)
	}
}
