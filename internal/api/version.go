package api

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// BuildInfo is stamped at link time via -ldflags.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

type versionResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// WithDefaults fills unset fields with "dev" / "unknown".
func (b BuildInfo) WithDefaults() BuildInfo {
	if b.Version == "" {
		b.Version = "dev"
	}
	if b.GitCommit == "" {
		b.GitCommit = "unknown"
	}
	if b.BuildDate == "" {
		b.BuildDate = "unknown"
	}
	return b
}

// Handler serves the build metadata as JSON.
func (b BuildInfo) Handler() http.Handler {
	info := b.WithDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(versionResponse{
			Version:   info.Version,
			GitCommit: info.GitCommit,
			BuildDate: info.BuildDate,
			GoVersion: runtime.Version(),
		})
	})
}
