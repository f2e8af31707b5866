package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/charmbracelet/log"

	"pkg.jsn.cam/hotkeytimer"
)

func init() {
	http.HandleFunc("/.hotkeytimer/debug/buildinfo", func(w http.ResponseWriter, r *http.Request) {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			log.Error("can't read build info")
			http.Error(w, "no build info available", http.StatusInternalServerError)
			return
		}

		if err := json.NewEncoder(w).Encode(struct {
			BuildInfo *debug.BuildInfo `json:"build_info"`
			Version   string           `json:"version"`
		}{bi, hotkeytimer.Version}); err != nil {
			log.Error("can't encode build info", "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// VersionString describes this build for -version.
func VersionString() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Sprintf("hotkeytimer %s", hotkeytimer.Version)
	}
	return fmt.Sprintf("hotkeytimer %s (%s, %s)", hotkeytimer.Version, bi.Main.Version, bi.GoVersion)
}
