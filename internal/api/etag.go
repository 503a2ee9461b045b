package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// weakETag returns a weak validator for a rendered body.
func weakETag(body []byte) string {
	return `W/"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
}

// noneMatch reports whether the If-None-Match header fails to match etag,
// i.e. the client copy is stale. Weak comparison is used.
func noneMatch(header, etag string) bool {
	if header == "" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return false
		}
	}
	return true
}

// writeCached writes a rendered body with an ETag, answering 304 when the
// client already holds it.
func writeCached(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	etag := weakETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if !noneMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
