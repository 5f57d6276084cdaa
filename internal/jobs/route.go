package jobs

import (
	"strings"
)

// ParseRoute extracts the job ID from a URL path like /api/generate/{id}.
// apiPrefix should be like "/api/generate/", idPrefix should be like "gen-".
// Returns the normalized job ID, or ok=false if the path is empty.
func ParseRoute(path, apiPrefix, idPrefix string) (jobID string, ok bool) {
	rest := strings.TrimPrefix(path, apiPrefix)
	jobID = strings.TrimSuffix(rest, "/")
	if jobID == "" || strings.Contains(jobID, "/") {
		return "", false
	}
	if !strings.HasPrefix(jobID, idPrefix) {
		jobID = idPrefix + jobID
	}
	return jobID, true
}
