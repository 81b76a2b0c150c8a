package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	integrationProjectsPathConstant    = "/api/v4/projects"
	integrationTokenHeaderNameConstant = "PRIVATE-TOKEN"
	integrationConfigFileNameConstant  = "config.yaml"
	integrationConfigContentConstant   = "common:\n  log_level: error\n"
)

type integrationProjectRecord struct {
	ID                int64                      `json:"id"`
	Name              string                     `json:"name"`
	PathWithNamespace string                     `json:"path_with_namespace"`
	WebURL            string                     `json:"web_url"`
	Visibility        string                     `json:"visibility"`
	Namespace         integrationNamespaceRecord `json:"namespace"`
}

type integrationNamespaceRecord struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	FullPath string `json:"full_path"`
}

type gitlabInstanceDouble struct {
	server       *httptest.Server
	requestCount atomic.Int64
}

// newGitLabInstanceDouble serves the provided projects over the paginated
// projects endpoint and rejects requests carrying the wrong token.
func newGitLabInstanceDouble(testInstance *testing.T, expectedToken string, projects []integrationProjectRecord, failuresBeforeSuccess int) *gitlabInstanceDouble {
	testInstance.Helper()

	double := &gitlabInstanceDouble{}
	var transientFailuresRemaining atomic.Int64
	transientFailuresRemaining.Store(int64(failuresBeforeSuccess))

	double.server = httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		double.requestCount.Add(1)

		if request.URL.Path != integrationProjectsPathConstant {
			http.NotFound(responseWriter, request)
			return
		}
		if request.Header.Get(integrationTokenHeaderNameConstant) != expectedToken {
			responseWriter.WriteHeader(http.StatusUnauthorized)
			return
		}
		if transientFailuresRemaining.Add(-1) >= 0 {
			responseWriter.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		pageNumber, pageError := strconv.Atoi(request.URL.Query().Get("page"))
		if pageError != nil || pageNumber < 1 {
			responseWriter.WriteHeader(http.StatusBadRequest)
			return
		}
		perPage, perPageError := strconv.Atoi(request.URL.Query().Get("per_page"))
		if perPageError != nil || perPage < 1 {
			responseWriter.WriteHeader(http.StatusBadRequest)
			return
		}

		startIndex := (pageNumber - 1) * perPage
		if startIndex > len(projects) {
			startIndex = len(projects)
		}
		endIndex := startIndex + perPage
		if endIndex > len(projects) {
			endIndex = len(projects)
		}

		pageRecords := projects[startIndex:endIndex]
		if pageRecords == nil {
			pageRecords = []integrationProjectRecord{}
		}

		responseWriter.Header().Set("Content-Type", "application/json")
		encodeError := json.NewEncoder(responseWriter).Encode(pageRecords)
		require.NoError(testInstance, encodeError)
	}))
	testInstance.Cleanup(double.server.Close)

	return double
}

func integrationProjects(instanceName string, paths ...string) []integrationProjectRecord {
	records := make([]integrationProjectRecord, 0, len(paths))
	for pathIndex, projectPath := range paths {
		records = append(records, integrationProjectRecord{
			ID:                int64(pathIndex + 1),
			Name:              fmt.Sprintf("%s project %d", instanceName, pathIndex+1),
			PathWithNamespace: projectPath,
			WebURL:            fmt.Sprintf("https://%s.example.com/%s", instanceName, projectPath),
			Visibility:        "private",
			Namespace:         integrationNamespaceRecord{Name: "Group", Path: "group", FullPath: "group"},
		})
	}
	return records
}

func writeIntegrationConfiguration(testInstance *testing.T) string {
	testInstance.Helper()

	configurationPath := filepath.Join(testInstance.TempDir(), integrationConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(integrationConfigContentConstant), 0o644))
	return configurationPath
}
