package gitlab_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitlab_compare/internal/gitlab"
)

const (
	collectorTestDatasetSizeConstant = 17
	collectorTestProjectPathTemplate = "group-%d/project-%d"
)

type pagingFetcherStub struct {
	dataset    []gitlab.ProjectRecord
	failures   map[int]error
	callCount int
	seenPages []int
	seenSizes []int
}

func (fetcher *pagingFetcherStub) FetchPage(executionContext context.Context, instance gitlab.InstanceConfiguration, pageNumber int, perPage int) ([]gitlab.ProjectRecord, bool, error) {
	fetcher.callCount++
	fetcher.seenPages = append(fetcher.seenPages, pageNumber)
	fetcher.seenSizes = append(fetcher.seenSizes, perPage)

	if pageFailure, failureConfigured := fetcher.failures[pageNumber]; failureConfigured {
		return nil, false, pageFailure
	}

	startIndex := (pageNumber - 1) * perPage
	if startIndex >= len(fetcher.dataset) {
		return []gitlab.ProjectRecord{}, true, nil
	}
	endIndex := startIndex + perPage
	if endIndex > len(fetcher.dataset) {
		endIndex = len(fetcher.dataset)
	}
	page := fetcher.dataset[startIndex:endIndex]
	return page, len(page) == 0, nil
}

func buildCollectorTestDataset(datasetSize int) []gitlab.ProjectRecord {
	records := make([]gitlab.ProjectRecord, 0, datasetSize)
	for recordIndex := 0; recordIndex < datasetSize; recordIndex++ {
		records = append(records, gitlab.ProjectRecord{
			ID:                int64(recordIndex + 1),
			Name:              fmt.Sprintf("project-%d", recordIndex),
			PathWithNamespace: fmt.Sprintf(collectorTestProjectPathTemplate, recordIndex%3, recordIndex),
			WebURL:            fmt.Sprintf("https://gitlab.example.com/group-%d/project-%d", recordIndex%3, recordIndex),
			Visibility:        "internal",
			Namespace:         gitlab.NamespaceRecord{FullPath: fmt.Sprintf("group-%d", recordIndex%3)},
		})
	}
	return records
}

func TestCollectorPaginationIsLossless(testInstance *testing.T) {
	dataset := buildCollectorTestDataset(collectorTestDatasetSizeConstant)

	for _, perPage := range []int{1, 2, 3, 5, 16, 17, 18, 100} {
		testInstance.Run(fmt.Sprintf("per_page_%d", perPage), func(testInstance *testing.T) {
			fetcher := &pagingFetcherStub{dataset: dataset}
			collector, collectorError := gitlab.NewCollector(nil, fetcher, perPage)
			require.NoError(testInstance, collectorError)

			projects, collectError := collector.Collect(context.Background(), gitlab.InstanceConfiguration{Label: "gitlab1"})
			require.NoError(testInstance, collectError)

			require.Len(testInstance, projects, len(dataset))
			for projectIndex, project := range projects {
				require.Equal(testInstance, dataset[projectIndex].PathWithNamespace, project.Path)
			}

			expectedCallCount := (len(dataset)+perPage-1)/perPage + 1
			require.Equal(testInstance, expectedCallCount, fetcher.callCount)

			for pageIndex, pageNumber := range fetcher.seenPages {
				require.Equal(testInstance, pageIndex+1, pageNumber)
				require.Equal(testInstance, perPage, fetcher.seenSizes[pageIndex])
			}
		})
	}
}

func TestCollectorEmptyInstance(testInstance *testing.T) {
	fetcher := &pagingFetcherStub{dataset: nil}
	collector, collectorError := gitlab.NewCollector(nil, fetcher, 100)
	require.NoError(testInstance, collectorError)

	projects, collectError := collector.Collect(context.Background(), gitlab.InstanceConfiguration{Label: "gitlab1"})
	require.NoError(testInstance, collectError)
	require.NotNil(testInstance, projects)
	require.Empty(testInstance, projects)
	require.Equal(testInstance, 1, fetcher.callCount)
}

func TestCollectorAbortsOnFetchError(testInstance *testing.T) {
	pageFailure := &gitlab.FetchExhaustedError{Instance: "gitlab1", PageNumber: 2, Attempts: 4, Cause: errors.New("transient status 502")}
	fetcher := &pagingFetcherStub{
		dataset:  buildCollectorTestDataset(collectorTestDatasetSizeConstant),
		failures: map[int]error{2: pageFailure},
	}

	collector, collectorError := gitlab.NewCollector(nil, fetcher, 5)
	require.NoError(testInstance, collectorError)

	projects, collectError := collector.Collect(context.Background(), gitlab.InstanceConfiguration{Label: "gitlab1"})
	require.Nil(testInstance, projects)

	var exhaustedError *gitlab.FetchExhaustedError
	require.ErrorAs(testInstance, collectError, &exhaustedError)
	require.Equal(testInstance, 2, exhaustedError.PageNumber)
	require.Equal(testInstance, 2, fetcher.callCount)
}

func TestNewCollectorRejectsInvalidPageSizes(testInstance *testing.T) {
	for _, perPage := range []int{-1, 0, 101, 1000} {
		testInstance.Run(fmt.Sprintf("per_page_%d", perPage), func(testInstance *testing.T) {
			_, collectorError := gitlab.NewCollector(nil, &pagingFetcherStub{}, perPage)
			require.Error(testInstance, collectorError)
		})
	}
}

func TestNewCollectorRequiresFetcher(testInstance *testing.T) {
	_, collectorError := gitlab.NewCollector(nil, nil, 10)
	require.Error(testInstance, collectorError)
}
