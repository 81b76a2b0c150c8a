package gitlab

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	firstPageNumberConstant             = 1
	collectorMissingFetcherErrorMessage = "collector requires a page fetcher"
	invalidPerPageTemplateConstant      = "per_page must be between 1 and %d, got %d"
	pageCollectedMessageConstant        = "page collected"
	collectionFinishedMessageConstant   = "project collection finished"
	logFieldCollectedConstant           = "collected"
)

// ProjectPageFetcher yields one page of raw project records at a time.
type ProjectPageFetcher interface {
	FetchPage(executionContext context.Context, instance InstanceConfiguration, pageNumber int, perPage int) ([]ProjectRecord, bool, error)
}

// collectionState tracks the sequential pagination loop for one instance.
type collectionState struct {
	instance       InstanceConfiguration
	nextPageNumber int
	collected      []Project
}

// Collector drains a page fetcher until the terminal empty page, normalizing
// records in API return order. Any fetch error aborts the run for the
// instance; a truncated list is never returned.
type Collector struct {
	fetcher ProjectPageFetcher
	logger  *zap.Logger
	perPage int
}

// NewCollector constructs a Collector. Page sizes outside [1, MaximumPerPage]
// are rejected here, before any network traffic.
func NewCollector(logger *zap.Logger, fetcher ProjectPageFetcher, perPage int) (*Collector, error) {
	if fetcher == nil {
		return nil, errors.New(collectorMissingFetcherErrorMessage)
	}
	if perPage < 1 || perPage > MaximumPerPage {
		return nil, fmt.Errorf(invalidPerPageTemplateConstant, MaximumPerPage, perPage)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{fetcher: fetcher, logger: logger, perPage: perPage}, nil
}

// Collect accumulates every project the instance exposes to the configured
// token. Pages are fetched strictly sequentially starting at page one.
func (collector *Collector) Collect(executionContext context.Context, instance InstanceConfiguration) ([]Project, error) {
	state := collectionState{
		instance:       instance,
		nextPageNumber: firstPageNumberConstant,
		collected:      make([]Project, 0),
	}

	for {
		records, terminalPage, fetchError := collector.fetcher.FetchPage(executionContext, state.instance, state.nextPageNumber, collector.perPage)
		if fetchError != nil {
			return nil, fetchError
		}
		if terminalPage {
			break
		}

		for _, record := range records {
			state.collected = append(state.collected, NormalizeProject(record))
		}

		collector.logger.Info(
			pageCollectedMessageConstant,
			zap.String(logFieldInstanceConstant, instance.Label),
			zap.Int(logFieldPageConstant, state.nextPageNumber),
			zap.Int(logFieldCollectedConstant, len(state.collected)),
		)

		state.nextPageNumber++
	}

	collector.logger.Info(
		collectionFinishedMessageConstant,
		zap.String(logFieldInstanceConstant, instance.Label),
		zap.Int(logFieldCollectedConstant, len(state.collected)),
	)

	return state.collected, nil
}
