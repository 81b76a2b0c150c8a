package compare

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/gitlab_compare/internal/gitlab"
)

const (
	serviceMissingCollectorErrorMessage = "comparison service requires a project collector"
	serviceMissingBuilderErrorMessage   = "comparison service requires a report builder"
	serviceMissingWriterErrorMessage    = "comparison service requires an artifact writer"
	comparisonCompletedMessageConstant  = "comparison completed"
	artifactWrittenMessageConstant      = "artifact written"
	logFieldCount1Constant              = "count1"
	logFieldCount2Constant              = "count2"
	logFieldCommonCountConstant         = "common_count"
	logFieldArtifactPathConstant        = "artifact_path"
	instanceCountConstant               = 2
)

// ProjectCollector gathers the full project list for one instance.
type ProjectCollector interface {
	Collect(executionContext context.Context, instance gitlab.InstanceConfiguration) ([]gitlab.Project, error)
}

// OutputOptions names the requested report destinations. Empty values mean
// the corresponding artifact is not requested.
type OutputOptions struct {
	CombinedJSONPath string
	CombinedCSVPath  string
	SplitJSONPrefix  string
	SplitCSVPrefix   string
}

// Artifact is one fully built report ready to be persisted.
type Artifact struct {
	Path    string
	Content []byte
}

// ReportBuilder turns a comparison result into the requested artifacts.
type ReportBuilder interface {
	BuildArtifacts(result Result, outputs OutputOptions) ([]Artifact, error)
}

// ArtifactWriter persists one fully built artifact.
type ArtifactWriter interface {
	WriteArtifact(artifactPath string, content []byte) error
}

// RunOptions describes one comparison run.
type RunOptions struct {
	Instance1 gitlab.InstanceConfiguration
	Instance2 gitlab.InstanceConfiguration
	Outputs   OutputOptions
}

// Service runs the full pipeline: collect both instances, compare, build and
// write every requested artifact.
type Service struct {
	collector      ProjectCollector
	reportBuilder  ReportBuilder
	artifactWriter ArtifactWriter
	logger         *zap.Logger
}

// NewService constructs a Service from its collaborators.
func NewService(logger *zap.Logger, collector ProjectCollector, reportBuilder ReportBuilder, artifactWriter ArtifactWriter) (*Service, error) {
	if collector == nil {
		return nil, errors.New(serviceMissingCollectorErrorMessage)
	}
	if reportBuilder == nil {
		return nil, errors.New(serviceMissingBuilderErrorMessage)
	}
	if artifactWriter == nil {
		return nil, errors.New(serviceMissingWriterErrorMessage)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		collector:      collector,
		reportBuilder:  reportBuilder,
		artifactWriter: artifactWriter,
		logger:         logger,
	}, nil
}

// Run executes one comparison. The two collections share no state and run
// concurrently; the first collection error aborts the run before any
// comparison or artifact output happens.
func (service *Service) Run(executionContext context.Context, options RunOptions) error {
	instances := [instanceCountConstant]gitlab.InstanceConfiguration{options.Instance1, options.Instance2}

	var projectLists [instanceCountConstant][]gitlab.Project
	var collectionErrors [instanceCountConstant]error

	var waitGroup sync.WaitGroup
	for instanceIndex := range instances {
		waitGroup.Add(1)
		go func(slot int) {
			defer waitGroup.Done()
			projectLists[slot], collectionErrors[slot] = service.collector.Collect(executionContext, instances[slot])
		}(instanceIndex)
	}
	waitGroup.Wait()

	for _, collectionError := range collectionErrors {
		if collectionError != nil {
			return collectionError
		}
	}

	result := Compare(projectLists[0], projectLists[1])

	service.logger.Info(
		comparisonCompletedMessageConstant,
		zap.Int(logFieldCount1Constant, result.Summary.Count1),
		zap.Int(logFieldCount2Constant, result.Summary.Count2),
		zap.Int(logFieldCommonCountConstant, result.Summary.CommonCount),
	)

	artifacts, buildError := service.reportBuilder.BuildArtifacts(result, options.Outputs)
	if buildError != nil {
		return buildError
	}

	for _, artifact := range artifacts {
		if writeError := service.artifactWriter.WriteArtifact(artifact.Path, artifact.Content); writeError != nil {
			return writeError
		}
		service.logger.Info(artifactWrittenMessageConstant, zap.String(logFieldArtifactPathConstant, artifact.Path))
	}

	return nil
}
