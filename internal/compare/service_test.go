package compare_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitlab_compare/internal/compare"
	"github.com/temirov/gitlab_compare/internal/gitlab"
)

type stubCollector struct {
	listsByLabel  map[string][]gitlab.Project
	errorsByLabel map[string]error
}

func (collector stubCollector) Collect(executionContext context.Context, instance gitlab.InstanceConfiguration) ([]gitlab.Project, error) {
	if collectionError, failureConfigured := collector.errorsByLabel[instance.Label]; failureConfigured {
		return nil, collectionError
	}
	return collector.listsByLabel[instance.Label], nil
}

type recordingReportBuilder struct {
	artifacts  []compare.Artifact
	buildError error
	seenResult compare.Result
}

func (builder *recordingReportBuilder) BuildArtifacts(result compare.Result, outputs compare.OutputOptions) ([]compare.Artifact, error) {
	builder.seenResult = result
	if builder.buildError != nil {
		return nil, builder.buildError
	}
	return builder.artifacts, nil
}

type recordingArtifactWriter struct {
	writtenPaths []string
	writeError   error
}

func (writer *recordingArtifactWriter) WriteArtifact(artifactPath string, content []byte) error {
	if writer.writeError != nil {
		return writer.writeError
	}
	writer.writtenPaths = append(writer.writtenPaths, artifactPath)
	return nil
}

func serviceRunOptions() compare.RunOptions {
	return compare.RunOptions{
		Instance1: gitlab.InstanceConfiguration{Label: "gitlab1", BaseURL: "https://one.example.com", Token: "token-1"},
		Instance2: gitlab.InstanceConfiguration{Label: "gitlab2", BaseURL: "https://two.example.com", Token: "token-2"},
		Outputs:   compare.OutputOptions{CombinedJSONPath: "reports/combined.json"},
	}
}

func TestServiceRunWritesEveryArtifact(testInstance *testing.T) {
	collector := stubCollector{
		listsByLabel: map[string][]gitlab.Project{
			"gitlab1": {comparatorProject(1, "grupo-a/proj-a")},
			"gitlab2": {comparatorProject(2, "grupo-a/proj-a")},
		},
	}
	builder := &recordingReportBuilder{artifacts: []compare.Artifact{
		{Path: "reports/combined.json", Content: []byte("{}")},
		{Path: "reports/relatorio_common.csv", Content: []byte("path\n")},
	}}
	writer := &recordingArtifactWriter{}

	service, serviceError := compare.NewService(nil, collector, builder, writer)
	require.NoError(testInstance, serviceError)

	runError := service.Run(context.Background(), serviceRunOptions())
	require.NoError(testInstance, runError)

	require.Equal(testInstance, []string{"reports/combined.json", "reports/relatorio_common.csv"}, writer.writtenPaths)
	require.Equal(testInstance, 1, builder.seenResult.Summary.CommonCount)
	require.Equal(testInstance, int64(1), builder.seenResult.Common[0].Instance1.ID)
	require.Equal(testInstance, int64(2), builder.seenResult.Common[0].Instance2.ID)
}

func TestServiceRunAbortsWhenCollectionFails(testInstance *testing.T) {
	expectedError := &gitlab.FetchExhaustedError{Instance: "gitlab2", PageNumber: 3, Attempts: 4, Cause: errors.New("transient status 503")}
	collector := stubCollector{
		listsByLabel: map[string][]gitlab.Project{
			"gitlab1": {comparatorProject(1, "grupo-a/proj-a")},
		},
		errorsByLabel: map[string]error{"gitlab2": expectedError},
	}
	builder := &recordingReportBuilder{}
	writer := &recordingArtifactWriter{}

	service, serviceError := compare.NewService(nil, collector, builder, writer)
	require.NoError(testInstance, serviceError)

	runError := service.Run(context.Background(), serviceRunOptions())

	var exhaustedError *gitlab.FetchExhaustedError
	require.ErrorAs(testInstance, runError, &exhaustedError)
	require.Empty(testInstance, writer.writtenPaths)
	require.Empty(testInstance, builder.seenResult.Common)
}

func TestServiceRunSurfacesWriterFailure(testInstance *testing.T) {
	collector := stubCollector{listsByLabel: map[string][]gitlab.Project{}}
	builder := &recordingReportBuilder{artifacts: []compare.Artifact{{Path: "reports/combined.json", Content: []byte("{}")}}}
	writer := &recordingArtifactWriter{writeError: errors.New("disk full")}

	service, serviceError := compare.NewService(nil, collector, builder, writer)
	require.NoError(testInstance, serviceError)

	runError := service.Run(context.Background(), serviceRunOptions())
	require.Error(testInstance, runError)
}

func TestNewServiceRequiresCollaborators(testInstance *testing.T) {
	collector := stubCollector{}
	builder := &recordingReportBuilder{}
	writer := &recordingArtifactWriter{}

	_, missingCollectorError := compare.NewService(nil, nil, builder, writer)
	require.Error(testInstance, missingCollectorError)

	_, missingBuilderError := compare.NewService(nil, collector, nil, writer)
	require.Error(testInstance, missingBuilderError)

	_, missingWriterError := compare.NewService(nil, collector, builder, nil)
	require.Error(testInstance, missingWriterError)
}
