package compare

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitlab_compare/internal/compare"
	"github.com/temirov/gitlab_compare/internal/gitlab"
	"github.com/temirov/gitlab_compare/internal/report"
)

const (
	commandNameConstant             = "compare"
	commandShortDescriptionConstant = "List and compare projects across two GitLab instances"
	commandLongDescriptionConstant  = "compare enumerates every project both configured GitLab instances expose to their tokens, intersects them by namespace-qualified path, and writes JSON and/or CSV report files."

	flagURL1Name         = "url1"
	flagURL1Description  = "Base URL of GitLab instance 1 (or set GITLAB_URL_1)."
	flagToken1Name       = "token1"
	flagToken1Desc       = "Private token for GitLab instance 1 (or set GITLAB_TOKEN_1)."
	flagURL2Name         = "url2"
	flagURL2Description  = "Base URL of GitLab instance 2 (or set GITLAB_URL_2)."
	flagToken2Name       = "token2"
	flagToken2Desc       = "Private token for GitLab instance 2 (or set GITLAB_TOKEN_2)."
	flagNoVerifySSLName  = "no-verify-ssl"
	flagNoVerifySSLDesc  = "Disable TLS certificate verification (use with caution)."
	flagPerPageName      = "per-page"
	flagPerPageDesc      = "Projects requested per page (1-100)."
	flagMaxRetriesName   = "max-retries"
	flagMaxRetriesDesc   = "Retries per page after a transient remote failure."
	flagRetryBackoffName = "retry-backoff"
	flagRetryBackoffDesc = "Exponential backoff base in seconds between retries."
	flagOutJSONName      = "out-json"
	flagOutJSONDesc      = "File for the combined JSON report."
	flagOutCSVName       = "out-csv"
	flagOutCSVDesc       = "File for the combined CSV report."
	flagJSONPrefixName   = "json-prefix"
	flagJSONPrefixDesc   = "Prefix for split JSON files: <prefix>_gitlab1.json, <prefix>_gitlab2.json, <prefix>_common.json."
	flagCSVPrefixName    = "csv-prefix"
	flagCSVPrefixDesc    = "Prefix for split CSV files: <prefix>_gitlab1.csv, <prefix>_gitlab2.csv, <prefix>_common.csv."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the persisted compare configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the compare cobra command with configurable
// dependencies. Nil collaborators resolve to production implementations.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Collector             compare.ProjectCollector
	ReportBuilder         compare.ReportBuilder
	ArtifactWriter        compare.ArtifactWriter
	HTTPClient            gitlab.HTTPClient
	Sleeper               gitlab.Sleeper
	EnvironmentLookup     EnvironmentLookup
}

// Build constructs the cobra command for the comparison workflow.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagURL1Name, "", flagURL1Description)
	command.Flags().String(flagToken1Name, "", flagToken1Desc)
	command.Flags().String(flagURL2Name, "", flagURL2Description)
	command.Flags().String(flagToken2Name, "", flagToken2Desc)
	command.Flags().Bool(flagNoVerifySSLName, false, flagNoVerifySSLDesc)
	command.Flags().Int(flagPerPageName, defaultPerPageConstant, flagPerPageDesc)
	command.Flags().Int(flagMaxRetriesName, defaultMaxRetriesConstant, flagMaxRetriesDesc)
	command.Flags().Float64(flagRetryBackoffName, defaultRetryBackoffConstant, flagRetryBackoffDesc)
	command.Flags().String(flagOutJSONName, "", flagOutJSONDesc)
	command.Flags().String(flagOutCSVName, "", flagOutCSVDesc)
	command.Flags().String(flagJSONPrefixName, "", flagJSONPrefixDesc)
	command.Flags().String(flagCSVPrefixName, "", flagCSVPrefixDesc)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()

	collector, collectorError := builder.resolveCollector(logger, options)
	if collectorError != nil {
		return collectorError
	}

	service, serviceError := compare.NewService(logger, collector, builder.resolveReportBuilder(), builder.resolveArtifactWriter())
	if serviceError != nil {
		return serviceError
	}

	runOptions := compare.RunOptions{
		Instance1: options.Instance1,
		Instance2: options.Instance2,
		Outputs:   options.Outputs,
	}

	return service.Run(command.Context(), runOptions)
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (CommandOptions, error) {
	configuration := builder.resolveConfiguration()
	flags := command.Flags()

	if flags.Changed(flagURL1Name) {
		configuration.URL1, _ = flags.GetString(flagURL1Name)
	}
	if flags.Changed(flagToken1Name) {
		configuration.Token1, _ = flags.GetString(flagToken1Name)
	}
	if flags.Changed(flagURL2Name) {
		configuration.URL2, _ = flags.GetString(flagURL2Name)
	}
	if flags.Changed(flagToken2Name) {
		configuration.Token2, _ = flags.GetString(flagToken2Name)
	}
	if flags.Changed(flagNoVerifySSLName) {
		noVerify, _ := flags.GetBool(flagNoVerifySSLName)
		configuration.VerifySSL = !noVerify
	}
	if flags.Changed(flagPerPageName) {
		configuration.PerPage, _ = flags.GetInt(flagPerPageName)
	}
	if flags.Changed(flagMaxRetriesName) {
		configuration.MaxRetries, _ = flags.GetInt(flagMaxRetriesName)
	}
	if flags.Changed(flagRetryBackoffName) {
		configuration.RetryBackoff, _ = flags.GetFloat64(flagRetryBackoffName)
	}
	if flags.Changed(flagOutJSONName) {
		configuration.OutJSON, _ = flags.GetString(flagOutJSONName)
	}
	if flags.Changed(flagOutCSVName) {
		configuration.OutCSV, _ = flags.GetString(flagOutCSVName)
	}
	if flags.Changed(flagJSONPrefixName) {
		configuration.JSONPrefix, _ = flags.GetString(flagJSONPrefixName)
	}
	if flags.Changed(flagCSVPrefixName) {
		configuration.CSVPrefix, _ = flags.GetString(flagCSVPrefixName)
	}

	return configuration.resolveOptions(builder.resolveEnvironmentLookup())
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveCollector(logger *zap.Logger, options CommandOptions) (compare.ProjectCollector, error) {
	if builder.Collector != nil {
		return builder.Collector, nil
	}

	httpClient := builder.HTTPClient
	if httpClient == nil {
		httpClient = gitlab.NewInstanceHTTPClient(options.Instance1.VerifySSL)
	}

	fetcher, fetcherError := gitlab.NewPageFetcher(logger, httpClient, builder.Sleeper, options.RetryPolicy)
	if fetcherError != nil {
		return nil, fetcherError
	}

	return gitlab.NewCollector(logger, fetcher, options.PerPage)
}

func (builder *CommandBuilder) resolveReportBuilder() compare.ReportBuilder {
	if builder.ReportBuilder != nil {
		return builder.ReportBuilder
	}
	return report.Builder{}
}

func (builder *CommandBuilder) resolveArtifactWriter() compare.ArtifactWriter {
	if builder.ArtifactWriter != nil {
		return builder.ArtifactWriter
	}
	return report.FilesystemArtifactWriter{}
}

func (builder *CommandBuilder) resolveEnvironmentLookup() EnvironmentLookup {
	if builder.EnvironmentLookup != nil {
		return builder.EnvironmentLookup
	}
	return os.Getenv
}
