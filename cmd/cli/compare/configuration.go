package compare

import (
	"fmt"
	"strings"

	"github.com/temirov/gitlab_compare/internal/compare"
	"github.com/temirov/gitlab_compare/internal/gitlab"
)

const (
	configurationURL1KeyConstant         = "url1"
	configurationToken1KeyConstant       = "token1"
	configurationURL2KeyConstant         = "url2"
	configurationToken2KeyConstant       = "token2"
	configurationVerifySSLKeyConstant    = "verify_ssl"
	configurationPerPageKeyConstant      = "per_page"
	configurationMaxRetriesKeyConstant   = "max_retries"
	configurationRetryBackoffKeyConstant = "retry_backoff"
	configurationOutJSONKeyConstant      = "out_json"
	configurationOutCSVKeyConstant       = "out_csv"
	configurationJSONPrefixKeyConstant   = "json_prefix"
	configurationCSVPrefixKeyConstant    = "csv_prefix"

	environmentURL1NameConstant   = "GITLAB_URL_1"
	environmentToken1NameConstant = "GITLAB_TOKEN_1"
	environmentURL2NameConstant   = "GITLAB_URL_2"
	environmentToken2NameConstant = "GITLAB_TOKEN_2"

	instance1LabelConstant = "gitlab1"
	instance2LabelConstant = "gitlab2"

	defaultPerPageConstant      = gitlab.MaximumPerPage
	defaultMaxRetriesConstant   = 3
	defaultRetryBackoffConstant = 1.0
	defaultVerifySSLConstant    = true

	configurationKeySeparatorConstant = "."

	missingParameterSeparatorConstant        = ", "
	missingParameterOptionTemplateConstant   = "%s or %s"
	missingParametersTemplateConstant        = "missing parameters: %s"
	exclusiveOutputsErrorMessageConstant     = "out_json and out_csv are mutually exclusive; choose one combined output"
	missingOutputsErrorMessageConstant       = "at least one output destination is required: out_json, out_csv, json_prefix, or csv_prefix"
	invalidPerPageTemplateConstant           = "per_page must be between 1 and %d, got %d"
	negativeMaxRetriesTemplateConstant       = "max_retries must be zero or greater, got %d"
	nonPositiveRetryBackoffTemplateConstant  = "retry_backoff must be greater than zero, got %g"
	configurationErrorPrefixTemplateConstant = "invalid invocation: %s"
)

// ConfigurationError reports an invalid invocation. It is always detected
// before any network call is made.
type ConfigurationError struct {
	Message string
}

// Error describes the invalid invocation.
func (configurationError *ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorPrefixTemplateConstant, configurationError.Message)
}

// EnvironmentLookup resolves an environment variable by name.
type EnvironmentLookup func(variableName string) string

// CommandConfiguration describes the persisted configuration for the compare
// command. Flag values override these, and missing credentials fall back to
// the GITLAB_URL_1/GITLAB_TOKEN_1/GITLAB_URL_2/GITLAB_TOKEN_2 environment
// variables.
type CommandConfiguration struct {
	URL1         string  `mapstructure:"url1"`
	Token1       string  `mapstructure:"token1"`
	URL2         string  `mapstructure:"url2"`
	Token2       string  `mapstructure:"token2"`
	VerifySSL    bool    `mapstructure:"verify_ssl"`
	PerPage      int     `mapstructure:"per_page"`
	MaxRetries   int     `mapstructure:"max_retries"`
	RetryBackoff float64 `mapstructure:"retry_backoff"`
	OutJSON      string  `mapstructure:"out_json"`
	OutCSV       string  `mapstructure:"out_csv"`
	JSONPrefix   string  `mapstructure:"json_prefix"`
	CSVPrefix    string  `mapstructure:"csv_prefix"`
}

// CommandOptions holds the fully resolved, validated inputs for one run.
type CommandOptions struct {
	Instance1   gitlab.InstanceConfiguration
	Instance2   gitlab.InstanceConfiguration
	PerPage     int
	RetryPolicy gitlab.RetryPolicy
	Outputs     compare.OutputOptions
}

// DefaultCommandConfiguration returns baseline configuration values for the
// compare command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		VerifySSL:    defaultVerifySSLConstant,
		PerPage:      defaultPerPageConstant,
		MaxRetries:   defaultMaxRetriesConstant,
		RetryBackoff: defaultRetryBackoffConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the compare command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationVerifySSLKeyConstant:    defaults.VerifySSL,
		rootKey + configurationKeySeparatorConstant + configurationPerPageKeyConstant:      defaults.PerPage,
		rootKey + configurationKeySeparatorConstant + configurationMaxRetriesKeyConstant:   defaults.MaxRetries,
		rootKey + configurationKeySeparatorConstant + configurationRetryBackoffKeyConstant: defaults.RetryBackoff,
	}
}

// resolveOptions validates the configuration and resolves environment
// fallbacks into runnable options.
func (configuration CommandConfiguration) resolveOptions(environmentLookup EnvironmentLookup) (CommandOptions, error) {
	if environmentLookup == nil {
		environmentLookup = func(string) string { return "" }
	}

	url1 := resolveCredential(configuration.URL1, environmentURL1NameConstant, environmentLookup)
	token1 := resolveCredential(configuration.Token1, environmentToken1NameConstant, environmentLookup)
	url2 := resolveCredential(configuration.URL2, environmentURL2NameConstant, environmentLookup)
	token2 := resolveCredential(configuration.Token2, environmentToken2NameConstant, environmentLookup)

	var missingParameters []string
	if len(url1) == 0 {
		missingParameters = append(missingParameters, fmt.Sprintf(missingParameterOptionTemplateConstant, configurationURL1KeyConstant, environmentURL1NameConstant))
	}
	if len(token1) == 0 {
		missingParameters = append(missingParameters, fmt.Sprintf(missingParameterOptionTemplateConstant, configurationToken1KeyConstant, environmentToken1NameConstant))
	}
	if len(url2) == 0 {
		missingParameters = append(missingParameters, fmt.Sprintf(missingParameterOptionTemplateConstant, configurationURL2KeyConstant, environmentURL2NameConstant))
	}
	if len(token2) == 0 {
		missingParameters = append(missingParameters, fmt.Sprintf(missingParameterOptionTemplateConstant, configurationToken2KeyConstant, environmentToken2NameConstant))
	}
	if len(missingParameters) > 0 {
		return CommandOptions{}, &ConfigurationError{Message: fmt.Sprintf(missingParametersTemplateConstant, strings.Join(missingParameters, missingParameterSeparatorConstant))}
	}

	outputs := compare.OutputOptions{
		CombinedJSONPath: strings.TrimSpace(configuration.OutJSON),
		CombinedCSVPath:  strings.TrimSpace(configuration.OutCSV),
		SplitJSONPrefix:  strings.TrimSpace(configuration.JSONPrefix),
		SplitCSVPrefix:   strings.TrimSpace(configuration.CSVPrefix),
	}
	if len(outputs.CombinedJSONPath) > 0 && len(outputs.CombinedCSVPath) > 0 {
		return CommandOptions{}, &ConfigurationError{Message: exclusiveOutputsErrorMessageConstant}
	}
	if len(outputs.CombinedJSONPath) == 0 && len(outputs.CombinedCSVPath) == 0 && len(outputs.SplitJSONPrefix) == 0 && len(outputs.SplitCSVPrefix) == 0 {
		return CommandOptions{}, &ConfigurationError{Message: missingOutputsErrorMessageConstant}
	}

	if configuration.PerPage < 1 || configuration.PerPage > gitlab.MaximumPerPage {
		return CommandOptions{}, &ConfigurationError{Message: fmt.Sprintf(invalidPerPageTemplateConstant, gitlab.MaximumPerPage, configuration.PerPage)}
	}
	if configuration.MaxRetries < 0 {
		return CommandOptions{}, &ConfigurationError{Message: fmt.Sprintf(negativeMaxRetriesTemplateConstant, configuration.MaxRetries)}
	}
	if configuration.RetryBackoff <= 0 {
		return CommandOptions{}, &ConfigurationError{Message: fmt.Sprintf(nonPositiveRetryBackoffTemplateConstant, configuration.RetryBackoff)}
	}

	options := CommandOptions{
		Instance1: gitlab.InstanceConfiguration{
			Label:     instance1LabelConstant,
			BaseURL:   url1,
			Token:     token1,
			VerifySSL: configuration.VerifySSL,
		},
		Instance2: gitlab.InstanceConfiguration{
			Label:     instance2LabelConstant,
			BaseURL:   url2,
			Token:     token2,
			VerifySSL: configuration.VerifySSL,
		},
		PerPage: configuration.PerPage,
		RetryPolicy: gitlab.RetryPolicy{
			MaximumRetries: configuration.MaxRetries,
			BackoffSeconds: configuration.RetryBackoff,
		},
		Outputs: outputs,
	}

	return options, nil
}

func resolveCredential(configuredValue string, environmentName string, environmentLookup EnvironmentLookup) string {
	trimmedValue := strings.TrimSpace(configuredValue)
	if len(trimmedValue) > 0 {
		return trimmedValue
	}
	return strings.TrimSpace(environmentLookup(environmentName))
}
