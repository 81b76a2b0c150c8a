package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/gitlab_compare/cmd/cli"
	comparecmd "github.com/temirov/gitlab_compare/cmd/cli/compare"
	"github.com/temirov/gitlab_compare/internal/gitlab"
)

const (
	exitErrorTemplateConstant = "%v\n"

	exitCodeUnexpectedErrorConstant     = 1
	exitCodeAuthenticationErrorConstant = 2
	exitCodeRemoteErrorConstant         = 3
	exitCodeConfigurationErrorConstant  = 4
)

// main executes the gitlab-compare command-line application. Failure
// categories map to distinct exit codes so callers can tell invalid
// credentials, remote failures, and invalid invocations apart.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(exitCodeForError(executionError))
	}
}

func exitCodeForError(executionError error) int {
	var authenticationError *gitlab.AuthenticationError
	if errors.As(executionError, &authenticationError) {
		return exitCodeAuthenticationErrorConstant
	}

	var exhaustedError *gitlab.FetchExhaustedError
	if errors.As(executionError, &exhaustedError) {
		return exitCodeRemoteErrorConstant
	}

	var remoteError *gitlab.RemoteError
	if errors.As(executionError, &remoteError) {
		return exitCodeRemoteErrorConstant
	}

	var configurationError *comparecmd.ConfigurationError
	if errors.As(executionError, &configurationError) {
		return exitCodeConfigurationErrorConstant
	}

	return exitCodeUnexpectedErrorConstant
}
