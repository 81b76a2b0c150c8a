package gitlab

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// MaximumPerPage is the largest page size the GitLab API accepts.
	MaximumPerPage = 100

	projectsEndpointTemplateConstant  = "%s/api/v4/projects?page=%d&per_page=%d"
	privateTokenHeaderNameConstant    = "PRIVATE-TOKEN"
	baseURLTrimSetConstant            = "/"
	requestTimeoutConstant            = 30 * time.Second
	requestCreationTemplateConstant   = "instance %s: unable to build request for page %d: %w"
	requestExecutionTemplateConstant  = "instance %s: request for page %d failed: %w"
	responseDecodingTemplateConstant  = "instance %s: unable to decode page %d: %w"
	pageFetchAttemptMessageConstant   = "page fetch attempt"
	logFieldInstanceConstant          = "instance"
	logFieldPageConstant              = "page"
	logFieldPerPageConstant           = "per_page"
	logFieldOutcomeConstant           = "outcome"
	logFieldAttemptConstant           = "attempt"
	fetchOutcomeSuccessConstant       = "success"
	fetchOutcomeRetryConstant         = "retry"
	fetchOutcomeFailureConstant       = "failure"
	fetcherMissingClientErrorConstant = "page fetcher requires an HTTP client"
)

// HTTPClient abstracts HTTP execution so tests can supply deterministic
// transports.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// Sleeper abstracts backoff delays so tests never wait on the wall clock.
type Sleeper interface {
	Sleep(delay time.Duration)
}

// SystemSleeper implements Sleeper using the standard library.
type SystemSleeper struct{}

// Sleep blocks for the requested delay.
func (SystemSleeper) Sleep(delay time.Duration) {
	time.Sleep(delay)
}

// RetryPolicy controls how transient page failures are retried. A page is
// attempted once plus MaximumRetries times; before retry number N (starting
// at zero) the fetcher sleeps BackoffSeconds^N seconds.
type RetryPolicy struct {
	MaximumRetries int
	BackoffSeconds float64
}

func (policy RetryPolicy) delayBeforeRetry(retryNumber int) time.Duration {
	delaySeconds := math.Pow(policy.BackoffSeconds, float64(retryNumber))
	return time.Duration(delaySeconds * float64(time.Second))
}

// NewInstanceHTTPClient builds the production HTTP client for one instance,
// honoring its TLS verification setting.
func NewInstanceHTTPClient(verifySSL bool) *http.Client {
	client := &http.Client{Timeout: requestTimeoutConstant}
	if !verifySSL {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		client.Transport = transport
	}
	return client
}

// PageFetcher issues one paginated projects request at a time against a
// GitLab instance, retrying transient failures with exponential backoff.
type PageFetcher struct {
	httpClient  HTTPClient
	logger      *zap.Logger
	sleeper     Sleeper
	retryPolicy RetryPolicy
}

// NewPageFetcher constructs a PageFetcher around the provided transport.
func NewPageFetcher(logger *zap.Logger, httpClient HTTPClient, sleeper Sleeper, retryPolicy RetryPolicy) (*PageFetcher, error) {
	if httpClient == nil {
		return nil, errors.New(fetcherMissingClientErrorConstant)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sleeper == nil {
		sleeper = SystemSleeper{}
	}
	return &PageFetcher{
		httpClient:  httpClient,
		logger:      logger,
		sleeper:     sleeper,
		retryPolicy: retryPolicy,
	}, nil
}

// FetchPage requests one page of project records. The second return value
// reports whether the page was terminal (zero records). Transient HTTP
// failures are retried against the same page number until the retry budget
// runs out; authentication and other remote failures surface immediately.
func (fetcher *PageFetcher) FetchPage(executionContext context.Context, instance InstanceConfiguration, pageNumber int, perPage int) ([]ProjectRecord, bool, error) {
	attempt := 0
	for {
		records, requestError := fetcher.requestPage(executionContext, instance, pageNumber, perPage)
		if requestError == nil {
			fetcher.logAttempt(instance, pageNumber, perPage, attempt, fetchOutcomeSuccessConstant, nil)
			return records, len(records) == 0, nil
		}

		var transientError *TransientStatusError
		if !errors.As(requestError, &transientError) {
			fetcher.logAttempt(instance, pageNumber, perPage, attempt, fetchOutcomeFailureConstant, requestError)
			return nil, false, requestError
		}

		if attempt >= fetcher.retryPolicy.MaximumRetries {
			fetcher.logAttempt(instance, pageNumber, perPage, attempt, fetchOutcomeFailureConstant, requestError)
			exhaustedError := &FetchExhaustedError{
				Instance:   instance.Label,
				PageNumber: pageNumber,
				Attempts:   attempt + 1,
				Cause:      requestError,
			}
			return nil, false, exhaustedError
		}

		fetcher.logAttempt(instance, pageNumber, perPage, attempt, fetchOutcomeRetryConstant, requestError)
		fetcher.sleeper.Sleep(fetcher.retryPolicy.delayBeforeRetry(attempt))
		attempt++
	}
}

func (fetcher *PageFetcher) requestPage(executionContext context.Context, instance InstanceConfiguration, pageNumber int, perPage int) ([]ProjectRecord, error) {
	requestURL := fmt.Sprintf(
		projectsEndpointTemplateConstant,
		strings.TrimRight(instance.BaseURL, baseURLTrimSetConstant),
		pageNumber,
		perPage,
	)

	request, requestCreationError := http.NewRequestWithContext(executionContext, http.MethodGet, requestURL, nil)
	if requestCreationError != nil {
		return nil, fmt.Errorf(requestCreationTemplateConstant, instance.Label, pageNumber, requestCreationError)
	}
	request.Header.Set(privateTokenHeaderNameConstant, instance.Token)

	response, executionError := fetcher.httpClient.Do(request)
	if executionError != nil {
		return nil, fmt.Errorf(requestExecutionTemplateConstant, instance.Label, pageNumber, executionError)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	switch {
	case response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden:
		return nil, &AuthenticationError{Instance: instance.Label, StatusCode: response.StatusCode}
	case isTransientStatus(response.StatusCode):
		return nil, &TransientStatusError{StatusCode: response.StatusCode}
	case response.StatusCode != http.StatusOK:
		return nil, &RemoteError{Instance: instance.Label, StatusCode: response.StatusCode, PageNumber: pageNumber}
	}

	var records []ProjectRecord
	if decodeError := json.NewDecoder(response.Body).Decode(&records); decodeError != nil {
		return nil, fmt.Errorf(responseDecodingTemplateConstant, instance.Label, pageNumber, decodeError)
	}
	return records, nil
}

func (fetcher *PageFetcher) logAttempt(instance InstanceConfiguration, pageNumber int, perPage int, attempt int, outcome string, attemptError error) {
	fields := []zap.Field{
		zap.String(logFieldInstanceConstant, instance.Label),
		zap.Int(logFieldPageConstant, pageNumber),
		zap.Int(logFieldPerPageConstant, perPage),
		zap.Int(logFieldAttemptConstant, attempt),
		zap.String(logFieldOutcomeConstant, outcome),
	}
	if attemptError != nil {
		fields = append(fields, zap.Error(attemptError))
	}

	switch outcome {
	case fetchOutcomeSuccessConstant:
		fetcher.logger.Info(pageFetchAttemptMessageConstant, fields...)
	case fetchOutcomeRetryConstant:
		fetcher.logger.Warn(pageFetchAttemptMessageConstant, fields...)
	default:
		fetcher.logger.Error(pageFetchAttemptMessageConstant, fields...)
	}
}
