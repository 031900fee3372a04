package validator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/app/services/fhir_spark/remote"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/metrics"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type fhirValidator struct {
	Client         contracts.FhirRemoteClient
	Log            *zap.Logger
	Metrics        *metrics.Metrics
	SampleLimit    int
	DefaultTimeout time.Duration
}

var (
	fhirValidatorInstance contracts.FhirValidator
	onceFhirValidator     sync.Once
)

func NewFhirValidator(client contracts.FhirRemoteClient, logger *zap.Logger, m *metrics.Metrics, sampleLimit int, defaultTimeout time.Duration) contracts.FhirValidator {
	onceFhirValidator.Do(func() {
		fhirValidatorInstance = newFhirValidator(client, logger, m, sampleLimit, defaultTimeout)
	})
	return fhirValidatorInstance
}

func newFhirValidator(client contracts.FhirRemoteClient, logger *zap.Logger, m *metrics.Metrics, sampleLimit int, defaultTimeout time.Duration) *fhirValidator {
	if sampleLimit <= 0 {
		sampleLimit = 500
	}
	if defaultTimeout <= 0 {
		defaultTimeout = 30 * time.Second
	}
	return &fhirValidator{
		Client:         client,
		Log:            logger,
		Metrics:        m,
		SampleLimit:    sampleLimit,
		DefaultTimeout: defaultTimeout,
	}
}

func (v *fhirValidator) Validate(ctx context.Context, target *models.FhirTarget) *models.ValidationResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	v.Log.Info("fhirValidator.Validate called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingURLKey, target.URL),
	)

	start := time.Now()
	result := &models.ValidationResult{ResolvedURL: target.URL}
	finish := func(errorMessage string, body []byte) *models.ValidationResult {
		elapsed := time.Since(start)
		result.LatencyMs = elapsed.Milliseconds()
		result.ValidatedAt = time.Now().UTC()
		result.IsValid = errorMessage == ""
		if !result.IsValid {
			result.ErrorMessage = &errorMessage
		}
		if sample := v.sample(body); sample != "" {
			result.ResponseSample = &sample
		}
		v.Metrics.ObserveOutbound(metrics.OperationEndpointProbe, result.IsValid, elapsed)
		v.Metrics.RecordEndpointValidation(result.IsValid)

		if result.IsValid {
			v.Log.Info("fhirValidator.Validate succeeded",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingURLKey, target.URL),
				zap.Int64(constvars.LoggingLatencyMsKey, result.LatencyMs),
			)
		} else {
			v.Log.Warn("fhirValidator.Validate endpoint is invalid",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingURLKey, target.URL),
				zap.String(constvars.LoggingErrorMessageKey, errorMessage),
				zap.Int64(constvars.LoggingLatencyMsKey, result.LatencyMs),
			)
		}
		return result
	}

	if err := CheckURL(target.URL); err != nil {
		return finish(err.Error(), nil)
	}

	timeout := target.Timeout
	if timeout <= 0 {
		timeout = v.DefaultTimeout
	}
	probe := *target
	probe.Timeout = timeout

	resp, err := v.Client.Fetch(ctx, &probe)
	if err != nil {
		if remote.IsTimeout(err) {
			return finish(fmt.Sprintf(constvars.FhirValidationTimeout, int(timeout.Seconds())), nil)
		}
		return finish(fmt.Sprintf(constvars.FhirValidationRequestFailed, remote.Cause(err)), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return finish(fmt.Sprintf(constvars.FhirValidationHTTPStatus, resp.StatusCode, resp.Status), resp.Body)
	}

	if err := v.ValidatePayload(resp.Body); err != nil {
		return finish(err.Error(), resp.Body)
	}
	return finish("", resp.Body)
}

// CheckURL rejects URLs that cannot be called without touching the network.
func CheckURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return errors.New(constvars.FhirValidationURLRequired)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf(constvars.FhirValidationURLMalformed, rawURL)
	}
	if strings.Contains(rawURL, "{") || strings.Contains(rawURL, "}") {
		return fmt.Errorf(constvars.FhirValidationUnresolvedPlaceholder, rawURL)
	}
	return nil
}

func (v *fhirValidator) ValidatePayload(body []byte) error {
	resourceType, err := checkResource(body)
	if err != nil {
		return err
	}
	if resourceType != constvars.ResourceBundle {
		return fmt.Errorf(constvars.FhirValidationResourceType, resourceType)
	}

	if bundleType := gjson.GetBytes(body, "type").String(); bundleType != constvars.FhirBundleTypeSearchset {
		return fmt.Errorf(constvars.FhirValidationBundleType, bundleType)
	}

	entries := gjson.GetBytes(body, "entry")
	if !entries.IsArray() || len(entries.Array()) == 0 {
		return errors.New(constvars.FhirValidationNoEntries)
	}

	resourceTypes := make(map[string]struct{})
	var patients []gjson.Result
	referencesPatient := false
	for _, entry := range entries.Array() {
		resource := entry.Get("resource")
		entryType := resource.Get("resourceType").String()
		if entryType != "" {
			resourceTypes[entryType] = struct{}{}
		}
		if entryType == constvars.ResourcePatient {
			patients = append(patients, resource)
		}
		for _, path := range []string{"subject.reference", "patient.reference"} {
			if strings.HasPrefix(resource.Get(path).String(), constvars.FhirPatientRefPrefix) {
				referencesPatient = true
			}
		}
	}

	if len(patients) == 0 && !referencesPatient {
		return errors.New(constvars.FhirValidationNoPatient)
	}

	matched := false
	for _, expected := range constvars.FhirExpectedBundleResourceTypes {
		if _, ok := resourceTypes[expected]; ok {
			matched = true
			break
		}
	}
	if !matched {
		return fmt.Errorf(constvars.FhirValidationNoExpectedTypes, strings.Join(constvars.FhirExpectedBundleResourceTypes, ", "))
	}

	for _, patient := range patients {
		if patient.Get("id").String() == "" {
			return errors.New(constvars.FhirValidationPatientMissingID)
		}
		if !hasValue(patient.Get("name")) {
			return errors.New(constvars.FhirValidationPatientMissingName)
		}
	}
	return nil
}

// hasValue reports whether a field carries content. null, blank strings and
// empty arrays or objects do not count.
func hasValue(field gjson.Result) bool {
	switch {
	case !field.Exists(), field.Type == gjson.Null:
		return false
	case field.Type == gjson.String:
		return strings.TrimSpace(field.String()) != ""
	case field.IsArray():
		return len(field.Array()) > 0
	case field.IsObject():
		return len(field.Map()) > 0
	}
	return true
}

func (v *fhirValidator) ValidateResource(body []byte) error {
	_, err := checkResource(body)
	return err
}

// checkResource runs the checks shared by every FHIR response and returns
// the top level resourceType.
func checkResource(body []byte) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", errors.New(constvars.FhirValidationEmptyBody)
	}
	if !gjson.ValidBytes(body) {
		var probe interface{}
		detail := "unexpected content"
		if err := json.Unmarshal(body, &probe); err != nil {
			detail = err.Error()
		}
		return "", fmt.Errorf(constvars.FhirValidationInvalidJSON, detail)
	}

	resourceType := gjson.GetBytes(body, "resourceType").String()
	if resourceType == "" {
		return "", errors.New(constvars.FhirValidationMissingResourceType)
	}
	if resourceType == constvars.ResourceOperationOutcome {
		return "", fmt.Errorf(constvars.FhirValidationOperationOutcome, operationOutcomeSummary(body))
	}
	return resourceType, nil
}

func operationOutcomeSummary(body []byte) string {
	issue := gjson.GetBytes(body, "issue.0")
	for _, path := range []string{"diagnostics", "details.text", "code"} {
		if text := issue.Get(path).String(); text != "" {
			return text
		}
	}
	return constvars.ResponseUnknown
}

// sample truncates body to at most SampleLimit characters.
func (v *fhirValidator) sample(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if utf8.RuneCount(body) <= v.SampleLimit {
		return string(body)
	}
	runes := []rune(string(body))
	return string(runes[:v.SampleLimit])
}
