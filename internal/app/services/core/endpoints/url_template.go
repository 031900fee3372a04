package endpoints

import (
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"net/url"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{[^{}/?&=]*\}`)

// ResolveProductionURL fills {patientId} and strips every other placeholder.
// Query parameters left without a value are dropped.
func ResolveProductionURL(template string, patientID string) string {
	resolved := strings.ReplaceAll(template, constvars.FhirPatientIDPlaceholder, url.PathEscape(patientID))
	resolved = placeholderPattern.ReplaceAllString(resolved, "")
	return dropEmptyQueryParams(resolved)
}

// ResolvePreflightURL fills {patientId} with the sample id and every
// configured placeholder with its example value. Unknown placeholders are
// left in place so the validator can report them.
func ResolvePreflightURL(template string, parameters []models.EndpointParameter, samplePatientID string) string {
	resolved := strings.ReplaceAll(template, constvars.FhirPatientIDPlaceholder, url.PathEscape(samplePatientID))
	for _, parameter := range parameters {
		placeholder := normalizePlaceholder(parameter.Placeholder)
		if placeholder == constvars.FhirPatientIDPlaceholder || parameter.ExampleValue == "" {
			continue
		}
		resolved = strings.ReplaceAll(resolved, placeholder, url.QueryEscape(parameter.ExampleValue))
	}
	return resolved
}

// PatientEverythingURL is the generic fallback built from a hospital
// setting's base URL.
func PatientEverythingURL(baseURL, patientID string) string {
	path := strings.ReplaceAll(constvars.FhirPatientEverythingPath, constvars.FhirPatientIDPlaceholder, url.PathEscape(patientID))
	return strings.TrimRight(baseURL, "/") + path
}

func normalizePlaceholder(placeholder string) string {
	placeholder = strings.TrimSpace(placeholder)
	if placeholder == "" {
		return placeholder
	}
	if !strings.HasPrefix(placeholder, "{") {
		placeholder = "{" + placeholder
	}
	if !strings.HasSuffix(placeholder, "}") {
		placeholder += "}"
	}
	return placeholder
}

// dropEmptyQueryParams keeps parameter order, unlike url.Values.Encode.
func dropEmptyQueryParams(rawURL string) string {
	base, query, found := strings.Cut(rawURL, "?")
	if !found {
		return rawURL
	}

	kept := make([]string, 0)
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		if key, value, hasValue := strings.Cut(pair, "="); key == "" || !hasValue || value == "" {
			continue
		}
		kept = append(kept, pair)
	}
	if len(kept) == 0 {
		return base
	}
	return base + "?" + strings.Join(kept, "&")
}
