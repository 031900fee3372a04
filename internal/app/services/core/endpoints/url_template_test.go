package endpoints

import (
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/app/services/fhir_spark/validator"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveProductionURL(t *testing.T) {
	cases := []struct {
		name      string
		template  string
		patientID string
		want      string
	}{
		{
			name:      "path placeholder",
			template:  "https://h2.example.org/fhir/Patient/{patientId}/$everything",
			patientID: "P-2",
			want:      "https://h2.example.org/fhir/Patient/P-2/$everything",
		},
		{
			name:      "query placeholder with extra parameters stripped",
			template:  "https://h2.example.org/fhir/Observation?patient={patientId}&date={date}&category=laboratory",
			patientID: "P-2",
			want:      "https://h2.example.org/fhir/Observation?patient=P-2&category=laboratory",
		},
		{
			name:      "only optional parameters",
			template:  "https://h2.example.org/fhir/Condition?onset={onset}",
			patientID: "P-2",
			want:      "https://h2.example.org/fhir/Condition",
		},
		{
			name:      "patient id is escaped",
			template:  "https://h2.example.org/fhir/Patient/{patientId}",
			patientID: "a b",
			want:      "https://h2.example.org/fhir/Patient/a%20b",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveProductionURL(tc.template, tc.patientID))
		})
	}
}

func TestResolvePreflightURL(t *testing.T) {
	parameters := []models.EndpointParameter{
		{Name: "date", Placeholder: "{date}", ExampleValue: "2024-01-01"},
		{Name: "category", Placeholder: "category", ExampleValue: "vital signs"},
	}

	resolved := ResolvePreflightURL(
		"https://h2.example.org/fhir/Observation?patient={patientId}&date={date}&category={category}",
		parameters,
		"sample-7",
	)

	assert.Equal(t, "https://h2.example.org/fhir/Observation?patient=sample-7&date=2024-01-01&category=vital+signs", resolved)
	assert.NoError(t, validator.CheckURL(resolved))
}

func TestResolvePreflightURL_UnknownPlaceholderIsReported(t *testing.T) {
	resolved := ResolvePreflightURL("https://h2.example.org/fhir/Observation?patient={patientId}&code={code}", nil, "sample-7")

	assert.Equal(t, "https://h2.example.org/fhir/Observation?patient=sample-7&code={code}", resolved)
	assert.Error(t, validator.CheckURL(resolved))
}

func TestPatientEverythingURL(t *testing.T) {
	assert.Equal(t, "https://h2.example.org/fhir/Patient/P-2/$everything", PatientEverythingURL("https://h2.example.org/fhir/", "P-2"))
	assert.Equal(t, "https://h2.example.org/fhir/Patient/P-2/$everything", PatientEverythingURL("https://h2.example.org/fhir", "P-2"))
}

func TestNormalizePlaceholder(t *testing.T) {
	assert.Equal(t, "{date}", normalizePlaceholder("date"))
	assert.Equal(t, "{date}", normalizePlaceholder(" {date} "))
	assert.Equal(t, "", normalizePlaceholder(""))
}
