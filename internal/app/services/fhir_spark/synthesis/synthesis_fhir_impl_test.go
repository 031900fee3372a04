package synthesis

import (
	"context"
	"medbridge-service/internal/app/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestSynthesizer() *fhirSynthesizer {
	return newFhirSynthesizer(zap.NewNop(), func() time.Time { return fixedNow })
}

func testPatient() *models.Patient {
	birthDate := time.Date(1988, 7, 14, 0, 0, 0, 0, time.UTC)
	return &models.Patient{
		ID:                  "0b8a3f1e-1111-4c2e-9a31-3f0d1c2b4a55",
		ExternalID:          "P-1001",
		HospitalID:          "hospital-1",
		FirstName:           "Amina",
		LastName:            "Rahman",
		Gender:              "Female",
		BirthDate:           &birthDate,
		MedicalRecordNumber: "MRN-778",
	}
}

func TestSynthesize_LabResultsIsDiagnosticReport(t *testing.T) {
	payload, err := newTestSynthesizer().Synthesize(context.Background(), testPatient(), models.DataTypeLabResults, "req-1")

	require.NoError(t, err)
	assert.Equal(t, "DiagnosticReport", gjson.GetBytes(payload, "resourceType").String())
	assert.Equal(t, "req-1", gjson.GetBytes(payload, "id").String())
	assert.Equal(t, "final", gjson.GetBytes(payload, "status").String())
	assert.Equal(t, "Patient/P-1001", gjson.GetBytes(payload, "subject.reference").String())
	assert.Equal(t, "2024-03-01T09:30:00Z", gjson.GetBytes(payload, "issued").String())
	assert.NotEmpty(t, gjson.GetBytes(payload, "code.coding.0.code").String())
}

func TestSynthesize_ResourceTypePerDataType(t *testing.T) {
	expected := map[models.DataType]string{
		models.DataTypeLabResults:          "DiagnosticReport",
		models.DataTypeDiagnosticReports:   "DiagnosticReport",
		models.DataTypeMedicalHistory:      "Condition",
		models.DataTypeConditions:          "Condition",
		models.DataTypeTreatmentRecords:    "Procedure",
		models.DataTypeProcedures:          "Procedure",
		models.DataTypePatientDemographics: "Patient",
		models.DataTypeVitalSigns:          "Observation",
		models.DataTypeMedications:         "MedicationStatement",
		models.DataTypeEncounters:          "Encounter",
		models.DataTypeAllergies:           "AllergyIntolerance",
		models.DataTypeImmunizations:       "Immunization",
	}
	require.Len(t, expected, len(models.AllDataTypes))

	synthesizer := newTestSynthesizer()
	for _, dataType := range models.AllDataTypes {
		payload, err := synthesizer.Synthesize(context.Background(), testPatient(), dataType, "req-2")
		require.NoError(t, err, dataType)
		assert.True(t, gjson.ValidBytes(payload), dataType)
		assert.Equal(t, expected[dataType], gjson.GetBytes(payload, "resourceType").String(), dataType)
	}
}

func TestSynthesize_Demographics(t *testing.T) {
	payload, err := newTestSynthesizer().Synthesize(context.Background(), testPatient(), models.DataTypePatientDemographics, "req-3")

	require.NoError(t, err)
	assert.Equal(t, "P-1001", gjson.GetBytes(payload, "id").String())
	assert.Equal(t, "Rahman", gjson.GetBytes(payload, "name.0.family").String())
	assert.Equal(t, "Amina", gjson.GetBytes(payload, "name.0.given.0").String())
	assert.Equal(t, "female", gjson.GetBytes(payload, "gender").String())
	assert.Equal(t, "1988-07-14", gjson.GetBytes(payload, "birthDate").String())
	assert.Equal(t, "MRN-778", gjson.GetBytes(payload, "identifier.0.value").String())
}

func TestSynthesize_IsDeterministic(t *testing.T) {
	synthesizer := newTestSynthesizer()

	first, err := synthesizer.Synthesize(context.Background(), testPatient(), models.DataTypeVitalSigns, "req-4")
	require.NoError(t, err)
	second, err := synthesizer.Synthesize(context.Background(), testPatient(), models.DataTypeVitalSigns, "req-4")
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

func TestSynthesize_Failures(t *testing.T) {
	synthesizer := newTestSynthesizer()

	_, err := synthesizer.Synthesize(context.Background(), nil, models.DataTypeLabResults, "req-5")
	assert.Error(t, err)

	_, err = synthesizer.Synthesize(context.Background(), testPatient(), models.DataType("Genomics"), "req-5")
	assert.EqualError(t, err, `unsupported data type "Genomics"`)
}
