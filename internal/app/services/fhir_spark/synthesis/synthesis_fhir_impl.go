package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/fhir_dto"
	"strings"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	fhirDateTimeLayout = time.RFC3339
	fhirDateLayout     = "2006-01-02"
	metaSource         = "urn:medbridge:local"
)

var (
	errPatientRequired = errors.New("patient is required")

	fhirSynthesizerInstance contracts.FhirSynthesizer
	onceFhirSynthesizer     sync.Once
)

// fhirSynthesizer builds FHIR resources from the local patient record for
// same-hospital requests. Output only depends on its inputs and the clock.
type fhirSynthesizer struct {
	Log *zap.Logger
	Now func() time.Time
}

func NewFhirSynthesizer(logger *zap.Logger) contracts.FhirSynthesizer {
	onceFhirSynthesizer.Do(func() {
		fhirSynthesizerInstance = newFhirSynthesizer(logger, func() time.Time { return time.Now().UTC() })
	})
	return fhirSynthesizerInstance
}

func newFhirSynthesizer(logger *zap.Logger, now func() time.Time) *fhirSynthesizer {
	return &fhirSynthesizer{Log: logger, Now: now}
}

func (s *fhirSynthesizer) Synthesize(ctx context.Context, patient *models.Patient, dataType models.DataType, requestID string) (json.RawMessage, error) {
	logRequestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("fhirSynthesizer.Synthesize called",
		zap.String(constvars.LoggingRequestIDKey, logRequestID),
		zap.String(constvars.LoggingDataRequestIDKey, requestID),
		zap.String(constvars.LoggingDataTypeKey, string(dataType)),
	)

	if patient == nil {
		return nil, errPatientRequired
	}

	resource, err := s.build(patient, dataType, requestID)
	if err != nil {
		s.Log.Error("fhirSynthesizer.Synthesize error building resource",
			zap.String(constvars.LoggingRequestIDKey, logRequestID),
			zap.String(constvars.LoggingDataTypeKey, string(dataType)),
			zap.Error(err),
		)
		return nil, err
	}

	payload, err := gojson.Marshal(resource)
	if err != nil {
		s.Log.Error("fhirSynthesizer.Synthesize error marshaling resource",
			zap.String(constvars.LoggingRequestIDKey, logRequestID),
			zap.String(constvars.LoggingDataTypeKey, string(dataType)),
			zap.Error(err),
		)
		return nil, err
	}

	s.Log.Info("fhirSynthesizer.Synthesize succeeded",
		zap.String(constvars.LoggingRequestIDKey, logRequestID),
		zap.String(constvars.LoggingDataRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(payload)),
	)
	return payload, nil
}

func (s *fhirSynthesizer) build(patient *models.Patient, dataType models.DataType, requestID string) (interface{}, error) {
	now := s.Now()
	timestamp := now.Format(fhirDateTimeLayout)
	meta := &fhir_dto.Meta{LastUpdated: timestamp, Source: metaSource}
	subject := patientReference(patient)

	switch dataType {
	case models.DataTypeLabResults, models.DataTypeDiagnosticReports:
		return &fhir_dto.DiagnosticReport{
			ResourceType: constvars.ResourceDiagnosticReport,
			ID:           requestID,
			Meta:         meta,
			Status:       "final",
			Category: []fhir_dto.CodeableConcept{{
				Coding: []fhir_dto.Coding{{System: constvars.FhirSystemDiagnosticService, Code: "LAB", Display: "Laboratory"}},
			}},
			Code: fhir_dto.CodeableConcept{
				Coding: []fhir_dto.Coding{{System: constvars.FhirSystemLOINC, Code: "11502-2", Display: "Laboratory report"}},
				Text:   "Laboratory report",
			},
			Subject:           subject,
			EffectiveDateTime: timestamp,
			Issued:            timestamp,
			Conclusion:        fmt.Sprintf("Laboratory summary for medical record %s", patient.MedicalRecordNumber),
		}, nil

	case models.DataTypeMedicalHistory, models.DataTypeConditions:
		return &fhir_dto.Condition{
			ResourceType: constvars.ResourceCondition,
			ID:           requestID,
			Meta:         meta,
			ClinicalStatus: &fhir_dto.CodeableConcept{
				Coding: []fhir_dto.Coding{{System: constvars.FhirSystemConditionClinical, Code: "active", Display: "Active"}},
			},
			Category: []fhir_dto.CodeableConcept{{
				Coding: []fhir_dto.Coding{{System: constvars.FhirSystemConditionCategory, Code: "problem-list-item", Display: "Problem List Item"}},
			}},
			Code: fhir_dto.CodeableConcept{
				Coding: []fhir_dto.Coding{{System: constvars.FhirSystemSNOMED, Code: "161413004", Display: "History of medical problem"}},
				Text:   "Medical history",
			},
			Subject:      subject,
			RecordedDate: timestamp,
		}, nil

	case models.DataTypeTreatmentRecords, models.DataTypeProcedures:
		return &fhir_dto.Procedure{
			ResourceType: constvars.ResourceProcedure,
			ID:           requestID,
			Meta:         meta,
			Status:       "completed",
			Code: fhir_dto.CodeableConcept{
				Coding: []fhir_dto.Coding{{System: constvars.FhirSystemSNOMED, Code: "71388002", Display: "Procedure"}},
				Text:   "Treatment record",
			},
			Subject:           subject,
			PerformedDateTime: timestamp,
		}, nil

	case models.DataTypePatientDemographics:
		resource := &fhir_dto.Patient{
			ResourceType: constvars.ResourcePatient,
			ID:           patient.ExternalID,
			Meta:         meta,
			Identifier: []fhir_dto.Identifier{{
				Use:    "usual",
				System: constvars.FhirSystemPatientIdentifier,
				Value:  patient.MedicalRecordNumber,
			}},
			Active: true,
			Name: []fhir_dto.HumanName{{
				Use:    "official",
				Text:   fullName(patient),
				Family: patient.LastName,
				Given:  nonEmpty(patient.FirstName),
			}},
			Gender: strings.ToLower(patient.Gender),
		}
		if patient.BirthDate != nil {
			resource.BirthDate = patient.BirthDate.Format(fhirDateLayout)
		}
		return resource, nil

	case models.DataTypeVitalSigns:
		return &fhir_dto.Observation{
			ResourceType: constvars.ResourceObservation,
			ID:           requestID,
			Meta:         meta,
			Status:       "final",
			Category: []fhir_dto.CodeableConcept{{
				Coding: []fhir_dto.Coding{{System: constvars.FhirSystemObservationCategory, Code: "vital-signs", Display: "Vital Signs"}},
			}},
			Code: fhir_dto.CodeableConcept{
				Coding: []fhir_dto.Coding{{System: constvars.FhirSystemLOINC, Code: "85353-1", Display: "Vital signs panel"}},
				Text:   "Vital signs",
			},
			Subject:           subject,
			EffectiveDateTime: timestamp,
		}, nil

	case models.DataTypeMedications:
		return &fhir_dto.MedicationStatement{
			ResourceType: constvars.ResourceMedicationStmt,
			ID:           requestID,
			Meta:         meta,
			Status:       "active",
			MedicationCodeableConcept: fhir_dto.CodeableConcept{
				Text: "Current medications",
			},
			Subject:      subject,
			DateAsserted: timestamp,
		}, nil

	case models.DataTypeEncounters:
		return &fhir_dto.Encounter{
			ResourceType: constvars.ResourceEncounter,
			ID:           requestID,
			Meta:         meta,
			Status:       "finished",
			Class:        fhir_dto.Coding{System: constvars.FhirSystemActCode, Code: "AMB", Display: "ambulatory"},
			Subject:      subject,
			Period:       &fhir_dto.Period{End: timestamp},
		}, nil

	case models.DataTypeAllergies:
		return &fhir_dto.AllergyIntolerance{
			ResourceType: constvars.ResourceAllergyIntolerance,
			ID:           requestID,
			Meta:         meta,
			Code: fhir_dto.CodeableConcept{
				Coding: []fhir_dto.Coding{{System: constvars.FhirSystemSNOMED, Code: "716186003", Display: "No known allergy"}},
				Text:   "Allergy record",
			},
			Patient:      subject,
			RecordedDate: timestamp,
		}, nil

	case models.DataTypeImmunizations:
		return &fhir_dto.Immunization{
			ResourceType: constvars.ResourceImmunization,
			ID:           requestID,
			Meta:         meta,
			Status:       "completed",
			VaccineCode: fhir_dto.CodeableConcept{
				Text: "Immunization record",
			},
			Patient:            subject,
			OccurrenceDateTime: timestamp,
		}, nil
	}

	return nil, fmt.Errorf("unsupported data type %q", dataType)
}

func patientReference(patient *models.Patient) fhir_dto.Reference {
	return fhir_dto.Reference{
		Reference: constvars.FhirPatientRefPrefix + patient.ExternalID,
		Type:      constvars.ResourcePatient,
		Display:   fullName(patient),
	}
}

func fullName(patient *models.Patient) string {
	return strings.TrimSpace(patient.FirstName + " " + patient.LastName)
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, value := range values {
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
