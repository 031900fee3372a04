package constvars

const (
	ResourceBundle             = "Bundle"
	ResourcePatient            = "Patient"
	ResourceObservation        = "Observation"
	ResourceCondition          = "Condition"
	ResourceProcedure          = "Procedure"
	ResourceEncounter          = "Encounter"
	ResourceDevice             = "Device"
	ResourceAllergyIntolerance = "AllergyIntolerance"
	ResourceImmunization       = "Immunization"
	ResourceDiagnosticReport   = "DiagnosticReport"
	ResourceMedicationStmt     = "MedicationStatement"
	ResourceOperationOutcome   = "OperationOutcome"
)

const (
	FhirBundleTypeSearchset   = "searchset"
	FhirPatientRefPrefix      = "Patient/"
	FhirPatientIDPlaceholder  = "{patientId}"
	FhirPatientEverythingPath = "/Patient/{patientId}/$everything"
)

const (
	FhirSystemObservationCategory = "http://terminology.hl7.org/CodeSystem/observation-category"
	FhirSystemDiagnosticService   = "http://terminology.hl7.org/CodeSystem/v2-0074"
	FhirSystemConditionClinical   = "http://terminology.hl7.org/CodeSystem/condition-clinical"
	FhirSystemConditionCategory   = "http://terminology.hl7.org/CodeSystem/condition-category"
	FhirSystemActCode             = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
	FhirSystemLOINC               = "http://loinc.org"
	FhirSystemSNOMED              = "http://snomed.info/sct"
	FhirSystemPatientIdentifier   = "urn:medbridge:patient"
)

// Resource types a "Patient Everything" bundle must contain at least one of.
var FhirExpectedBundleResourceTypes = []string{
	ResourcePatient,
	ResourceObservation,
	ResourceCondition,
	ResourceEncounter,
	ResourceDevice,
}
