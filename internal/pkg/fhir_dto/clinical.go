package fhir_dto

type DiagnosticReport struct {
	ResourceType      string            `json:"resourceType"`
	ID                string            `json:"id"`
	Meta              *Meta             `json:"meta,omitempty"`
	Status            string            `json:"status"`
	Category          []CodeableConcept `json:"category,omitempty"`
	Code              CodeableConcept   `json:"code"`
	Subject           Reference         `json:"subject"`
	EffectiveDateTime string            `json:"effectiveDateTime,omitempty"`
	Issued            string            `json:"issued,omitempty"`
	Conclusion        string            `json:"conclusion,omitempty"`
}

type Condition struct {
	ResourceType   string            `json:"resourceType"`
	ID             string            `json:"id"`
	Meta           *Meta             `json:"meta,omitempty"`
	ClinicalStatus *CodeableConcept  `json:"clinicalStatus,omitempty"`
	Category       []CodeableConcept `json:"category,omitempty"`
	Code           CodeableConcept   `json:"code"`
	Subject        Reference         `json:"subject"`
	RecordedDate   string            `json:"recordedDate,omitempty"`
	Note           []Annotation      `json:"note,omitempty"`
}

type Procedure struct {
	ResourceType      string          `json:"resourceType"`
	ID                string          `json:"id"`
	Meta              *Meta           `json:"meta,omitempty"`
	Status            string          `json:"status"`
	Code              CodeableConcept `json:"code"`
	Subject           Reference       `json:"subject"`
	PerformedDateTime string          `json:"performedDateTime,omitempty"`
	Note              []Annotation    `json:"note,omitempty"`
}

type Observation struct {
	ResourceType      string            `json:"resourceType"`
	ID                string            `json:"id"`
	Meta              *Meta             `json:"meta,omitempty"`
	Status            string            `json:"status"`
	Category          []CodeableConcept `json:"category,omitempty"`
	Code              CodeableConcept   `json:"code"`
	Subject           Reference         `json:"subject"`
	EffectiveDateTime string            `json:"effectiveDateTime,omitempty"`
	ValueQuantity     *Quantity         `json:"valueQuantity,omitempty"`
}

type MedicationStatement struct {
	ResourceType              string          `json:"resourceType"`
	ID                        string          `json:"id"`
	Meta                      *Meta           `json:"meta,omitempty"`
	Status                    string          `json:"status"`
	MedicationCodeableConcept CodeableConcept `json:"medicationCodeableConcept"`
	Subject                   Reference       `json:"subject"`
	EffectivePeriod           *Period         `json:"effectivePeriod,omitempty"`
	DateAsserted              string          `json:"dateAsserted,omitempty"`
}

type Encounter struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id"`
	Meta         *Meta            `json:"meta,omitempty"`
	Status       string           `json:"status"`
	Class        Coding           `json:"class"`
	Subject      Reference        `json:"subject"`
	Period       *Period          `json:"period,omitempty"`
	ServiceType  *CodeableConcept `json:"serviceType,omitempty"`
}

type AllergyIntolerance struct {
	ResourceType   string           `json:"resourceType"`
	ID             string           `json:"id"`
	Meta           *Meta            `json:"meta,omitempty"`
	ClinicalStatus *CodeableConcept `json:"clinicalStatus,omitempty"`
	Code           CodeableConcept  `json:"code"`
	Patient        Reference        `json:"patient"`
	RecordedDate   string           `json:"recordedDate,omitempty"`
}

type Immunization struct {
	ResourceType       string          `json:"resourceType"`
	ID                 string          `json:"id"`
	Meta               *Meta           `json:"meta,omitempty"`
	Status             string          `json:"status"`
	VaccineCode        CodeableConcept `json:"vaccineCode"`
	Patient            Reference       `json:"patient"`
	OccurrenceDateTime string          `json:"occurrenceDateTime,omitempty"`
}
