package directory

import (
	"context"
	"database/sql"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/queries"
	"sync"

	"go.uber.org/zap"
)

type patientPostgresRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

var (
	patientPostgresRepositoryInstance contracts.PatientRepository
	oncePatientPostgresRepository     sync.Once
)

func NewPatientPostgresRepository(db *sql.DB, logger *zap.Logger) contracts.PatientRepository {
	oncePatientPostgresRepository.Do(func() {
		patientPostgresRepositoryInstance = &patientPostgresRepository{
			DB:  db,
			Log: logger,
		}
	})
	return patientPostgresRepositoryInstance
}

func (r *patientPostgresRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Patient, error) {
	return r.findOne(ctx, "FindByExternalID", queries.GetPatientByExternalID, externalID)
}

func (r *patientPostgresRepository) FindByID(ctx context.Context, patientID string) (*models.Patient, error) {
	return r.findOne(ctx, "FindByID", queries.GetPatientByID, patientID)
}

func (r *patientPostgresRepository) findOne(ctx context.Context, method, query, arg string) (*models.Patient, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var (
		patient             models.Patient
		gender              sql.NullString
		birthDate           sql.NullTime
		medicalRecordNumber sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&patient.ID,
		&patient.ExternalID,
		&patient.HospitalID,
		&patient.FirstName,
		&patient.LastName,
		&gender,
		&birthDate,
		&medicalRecordNumber,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		r.Log.Error("patientPostgresRepository."+method+" error querying patient",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientIDKey, arg),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}

	patient.Gender = gender.String
	patient.MedicalRecordNumber = medicalRecordNumber.String
	if birthDate.Valid {
		patient.BirthDate = &birthDate.Time
	}
	return &patient, nil
}
