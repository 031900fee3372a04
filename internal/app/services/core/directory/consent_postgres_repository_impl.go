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

type consentPostgresRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

var (
	consentPostgresRepositoryInstance contracts.ConsentRepository
	onceConsentPostgresRepository     sync.Once
)

func NewConsentPostgresRepository(db *sql.DB, logger *zap.Logger) contracts.ConsentRepository {
	onceConsentPostgresRepository.Do(func() {
		consentPostgresRepositoryInstance = &consentPostgresRepository{
			DB:  db,
			Log: logger,
		}
	})
	return consentPostgresRepositoryInstance
}

// FindLatest returns the most recently granted, unrevoked consent for the
// tuple. Expiry is left to the caller.
func (r *consentPostgresRepository) FindLatest(ctx context.Context, patientID, requestingUserID, requestingHospitalID string, dataType models.DataType) (*models.PatientConsent, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var (
		consent   models.PatientConsent
		consentDT string
		expiresAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, queries.GetLatestConsent, patientID, requestingUserID, requestingHospitalID, string(dataType)).Scan(
		&consent.ID,
		&consent.PatientID,
		&consent.RequestingUserID,
		&consent.RequestingHospitalID,
		&consentDT,
		&consent.GrantedAt,
		&expiresAt,
		&consent.IsRevoked,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		r.Log.Error("consentPostgresRepository.FindLatest error querying consent",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientIDKey, patientID),
			zap.String(constvars.LoggingDataTypeKey, string(dataType)),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}

	consent.DataType = models.DataType(consentDT)
	if expiresAt.Valid {
		consent.ExpiresAt = &expiresAt.Time
	}
	return &consent, nil
}
