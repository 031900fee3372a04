package hospitalsettings

import (
	"context"
	"database/sql"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/queries"
	"sync"
	"time"

	"go.uber.org/zap"
)

type hospitalSettingPostgresRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

var (
	hospitalSettingPostgresRepositoryInstance contracts.HospitalSettingRepository
	onceHospitalSettingPostgresRepository     sync.Once
)

func NewHospitalSettingPostgresRepository(db *sql.DB, logger *zap.Logger) contracts.HospitalSettingRepository {
	onceHospitalSettingPostgresRepository.Do(func() {
		hospitalSettingPostgresRepositoryInstance = &hospitalSettingPostgresRepository{
			DB:  db,
			Log: logger,
		}
	})
	return hospitalSettingPostgresRepositoryInstance
}

func (r *hospitalSettingPostgresRepository) Create(ctx context.Context, setting *models.HospitalSetting) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	_, err := r.DB.ExecContext(ctx, queries.InsertHospitalSetting,
		setting.ID,
		setting.HospitalID,
		setting.Name,
		setting.FhirBaseURL,
		setting.HTTPMethod,
		setting.TimeoutSeconds,
		setting.APIKeyCipher,
		setting.BearerTokenCipher,
		setting.IsActive,
		setting.IsValid,
		setting.LastValidationError,
		setting.LastValidatedAt,
		setting.CreatedAt,
		setting.UpdatedAt,
	)
	if err != nil {
		r.Log.Error("hospitalSettingPostgresRepository.Create error inserting row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSettingIDKey, setting.ID),
			zap.Error(err),
		)
		return exceptions.ErrPostgresDBInsertData(err)
	}
	return nil
}

func (r *hospitalSettingPostgresRepository) Update(ctx context.Context, setting *models.HospitalSetting) (bool, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	result, err := r.DB.ExecContext(ctx, queries.UpdateHospitalSetting,
		setting.ID,
		setting.Name,
		setting.FhirBaseURL,
		setting.HTTPMethod,
		setting.TimeoutSeconds,
		setting.APIKeyCipher,
		setting.BearerTokenCipher,
		setting.UpdatedAt,
	)
	if err != nil {
		r.Log.Error("hospitalSettingPostgresRepository.Update error updating row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSettingIDKey, setting.ID),
			zap.Error(err),
		)
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}
	return affectedOne(result)
}

func (r *hospitalSettingPostgresRepository) Deactivate(ctx context.Context, settingID string, at time.Time) (bool, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	result, err := r.DB.ExecContext(ctx, queries.DeactivateHospitalSetting, settingID, at)
	if err != nil {
		r.Log.Error("hospitalSettingPostgresRepository.Deactivate error updating row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSettingIDKey, settingID),
			zap.Error(err),
		)
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}
	return affectedOne(result)
}

func (r *hospitalSettingPostgresRepository) FindByID(ctx context.Context, settingID string) (*models.HospitalSetting, error) {
	return r.findOne(ctx, "FindByID", queries.GetHospitalSettingByID, settingID)
}

func (r *hospitalSettingPostgresRepository) FindActiveByHospital(ctx context.Context, hospitalID string) (*models.HospitalSetting, error) {
	return r.findOne(ctx, "FindActiveByHospital", queries.GetActiveHospitalSettingByHospital, hospitalID)
}

func (r *hospitalSettingPostgresRepository) FindByHospital(ctx context.Context, hospitalID string) ([]models.HospitalSetting, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	rows, err := r.DB.QueryContext(ctx, queries.GetHospitalSettingsByHospital, hospitalID)
	if err != nil {
		r.Log.Error("hospitalSettingPostgresRepository.FindByHospital error querying rows",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingHospitalIDKey, hospitalID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	var settings []models.HospitalSetting
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		settings = append(settings, *setting)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return settings, nil
}

func (r *hospitalSettingPostgresRepository) UpdateValidation(ctx context.Context, settingID string, result *models.ValidationResult) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	_, err := r.DB.ExecContext(ctx, queries.UpdateHospitalSettingValidation,
		settingID,
		result.IsValid,
		result.ErrorMessage,
		result.ValidatedAt,
	)
	if err != nil {
		r.Log.Error("hospitalSettingPostgresRepository.UpdateValidation error updating row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSettingIDKey, settingID),
			zap.Error(err),
		)
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func (r *hospitalSettingPostgresRepository) findOne(ctx context.Context, method, query string, args ...interface{}) (*models.HospitalSetting, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	setting, err := scanSetting(r.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		r.Log.Error("hospitalSettingPostgresRepository."+method+" error querying row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return setting, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSetting(row rowScanner) (*models.HospitalSetting, error) {
	var (
		setting             models.HospitalSetting
		apiKeyCipher        sql.NullString
		bearerTokenCipher   sql.NullString
		isValid             sql.NullBool
		lastValidationError sql.NullString
		lastValidatedAt     sql.NullTime
	)
	err := row.Scan(
		&setting.ID,
		&setting.HospitalID,
		&setting.Name,
		&setting.FhirBaseURL,
		&setting.HTTPMethod,
		&setting.TimeoutSeconds,
		&apiKeyCipher,
		&bearerTokenCipher,
		&setting.IsActive,
		&isValid,
		&lastValidationError,
		&lastValidatedAt,
		&setting.CreatedAt,
		&setting.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if apiKeyCipher.Valid {
		setting.APIKeyCipher = &apiKeyCipher.String
	}
	if bearerTokenCipher.Valid {
		setting.BearerTokenCipher = &bearerTokenCipher.String
	}
	if isValid.Valid {
		setting.IsValid = &isValid.Bool
	}
	if lastValidationError.Valid {
		setting.LastValidationError = &lastValidationError.String
	}
	if lastValidatedAt.Valid {
		setting.LastValidatedAt = &lastValidatedAt.Time
	}
	return &setting, nil
}

func affectedOne(result sql.Result) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}
	return affected == 1, nil
}
