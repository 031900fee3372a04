package endpoints

import (
	"context"
	"database/sql"
	"errors"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/queries"
	"sync"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pqUniqueViolation = "23505"

type endpointPostgresRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

var (
	endpointPostgresRepositoryInstance contracts.EndpointRepository
	onceEndpointPostgresRepository     sync.Once
)

func NewEndpointPostgresRepository(db *sql.DB, logger *zap.Logger) contracts.EndpointRepository {
	onceEndpointPostgresRepository.Do(func() {
		endpointPostgresRepositoryInstance = &endpointPostgresRepository{
			DB:  db,
			Log: logger,
		}
	})
	return endpointPostgresRepositoryInstance
}

func (r *endpointPostgresRepository) Create(ctx context.Context, endpoint *models.EndpointConfig) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	parameters, err := encodeParameters(endpoint.Parameters)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	_, err = r.DB.ExecContext(ctx, queries.InsertEndpoint,
		endpoint.ID,
		endpoint.HospitalID,
		string(endpoint.DataType),
		endpoint.URLTemplate,
		endpoint.HTTPMethod,
		endpoint.APIKeyCipher,
		endpoint.BearerTokenCipher,
		parameters,
		pq.Array(roleStrings(endpoint.AllowedRoles)),
		endpoint.SamplePatientID,
		endpoint.IsValid,
		endpoint.LastValidationError,
		endpoint.LastValidatedAt,
		endpoint.CreatedAt,
		endpoint.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			r.Log.Warn("endpointPostgresRepository.Create duplicate hospital and data type",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingHospitalIDKey, endpoint.HospitalID),
				zap.String(constvars.LoggingDataTypeKey, string(endpoint.DataType)),
			)
			return exceptions.ErrEndpointDuplicate(err)
		}
		r.Log.Error("endpointPostgresRepository.Create error inserting row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEndpointIDKey, endpoint.ID),
			zap.Error(err),
		)
		return exceptions.ErrPostgresDBInsertData(err)
	}
	return nil
}

// Update replaces the mutable fields and clears the cached validation.
func (r *endpointPostgresRepository) Update(ctx context.Context, endpoint *models.EndpointConfig) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	parameters, err := encodeParameters(endpoint.Parameters)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	_, err = r.DB.ExecContext(ctx, queries.UpdateEndpoint,
		endpoint.ID,
		endpoint.URLTemplate,
		endpoint.HTTPMethod,
		endpoint.APIKeyCipher,
		endpoint.BearerTokenCipher,
		parameters,
		pq.Array(roleStrings(endpoint.AllowedRoles)),
		endpoint.SamplePatientID,
		endpoint.UpdatedAt,
	)
	if err != nil {
		r.Log.Error("endpointPostgresRepository.Update error updating row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEndpointIDKey, endpoint.ID),
			zap.Error(err),
		)
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func (r *endpointPostgresRepository) Delete(ctx context.Context, endpointID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if _, err := r.DB.ExecContext(ctx, queries.DeleteEndpoint, endpointID); err != nil {
		r.Log.Error("endpointPostgresRepository.Delete error deleting row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEndpointIDKey, endpointID),
			zap.Error(err),
		)
		return exceptions.ErrPostgresDBDeleteData(err)
	}
	return nil
}

func (r *endpointPostgresRepository) FindByID(ctx context.Context, endpointID string) (*models.EndpointConfig, error) {
	return r.findOne(ctx, "FindByID", queries.GetEndpointByID, endpointID)
}

func (r *endpointPostgresRepository) FindByHospitalAndDataType(ctx context.Context, hospitalID string, dataType models.DataType) (*models.EndpointConfig, error) {
	return r.findOne(ctx, "FindByHospitalAndDataType", queries.GetEndpointByHospitalAndDataType, hospitalID, string(dataType))
}

func (r *endpointPostgresRepository) FindByHospital(ctx context.Context, hospitalID string) ([]models.EndpointConfig, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	rows, err := r.DB.QueryContext(ctx, queries.GetEndpointsByHospital, hospitalID)
	if err != nil {
		r.Log.Error("endpointPostgresRepository.FindByHospital error querying rows",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingHospitalIDKey, hospitalID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	var endpoints []models.EndpointConfig
	for rows.Next() {
		endpoint, err := scanEndpoint(rows)
		if err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		endpoints = append(endpoints, *endpoint)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return endpoints, nil
}

func (r *endpointPostgresRepository) UpdateValidation(ctx context.Context, endpointID string, result *models.ValidationResult) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	_, err := r.DB.ExecContext(ctx, queries.UpdateEndpointValidation,
		endpointID,
		result.IsValid,
		result.ErrorMessage,
		result.ValidatedAt,
	)
	if err != nil {
		r.Log.Error("endpointPostgresRepository.UpdateValidation error updating row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEndpointIDKey, endpointID),
			zap.Error(err),
		)
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func (r *endpointPostgresRepository) findOne(ctx context.Context, method, query string, args ...interface{}) (*models.EndpointConfig, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	endpoint, err := scanEndpoint(r.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		r.Log.Error("endpointPostgresRepository."+method+" error querying row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return endpoint, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEndpoint(row rowScanner) (*models.EndpointConfig, error) {
	var (
		endpoint            models.EndpointConfig
		dataType            string
		apiKeyCipher        sql.NullString
		bearerTokenCipher   sql.NullString
		parameters          []byte
		allowedRoles        []string
		samplePatientID     sql.NullString
		isValid             sql.NullBool
		lastValidationError sql.NullString
		lastValidatedAt     sql.NullTime
	)
	err := row.Scan(
		&endpoint.ID,
		&endpoint.HospitalID,
		&dataType,
		&endpoint.URLTemplate,
		&endpoint.HTTPMethod,
		&apiKeyCipher,
		&bearerTokenCipher,
		&parameters,
		pq.Array(&allowedRoles),
		&samplePatientID,
		&isValid,
		&lastValidationError,
		&lastValidatedAt,
		&endpoint.CreatedAt,
		&endpoint.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	endpoint.DataType = models.DataType(dataType)
	endpoint.APIKeyCipher = nullString(apiKeyCipher)
	endpoint.BearerTokenCipher = nullString(bearerTokenCipher)
	endpoint.SamplePatientID = nullString(samplePatientID)
	endpoint.LastValidationError = nullString(lastValidationError)
	if isValid.Valid {
		endpoint.IsValid = &isValid.Bool
	}
	if lastValidatedAt.Valid {
		endpoint.LastValidatedAt = &lastValidatedAt.Time
	}
	for _, role := range allowedRoles {
		endpoint.AllowedRoles = append(endpoint.AllowedRoles, models.Role(role))
	}
	if len(parameters) > 0 {
		if err := json.Unmarshal(parameters, &endpoint.Parameters); err != nil {
			return nil, err
		}
	}
	return &endpoint, nil
}

// encodeParameters returns the JSON column value as text so lib/pq does not
// send it as bytea.
func encodeParameters(parameters []models.EndpointParameter) (string, error) {
	if parameters == nil {
		parameters = []models.EndpointParameter{}
	}
	raw, err := json.Marshal(parameters)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func roleStrings(roles []models.Role) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}

func nullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}
