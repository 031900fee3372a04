package endpoints

import (
	"context"
	"database/sql"
	"errors"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var endpointRowColumns = []string{
	"id", "hospital_id", "data_type", "url_template", "http_method", "api_key_cipher",
	"bearer_token_cipher", "parameters", "allowed_roles", "sample_patient_id", "is_valid",
	"last_validation_error", "last_validated_at", "created_at", "updated_at",
}

func newRepository(t *testing.T) (*endpointPostgresRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &endpointPostgresRepository{DB: db, Log: zap.NewNop()}, mock
}

func TestEndpointRepository_Create(t *testing.T) {
	repo, mock := newRepository(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	endpoint := &models.EndpointConfig{
		ID:           "endpoint-1",
		HospitalID:   "hospital-1",
		DataType:     models.DataTypeVitalSigns,
		URLTemplate:  "https://h1.example.org/fhir/Observation?patient={patientId}",
		HTTPMethod:   constvars.MethodGet,
		AllowedRoles: []models.Role{models.RoleDoctor, models.RoleNurse},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO endpoint_configs")).
		WithArgs(
			"endpoint-1", "hospital-1", "VitalSigns", endpoint.URLTemplate, "GET",
			nil, nil, "[]", sqlmock.AnyArg(), nil, nil, nil, nil, now, now,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), endpoint)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEndpointRepository_Create_DuplicateHospitalAndDataType(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO endpoint_configs")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.EndpointConfig{ID: "endpoint-2", HospitalID: "hospital-1", DataType: models.DataTypeVitalSigns})

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
}

func TestEndpointRepository_Create_OtherFailure(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO endpoint_configs")).
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), &models.EndpointConfig{ID: "endpoint-2"})

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, constvars.StatusInternalServerError, customErr.StatusCode)
}

func TestEndpointRepository_FindByHospitalAndDataType(t *testing.T) {
	repo, mock := newRepository(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE hospital_id = $1 AND data_type = $2")).
		WithArgs("hospital-1", "LabResults").
		WillReturnRows(sqlmock.NewRows(endpointRowColumns).AddRow(
			"endpoint-1", "hospital-1", "LabResults", "https://h1.example.org/fhir/DiagnosticReport?patient={patientId}&date={date}", "GET",
			"c2VhbGVk", nil,
			`[{"name":"date","placeholder":"{date}","exampleValue":"2024-01-01"}]`,
			"{Doctor,Nurse}", "P-7", false, "HTTP 503: Service Unavailable", now, now, now,
		))

	endpoint, err := repo.FindByHospitalAndDataType(context.Background(), "hospital-1", models.DataTypeLabResults)

	require.NoError(t, err)
	require.NotNil(t, endpoint)
	assert.Equal(t, models.DataTypeLabResults, endpoint.DataType)
	require.NotNil(t, endpoint.APIKeyCipher)
	assert.Equal(t, "c2VhbGVk", *endpoint.APIKeyCipher)
	assert.Nil(t, endpoint.BearerTokenCipher)
	assert.Equal(t, []models.Role{models.RoleDoctor, models.RoleNurse}, endpoint.AllowedRoles)
	require.Len(t, endpoint.Parameters, 1)
	assert.Equal(t, "2024-01-01", endpoint.Parameters[0].ExampleValue)
	require.NotNil(t, endpoint.IsValid)
	assert.False(t, *endpoint.IsValid)
	require.NotNil(t, endpoint.LastValidatedAt)
	assert.True(t, endpoint.LastValidatedAt.Equal(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEndpointRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	endpoint, err := repo.FindByID(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, endpoint)
}

func TestEndpointRepository_FindByHospital(t *testing.T) {
	repo, mock := newRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY data_type ASC")).
		WithArgs("hospital-1").
		WillReturnRows(sqlmock.NewRows(endpointRowColumns).
			AddRow("endpoint-1", "hospital-1", "Allergies", "https://h1.example.org/fhir/a", "GET", nil, nil, "[]", "{}", nil, nil, nil, nil, now, now).
			AddRow("endpoint-2", "hospital-1", "LabResults", "https://h1.example.org/fhir/b", "GET", nil, nil, "[]", "{}", nil, true, nil, now, now, now))

	endpoints, err := repo.FindByHospital(context.Background(), "hospital-1")

	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	assert.Nil(t, endpoints[0].IsValid)
	assert.Empty(t, endpoints[0].AllowedRoles)
	require.NotNil(t, endpoints[1].IsValid)
	assert.True(t, *endpoints[1].IsValid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEndpointRepository_UpdateValidation(t *testing.T) {
	repo, mock := newRepository(t)
	message := "Bundle contains no entries"
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE endpoint_configs")).
		WithArgs("endpoint-1", false, message, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateValidation(context.Background(), "endpoint-1", &models.ValidationResult{IsValid: false, ErrorMessage: &message, ValidatedAt: at})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEndpointRepository_Delete(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM endpoint_configs")).
		WithArgs("endpoint-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "endpoint-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
