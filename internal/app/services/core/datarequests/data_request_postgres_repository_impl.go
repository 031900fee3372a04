package datarequests

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

type dataRequestPostgresRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

var (
	dataRequestPostgresRepositoryInstance contracts.DataRequestRepository
	onceDataRequestPostgresRepository     sync.Once
)

func NewDataRequestPostgresRepository(db *sql.DB, logger *zap.Logger) contracts.DataRequestRepository {
	onceDataRequestPostgresRepository.Do(func() {
		dataRequestPostgresRepositoryInstance = &dataRequestPostgresRepository{
			DB:  db,
			Log: logger,
		}
	})
	return dataRequestPostgresRepositoryInstance
}

func (r *dataRequestPostgresRepository) CreateDataRequest(ctx context.Context, request *models.DataRequest) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	_, err := r.DB.ExecContext(ctx, queries.InsertDataRequest,
		request.ID,
		request.RequestingUserID,
		request.RequestingHospitalID,
		request.PatientID,
		request.PatientHospitalID,
		request.ApprovingUserID,
		string(request.DataType),
		request.Purpose,
		request.IsCrossHospitalRequest,
		request.IsRoleAuthorized,
		request.IsConsentValid,
		string(request.Status),
		request.RequestDate,
		request.ResponseDate,
		request.ApprovalDate,
		request.ResponseTimeMs,
		nullableJSON(request.ResponseData),
		request.DenialReason,
		request.ErrorCode,
		request.UpdatedAt,
	)
	if err != nil {
		r.Log.Error("dataRequestPostgresRepository.CreateDataRequest error inserting row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, request.ID),
			zap.Error(err),
		)
		return exceptions.ErrPostgresDBInsertData(err)
	}
	return nil
}

func (r *dataRequestPostgresRepository) FindByID(ctx context.Context, dataRequestID string) (*models.DataRequest, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	request, err := scanDataRequest(r.DB.QueryRowContext(ctx, queries.GetDataRequestByID, dataRequestID))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		r.Log.Error("dataRequestPostgresRepository.FindByID error querying row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, dataRequestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return request, nil
}

func (r *dataRequestPostgresRepository) FindPendingByHospital(ctx context.Context, hospitalID string) ([]models.DataRequest, error) {
	return r.findMany(ctx, "FindPendingByHospital", queries.GetPendingDataRequestsByHospital, hospitalID)
}

func (r *dataRequestPostgresRepository) FindHistoryByUser(ctx context.Context, userID string) ([]models.DataRequest, error) {
	return r.findMany(ctx, "FindHistoryByUser", queries.GetDataRequestHistoryByUser, userID)
}

func (r *dataRequestPostgresRepository) FinalizePending(ctx context.Context, request *models.DataRequest) (bool, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	result, err := r.DB.ExecContext(ctx, queries.FinalizePendingDataRequest,
		request.ID,
		string(request.Status),
		request.ApprovingUserID,
		request.ApprovalDate,
		request.ResponseDate,
		request.ResponseTimeMs,
		nullableJSON(request.ResponseData),
		request.DenialReason,
		request.ErrorCode,
		request.IsConsentValid,
		request.UpdatedAt,
	)
	if err != nil {
		r.Log.Error("dataRequestPostgresRepository.FinalizePending error updating row",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, request.ID),
			zap.Error(err),
		)
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}
	if affected == 0 {
		r.Log.Warn("dataRequestPostgresRepository.FinalizePending row no longer pending",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDataRequestIDKey, request.ID),
		)
		return false, nil
	}
	return true, nil
}

func (r *dataRequestPostgresRepository) findMany(ctx context.Context, method, query, arg string) ([]models.DataRequest, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		r.Log.Error("dataRequestPostgresRepository."+method+" error querying rows",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	var requests []models.DataRequest
	for rows.Next() {
		request, err := scanDataRequest(rows)
		if err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		requests = append(requests, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return requests, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataRequest(row rowScanner) (*models.DataRequest, error) {
	var (
		request         models.DataRequest
		approvingUserID sql.NullString
		dataType        string
		purpose         sql.NullString
		status          string
		responseDate    sql.NullTime
		approvalDate    sql.NullTime
		responseTimeMs  sql.NullInt64
		responseData    []byte
		denialReason    sql.NullString
		errorCode       sql.NullString
	)
	err := row.Scan(
		&request.ID,
		&request.RequestingUserID,
		&request.RequestingHospitalID,
		&request.PatientID,
		&request.PatientHospitalID,
		&approvingUserID,
		&dataType,
		&purpose,
		&request.IsCrossHospitalRequest,
		&request.IsRoleAuthorized,
		&request.IsConsentValid,
		&status,
		&request.RequestDate,
		&responseDate,
		&approvalDate,
		&responseTimeMs,
		&responseData,
		&denialReason,
		&errorCode,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	request.DataType = models.DataType(dataType)
	request.Status = models.RequestStatus(status)
	request.Purpose = purpose.String
	request.ApprovingUserID = nullString(approvingUserID)
	request.DenialReason = nullString(denialReason)
	request.ErrorCode = nullString(errorCode)
	if responseDate.Valid {
		request.ResponseDate = &responseDate.Time
	}
	if approvalDate.Valid {
		request.ApprovalDate = &approvalDate.Time
	}
	if responseTimeMs.Valid {
		request.ResponseTimeMs = &responseTimeMs.Int64
	}
	if len(responseData) > 0 {
		request.ResponseData = responseData
	}
	return &request, nil
}

func nullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}

// nullableJSON passes JSON as text so lib/pq does not encode it as bytea.
func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
