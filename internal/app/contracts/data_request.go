package contracts

import (
	"context"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/dto/requests"
	"medbridge-service/internal/pkg/dto/responses"
)

type DataRequestUsecase interface {
	SubmitRequest(ctx context.Context, request *requests.SubmitDataRequest) (*responses.DataRequestResult, error)
	FindRequestByID(ctx context.Context, callerID, requestID string) (*responses.DataRequest, error)
	FindPendingByHospital(ctx context.Context, callerID, hospitalID string) ([]responses.DataRequest, error)
	FindHistoryByUser(ctx context.Context, callerID, userID string) ([]responses.DataRequest, error)
}

type ApprovalUsecase interface {
	ResolveRequest(ctx context.Context, request *requests.ResolveDataRequest) (*responses.DataRequestResult, error)
}

type DataRequestRepository interface {
	CreateDataRequest(ctx context.Context, request *models.DataRequest) error
	FindByID(ctx context.Context, requestID string) (*models.DataRequest, error)
	FindPendingByHospital(ctx context.Context, hospitalID string) ([]models.DataRequest, error)
	FindHistoryByUser(ctx context.Context, userID string) ([]models.DataRequest, error)
	// FinalizePending writes a terminal state only if the row is still
	// Pending. It reports false when another writer got there first.
	FinalizePending(ctx context.Context, request *models.DataRequest) (bool, error)
}
