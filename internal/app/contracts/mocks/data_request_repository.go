package mocks

import (
	"context"
	"medbridge-service/internal/app/models"
	"sort"
	"sync"
)

// MemoryDataRequestRepository is an in-memory DataRequestRepository with
// the same conditional finalize semantics as the Postgres one.
type MemoryDataRequestRepository struct {
	mu        sync.Mutex
	rows      map[string]models.DataRequest
	CreateErr error
	FindErr   error
}

func NewMemoryDataRequestRepository(seed ...models.DataRequest) *MemoryDataRequestRepository {
	repo := &MemoryDataRequestRepository{rows: make(map[string]models.DataRequest)}
	for _, row := range seed {
		repo.rows[row.ID] = row
	}
	return repo
}

func (r *MemoryDataRequestRepository) CreateDataRequest(ctx context.Context, request *models.DataRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.rows[request.ID] = *request
	return nil
}

func (r *MemoryDataRequestRepository) FindByID(ctx context.Context, requestID string) (*models.DataRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	row, ok := r.rows[requestID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *MemoryDataRequestRepository) FindPendingByHospital(ctx context.Context, hospitalID string) ([]models.DataRequest, error) {
	return r.filter(func(row models.DataRequest) bool {
		return row.PatientHospitalID == hospitalID && row.Status == models.RequestStatusPending
	}), nil
}

func (r *MemoryDataRequestRepository) FindHistoryByUser(ctx context.Context, userID string) ([]models.DataRequest, error) {
	return r.filter(func(row models.DataRequest) bool {
		return row.RequestingUserID == userID || (row.ApprovingUserID != nil && *row.ApprovingUserID == userID)
	}), nil
}

func (r *MemoryDataRequestRepository) FinalizePending(ctx context.Context, request *models.DataRequest) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[request.ID]
	if !ok || row.Status != models.RequestStatusPending {
		return false, nil
	}
	r.rows[request.ID] = *request
	return true, nil
}

func (r *MemoryDataRequestRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *MemoryDataRequestRepository) filter(keep func(models.DataRequest) bool) []models.DataRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DataRequest
	for _, row := range r.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.Before(out[j].RequestDate) })
	return out
}
