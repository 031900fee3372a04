package directory

import (
	"context"
	"errors"
	"medbridge-service/internal/app/contracts/mocks"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/exceptions"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var customErr *exceptions.CustomError
	require.True(t, errors.As(err, &customErr))
	return customErr.StatusCode
}

func TestRequireHospitalManager(t *testing.T) {
	users := new(mocks.MockUserRepository)
	users.On("FindByID", mock.Anything, "manager-1").Return(&models.User{ID: "manager-1", HospitalID: "hospital-1", Role: models.RoleHospitalManager, IsActive: true}, nil)
	users.On("FindByID", mock.Anything, "doctor-1").Return(&models.User{ID: "doctor-1", HospitalID: "hospital-1", Role: models.RoleDoctor, IsActive: true}, nil)
	users.On("FindByID", mock.Anything, "inactive-1").Return(&models.User{ID: "inactive-1", HospitalID: "hospital-1", Role: models.RoleHospitalManager}, nil)
	users.On("FindByID", mock.Anything, "ghost").Return(nil, nil)

	ctx := context.Background()

	caller, err := RequireHospitalManager(ctx, users, "manager-1", "hospital-1")
	require.NoError(t, err)
	assert.Equal(t, "manager-1", caller.ID)

	_, err = RequireHospitalManager(ctx, users, "manager-1", "")
	assert.NoError(t, err)

	_, err = RequireHospitalManager(ctx, users, "manager-1", "hospital-2")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = RequireHospitalManager(ctx, users, "doctor-1", "hospital-1")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = RequireHospitalManager(ctx, users, "inactive-1", "hospital-1")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = RequireHospitalManager(ctx, users, "ghost", "hospital-1")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}
