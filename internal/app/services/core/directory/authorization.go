package directory

import (
	"context"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/exceptions"
)

// RequireActiveUser loads the caller and rejects unknown or inactive users.
func RequireActiveUser(ctx context.Context, users contracts.UserRepository, callerID string) (*models.User, error) {
	caller, err := users.FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller == nil || !caller.IsActive {
		return nil, exceptions.ErrCallerNotResolved(nil)
	}
	return caller, nil
}

// RequireHospitalManager loads the caller and checks it manages hospitalID.
// An empty hospitalID only checks the role.
func RequireHospitalManager(ctx context.Context, users contracts.UserRepository, callerID, hospitalID string) (*models.User, error) {
	caller, err := RequireActiveUser(ctx, users, callerID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleHospitalManager {
		return nil, exceptions.ErrCallerNotHospitalManager(nil)
	}
	if hospitalID != "" && caller.HospitalID != hospitalID {
		return nil, exceptions.ErrCallerNotHospitalManager(nil)
	}
	return caller, nil
}
