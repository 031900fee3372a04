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

type userPostgresRepository struct {
	DB  *sql.DB
	Log *zap.Logger
}

var (
	userPostgresRepositoryInstance contracts.UserRepository
	onceUserPostgresRepository     sync.Once
)

func NewUserPostgresRepository(db *sql.DB, logger *zap.Logger) contracts.UserRepository {
	onceUserPostgresRepository.Do(func() {
		userPostgresRepositoryInstance = &userPostgresRepository{
			DB:  db,
			Log: logger,
		}
	})
	return userPostgresRepositoryInstance
}

func (r *userPostgresRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var (
		user  models.User
		role  string
		email sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, queries.GetUserByID, userID).Scan(
		&user.ID,
		&user.HospitalID,
		&role,
		&user.FullName,
		&email,
		&user.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		r.Log.Error("userPostgresRepository.FindByID error querying user",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingUserIDKey, userID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	user.Role = models.Role(role)
	user.Email = email.String
	return &user, nil
}
