package repositories

import (
	"errors"
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
	"gorm.io/gorm"
)

// UserRepository handles user-related database operations
type UserRepository struct {
	BaseRepository
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *UserRepository) GetUser(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) UserExists(userID string) (bool, error) {
	var count int64
	if err := ds.db.Model(&model.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ds *UserRepository) CreateUser(user *model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = newID()
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	if err := ds.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (ds *UserRepository) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUserCascade removes everything the user owns, then the user row.
// It must run inside a transaction so a partial cascade never commits.
func (ds *UserRepository) DeleteUserCascade(userID string) error {
	steps := []func(string) error{
		NewLedgerRepository(ds.db).DeleteForUser,
		NewStreakRepository(ds.db).DeleteForUser,
		NewProgressRepository(ds.db).DeleteForUser,
		NewSubmissionRepository(ds.db).DeleteForUser,
		NewActivityRepository(ds.db).DeleteForUser,
	}
	for _, step := range steps {
		if err := step(userID); err != nil {
			return err
		}
	}

	res := ds.db.Where("id = ?", userID).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
