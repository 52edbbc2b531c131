package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return u.getDB(tx).WithContext(ctx).Create(user).Error
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SessionPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	return s.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"created_at", "expires_at"}),
		}).
		Create(session).Error
}

func (s *SessionPostgreSQL) Get(ctx context.Context, tx *gorm.DB, userID string) (*models.Session, error) {
	var session models.Session
	if err := s.getDB(tx).WithContext(ctx).First(&session, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	// Expired sessions are reaped lazily on read.
	if time.Now().After(session.ExpiresAt) {
		_ = s.Delete(ctx, tx, userID)
		return nil, gorm.ErrRecordNotFound
	}
	return &session, nil
}

func (s *SessionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, userID string) error {
	return s.getDB(tx).WithContext(ctx).Delete(&models.Session{}, "user_id = ?", userID).Error
}
