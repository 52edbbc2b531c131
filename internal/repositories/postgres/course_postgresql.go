package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return c.getDB(tx).WithContext(ctx).Create(course).Error
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	var course models.Course
	if err := c.getDB(tx).WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			// Keep insertion position as the secondary key so equal order
			// values preserve their original array position.
			return db.Order("course_modules.id ASC")
		}).
		Preload("Modules.Module").
		First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Course, error) {
	var courses []*models.Course
	if err := c.getDB(tx).WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_modules.id ASC")
		}).
		Order("created_at ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *CoursePostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	var count int64
	err := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

type ModulePostgreSQL struct {
	db *gorm.DB
}

func NewModulePostgreSQL(db *gorm.DB) repositories.ModuleRepository {
	return &ModulePostgreSQL{db: db}
}

func (m *ModulePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}

func (m *ModulePostgreSQL) Create(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	return m.getDB(tx).WithContext(ctx).Create(module).Error
}

func (m *ModulePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Module, error) {
	var module models.Module
	if err := m.getDB(tx).WithContext(ctx).First(&module, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}
