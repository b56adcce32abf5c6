package db

import (
	"fmt"
	"time"

	"chanboard/internal/config"
	"chanboard/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 按配置连接数据库并迁移表结构
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dialector = postgres.Open(cfg.URL)
	case "sqlite":
		// SQLite 默认不开启外键
		dialector = sqlite.Open(fmt.Sprintf("%s?_foreign_keys=on", cfg.SQLitePath))
	default:
		return nil, errors.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}
	logrus.Infof("Database connection established (%s)", dialector.Name())

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate 创建或更新所有表
func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.Channel{},
		&models.Post{},
		&models.Reply{},
		&models.Vote{},
	)
	if err != nil {
		return errors.Wrap(err, "migrate database")
	}
	logrus.Info("Database migration completed")
	return nil
}

// Seed 空库时创建管理员账号和默认频道
func Seed(gdb *gorm.DB, adminUsername, adminPassword string) error {
	var admins int64
	if err := gdb.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
		return errors.Wrap(err, "count admins")
	}
	if admins > 0 {
		logrus.Debug("Admin user already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		admin := models.User{Username: adminUsername, Password: string(hash), IsAdmin: true}
		if err := tx.Create(&admin).Error; err != nil {
			return errors.Wrap(err, "create admin user")
		}

		var channels int64
		if err := tx.Model(&models.Channel{}).Count(&channels).Error; err != nil {
			return errors.Wrap(err, "count channels")
		}
		if channels == 0 {
			general := models.Channel{Name: "general", Description: "General discussion", CreatedBy: &admin.ID}
			if err := tx.Create(&general).Error; err != nil {
				return errors.Wrap(err, "create default channel")
			}
		}

		logrus.Infof("Seeded admin user %q", adminUsername)
		return nil
	})
}
