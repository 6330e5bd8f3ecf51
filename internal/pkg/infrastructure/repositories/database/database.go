package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/domain/credentials"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/logging"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/repositories/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

//Datastore is an interface that is used to inject the credential store into different handlers to improve testability
type Datastore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type myDB struct {
	impl *gorm.DB
}

//ConnectorFunc is used to inject a database connection method into NewDatabaseConnection
type ConnectorFunc func() (*gorm.DB, error)

//PostgreSQLSettings holds what is needed to connect to a postgresql server
type PostgreSQLSettings struct {
	Host     string
	User     string
	Name     string
	Password string
	SSLMode  string
}

const connectAttempts = 10

//NewPostgreSQLConnector opens a connection to a postgresql database
func NewPostgreSQLConnector(log logging.Logger, settings PostgreSQLSettings) ConnectorFunc {
	dbURI := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=%s password=%s",
		settings.Host, settings.User, settings.Name, settings.SSLMode, settings.Password)

	return func() (*gorm.DB, error) {
		var err error
		for attempt := 1; attempt <= connectAttempts; attempt++ {
			log.Infof("Connecting to database host %s ...", settings.Host)

			var db *gorm.DB
			db, err = gorm.Open(postgres.Open(dbURI), &gorm.Config{
				Logger: logger.Default.LogMode(logger.Warn),
			})
			if err == nil {
				return db, nil
			}

			log.Errorf("Failed to connect to database (attempt %d/%d): %s", attempt, connectAttempts, err.Error())
			time.Sleep(3 * time.Second)
		}
		return nil, err
	}
}

//NewSQLiteConnector opens a connection to a local sqlite database
func NewSQLiteConnector() ConnectorFunc {
	return func() (*gorm.DB, error) {
		db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})

		if err == nil {
			db.Exec("PRAGMA foreign_keys = ON")
		}

		return db, err
	}
}

//NewDatabaseConnection initializes a new connection to the database and wraps it in a Datastore
func NewDatabaseConnection(connect ConnectorFunc, log logging.Logger) (Datastore, error) {
	impl, err := connect()
	if err != nil {
		return nil, err
	}

	db := &myDB{
		impl: impl,
	}

	if err := db.impl.AutoMigrate(&models.Credential{}); err != nil {
		log.Errorf("Failed to migrate credential table: %s", err.Error())
		return nil, err
	}

	return db, nil
}

func (db *myDB) Get(ctx context.Context, key string) (string, error) {
	credential := models.Credential{}

	result := db.impl.WithContext(ctx).Where("credential_key = ?", key).First(&credential)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", credentials.ErrNotFound
		}
		return "", result.Error
	}

	return credential.Password, nil
}

//Set inserts the credential or, if the key already exists, replaces its password in the same statement
func (db *myDB) Set(ctx context.Context, key, value string) error {
	credential := &models.Credential{
		Key:      key,
		Password: value,
	}

	result := db.impl.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "credential_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"password", "updated_at"}),
	}).Create(credential)

	return result.Error
}
