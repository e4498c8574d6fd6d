package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the SQLite database at dsn, migrates the schema and stores
// the handle in DB.
func Connect(dsn string) error {
	config := &gorm.Config{
		Logger: &logger{
			Logger: log.Logger,
		},
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
	}

	dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)
	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Recycle connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// A single connection avoids SQLITE_BUSY errors.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	// The callbacks run after every query, create and update and translate
	// raw driver errors into the sentinel errors of this package.
	err = db.Callback().Query().After("*").Register("firefly:after_query", queryCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Query().After("*").Register("firefly:after_query_general", generalCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Create().After("*").Register("firefly:after_create", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Create().After("*").Register("firefly:after_create_general", generalCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("firefly:after_update", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("firefly:after_update_general", generalCallback)
	if err != nil {
		return err
	}

	DB = db

	return nil
}

// queryCallback rewrites the generic "no record" error into one that names
// the resource that was not found.
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// The table name tells us which resource was queried. Turn it
		// into its singular, human readable form.
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		match := regexp.MustCompile("ies$")
		name = match.ReplaceAllString(name, "y")

		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// createUpdateCallback translates constraint violations on create and update
// into the matching sentinel errors.
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: accounts.name") {
		db.Error = ErrAccountNameNotUnique
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: budgets.name") {
		db.Error = ErrBudgetNameNotUnique
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: categories.name") {
		db.Error = ErrCategoryNameNotUnique
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: tags.name") {
		db.Error = ErrTagNameNotUnique
	}
}

// generalCallback catches driver errors that have no actionable message for
// the caller.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// database/sql has no sentinel for the closed-database error, only the
	// hard-coded "sql: database is closed" string.
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		// Log the full driver error for operators, users get the generic one.
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral

		return
	}
}

// migrate brings the schema up to date with the model definitions.
func migrate(db *gorm.DB) (err error) {
	err = db.AutoMigrate(
		Account{},
		Journal{},
		Transaction{},
		Budget{},
		BudgetLimit{},
		Category{},
		Tag{},
		RuleGroup{},
		Rule{},
		RuleTrigger{},
		RuleAction{},
	)
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}
