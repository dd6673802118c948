package db

import (
	"Gin_postgres_redis_library/models"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options 连接参数；DSN 为空时由 Host/User/... 拼出 postgres DSN
type Options struct {
	Driver   string
	DSN      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	LogLevel logger.LogLevel
}

func (o Options) dsn() string {
	if o.DSN != "" {
		return o.DSN
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		o.Host, o.User, o.Password, o.Name, o.Port,
	)
}

// Open connects to the configured database. It does not migrate.
func Open(o Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch o.Driver {
	case "", DriverPostgres:
		dialector = postgres.Open(o.dsn())
	case DriverSQLite:
		dialector = sqlite.Open(o.DSN)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", o.Driver)
	}
	if o.LogLevel == 0 {
		o.LogLevel = logger.Warn
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(o.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if o.Driver == DriverSQLite {
		// sqlite 只允许一个写连接，避免 "database is locked"
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	slog.Info("database connected", "driver", dialector.Name())
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Book{}, &models.Borrower{}, &models.BorrowRecord{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	// 未删除的书 title 唯一：并发入库同名书时第二个 INSERT 会冲突，转为合并
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_title_active
	  ON %s (title)
	  WHERE deleted = FALSE;
	`, models.BookTable, models.BookTable)).Error; err != nil {
		return err
	}

	// 查询某借阅人当前未归还记录（借阅上限检查）
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_by_borrower
	  ON %s (borrower_id)
	  WHERE return_date IS NULL;
	`, models.BorrowRecordTable, models.BorrowRecordTable)).Error; err != nil {
		return err
	}

	return nil
}
