package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"ArchiveDesk/internal/model"
)

// ErrNotFound is returned when an id is unknown.
var ErrNotFound = errors.New("not found")

// ErrInvalid wraps server-side validation failures.
var ErrInvalid = errors.New("invalid")

// InitDB открывает БД архива: PostgreSQL для postgres:// DSN, SQLite (modernc) для
// file:-DSN, in-memory SQLite при пустом DSN. Схема мигрируется сразу.
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	sqlite := true
	switch {
	case dsn == "":
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: "file:archive-" + uuid.NewString() + "?mode=memory&cache=shared"}
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		dial = postgres.Open(dsn)
		sqlite = false
	default:
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if sqlite {
		// одно соединение: in-memory база живёт, пока оно открыто
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(
		&userRow{}, &departmentRow{}, &collectionRow{}, &recordRow{},
		&fileRow{}, &tagRow{}, &publicationRow{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

type userRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	Login        string `gorm:"uniqueIndex;size:128"`
	Name         string
	Role         string `gorm:"size:32"`
	PasswordHash string
}

func (userRow) TableName() string { return "users" }

type departmentRow struct {
	Seq         uint64 `gorm:"primaryKey;autoIncrement"`
	ID          string `gorm:"uniqueIndex;size:36"`
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (departmentRow) TableName() string { return "departments" }

type collectionRow struct {
	Seq           uint64 `gorm:"primaryKey;autoIncrement"`
	ID            string `gorm:"uniqueIndex;size:36"`
	Title         string
	Description   string
	DepartmentIDs []string `gorm:"serializer:json;type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (collectionRow) TableName() string { return "collections" }

type recordRow struct {
	Seq          uint64 `gorm:"primaryKey;autoIncrement"`
	ID           string `gorm:"uniqueIndex;size:36"`
	Title        string
	Description  string
	AccessLevel  string             `gorm:"index;size:16"`
	CollectionID string             `gorm:"index;size:36"`
	Files        []model.FileAsset  `gorm:"serializer:json;type:text"`
	Tags         []model.SubjectTag `gorm:"serializer:json;type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (recordRow) TableName() string { return "records" }

type fileRow struct {
	ID       string `gorm:"primaryKey;size:36"`
	RecordID string `gorm:"index;size:36"`
	Filename string
	MimeType string
	Content  []byte
}

func (fileRow) TableName() string { return "files" }

// tagRow хранит стабильный id термина (ключ — термин в нижнем регистре).
type tagRow struct {
	Key string `gorm:"primaryKey"`
	ID  string `gorm:"size:36"`
}

func (tagRow) TableName() string { return "subject_tags" }

type publicationRow struct {
	Seq         uint64 `gorm:"primaryKey;autoIncrement"`
	ID          string `gorm:"uniqueIndex;size:36"`
	Kind        string `gorm:"index;size:16"`
	Title       string
	Status      string `gorm:"size:16"`
	PublishedAt *time.Time
	Body        string
	Description string
	Location    string
	StartsAt    *time.Time
	EndsAt      *time.Time
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (publicationRow) TableName() string { return "publications" }

type invalidError struct{ msg string }

func (e invalidError) Error() string { return e.msg }
func (e invalidError) Unwrap() error { return ErrInvalid }

func invalidf(format string, args ...any) error {
	return invalidError{msg: fmt.Sprintf(format, args...)}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
