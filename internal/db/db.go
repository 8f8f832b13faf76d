// Файл: internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pkg/errors"
)

// Поддерживаемые драйверы database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store - хранилище пропозиций и журнала статусов поверх database/sql.
// Каждая мутация выполняется одним оператором или одной транзакцией,
// межоперационных блокировок нет: при гонке двух акторов побеждает последняя запись.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open открывает соединение с базой данных и создаёт схему, если её ещё нет.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("неподдерживаемый драйвер БД %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка подключения к базе данных")
	}

	if driver == DriverSQLite {
		// SQLite допускает одного писателя; один коннект исключает "database is locked".
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(20)
		conn.SetMaxIdleConns(10)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ошибка проверки соединения с базой данных")
	}
	log.Printf("Успешное подключение к базе данных (%s).", driver)

	s := &Store{
		db:     conn,
		driver: driver,
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := s.initSchema(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close закрывает соединение с БД.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	log.Println("Закрытие соединения с базой данных.")
	return s.db.Close()
}

// Ping проверяет доступность БД (используется в /healthz).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// sqliteDSN создаёт каталог для файла БД и добавляет параметры по умолчанию.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = filepath.Join("data", "bot.db")
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" && !strings.HasPrefix(path, ":memory:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("sqliteDSN: не удалось создать каталог %s: %v", dir, err)
		}
	}
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000&_foreign_keys=on"
	}
	return dsn
}

// rebind заменяет плейсхолдеры "?" на "$N" для PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) schema() string {
	if s.driver == DriverPostgres {
		return `
        CREATE TABLE IF NOT EXISTS offers (
            id BIGSERIAL PRIMARY KEY,
            creator_id BIGINT NOT NULL,
            creator_name TEXT,
            category TEXT,
            housing_type TEXT,
            street TEXT,
            city TEXT,
            district TEXT,
            perks TEXT,
            rent TEXT,
            deposit TEXT,
            commission TEXT,
            parking TEXT,
            move_in TEXT,
            viewings TEXT,
            broker TEXT,
            status TEXT,
            group_chat_id BIGINT,
            group_message_id BIGINT,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        );
        CREATE TABLE IF NOT EXISTS offer_photos (
            id BIGSERIAL PRIMARY KEY,
            offer_id BIGINT NOT NULL REFERENCES offers(id),
            file_id TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        );
        CREATE TABLE IF NOT EXISTS status_events (
            id BIGSERIAL PRIMARY KEY,
            offer_id BIGINT NOT NULL REFERENCES offers(id),
            status TEXT NOT NULL,
            actor_id BIGINT,
            actor_name TEXT,
            ts TIMESTAMPTZ NOT NULL
        );`
	}
	return `
        CREATE TABLE IF NOT EXISTS offers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            creator_id INTEGER NOT NULL,
            creator_name TEXT,
            category TEXT,
            housing_type TEXT,
            street TEXT,
            city TEXT,
            district TEXT,
            perks TEXT,
            rent TEXT,
            deposit TEXT,
            commission TEXT,
            parking TEXT,
            move_in TEXT,
            viewings TEXT,
            broker TEXT,
            status TEXT,
            group_chat_id INTEGER,
            group_message_id INTEGER,
            created_at TIMESTAMP NOT NULL,
            updated_at TIMESTAMP NOT NULL
        );
        CREATE TABLE IF NOT EXISTS offer_photos (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            offer_id INTEGER NOT NULL REFERENCES offers(id),
            file_id TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL
        );
        CREATE TABLE IF NOT EXISTS status_events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            offer_id INTEGER NOT NULL REFERENCES offers(id),
            status TEXT NOT NULL,
            actor_id INTEGER,
            actor_name TEXT,
            ts TIMESTAMP NOT NULL
        );`
}

// initSchema создаёт таблицы (в транзакции), затем индексы.
func (s *Store) initSchema(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "ошибка начала транзакции для создания таблиц")
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			log.Printf("Откат транзакции из-за ошибки: %v", err)
			tx.Rollback()
		}
	}()

	// lib/pq и go-sqlite3 принимают несколько операторов в одном Exec только без параметров,
	// поэтому выполняем их по одному.
	for _, stmt := range splitStatements(s.schema()) {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "ошибка создания таблиц (%.40s...)", stmt)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "ошибка фиксации транзакции создания таблиц")
	}
	log.Println("Создание таблиц (если не существуют) завершено.")

	createIndexesSQL := `
        CREATE INDEX IF NOT EXISTS idx_offer_photos_offer_id ON offer_photos(offer_id, id);
        CREATE INDEX IF NOT EXISTS idx_status_events_ts ON status_events(ts);
        CREATE INDEX IF NOT EXISTS idx_status_events_offer_id ON status_events(offer_id, id);
    `
	for _, stmt := range splitStatements(createIndexesSQL) {
		if _, errIdx := s.db.ExecContext(ctx, stmt); errIdx != nil {
			log.Printf("Предупреждение: ошибка при создании индекса ('%s'): %v.", stmt, errIdx)
		}
	}
	log.Println("Инициализация базы данных успешно завершена.")
	return nil
}

func splitStatements(sqlText string) []string {
	var out []string
	for _, stmt := range strings.Split(sqlText, ";") {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
