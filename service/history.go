package service

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"img2svg/model"
	vtypes "img2svg/type"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("not found")

// HistoryRepo 转换历史，SVG 以 zstd 压缩后存入 sqlite
type HistoryRepo struct {
	db *sql.DB
}

// RunMigrations 使用独立连接执行内嵌迁移
func RunMigrations(dbPath string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+dbPath)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// OpenHistory 迁移并打开数据库
func OpenHistory(path string) (*HistoryRepo, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := RunMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return &HistoryRepo{db: db}, nil
}

func (r *HistoryRepo) Close() error {
	return r.db.Close()
}

// Insert 写入一条记录，CreatedAt 为零值时取当前时间
func (r *HistoryRepo) Insert(ctx context.Context, e model.HistoryEntry, svg string) error {
	blob, err := compressZstd([]byte(svg))
	if err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO conversions (id, md5, width, height, preset,
			complexity, color_simplification, path_smoothing,
			byte_length, path_count, url, svg, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.MD5, e.Width, e.Height, e.Preset,
		e.Settings.Complexity, e.Settings.ColorSimplification, e.Settings.PathSmoothing,
		e.ByteLength, e.PathCount, e.URL, blob, e.CreatedAt.UTC().Truncate(time.Second))
	if err != nil {
		return fmt.Errorf("insert conversion %s: %w", e.ID, err)
	}
	return nil
}

const entryColumns = `id, md5, width, height, preset,
	complexity, color_simplification, path_smoothing,
	byte_length, path_count, url, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner, extra ...any) (model.HistoryEntry, error) {
	var (
		e model.HistoryEntry
		s vtypes.Settings
	)
	dest := []any{&e.ID, &e.MD5, &e.Width, &e.Height, &e.Preset,
		&s.Complexity, &s.ColorSimplification, &s.PathSmoothing,
		&e.ByteLength, &e.PathCount, &e.URL, &e.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return e, err
	}
	e.Settings = s
	return e, nil
}

// Get 按 ID 取记录和 SVG 正文
func (r *HistoryRepo) Get(ctx context.Context, id string) (*model.HistoryEntry, string, error) {
	var blob []byte
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+`, svg FROM conversions WHERE id = ?`, id)
	e, err := scanEntry(row, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("get conversion %s: %w", id, err)
	}
	svg, err := decompressZstd(blob)
	if err != nil {
		return nil, "", err
	}
	return &e, string(svg), nil
}

// List 按时间倒序分页
func (r *HistoryRepo) List(ctx context.Context, limit, offset int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM conversions
		ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`, limit, max(0, offset))
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
