package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// maxAutoSnapshots is how many automatic snapshots are kept before the oldest are pruned.
const maxAutoSnapshots = 5

// SnapshotManager copies the ledger database to point-in-time snapshot files.
type SnapshotManager struct {
	db           *sql.DB
	now          func() time.Time
	dbPath       string
	snapshotsDir string
}

// SnapshotMetadata is persisted next to each snapshot file.
type SnapshotMetadata struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
	IsAuto        bool           `json:"is_auto"`
}

// SnapshotInfo is the listing view of a snapshot.
type SnapshotInfo struct {
	CreatedAt     time.Time
	ID            string
	Description   string
	FileSize      int64
	Transactions  int
	Categories    int
	Shareholders  int
	Disbursements int
	SchemaVersion int
	IsAuto        bool
}

// Snapshot errors.
var (
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrSnapshotCorrupted = errors.New("snapshot integrity check failed")
	ErrSnapshotExists    = errors.New("snapshot already exists")
	ErrInvalidSnapshotID = errors.New("invalid snapshot id: cannot contain path separators")
)

// snapshotTables maps each counted table to its count query.
var snapshotTables = map[string]string{
	"transactions":       "SELECT COUNT(*) FROM transactions",
	"expense_categories": "SELECT COUNT(*) FROM expense_categories",
	"shareholders":       "SELECT COUNT(*) FROM shareholders",
	"disbursements":      "SELECT COUNT(*) FROM disbursements",
}

// NewSnapshotManager creates a manager storing snapshots in <db dir>/snapshots.
func NewSnapshotManager(db *sql.DB, dbPath string) (*SnapshotManager, error) {
	if dbPath == "" || dbPath == ":memory:" {
		return nil, fmt.Errorf("snapshots require a file-backed database")
	}

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	snapshotsDir := filepath.Join(filepath.Dir(absPath), "snapshots")
	if err := os.MkdirAll(snapshotsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	return &SnapshotManager{
		db:           db,
		dbPath:       absPath,
		snapshotsDir: snapshotsDir,
		now:          time.Now,
	}, nil
}

func validateSnapshotID(id string) error {
	if strings.Contains(id, "/") || strings.Contains(id, "\\") || strings.Contains(id, "..") {
		return ErrInvalidSnapshotID
	}
	return nil
}

func (sm *SnapshotManager) paths(id string) (dbFile, metaFile string) {
	return filepath.Join(sm.snapshotsDir, id+".db"), filepath.Join(sm.snapshotsDir, id+".meta.json")
}

// Create writes a new snapshot. An empty id gets a timestamped name.
func (sm *SnapshotManager) Create(ctx context.Context, id, description string) (*SnapshotInfo, error) {
	return sm.create(ctx, id, description, false)
}

// AutoSnapshot creates a snapshot before a bulk operation and prunes old automatic ones.
func (sm *SnapshotManager) AutoSnapshot(ctx context.Context, reason string) (*SnapshotInfo, error) {
	id := fmt.Sprintf("auto-%s-%s", reason, sm.now().Format("2006-01-02-150405"))
	info, err := sm.create(ctx, id, "Automatic snapshot before "+reason, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create auto-snapshot: %w", err)
	}

	if err := sm.pruneAutoSnapshots(ctx); err != nil {
		slog.Warn("failed to prune old auto-snapshots", "error", err)
	}
	return info, nil
}

func (sm *SnapshotManager) create(ctx context.Context, id, description string, isAuto bool) (*SnapshotInfo, error) {
	if id == "" {
		id = "snapshot-" + sm.now().Format("2006-01-02-150405")
	}
	if err := validateSnapshotID(id); err != nil {
		return nil, err
	}

	dbFile, metaFile := sm.paths(id)
	if _, err := os.Stat(dbFile); err == nil {
		return nil, ErrSnapshotExists
	}

	var schemaVersion int
	if err := sm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	rowCounts := sm.collectRowCounts(ctx)

	if err := sm.backupDatabase(ctx, dbFile); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	stat, err := os.Stat(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	metadata := SnapshotMetadata{
		ID:            id,
		CreatedAt:     sm.now(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     rowCounts,
		SchemaVersion: schemaVersion,
		IsAuto:        isAuto,
	}

	if err := saveMetadata(metaFile, metadata); err != nil {
		if rmErr := os.Remove(dbFile); rmErr != nil {
			slog.Error("failed to remove snapshot file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	if err := sm.storeMetadataInDB(ctx, metadata); err != nil {
		// The file pair is the source of truth; the table is only an index.
		slog.Warn("failed to store snapshot metadata in database", "error", err)
	}

	slog.Info("created snapshot", "id", id, "size", metadata.FileSize, "auto", isAuto)
	info := metadata.info()
	return &info, nil
}

func (m SnapshotMetadata) info() SnapshotInfo {
	return SnapshotInfo{
		ID:            m.ID,
		CreatedAt:     m.CreatedAt,
		Description:   m.Description,
		FileSize:      m.FileSize,
		Transactions:  m.RowCounts["transactions"],
		Categories:    m.RowCounts["expense_categories"],
		Shareholders:  m.RowCounts["shareholders"],
		Disbursements: m.RowCounts["disbursements"],
		SchemaVersion: m.SchemaVersion,
		IsAuto:        m.IsAuto,
	}
}

// List returns all snapshots, newest first.
func (sm *SnapshotManager) List(_ context.Context) ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(sm.snapshotsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots directory: %w", err)
	}

	snapshots := make([]SnapshotInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}

		metadata, err := loadMetadata(filepath.Join(sm.snapshotsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable snapshot metadata", "file", entry.Name(), "error", err)
			continue
		}
		snapshots = append(snapshots, metadata.info())
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Get returns the metadata of one snapshot.
func (sm *SnapshotManager) Get(_ context.Context, id string) (*SnapshotInfo, error) {
	if err := validateSnapshotID(id); err != nil {
		return nil, err
	}

	_, metaFile := sm.paths(id)
	metadata, err := loadMetadata(metaFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot metadata: %w", err)
	}
	info := metadata.info()
	return &info, nil
}

// Restore replaces the live database with a snapshot. The manager's connection is
// closed; callers must reopen storage afterwards.
func (sm *SnapshotManager) Restore(_ context.Context, id string) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}

	dbFile, metaFile := sm.paths(id)
	if _, err := os.Stat(dbFile); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to access snapshot: %w", err)
	}

	if _, err := loadMetadata(metaFile); err != nil {
		return fmt.Errorf("failed to load snapshot metadata: %w", err)
	}

	if err := verifyIntegrity(dbFile); err != nil {
		return ErrSnapshotCorrupted
	}

	if err := sm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backupPath := sm.dbPath + ".restore-backup"
	if err := copyFile(sm.dbPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}

	if err := copyFile(dbFile, sm.dbPath); err != nil {
		if restoreErr := copyFile(backupPath, sm.dbPath); restoreErr != nil {
			slog.Error("failed to restore backup after snapshot restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	// Stale WAL files belong to the replaced database.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(sm.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove stale sqlite file", "file", sm.dbPath+suffix, "error", err)
		}
	}

	if err := os.Remove(backupPath); err != nil {
		slog.Error("failed to remove backup file", "error", err)
	}

	slog.Info("restored snapshot", "id", id)
	return nil
}

// Delete removes a snapshot and its metadata.
func (sm *SnapshotManager) Delete(ctx context.Context, id string) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}

	dbFile, metaFile := sm.paths(id)
	if _, err := os.Stat(dbFile); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to access snapshot: %w", err)
	}

	if err := os.Remove(dbFile); err != nil {
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}
	if err := os.Remove(metaFile); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "path", metaFile)
	}
	if _, err := sm.db.ExecContext(ctx, "DELETE FROM snapshot_metadata WHERE id = ?", id); err != nil {
		slog.Debug("failed to remove snapshot metadata from database", "error", err, "id", id)
	}
	return nil
}

func (sm *SnapshotManager) pruneAutoSnapshots(ctx context.Context) error {
	snapshots, err := sm.List(ctx)
	if err != nil {
		return err
	}

	autoCount := 0
	for _, snap := range snapshots {
		if !snap.IsAuto {
			continue
		}
		autoCount++
		if autoCount > maxAutoSnapshots {
			if err := sm.Delete(ctx, snap.ID); err != nil {
				slog.Debug("failed to delete old auto-snapshot", "error", err, "snapshot", snap.ID)
			}
		}
	}
	return nil
}

func (sm *SnapshotManager) collectRowCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int, len(snapshotTables))
	for table, query := range snapshotTables {
		var count int
		if err := sm.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			counts[table] = 0
			continue
		}
		counts[table] = count
	}
	return counts
}

func (sm *SnapshotManager) backupDatabase(ctx context.Context, destPath string) error {
	if _, err := sm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	if strings.ContainsAny(destPath, `'";`) {
		return fmt.Errorf("invalid destination path: contains forbidden characters")
	}
	if !filepath.IsAbs(destPath) || strings.Contains(destPath, "..") {
		return fmt.Errorf("invalid destination path")
	}

	// #nosec G201 - destPath is validated above
	if _, err := sm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		slog.Debug("VACUUM INTO failed, falling back to file copy", "error", err)
		return copyFile(sm.dbPath, destPath)
	}
	return nil
}

func (sm *SnapshotManager) storeMetadataInDB(ctx context.Context, metadata SnapshotMetadata) error {
	rowCountsJSON, err := json.Marshal(metadata.RowCounts)
	if err != nil {
		return err
	}

	query := `
		INSERT OR REPLACE INTO snapshot_metadata
		(id, created_at, description, file_size, row_counts, schema_version, is_auto)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = sm.db.ExecContext(ctx, query,
		metadata.ID,
		metadata.CreatedAt,
		metadata.Description,
		metadata.FileSize,
		string(rowCountsJSON),
		metadata.SchemaVersion,
		metadata.IsAuto,
	)
	return err
}

func copyFile(src, dst string) error {
	if filepath.Clean(src) != src || filepath.Clean(dst) != dst {
		return fmt.Errorf("invalid file paths")
	}

	tmpDst := dst + ".tmp"

	// #nosec G304 - src is a cleaned path under our control
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	// #nosec G304 - tmpDst is derived from a cleaned path
	destination, err := os.Create(tmpDst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmpDst)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmpDst)
		return err
	}
	return os.Rename(tmpDst, dst)
}

func saveMetadata(path string, metadata SnapshotMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func loadMetadata(path string) (*SnapshotMetadata, error) {
	// #nosec G304 - path is built from the snapshots directory and a validated id
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var metadata SnapshotMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
