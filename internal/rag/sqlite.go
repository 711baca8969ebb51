package rag

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/civicroute/internal/models"
)

// SQLite layout: one table per array, each keyed by a contiguous idx
// starting at 0.
//
//	texts(idx INTEGER PRIMARY KEY, text TEXT)
//	sources(idx INTEGER PRIMARY KEY, source TEXT)
//	chunk_ids(idx INTEGER PRIMARY KEY, chunk_id INTEGER)
//	embeddings(idx INTEGER PRIMARY KEY, vector BLOB)  -- little-endian float32
func loadSQLiteStore(path string) (*Store, error) {
	const op = "load sqlite store"
	if _, err := os.Stat(path); err != nil {
		return nil, models.WrapError(models.ErrStoreLoad, op, err)
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, models.WrapError(models.ErrStoreLoad, op, err)
	}
	defer db.Close()

	texts, err := readColumn(db, "texts", "text", func(rows *sql.Rows, idx *int, dst *string) error {
		return rows.Scan(idx, dst)
	})
	if err != nil {
		return nil, models.WrapError(models.ErrStoreLoad, op, err)
	}
	sources, err := readColumn(db, "sources", "source", func(rows *sql.Rows, idx *int, dst *string) error {
		return rows.Scan(idx, dst)
	})
	if err != nil {
		return nil, models.WrapError(models.ErrStoreLoad, op, err)
	}
	chunkIDs, err := readColumn(db, "chunk_ids", "chunk_id", func(rows *sql.Rows, idx *int, dst *int) error {
		return rows.Scan(idx, dst)
	})
	if err != nil {
		return nil, models.WrapError(models.ErrStoreLoad, op, err)
	}
	embeddings, err := readColumn(db, "embeddings", "vector", func(rows *sql.Rows, idx *int, dst *[]float32) error {
		var blob []byte
		if err := rows.Scan(idx, &blob); err != nil {
			return err
		}
		if len(blob)%4 != 0 {
			return fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
		}
		*dst = bytesToFloat32Slice(blob)
		return nil
	})
	if err != nil {
		return nil, models.WrapError(models.ErrStoreLoad, op, err)
	}
	return NewStore(texts, embeddings, sources, chunkIDs)
}

// readColumn reads table ordered by idx and checks that idx runs 0..n-1.
func readColumn[T any](db *sql.DB, table, column string, scan func(*sql.Rows, *int, *T) error) ([]T, error) {
	rows, err := db.Query(fmt.Sprintf("SELECT idx, %s FROM %s ORDER BY idx", column, table))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var (
			idx int
			v   T
		)
		if err := scan(rows, &idx, &v); err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", table, len(out), err)
		}
		if idx != len(out) {
			return nil, fmt.Errorf("%s: idx %d out of sequence, expected %d", table, idx, len(out))
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return out, nil
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}

