package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"gcesync/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// Column names match the table the portal scrapers have always written to;
// other consumers read the same schema.
func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  codigo_gce TEXT UNIQUE,
  item_nome TEXT,
  ata TEXT,
  validade_ata TEXT,
  valor_unitario_ata REAL CHECK (valor_unitario_ata IS NULL OR valor_unitario_ata >= 0),
  validade_valor_referencia TEXT,
  valor_unitario_referencia REAL CHECK (valor_unitario_referencia IS NULL OR valor_unitario_referencia >= 0),
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_items_codigo_gce ON items(codigo_gce);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertItem seeds or renames a catalog item keyed by external code.
func (d *DB) InsertItem(code string, name *string) error {
	_, err := d.conn.Exec(`
INSERT INTO items (codigo_gce, item_nome) VALUES (?, ?)
ON CONFLICT(codigo_gce) DO UPDATE SET
  item_nome = COALESCE(excluded.item_nome, item_nome),
  updatedAt = CURRENT_TIMESTAMP
`, code, name)
	return err
}

// ListItems returns id and external code for every item that has a code; the
// refresh loop validates the code shape before touching the portal.
func (d *DB) ListItems() ([]internal.ItemRef, error) {
	rows, err := d.conn.Query(`SELECT id, codigo_gce FROM items WHERE codigo_gce IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ItemRef
	for rows.Next() {
		var ref internal.ItemRef
		if err := rows.Scan(&ref.ID, &ref.ExternalCode); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (d *DB) ListCatalogItems() ([]internal.CatalogItem, error) {
	rows, err := d.conn.Query(`
SELECT id, codigo_gce, item_nome, ata, validade_ata, valor_unitario_ata,
       validade_valor_referencia, valor_unitario_referencia, updatedAt
FROM items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CatalogItem
	for rows.Next() {
		var item internal.CatalogItem
		if err := rows.Scan(
			&item.ID, &item.ExternalCode, &item.DisplayName,
			&item.AgreementRef, &item.AgreementValidity, &item.AgreementPrice,
			&item.ReferenceValidity, &item.ReferencePrice, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (d *DB) GetItemByCode(code string) (*internal.CatalogItem, error) {
	var item internal.CatalogItem
	err := d.conn.QueryRow(`
SELECT id, codigo_gce, item_nome, ata, validade_ata, valor_unitario_ata,
       validade_valor_referencia, valor_unitario_referencia, updatedAt
FROM items WHERE codigo_gce = ?`, code).Scan(
		&item.ID, &item.ExternalCode, &item.DisplayName,
		&item.AgreementRef, &item.AgreementValidity, &item.AgreementPrice,
		&item.ReferenceValidity, &item.ReferencePrice, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateAgreementByCode applies the listing-sweep fields to the row with the
// given external code. One transaction per record: a failed write rolls back
// this record only. Zero rows affected means the code is not stored yet and
// is a valid outcome, not an error.
func (d *DB) UpdateAgreementByCode(code, ata, validade string, valor *float64) (int64, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
UPDATE items
SET ata = ?, validade_ata = ?, valor_unitario_ata = ?, updatedAt = CURRENT_TIMESTAMP
WHERE codigo_gce = ?
`, ata, validade, valor, code)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, tx.Commit()
}

// UpdateItemDetail applies a per-item lookup result keyed by internal id.
// Agreement and reference fields are always written, nils included; the name
// is written only when one was captured.
func (d *DB) UpdateItemDetail(id int, detail internal.ItemDetail) (int64, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var res sql.Result
	if detail.DisplayName != nil && *detail.DisplayName != "" {
		res, err = tx.Exec(`
UPDATE items
SET item_nome = ?, ata = ?, validade_ata = ?, valor_unitario_ata = ?,
    validade_valor_referencia = ?, valor_unitario_referencia = ?,
    updatedAt = CURRENT_TIMESTAMP
WHERE id = ?
`, detail.DisplayName, detail.AgreementRef, detail.AgreementValidity, detail.AgreementPrice,
			detail.ReferenceValidity, detail.ReferencePrice, id)
	} else {
		res, err = tx.Exec(`
UPDATE items
SET ata = ?, validade_ata = ?, valor_unitario_ata = ?,
    validade_valor_referencia = ?, valor_unitario_referencia = ?,
    updatedAt = CURRENT_TIMESTAMP
WHERE id = ?
`, detail.AgreementRef, detail.AgreementValidity, detail.AgreementPrice,
			detail.ReferenceValidity, detail.ReferencePrice, id)
	}
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, tx.Commit()
}
