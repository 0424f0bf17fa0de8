package postgres

import "time"

const preferencesTable = "preferences"

type preferenceTableModel struct {
	Key       string    `db:"key"`
	Value     []byte    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
