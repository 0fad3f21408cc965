package snapshot

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	id, projectID, bucket, table, typ, path, schemaJSON, description, createdBy string
	rowCount, sizeBytes                                                        int64
	createdAt                                                                  time.Time
	expiresAt                                                                  sql.NullTime
}

func (r fakeRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.id
	*dest[1].(*string) = r.projectID
	*dest[2].(*string) = r.bucket
	*dest[3].(*string) = r.table
	*dest[4].(*string) = r.typ
	*dest[5].(*string) = r.path
	*dest[6].(*int64) = r.rowCount
	*dest[7].(*int64) = r.sizeBytes
	*dest[8].(*string) = r.schemaJSON
	*dest[9].(*string) = r.description
	*dest[10].(*string) = r.createdBy
	*dest[11].(*time.Time) = r.createdAt
	*dest[12].(*sql.NullTime) = r.expiresAt

	return nil
}

func TestScanRow_NoExpiry(t *testing.T) {
	row := fakeRow{
		id: "snap-1", projectID: "proj-1", bucket: "in.raw", table: "orders",
		typ: "full", path: "/snapshots/snap-1.parquet", rowCount: 100, sizeBytes: 4096,
		createdAt: time.Now(),
	}

	snap, err := scanRow(row)

	require.NoError(t, err)
	assert.Equal(t, "snap-1", snap.ID)
	assert.Nil(t, snap.ExpiresAt)
}

func TestScanRow_WithExpiry(t *testing.T) {
	expiry := time.Now().Add(24 * time.Hour)

	row := fakeRow{
		id: "snap-2", expiresAt: sql.NullTime{Time: expiry, Valid: true}, createdAt: time.Now(),
	}

	snap, err := scanRow(row)

	require.NoError(t, err)
	require.NotNil(t, snap.ExpiresAt)
	assert.WithinDuration(t, expiry, *snap.ExpiresAt, 0)
}
