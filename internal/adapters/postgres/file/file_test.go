package file

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	id, projectID, name, path, sha256, contentType string
	sizeBytes                                       int64
	staging                                         bool
	expiresAt                                       sql.NullTime
	createdAt                                       time.Time
}

func (r fakeRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.id
	*dest[1].(*string) = r.projectID
	*dest[2].(*string) = r.name
	*dest[3].(*string) = r.path
	*dest[4].(*int64) = r.sizeBytes
	*dest[5].(*string) = r.sha256
	*dest[6].(*string) = r.contentType
	*dest[7].(*bool) = r.staging
	*dest[8].(*sql.NullTime) = r.expiresAt
	*dest[9].(*time.Time) = r.createdAt

	return nil
}

func TestScanFile_NoExpiry(t *testing.T) {
	now := time.Now()

	row := fakeRow{
		id: "file-1", projectID: "proj-1", name: "orders.csv", path: "/staging/orders.csv",
		sizeBytes: 1024, sha256: "abc123", contentType: "text/csv", staging: false, createdAt: now,
	}

	f, err := scanFile(row)

	require.NoError(t, err)
	assert.Equal(t, "file-1", f.ID)
	assert.Nil(t, f.ExpiresAt)
	assert.False(t, f.Staging)
}

func TestScanFile_WithExpiry(t *testing.T) {
	expiry := time.Now().Add(time.Hour)

	row := fakeRow{
		id: "file-2", staging: true, expiresAt: sql.NullTime{Time: expiry, Valid: true}, createdAt: time.Now(),
	}

	f, err := scanFile(row)

	require.NoError(t, err)
	require.NotNil(t, f.ExpiresAt)
	assert.WithinDuration(t, expiry, *f.ExpiresAt, 0)
}
