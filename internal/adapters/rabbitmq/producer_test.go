package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestRoutingKeyFor(t *testing.T) {
	record := &mmodel.AuditRecord{ResourceType: "branch", Operation: "create"}

	assert.Equal(t, "branch.create", RoutingKeyFor(record))
}
