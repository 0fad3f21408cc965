package common

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/google/uuid"

	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
)

// Contains checks if an item is in a slice. This function uses type parameters to work with any slice type.
func Contains[T comparable](slice []T, item T) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}

	return false
}

// CheckMetadataKeyAndValueLength checks the length of every key and value in
// metadata against limit, used by entities that carry a freeform metadata map.
func CheckMetadataKeyAndValueLength(limit int, metadata map[string]any) error {
	for k, v := range metadata {
		if len(k) > limit {
			return cn.ErrMetadataKeyLengthExceeded
		}

		var value string

		switch t := v.(type) {
		case int:
			value = strconv.Itoa(t)
		case float64:
			value = strconv.FormatFloat(t, 'f', -1, 64)
		case string:
			value = t
		case bool:
			value = strconv.FormatBool(t)
		}

		if len(value) > limit {
			return cn.ErrMetadataValueLengthExceeded
		}
	}

	return nil
}

// SafeIntToUint64 converts a count/size value from int to uint64, clamping
// negative inputs to zero rather than wrapping.
func SafeIntToUint64(val int) uint64 {
	if val < 0 {
		return 0
	}

	return uint64(val)
}

var uuidPattern = regexp.MustCompile("^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[1-5][a-fA-F0-9]{3}-[89abAB][a-fA-F0-9]{3}-[a-fA-F0-9]{12}$")

// IsUUID reports whether s is a syntactically valid UUID.
func IsUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// GenerateUUIDv7 returns a new time-ordered UUIDv7, used for every catalog
// identifier so that primary key locality tracks insertion order.
func GenerateUUIDv7() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// StructToJSONString marshals s to its compact JSON string form, used when
// embedding a typed error inside a gRPC status detail.
func StructToJSONString(s any) (string, error) {
	jsonByte, err := json.Marshal(s)
	if err != nil {
		return "", err
	}

	return string(jsonByte), nil
}
