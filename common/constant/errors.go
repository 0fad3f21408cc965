// Package constant holds the sentinel business errors shared across the
// command/query layer. Repositories and engine packages return these
// sentinels; common.ValidateBusinessError translates them into the typed,
// transport-facing errors defined in common/errors.go.
package constant

import "errors"

var (
	ErrProjectNotFound  = errors.New("0001")
	ErrDuplicateProject = errors.New("0002")
	ErrBranchNotFound   = errors.New("0003")
	ErrDuplicateBranch  = errors.New("0004")
	ErrDefaultBranchImmutable = errors.New("0005")

	ErrBucketNotFound      = errors.New("0006")
	ErrDuplicateBucketName = errors.New("0007")
	ErrBucketNotEmpty      = errors.New("0008")

	ErrTableNotFound      = errors.New("0009")
	ErrDuplicateTableName = errors.New("0010")
	ErrInvalidColumnType  = errors.New("0011")
	ErrUnmodifiableColumn = errors.New("0012")
	ErrSchemaMismatch     = errors.New("0013")
	ErrPrimaryKeyMissing  = errors.New("0014")
	ErrNotNullViolation   = errors.New("0015")

	ErrFileNotFound      = errors.New("0016")
	ErrEngineIO          = errors.New("0017")
	ErrOrphanedCatalogRow = errors.New("0018")

	ErrLockTimeout   = errors.New("0019")
	ErrLockReclaimed = errors.New("0020")

	ErrAttachLimitExceeded = errors.New("0021")

	ErrImportSourceInvalid    = errors.New("0022")
	ErrImportDuplicateKey     = errors.New("0023")
	ErrImportAborted          = errors.New("0024")
	ErrExportFilterInvalid    = errors.New("0025")

	ErrSnapshotNotFound = errors.New("0026")
	ErrSettingsInvalid  = errors.New("0027")

	ErrMissingBearerToken = errors.New("0028")
	ErrInvalidAPIKey      = errors.New("0029")
	ErrKeyNotAuthorized   = errors.New("0030")

	ErrMissingFieldsInRequest     = errors.New("0031")
	ErrUnexpectedFieldsInRequest  = errors.New("0032")
	ErrBadRequest                 = errors.New("0033")
	ErrInternalServer             = errors.New("0034")

	ErrIdempotencyKeyReplayConflict = errors.New("0035")

	ErrLinkTargetNotFound  = errors.New("0036")
	ErrLinkChainTooDeep    = errors.New("0037")

	ErrAPIKeyNotFound = errors.New("0038")

	ErrMetadataKeyLengthExceeded   = errors.New("0039")
	ErrMetadataValueLengthExceeded = errors.New("0040")
	ErrInvalidMetadataNesting      = errors.New("0041")
	ErrInvalidPathParameter        = errors.New("0042")
)
