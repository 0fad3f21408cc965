package common

import (
	"errors"
	"fmt"
	"strings"

	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
)

// EntityNotFoundError maps onto the "not-found" error kind: a named resource
// does not exist, or is hidden in the current branch.
type EntityNotFoundError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e EntityNotFoundError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}

	if strings.TrimSpace(e.EntityType) != "" {
		return fmt.Sprintf("%s not found", e.EntityType)
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return "entity not found"
}

func (e EntityNotFoundError) Unwrap() error { return e.Err }

// EntityConflictError maps onto the "conflict" kind: a precondition was
// violated by concurrent state (duplicate name, PK violation, stale replay).
type EntityConflictError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e EntityConflictError) Error() string {
	if e.Err != nil && strings.TrimSpace(e.Message) == "" {
		return e.Err.Error()
	}

	return e.Message
}

func (e EntityConflictError) Unwrap() error { return e.Err }

// ValidationError maps onto the "invalid-argument" kind.
type ValidationError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e ValidationError) Error() string {
	if strings.TrimSpace(e.Code) != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	return e.Message
}

func (e ValidationError) Unwrap() error { return e.Err }

// UnauthenticatedError maps onto the "unauthenticated" kind: missing or
// invalid credential.
type UnauthenticatedError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e UnauthenticatedError) Error() string { return e.Message }

// ForbiddenError maps onto "permission-denied": credential valid but not
// authorized for the target resource.
type ForbiddenError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e ForbiddenError) Error() string { return e.Message }

// ResourceExhaustedError maps onto "resource-exhausted": quota or
// file-descriptor exhaustion.
type ResourceExhaustedError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e ResourceExhaustedError) Error() string { return e.Message }

// DeadlineExceededError maps onto "deadline-exceeded".
type DeadlineExceededError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e DeadlineExceededError) Error() string { return e.Message }

// UnavailableError maps onto "unavailable": transient engine/IO condition,
// retrying may succeed.
type UnavailableError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e UnavailableError) Error() string { return e.Message }

// InternalServerError maps onto "internal": bug or unexpected engine error.
type InternalServerError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e InternalServerError) Error() string { return e.Message }

// ResponseError is the JSON envelope returned to API clients.
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r ResponseError) Error() string { return r.Message }

// ValidationKnownFieldsError reports per-field validation failures.
type ValidationKnownFieldsError struct {
	EntityType string           `json:"entityType,omitempty"`
	Title      string           `json:"title,omitempty"`
	Code       string           `json:"code,omitempty"`
	Message    string           `json:"message,omitempty"`
	Fields     FieldValidations `json:"fields,omitempty"`
}

func (r ValidationKnownFieldsError) Error() string { return r.Message }

// FieldValidations maps a field name to a validation failure message.
type FieldValidations map[string]string

// ValidationUnknownFieldsError reports request fields the schema does not
// recognize.
type ValidationUnknownFieldsError struct {
	EntityType string        `json:"entityType,omitempty"`
	Title      string        `json:"title,omitempty"`
	Code       string        `json:"code,omitempty"`
	Message    string        `json:"message,omitempty"`
	Fields     UnknownFields `json:"fields,omitempty"`
}

func (r ValidationUnknownFieldsError) Error() string { return r.Message }

// UnknownFields maps an unrecognized field name to the raw value submitted.
type UnknownFields map[string]any

// ValidateInternalError wraps an unclassified error as InternalServerError,
// keeping the original detail in Err for logging rather than surfacing it.
func ValidateInternalError(err error, entityType string) error {
	return InternalServerError{
		EntityType: entityType,
		Code:       cn.ErrInternalServer.Error(),
		Title:      "Internal Server Error",
		Message:    "The server encountered an unexpected error. Please try again later or contact support.",
		Err:        err,
	}
}

// ValidateBadRequestFieldsError builds the known/unknown field validation
// error returned by request body decoding.
func ValidateBadRequestFieldsError(knownInvalidFields map[string]string, entityType string, unknownFields map[string]any) error {
	if len(unknownFields) == 0 && len(knownInvalidFields) == 0 {
		return errors.New("expected knownInvalidFields and unknownFields to be non-empty")
	}

	if len(unknownFields) > 0 {
		return ValidationUnknownFieldsError{
			EntityType: entityType,
			Code:       cn.ErrUnexpectedFieldsInRequest.Error(),
			Title:      "Unexpected Fields in the Request",
			Message:    "The request body contains more fields than expected. Please send only the allowed fields as per the documentation.",
			Fields:     unknownFields,
		}
	}

	return ValidationKnownFieldsError{
		EntityType: entityType,
		Code:       cn.ErrBadRequest.Error(),
		Title:      "Bad Request",
		Message:    "The server could not understand the request due to malformed syntax.",
		Fields:     knownInvalidFields,
	}
}

// ValidateBusinessError maps a sentinel error from cn (common/constant) onto
// one of the nine transport-facing error kinds, attaching a stable code and
// an operator-facing title/message. Call sites pass args for sentinels whose
// message is templated.
//
//nolint:gocyclo
func ValidateBusinessError(err error, entityType string, args ...any) error {
	switch {
	case errors.Is(err, cn.ErrProjectNotFound):
		return EntityNotFoundError{EntityType: entityType, Code: cn.ErrProjectNotFound.Error(), Title: "Project Not Found", Message: "No project was found for the given id."}
	case errors.Is(err, cn.ErrDuplicateProject):
		return EntityConflictError{EntityType: entityType, Code: cn.ErrDuplicateProject.Error(), Title: "Duplicate Project", Message: fmt.Sprintf("A project with id %s already exists.", args...)}
	case errors.Is(err, cn.ErrBranchNotFound):
		return EntityNotFoundError{EntityType: entityType, Code: cn.ErrBranchNotFound.Error(), Title: "Branch Not Found", Message: "No branch was found for the given id."}
	case errors.Is(err, cn.ErrDuplicateBranch):
		return EntityConflictError{EntityType: entityType, Code: cn.ErrDuplicateBranch.Error(), Title: "Duplicate Branch", Message: fmt.Sprintf("A branch named %s already exists in this project.", args...)}
	case errors.Is(err, cn.ErrDefaultBranchImmutable):
		return ValidationError{EntityType: entityType, Code: cn.ErrDefaultBranchImmutable.Error(), Title: "Default Branch Immutable", Message: "The default branch cannot be deleted or renamed."}
	case errors.Is(err, cn.ErrBucketNotFound):
		return EntityNotFoundError{EntityType: entityType, Code: cn.ErrBucketNotFound.Error(), Title: "Bucket Not Found", Message: "No bucket was found for the given name."}
	case errors.Is(err, cn.ErrDuplicateBucketName):
		return EntityConflictError{EntityType: entityType, Code: cn.ErrDuplicateBucketName.Error(), Title: "Duplicate Bucket Name", Message: fmt.Sprintf("A bucket named %s already exists.", args...)}
	case errors.Is(err, cn.ErrBucketNotEmpty):
		return EntityConflictError{EntityType: entityType, Code: cn.ErrBucketNotEmpty.Error(), Title: "Bucket Not Empty", Message: "The bucket still contains tables and cannot be deleted."}
	case errors.Is(err, cn.ErrTableNotFound):
		return EntityNotFoundError{EntityType: entityType, Code: cn.ErrTableNotFound.Error(), Title: "Table Not Found", Message: "No table was found for the given name."}
	case errors.Is(err, cn.ErrDuplicateTableName):
		return EntityConflictError{EntityType: entityType, Code: cn.ErrDuplicateTableName.Error(), Title: "Duplicate Table Name", Message: fmt.Sprintf("A table named %s already exists in this bucket.", args...)}
	case errors.Is(err, cn.ErrInvalidColumnType):
		return ValidationError{EntityType: entityType, Code: cn.ErrInvalidColumnType.Error(), Title: "Invalid Column Type", Message: "One or more column types are not supported by the engine."}
	case errors.Is(err, cn.ErrUnmodifiableColumn):
		return ValidationError{EntityType: entityType, Code: cn.ErrUnmodifiableColumn.Error(), Title: "Unmodifiable Column", Message: "Primary key columns cannot be dropped or retyped."}
	case errors.Is(err, cn.ErrSchemaMismatch):
		return ValidationError{EntityType: entityType, Code: cn.ErrSchemaMismatch.Error(), Title: "Schema Mismatch", Message: "The source columns do not match the target table's schema."}
	case errors.Is(err, cn.ErrPrimaryKeyMissing):
		return ValidationError{EntityType: entityType, Code: cn.ErrPrimaryKeyMissing.Error(), Title: "Primary Key Missing", Message: "A primary key is required for this dedup mode."}
	case errors.Is(err, cn.ErrNotNullViolation):
		return ValidationError{EntityType: entityType, Code: cn.ErrNotNullViolation.Error(), Title: "Not Null Violation", Message: "The column cannot be set NOT NULL while existing rows contain NULL."}
	case errors.Is(err, cn.ErrFileNotFound):
		return EntityNotFoundError{EntityType: entityType, Code: cn.ErrFileNotFound.Error(), Title: "Engine File Not Found", Message: "The underlying engine file is missing from storage."}
	case errors.Is(err, cn.ErrEngineIO):
		return UnavailableError{EntityType: entityType, Code: cn.ErrEngineIO.Error(), Title: "Engine I/O Error", Message: "A transient storage engine error occurred. Retrying may succeed."}
	case errors.Is(err, cn.ErrOrphanedCatalogRow):
		return EntityNotFoundError{EntityType: entityType, Code: cn.ErrOrphanedCatalogRow.Error(), Title: "Orphaned Catalog Row", Message: "The catalog row has no matching file and is marked orphaned."}
	case errors.Is(err, cn.ErrLockTimeout):
		return UnavailableError{EntityType: entityType, Code: cn.ErrLockTimeout.Error(), Title: "Table Locked", Message: "The table is locked by another operation. Please retry."}
	case errors.Is(err, cn.ErrLockReclaimed):
		return DeadlineExceededError{EntityType: entityType, Code: cn.ErrLockReclaimed.Error(), Title: "Lock Lease Expired", Message: "The write lock lease expired before the operation completed and was reclaimed."}
	case errors.Is(err, cn.ErrAttachLimitExceeded):
		return ResourceExhaustedError{EntityType: entityType, Code: cn.ErrAttachLimitExceeded.Error(), Title: "Attach Limit Exceeded", Message: "The maximum number of attached engine files was exceeded."}
	case errors.Is(err, cn.ErrImportSourceInvalid):
		return ValidationError{EntityType: entityType, Code: cn.ErrImportSourceInvalid.Error(), Title: "Import Source Invalid", Message: "The staged import source could not be parsed."}
	case errors.Is(err, cn.ErrImportDuplicateKey):
		return EntityConflictError{EntityType: entityType, Code: cn.ErrImportDuplicateKey.Error(), Title: "Duplicate Key On Import", Message: "The import source contains a primary key already present in the target table and dedup-mode is fail-on-duplicates."}
	case errors.Is(err, cn.ErrImportAborted):
		return InternalServerError{EntityType: entityType, Code: cn.ErrImportAborted.Error(), Title: "Import Aborted", Message: "The import pipeline was aborted and rolled back."}
	case errors.Is(err, cn.ErrExportFilterInvalid):
		return ValidationError{EntityType: entityType, Code: cn.ErrExportFilterInvalid.Error(), Title: "Export Filter Invalid", Message: "The export filter expression could not be parsed."}
	case errors.Is(err, cn.ErrSnapshotNotFound):
		return EntityNotFoundError{EntityType: entityType, Code: cn.ErrSnapshotNotFound.Error(), Title: "Snapshot Not Found", Message: "No snapshot was found for the given id."}
	case errors.Is(err, cn.ErrSettingsInvalid):
		return ValidationError{EntityType: entityType, Code: cn.ErrSettingsInvalid.Error(), Title: "Settings Invalid", Message: "The submitted settings document failed validation."}
	case errors.Is(err, cn.ErrMissingBearerToken):
		return UnauthenticatedError{EntityType: entityType, Code: cn.ErrMissingBearerToken.Error(), Title: "Token Missing", Message: "A bearer token must be provided in the Authorization header."}
	case errors.Is(err, cn.ErrInvalidAPIKey):
		return UnauthenticatedError{EntityType: entityType, Code: cn.ErrInvalidAPIKey.Error(), Title: "Invalid API Key", Message: "The provided API key is malformed or unrecognized."}
	case errors.Is(err, cn.ErrKeyNotAuthorized):
		return ForbiddenError{EntityType: entityType, Code: cn.ErrKeyNotAuthorized.Error(), Title: "Key Not Authorized", Message: "This API key is not authorized for the requested project."}
	case errors.Is(err, cn.ErrIdempotencyKeyReplayConflict):
		return EntityConflictError{EntityType: entityType, Code: cn.ErrIdempotencyKeyReplayConflict.Error(), Title: "Idempotency Key Reuse Conflict", Message: "This idempotency key was already used for a different request body."}
	case errors.Is(err, cn.ErrLinkTargetNotFound):
		return EntityNotFoundError{EntityType: entityType, Code: cn.ErrLinkTargetNotFound.Error(), Title: "Link Target Not Found", Message: "The linked bucket's target does not exist."}
	case errors.Is(err, cn.ErrLinkChainTooDeep):
		return ValidationError{EntityType: entityType, Code: cn.ErrLinkChainTooDeep.Error(), Title: "Link Chain Too Deep", Message: "Links may only be resolved one hop; the target is itself a link."}
	case errors.Is(err, cn.ErrAPIKeyNotFound):
		return EntityNotFoundError{EntityType: entityType, Code: cn.ErrAPIKeyNotFound.Error(), Title: "API Key Not Found", Message: "No API key was found for the given id."}
	case errors.Is(err, cn.ErrMetadataKeyLengthExceeded):
		return ValidationError{EntityType: entityType, Code: cn.ErrMetadataKeyLengthExceeded.Error(), Title: "Metadata Key Length Exceeded", Message: fmt.Sprintf("The metadata key %s exceeds the maximum allowed length.", args...)}
	case errors.Is(err, cn.ErrMetadataValueLengthExceeded):
		return ValidationError{EntityType: entityType, Code: cn.ErrMetadataValueLengthExceeded.Error(), Title: "Metadata Value Length Exceeded", Message: fmt.Sprintf("The metadata value %s exceeds the maximum allowed length.", args...)}
	case errors.Is(err, cn.ErrInvalidMetadataNesting):
		return ValidationError{EntityType: entityType, Code: cn.ErrInvalidMetadataNesting.Error(), Title: "Invalid Metadata Nesting", Message: "Metadata values must be flat; nested objects are not allowed."}
	case errors.Is(err, cn.ErrInvalidPathParameter):
		return ValidationError{EntityType: entityType, Code: cn.ErrInvalidPathParameter.Error(), Title: "Invalid Path Parameter", Message: fmt.Sprintf("The path parameter(s) %s could not be parsed as a valid identifier.", args...)}
	default:
		return err
	}
}
