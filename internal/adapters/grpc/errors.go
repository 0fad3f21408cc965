package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
)

// withError performs the gRPC-side half of the same switch
// common/net/http/errors.go's WithError performs for REST: the nine-kind
// taxonomy maps onto codes.Code instead of an HTTP status.
func withError(err error) error {
	switch e := err.(type) {
	case common.EntityNotFoundError:
		return status.Error(codes.NotFound, e.Error())
	case common.EntityConflictError:
		return status.Error(codes.AlreadyExists, e.Error())
	case common.ValidationError:
		return status.Error(codes.InvalidArgument, e.Error())
	case common.UnauthenticatedError:
		return status.Error(codes.Unauthenticated, e.Error())
	case common.ForbiddenError:
		return status.Error(codes.PermissionDenied, e.Error())
	case common.ResourceExhaustedError:
		return status.Error(codes.ResourceExhausted, e.Error())
	case common.DeadlineExceededError:
		return status.Error(codes.DeadlineExceeded, e.Error())
	case common.UnavailableError:
		return status.Error(codes.Unavailable, e.Error())
	default:
		var iErr common.InternalServerError
		_ = errors.As(common.ValidateInternalError(err, ""), &iErr)

		return status.Error(codes.Internal, iErr.Error())
	}
}
