package grpc

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
)

type principalContextKey struct{}

// principalFromContext retrieves the Principal the auth interceptor
// attached to the incoming call's context.
func principalFromContext(ctx context.Context) (libhttp.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(libhttp.Principal)
	return p, ok
}

// requireProject is the gRPC-side equivalent of libhttp.RequireProject.
func requireProject(ctx context.Context, projectID string) error {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return withError(common.ValidateBusinessError(cn.ErrMissingBearerToken, "auth"))
	}

	if principal.IsAdmin || principal.ProjectID == projectID {
		return nil
	}

	return withError(common.ValidateBusinessError(cn.ErrKeyNotAuthorized, "auth"))
}

// withAPIKeyAuthInterceptor enforces the same two-tier bearer scheme as the
// REST transport's WithAPIKeyAuth, reading the token from the "authorization"
// metadata key instead of an HTTP header.
func withAPIKeyAuthInterceptor(staticAdminKey string, lookup libhttp.KeyLookup) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		token := bearerFromMetadata(ctx)
		if token == "" {
			return nil, withError(common.ValidateBusinessError(cn.ErrMissingBearerToken, "auth"))
		}

		if staticAdminKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(staticAdminKey)) == 1 {
			ctx = context.WithValue(ctx, principalContextKey{}, libhttp.Principal{IsAdmin: true})
			return handler(ctx, req)
		}

		principal, found, err := lookup(ctx, libhttp.HashAPIKey(token))
		if err != nil {
			return nil, withError(err)
		}

		if !found {
			return nil, withError(common.ValidateBusinessError(cn.ErrInvalidAPIKey, "auth"))
		}

		ctx = context.WithValue(ctx, principalContextKey{}, principal)

		return handler(ctx, req)
	}
}

func bearerFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}

	const prefix = "Bearer "

	token := values[0]
	if strings.HasPrefix(token, prefix) {
		return strings.TrimPrefix(token, prefix)
	}

	return strings.TrimSpace(token)
}
