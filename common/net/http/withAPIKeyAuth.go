package http

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
)

// Principal is the authenticated identity attached to the request context
// once WithAPIKeyAuth succeeds. An admin key carries an empty ProjectID and
// IsAdmin=true; a project key carries its project id and IsAdmin=false.
type Principal struct {
	IsAdmin   bool
	ProjectID string
	KeyID     string
}

// KeyLookup resolves the SHA-256 hash of a presented key to its Principal.
// Implementations back it with the api_keys catalog table.
type KeyLookup func(ctx context.Context, keyHash string) (Principal, bool, error)

const (
	adminKeyPrefix = "admin_"
	projectKeyPrefix = "proj_"
)

// HashAPIKey returns the hex-encoded SHA-256 digest stored in the catalog
// for a presented bearer key. Keys are never stored or logged in cleartext.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// WithAPIKeyAuth enforces the two-tier bearer scheme: `admin_*` keys
// authorize project creation and system operations, `proj_<project>_admin_*`
// keys authorize all operations within the one project they name. The
// static admin key is compared in constant time against staticAdminKey;
// project keys are resolved through lookup against the catalog.
func WithAPIKeyAuth(staticAdminKey string, lookup KeyLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get("Authorization"))
		if token == "" {
			return WithError(c, common.ValidateBusinessError(cn.ErrMissingBearerToken, "auth"))
		}

		if staticAdminKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(staticAdminKey)) == 1 {
			c.Locals("principal", Principal{IsAdmin: true})
			return c.Next()
		}

		if !strings.HasPrefix(token, adminKeyPrefix) && !strings.HasPrefix(token, projectKeyPrefix) {
			return WithError(c, common.ValidateBusinessError(cn.ErrInvalidAPIKey, "auth"))
		}

		principal, found, err := lookup(c.UserContext(), HashAPIKey(token))
		if err != nil {
			return WithError(c, err)
		}

		if !found {
			return WithError(c, common.ValidateBusinessError(cn.ErrInvalidAPIKey, "auth"))
		}

		c.Locals("principal", principal)

		return c.Next()
	}
}

// PrincipalFromContext retrieves the Principal set by WithAPIKeyAuth.
func PrincipalFromContext(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals("principal").(Principal)
	return p, ok
}

// RequireProject rejects the request with permission-denied unless the
// authenticated principal is an admin or its ProjectID matches projectID.
func RequireProject(c *fiber.Ctx, projectID string) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return WithError(c, common.ValidateBusinessError(cn.ErrMissingBearerToken, "auth"))
	}

	if principal.IsAdmin || principal.ProjectID == projectID {
		return nil
	}

	return WithError(c, common.ValidateBusinessError(cn.ErrKeyNotAuthorized, "auth"))
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimPrefix(header, prefix)
	}

	return strings.TrimSpace(header)
}
