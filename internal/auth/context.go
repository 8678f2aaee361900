package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxOwnerID    = "owner_id"
	CtxOwnerEmail = "owner_email"
)

// Identity extracts the requesting user's identity from the Gin
// context. Set by RequireIdentity or DevIdentity; the publish pipeline
// trusts these values without re-verification.
func Identity(c *gin.Context) (ownerID, ownerEmail string) {
	return strings.TrimSpace(c.GetString(CtxOwnerID)),
		strings.TrimSpace(c.GetString(CtxOwnerEmail))
}
