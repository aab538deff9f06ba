package handlers

import (
	"strconv"

	"github.com/geocoder89/notehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(ctx *gin.Context, name, message string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(ctx, message, nil)
		return 0, false
	}
	return id, true
}

// ownedBy reports whether the session belongs to userID. A mismatch is answered
// as not-found so callers learn nothing about other users' data.
func ownedBy(ctx *gin.Context, userID int64, code, message string) bool {
	sessionID, ok := middlewares.UserIDFromContext(ctx)
	if !ok || sessionID != userID {
		RespondNotFound(ctx, code, message)
		return false
	}
	return true
}
