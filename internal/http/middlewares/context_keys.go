package middlewares

// Keys stored on *gin.Context.
const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
)
