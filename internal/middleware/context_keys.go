package middleware

import "context"

const userIDKey = contextKey("userID")

// GetUserIDFromCtx retrieves the authenticated user ID from the request
// context, with a boolean indicating whether it was present.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
