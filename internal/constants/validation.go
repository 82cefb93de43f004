package constants

// Field Length Limits
const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MaxExcerptLength  = 240
	MaxCommentLength  = 2000
	MaxAuditBodyBytes = 16 * 1024
)

// Token Settings
const (
	AccessTokenExpiryMinutes = 15
	RefreshTokenExpiryHours  = 7 * 24
)

// Redacted audit fields
var SensitiveFields = []string{"password", "currentPassword", "newPassword", "confirmPassword", "token", "refreshToken", "secret"}
