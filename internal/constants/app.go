package constants

// Application Information
const (
	AppName    = "inventor-backend"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Cache Key Prefixes
const (
	CacheKeyPrefix       = "inventor:"
	CacheKeyList         = CacheKeyPrefix + "list:"
	CacheKeyListVersion  = CacheKeyPrefix + "list-version:"
	CacheKeyRevokedToken = CacheKeyPrefix + "revoked:"
)

// Collections and tables
const (
	CollectionUsers    = "users"
	CollectionPosts    = "posts"
	CollectionComments = "comments"
	CollectionEvents   = "events"
	CollectionLeads    = "leads"
	CollectionWebhooks = "webhooks"
	TableDataLogs      = "data_logs"
)
