package constants

import "math"

// Context and session keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyActor   = "actor"
	ContextKeyTask    = "task"
	SessionCookieName = "taskflow_session"
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxTitleLength    = 100
	MaxMessageLength  = 255
)

// UsernamePattern is the accepted shape of a username.
const UsernamePattern = `^[a-zA-Z][a-zA-Z0-9_]+$`

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NotificationWindow is how many notifications are returned to a user at once.
const NotificationWindow = 20

// UnorderedPosition sorts tasks without a saved position after every positioned task.
const UnorderedPosition = math.MaxInt

// MaxAIGeneratedTasks caps the number of task drafts accepted from the model.
const MaxAIGeneratedTasks = 20

// TaskListRedirect is the fallback location returned with permission denials.
const TaskListRedirect = "/api/tasks"

// TokenTTLHours is the lifetime of API bearer tokens.
const TokenTTLHours = 24 * 7
