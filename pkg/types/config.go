package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// JWT signing secret for session tokens (HS256)
	JWTSecret       string `envconfig:"JWT_SECRET"`
	TokenTTLMinutes int    `envconfig:"TOKEN_TTL_MINUTES" default:"720"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Extraction service; heuristic fallback is used when unset
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4.1-mini"`

	// Notifications; logging mock is used when unset
	ResendAPIKey string `envconfig:"RESEND_API_KEY"`
	NotifyFrom   string `envconfig:"NOTIFY_FROM" default:"MatchFoundry <noreply@matchfoundry.app>"`

	// Meeting link generation
	MeetingBaseURL string `envconfig:"MEETING_BASE_URL" default:"https://meet.jit.si"`
}
