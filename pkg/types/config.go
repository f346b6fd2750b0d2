package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Outbound mail
	MailFromName   string `envconfig:"MAIL_FROM_NAME" default:"Pinnacle Property Management"`
	MailFromEmail  string `envconfig:"MAIL_FROM_EMAIL"`
	OperatorEmail  string `envconfig:"OPERATOR_EMAIL"`
	DocumentsEmail string `envconfig:"DOCUMENTS_EMAIL" default:"rental@pprmgt.com"`

	// Receipt uploads
	ReceiptBucketName string `envconfig:"RECEIPT_BUCKET_NAME" default:"payment-receipts"`

	// Operator account provisioned by the seed command
	AdminSeedEmail    string `envconfig:"ADMIN_SEED_EMAIL"`
	AdminSeedPassword string `envconfig:"ADMIN_SEED_PASSWORD"`

	// Admin session
	SessionCookieName string `envconfig:"SESSION_COOKIE_NAME" default:"admin_session"`
	SessionMaxAgeSec  int    `envconfig:"SESSION_MAX_AGE_SEC" default:"86400"` // 1 day

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
