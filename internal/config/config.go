package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port                   string `env:"PORT" envDefault:"8080"`
	DBUser                 string `env:"DB_USER,required"`
	DBPassword             string `env:"DB_PASSWORD,required"`
	DBHost                 string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME,required"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	// ModuleVersion is the version the running binary implements; the
	// migration runner upgrades the schema up to this version.
	ModuleVersion string `env:"MODULE_VERSION" envDefault:"3.4.15"`

	// File store. When StorageBucket is set attachments go to GCS,
	// otherwise under FilesBasePath on local disk.
	FilesBasePath string `env:"FILES_BASE_PATH" envDefault:"files"`
	StorageBucket string `env:"STORAGE_BUCKET"`
	// GoogleCredentialsFile overrides application default credentials
	// for the GCS client.
	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`

	// Outgoing mail.
	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASSWORD"`
	MailFrom string `env:"MAIL_FROM"`

	// Main installation identity, used for mail placeholders.
	MainTitle string `env:"MAIN_TITLE" envDefault:"Digital Collections"`
	MainURL   string `env:"MAIN_URL" envDefault:"http://localhost:8080"`

	// Optional Gemini spam scoring of submitted bodies.
	SpamCheckEnabled bool   `env:"SPAM_CHECK_ENABLED" envDefault:"false"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
