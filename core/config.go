package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Addr            string
		DebugHost       string
		ShutdownTimeout time.Duration

		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// StorageConfig configures resource delivery: the object storage
	// endpoint/bucket the files live in, the optional CDN domain fronting
	// them, and the URL-signing secret + TTL for non-public resources.
	StorageConfig struct {
		Endpoint           string
		Bucket             string
		CDNDomain          string
		SecretKey          string
		URLExpirationDelta time.Duration
		PremiumRoles       []string
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		AppName  string
		Build    string
		WorkDir  string

		// credential signing; PreviousSecretKey is only set during a key
		// rotation window so outstanding tokens keep verifying.
		SecretKey         string
		PreviousSecretKey string

		FrontendBaseURL  string
		DefaultFromEmail string
		AdminEmail       string
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
	}
)

// NewConfig loads the configuration: defaults first, then config/.env.<env>
// if present, then environment variables prefixed with the current ENV name.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "TeaYouth")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "x1u$7y)2l&0q^8mdz#+5e*tj3(h!r)fc9(#wg4v^$bapn2kso")
	conf.SetDefault("previousSecretKey", "")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("adminEmail", "admin@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.addr", ":8000")
	conf.SetDefault("server.debugHost", "localhost:6060")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.name", "teayouth")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.user", "teayouth")
	conf.SetDefault("database.password", "teayouth")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("storage.endpoint", "https://oss-cn-hangzhou.aliyuncs.com")
	conf.SetDefault("storage.bucket", "teayouth-resources")
	conf.SetDefault("storage.cdnDomain", "")
	conf.SetDefault("storage.secretKey", "storage-dev-secret")
	conf.SetDefault("storage.urlExpirationDelta", time.Hour)
	conf.SetDefault("storage.premiumRoles", []string{"admin:"})

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	case "QA", "PROD":
		conf.SetDefault("debug", false)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: conf.GetBool("testMode"),
		Env:      env,
		AppName:  conf.GetString("appName"),
		Build:    conf.GetString("build"),
		WorkDir:  wd,

		SecretKey:         conf.GetString("secretKey"),
		PreviousSecretKey: conf.GetString("previousSecretKey"),

		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: conf.GetString("defaultFromEmail"),
		AdminEmail:       conf.GetString("adminEmail"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Addr:                      conf.GetString("server.addr"),
			DebugHost:                 conf.GetString("server.debugHost"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Name:          conf.GetString("database.name"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Storage: StorageConfig{
			Endpoint:           conf.GetString("storage.endpoint"),
			Bucket:             conf.GetString("storage.bucket"),
			CDNDomain:          conf.GetString("storage.cdnDomain"),
			SecretKey:          conf.GetString("storage.secretKey"),
			URLExpirationDelta: conf.GetDuration("storage.urlExpirationDelta"),
			PremiumRoles:       conf.GetStringSlice("storage.premiumRoles"),
		},
	}
}

// DefaultFrom returns the default sender address.
func (c *Config) DefaultFrom() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

func (d DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%s", d.Host, d.Port)
}

// Getwd returns the current working directory; it panics on failure as no
// part of the app can run without it.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return wd
}
