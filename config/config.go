package config

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	LatePolicyReject = "reject"
	LatePolicyFlag   = "flag"

	InsightsProviderML     = "ml"
	InsightsProviderGemini = "gemini"
)

type Config struct {
	Server       Server
	Database     Database
	Auth         Auth
	Exam         Exam
	ML           ML
	Insights     Insights
	GeminiApiKey string
	LogLevel     string
}

type Server struct {
	Port    string
	GinMode string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Auth struct {
	JWTSecret string
	// AllowUserIDParam lets requests identify the user with a user_id query
	// parameter, X-User-ID header or body field when no bearer token is sent.
	AllowUserIDParam bool
}

type Exam struct {
	EnforcePrerequisites bool
	DefaultPassingScore  int
	LateGraceSeconds     int
	LateSubmissionPolicy string
}

type ML struct {
	ServiceURL   string
	ServiceToken string
}

type Insights struct {
	Provider string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("AUTH_ALLOW_USER_ID_PARAM", true)
	viper.SetDefault("EXAM_ENFORCE_PREREQUISITES", false)
	viper.SetDefault("EXAM_DEFAULT_PASSING_SCORE", 70)
	viper.SetDefault("EXAM_LATE_GRACE_SECONDS", 30)
	viper.SetDefault("EXAM_LATE_SUBMISSION_POLICY", LatePolicyReject)
	viper.SetDefault("ML_SERVICE_URL", "https://adamnwr-ml-insight-microservice.hf.space")
	viper.SetDefault("INSIGHTS_PROVIDER", InsightsProviderML)
	viper.SetDefault("LOG_LEVEL", "info")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.GinMode = viper.GetString("GIN_MODE")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.AllowUserIDParam = viper.GetBool("AUTH_ALLOW_USER_ID_PARAM")

	config.Exam.EnforcePrerequisites = viper.GetBool("EXAM_ENFORCE_PREREQUISITES")
	config.Exam.DefaultPassingScore = viper.GetInt("EXAM_DEFAULT_PASSING_SCORE")
	config.Exam.LateGraceSeconds = viper.GetInt("EXAM_LATE_GRACE_SECONDS")
	config.Exam.LateSubmissionPolicy = strings.ToLower(viper.GetString("EXAM_LATE_SUBMISSION_POLICY"))

	config.ML.ServiceURL = strings.TrimRight(viper.GetString("ML_SERVICE_URL"), "/")
	config.ML.ServiceToken = viper.GetString("ML_SERVICE_TOKEN")
	config.Insights.Provider = strings.ToLower(viper.GetString("INSIGHTS_PROVIDER"))

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.LogLevel = viper.GetString("LOG_LEVEL")

	config.normalize()

	log.Info().
		Str("port", config.Server.Port).
		Str("db_host", config.Database.Host).
		Str("db_name", config.Database.Name).
		Bool("jwt_configured", config.Auth.JWTSecret != "").
		Bool("enforce_prerequisites", config.Exam.EnforcePrerequisites).
		Str("late_policy", config.Exam.LateSubmissionPolicy).
		Str("insights_provider", config.Insights.Provider).
		Msg("Config loaded")
	return &config, nil

}

// normalize replaces out-of-range values with the defaults the services rely on.
func (c *Config) normalize() {
	if c.Exam.DefaultPassingScore < 0 || c.Exam.DefaultPassingScore > 100 {
		log.Warn().Int("value", c.Exam.DefaultPassingScore).Msg("EXAM_DEFAULT_PASSING_SCORE out of range, using 70")
		c.Exam.DefaultPassingScore = 70
	}
	if c.Exam.LateGraceSeconds < 0 {
		c.Exam.LateGraceSeconds = 0
	}
	switch c.Exam.LateSubmissionPolicy {
	case LatePolicyReject, LatePolicyFlag:
	default:
		log.Warn().Str("value", c.Exam.LateSubmissionPolicy).Msg("Unknown EXAM_LATE_SUBMISSION_POLICY, using 'reject'")
		c.Exam.LateSubmissionPolicy = LatePolicyReject
	}
	switch c.Insights.Provider {
	case InsightsProviderML, InsightsProviderGemini:
	default:
		c.Insights.Provider = InsightsProviderML
	}
}
