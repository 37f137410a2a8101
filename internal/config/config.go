package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration values
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, durations
// for holds and intervals.
type Config struct {
	Env                 string        // application environment (e.g. "dev", "prod")
	Port                string        // HTTP port to listen on
	DBUser              string        // database username
	DBPass              string        // database password (optional)
	DBHost              string        // database host address
	DBPort              string        // database port number
	DBName              string        // database name
	JWTSecret           string        // shared secret for verifying identity-provider tokens
	StripeSecretKey     string        // Stripe API key
	StripeWebhookSecret string        // Stripe webhook signing secret
	CheckoutSuccessURL  string        // where the hosted page sends the buyer on success
	CheckoutCancelURL   string        // where the hosted page sends the buyer on cancel
	CronSecret          string        // shared secret guarding the reaper endpoint
	HoldTTL             time.Duration // reservation hold window (default one hour)
	ReaperInterval      time.Duration // interval between background sweeps
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:                 must("APP_ENV"),
		Port:                must("APP_PORT"),
		DBUser:              must("DB_USER"),
		DBPass:              os.Getenv("DB_PASS"), // empty allowed
		DBHost:              must("DB_HOST"),
		DBPort:              must("DB_PORT"),
		DBName:              must("DB_NAME"),
		JWTSecret:           must("JWT_SECRET"),
		StripeSecretKey:     must("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: must("STRIPE_WEBHOOK_SECRET"),
		CheckoutSuccessURL:  must("CHECKOUT_SUCCESS_URL"),
		CheckoutCancelURL:   must("CHECKOUT_CANCEL_URL"),
		CronSecret:          must("CRON_SECRET"),
		HoldTTL:             durMinutes("HOLD_TTL_MIN", 60),
		ReaperInterval:      durMinutes("REAPER_INTERVAL_MIN", 10),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// durMinutes reads an integer minute count with a default.
func durMinutes(key string, def int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(def) * time.Minute
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return time.Duration(n) * time.Minute
}
