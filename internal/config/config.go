package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time expresses the hold TTL and sweep interval
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for the
// hold TTL and the background sweep cadence.
type Config struct {
    Env           string        // application environment (e.g. "dev", "prod")
    Port          string        // HTTP port to listen on
    DBUser        string        // database username
    DBPass        string        // database password (optional)
    DBHost        string        // database host address
    DBPort        string        // database port number
    DBName        string        // database name
    JWTSecret     string        // secret used to verify organizer bearer tokens
    HoldTTL       time.Duration // how long a seat hold lives before it lapses
    SweepInterval time.Duration // how often expired holds are reclaimed
    StripeSecret  string        // payment gateway secret key
    Currency      string        // ISO currency code passed to the gateway
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The hold TTL and
// sweep interval default to 10 minutes and 60 seconds, matching a
// realistic checkout duration and reclaim cadence.
func Load() Config {
    return Config{
        Env:           must("APP_ENV"),      // environment (dev/test/prod)
        Port:          must("APP_PORT"),     // port to bind the HTTP server
        DBUser:        must("DB_USER"),      // database user
        DBPass:        os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:        must("DB_HOST"),      // database host
        DBPort:        must("DB_PORT"),      // database port
        DBName:        must("DB_NAME"),      // database name
        JWTSecret:     must("JWT_SECRET"),   // secret for organizer route tokens
        HoldTTL:       minutes("HOLD_TTL_MIN", 10),
        SweepInterval: seconds("SWEEP_INTERVAL_SEC", 60),
        StripeSecret:  must("STRIPE_SECRET_KEY"),
        Currency:      envStr("PAYMENT_CURRENCY", "idr"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// minutes reads an integer environment variable expressed in minutes,
// falling back to def when unset.  Non-positive or unparsable values are fatal.
func minutes(key string, def int) time.Duration {
    return time.Duration(intOr(key, def)) * time.Minute
}

// seconds is like minutes() but interprets the value in seconds.
func seconds(key string, def int) time.Duration {
    return time.Duration(intOr(key, def)) * time.Second
}

func intOr(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil || n <= 0 {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
