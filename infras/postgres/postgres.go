package postgres

//nolint:revive
import (
	"context"
	"errors"
	"fmt"
	"karaoke/config"
	"net"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 5
	postgresConnMaxLifetime   = 30 * time.Minute
)

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// endpoint describes one side of the read/write pair.
type endpoint struct {
	name     string
	username string
	password string
	host     string
	port     string
	dbName   string
	sslMode  string
	timezone string
}

func New(config *config.Config) *Connection {
	read := CreatePostgresReadConn(*config)
	write := CreatePostgresWriteConn(*config)

	if read == nil || write == nil {
		log.Fatal().Msg("Failed to connect to database after all retries")
	}

	return &Connection{
		Read:  read,
		Write: write,
	}
}

// Ping checks both pools.
func (c *Connection) Ping(ctx context.Context) error {
	if c == nil || c.Read == nil || c.Write == nil {
		return errors.New("database connection not initialized")
	}

	if err := c.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping write database: %w", err)
	}

	if err := c.Read.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping read database: %w", err)
	}

	return nil
}

// Close releases both pools. The read pool may be the same handle as the write pool.
func (c *Connection) Close() {
	if c == nil {
		return
	}

	if c.Write != nil {
		if err := c.Write.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close write database")
		}
	}

	if c.Read != nil && c.Read != c.Write {
		if err := c.Read.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close read database")
		}
	}
}

// getDBName returns the database name with prefix if configured
func getDBName(config config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

// CreatePostgresWriteConn creates a database connection for write access.
func CreatePostgresWriteConn(config config.Config) *sqlx.DB {
	return CreatePostgresConnection(endpoint{
		name:     "write",
		username: config.DB.Postgres.Write.Username,
		password: config.DB.Postgres.Write.Password,
		host:     config.DB.Postgres.Write.Host,
		port:     config.DB.Postgres.Write.Port,
		dbName:   getDBName(config, config.DB.Postgres.Write.Name),
		sslMode:  config.DB.Postgres.Write.SSLMode,
		timezone: config.DB.Postgres.Write.Timezone,
	}, config)
}

// CreatePostgresReadConn creates a database connection for read access.
func CreatePostgresReadConn(config config.Config) *sqlx.DB {
	return CreatePostgresConnection(endpoint{
		name:     "read",
		username: config.DB.Postgres.Read.Username,
		password: config.DB.Postgres.Read.Password,
		host:     config.DB.Postgres.Read.Host,
		port:     config.DB.Postgres.Read.Port,
		dbName:   getDBName(config, config.DB.Postgres.Read.Name),
		sslMode:  config.DB.Postgres.Read.SSLMode,
		timezone: config.DB.Postgres.Read.Timezone,
	}, config)
}

// DSN renders the lib/pq connection URL for ep.
func (ep endpoint) DSN() string {
	query := url.Values{}
	query.Set("sslmode", ep.sslMode)

	if ep.timezone != "" {
		query.Set("timezone", ep.timezone)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(ep.username, ep.password),
		Host:     net.JoinHostPort(ep.host, ep.port),
		Path:     "/" + ep.dbName,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// CreatePostgresConnection creates a database connection, retrying up to the configured limit.
func CreatePostgresConnection(ep endpoint, config config.Config) *sqlx.DB {
	maxRetry := max(config.DB.Postgres.MaxRetry, 1)
	waitTime := config.DB.Postgres.RetryWaitTime

	maxOpen := config.DB.Postgres.MaxOpenConnections
	if maxOpen <= 0 {
		maxOpen = 10
	}

	for retry := range maxRetry {
		sqlDB, err := sqlx.Connect("postgres", ep.DSN())
		if err == nil {
			log.
				Info().
				Str("name", ep.name).
				Str("host", ep.host).
				Str("port", ep.port).
				Str("dbName", ep.dbName).
				Int("maxOpen", maxOpen).
				Msg("Connected to database")
			sqlDB.SetMaxIdleConns(min(postgresMaxIdleConnection, maxOpen))
			sqlDB.SetMaxOpenConns(maxOpen)
			sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", ep.name).
			Str("host", ep.host).
			Str("port", ep.port).
			Str("dbName", ep.dbName).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	return nil
}
