// Package storage caches and persists KenKen puzzles and their
// solutions.  Puzzle definitions and solve results are stored
// under a content-derived signature, in Redis for fast repeated
// lookups and in Postgres for durability.  The cache is always
// consulted first; database hits are written back to the cache.
//
// Infrastructure failures inside storage operations panic; the
// entry points that use this package recover at their top level.
// Connect and Close are the only functions that return errors,
// because they are the ones callers can meaningfully retry or
// abort on.
package storage

import (
	"fmt"
	"os"
	"sync"

	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx"
)

// Connect opens the cache and database connections and makes
// sure the database schema exists.  It returns identifiers for
// the two endpoints, for logging.
func Connect() (cacheId, databaseId string, err error) {
	rdInit()
	rdMutex.Lock()
	defer rdMutex.Unlock()
	cacheId, err = rdConnect()
	if err != nil {
		return
	}

	pgInit()
	databaseId, err = pgConnect()
	if err != nil {
		return
	}
	if err = ensureSchema(); err != nil {
		err = fmt.Errorf("Couldn't initialize database schema: %v", err)
		return
	}
	return
}

// Close shuts down both connections.
func Close() {
	rdMutex.Lock()
	defer rdMutex.Unlock()
	pgClose()
	rdClose()
}

/*

cache using Redis

*/

// Redis connection data
var (
	rdc     redis.Conn // open connection, if any
	rdUrl   string     // URL for the open connection
	rdMutex sync.Mutex // prevent concurrent connection use
)

// rdInit - look up Redis info from the environment
func rdInit() {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		rdUrl = "redis://localhost:6379/"
	} else {
		rdUrl = url
	}
}

// rdConnect: connect to the given Redis URL.  Returns the
// connection id, if successful, an error otherwise.
func rdConnect() (string, error) {
	conn, err := redis.DialURL(rdUrl)
	if err != nil {
		err = fmt.Errorf("Couldn't connect to cache at %q: %v", rdUrl, err)
		return "", err
	}
	rdc = conn
	return rdUrl, nil
}

// rdClose: close the given Redis connection.
func rdClose() {
	if rdc != nil {
		rdc.Close()
		rdc = nil
	}
}

// rdExecute: execute the body against the Redis connection,
// holding the Redis mutex.  Meant to be used inside a handler,
// because errors in execution will panic back to entry level.
func rdExecute(body func(tx redis.Conn) error) {
	// wrap the body against runtime and database failures
	wrapper := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					err = e
				} else {
					err = fmt.Errorf("Caught panic during rdExecute: %v", r)
				}
			}
		}()
		// Because Redis connections can go away without warning,
		// we ping to make sure the connection is alive, and try
		// to reconnect if not.
		if _, err := rdc.Do("PING"); err != nil {
			rdClose()
			_, err = rdConnect()
			if err != nil {
				err = fmt.Errorf("Failed to reconnect to cache at %q", rdUrl)
				return err
			}
		}
		// the reconnect may have replaced the connection, so the
		// body always gets the current one
		return body(rdc)
	}
	// grab the mutex and execute the body
	rdMutex.Lock()
	defer func(err error) {
		rdMutex.Unlock()
		if err != nil {
			panic(err)
		}
	}(wrapper())
}

// FlushCache clears every cached entry.  The database copies are
// untouched; the cache repopulates on demand.
func FlushCache() {
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("FLUSHDB")
		if err != nil {
			err = fmt.Errorf("Cache failure flushing entries: %v", err)
		}
		return
	}
	rdExecute(body)
}

/*

persistence using Postgres

*/

// Postgres connection data
var (
	pgConn *pgx.Conn // open database, if any
	pgUrl  string    // URL for the open connection
)

// pgInit - look up Postgres info from the environment
func pgInit() {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		pgUrl = "postgres://localhost/kenken?sslmode=disable"
	} else {
		pgUrl = url
	}
}

// pgConnect: Open the Postgres database.  Returns any error
// encountered during the open.
func pgConnect() (string, error) {
	cfg, err := pgx.ParseURI(pgUrl)
	if err != nil {
		err = fmt.Errorf("Parse failure on Postgres URI %q: %v", pgUrl, err)
		return "", err
	}
	conn, err := pgx.Connect(cfg)
	if err != nil {
		err = fmt.Errorf("Couldn't connect to db at %q: %v", pgUrl, err)
		return "", err
	}
	pgConn = conn
	return pgUrl, nil
}

// pgClose: close the given Postgres connection.
func pgClose() {
	if pgConn != nil {
		pgConn.Close()
		pgConn = nil
	}
}

// pgExecute: execute the body inside a single transaction.
// Meant to be used inside a handler, because errors in execution
// will panic back to the package entry level.  If the body errs
// out, then the transaction is rolled back, otherwise it's
// committed.
func pgExecute(body func(tx *pgx.Tx) error) {
	// wrap the body against runtime and database failures
	wrapper := func(tx *pgx.Tx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					err = e
				} else {
					err = fmt.Errorf("Caught panic during pgExecute: %v", r)
				}
			}
		}()
		return body(tx)
	}
	// get the transaction
	tx, err := pgConn.Begin()
	if err != nil {
		panic(fmt.Errorf("Can't open a transaction against database: %v", err))
	}
	// execute the body in the transaction
	defer func(err error) {
		if err != nil {
			tx.Rollback()
			panic(err)
		}
		tx.Commit()
	}(wrapper(tx))
}

/*

schema

*/

// The schema is two tables keyed by puzzle signature.  There is
// no migration history to replay, so creation is idempotent DDL
// run at connect time.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS puzzles (
		puzzleId varchar(64) PRIMARY KEY,
		size integer NOT NULL,
		summary text NOT NULL,
		created timestamp with time zone NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS solutions (
		puzzleId varchar(64) PRIMARY KEY REFERENCES puzzles (puzzleId),
		solved boolean NOT NULL,
		result text NOT NULL,
		created timestamp with time zone NOT NULL
	)`,
}

// ensureSchema creates the tables if they aren't already there.
func ensureSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := pgConn.Exec(stmt); err != nil {
			return fmt.Errorf("Schema statement failed: %v", err)
		}
	}
	return nil
}
