// Package db manages the long-lived warehouse connection used to run
// the SQL statements the analyst service generates.
//
// Design decisions:
//   - PostgreSQL goes through a pgxpool (safe for concurrent access);
//     MySQL and SQLite go through database/sql with their registered
//     drivers.
//   - The connection is established once and reused for every query.
//   - SSH tunnel integration is handled transparently: if SSH is enabled,
//     we first establish the tunnel, then connect to the local endpoint.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/DachengChen/paiAnalyst/config"
	"github.com/DachengChen/paiAnalyst/ssh"
)

// DB wraps the warehouse connection and optional SSH tunnel. Exactly
// one of Pool and SQL is set.
type DB struct {
	Driver string
	Pool   *pgxpool.Pool
	SQL    *sql.DB
	Tunnel *ssh.Tunnel
}

// Connect opens the warehouse connection, optionally through an SSH
// tunnel, and verifies it with a ping.
func Connect(ctx context.Context, cfg config.WarehouseConfig) (*DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = config.DriverPgx
	}
	d := &DB{Driver: cfg.Driver}

	if cfg.SSH.Enabled && cfg.Driver != config.DriverSQLite {
		if cfg.DSNValue != "" {
			return nil, fmt.Errorf("ssh tunnel needs host and port, not a raw dsn")
		}
		tunnel, err := ssh.NewTunnel(cfg.SSH, cfg.Host, cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel: %w", err)
		}
		localAddr, err := tunnel.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel start: %w", err)
		}
		d.Tunnel = tunnel

		// Override connection target with local tunnel endpoint
		cfg.Host = localAddr.Host
		cfg.Port = localAddr.Port
	}

	var err error
	switch cfg.Driver {
	case config.DriverPgx:
		err = d.openPgx(ctx, cfg.DSN())
	case config.DriverMySQL, config.DriverSQLite:
		err = d.openSQL(ctx, cfg.Driver, cfg.DSN())
	default:
		err = fmt.Errorf("unknown warehouse driver %q", cfg.Driver)
	}
	if err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) openPgx(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("pgx connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pgx ping: %w", err)
	}
	d.Pool = pool
	return nil
}

func (d *DB) openSQL(ctx context.Context, driver, dsn string) error {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("%s open: %w", driver, err)
	}
	if driver == config.DriverSQLite {
		// an in-memory database lives and dies with its connection
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("%s ping: %w", driver, err)
	}
	d.SQL = conn
	return nil
}

// Close shuts down the connection and SSH tunnel.
func (d *DB) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.SQL != nil {
		d.SQL.Close()
	}
	if d.Tunnel != nil {
		d.Tunnel.Stop()
	}
}
