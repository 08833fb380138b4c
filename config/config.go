// Package config defines the application configuration structures.
//
// Separated from cmd to allow other packages (db, ssh, analyst, server)
// to depend on config without importing Cobra.
package config

import (
	"net"
	"net/url"
	"strconv"
)

// Warehouse drivers understood by db.Connect.
const (
	DriverPgx    = "pgx"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// WarehouseConfig holds the SQL execution connection settings.
type WarehouseConfig struct {
	Driver   string `json:"driver"`
	DSNValue string `json:"dsn,omitempty"` // used verbatim when set
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Database string `json:"database,omitempty"`
	SSLMode  string `json:"sslmode,omitempty"`

	SSH SSHConfig `json:"ssh"`
}

// SSHConfig holds SSH tunnel settings.
type SSHConfig struct {
	Enabled       bool   `json:"enabled,omitempty"`
	Host          string `json:"host,omitempty"`
	Port          int    `json:"port,omitempty"`
	User          string `json:"user,omitempty"`
	KeyPath       string `json:"key_path,omitempty"`
	KeyPassphrase string `json:"key_passphrase,omitempty"`
}

// DSN builds a driver-specific connection string.
// When an SSH tunnel is active, the caller should override Host/Port
// with the local tunnel endpoint before calling DSN.
func (c WarehouseConfig) DSN() string {
	if c.DSNValue != "" {
		return c.DSNValue
	}
	switch c.Driver {
	case DriverMySQL:
		// user:password@tcp(host:port)/dbname?parseTime=true
		return c.User + ":" + c.Password +
			"@tcp(" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) + ")/" +
			c.Database + "?parseTime=true"
	case DriverSQLite:
		if c.Database == "" {
			return ":memory:"
		}
		return c.Database
	default:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
			Path:   "/" + c.Database,
		}
		if c.SSLMode != "" {
			u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
		}
		return u.String()
	}
}

// Addr returns host:port of the warehouse.
func (c WarehouseConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
