package database

import (
	"fmt"
	"net/url"
	"strings"
)

// ConstructDatabaseURL combines a base URL with a database name, keeping any
// existing query parameters intact and defaulting sslmode to disable.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")
	var databaseURL string

	if strings.Contains(baseURL, "?") {
		parts := strings.SplitN(baseURL, "?", 2)
		databaseURL = fmt.Sprintf("%s/%s?%s", parts[0], databaseName, parts[1])
	} else {
		databaseURL = fmt.Sprintf("%s/%s", baseURL, databaseName)
	}

	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !strings.Contains(databaseURL, "?") {
			separator = "?"
		}
		databaseURL = fmt.Sprintf("%s%ssslmode=disable", databaseURL, separator)
	}

	return databaseURL
}

// BuildBaseURL assembles a postgres:// base URL from individual connection
// settings, for deployments that configure host and credentials separately
// instead of a single DATABASE_URL. The password is URL-encoded.
func BuildBaseURL(host, port, user, password string) string {
	if password == "" {
		return fmt.Sprintf("postgres://%s@%s:%s", user, host, port)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s", user, url.QueryEscape(password), host, port)
}
