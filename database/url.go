package database

import (
	"fmt"
	"net/url"
	"strings"
)

// ConstructDatabaseURL joins a server URL and a database name.
// The base URL is returned unchanged when no name is given; otherwise the name
// replaces any path on the base URL and sslmode=disable is added unless an
// sslmode is already present.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" {
		// Fall back to plain string handling for DSNs url.Parse can't read
		return fallbackDatabaseURL(baseURL, databaseName)
	}

	u.Path = "/" + databaseName
	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func fallbackDatabaseURL(baseURL, databaseName string) string {
	base, query, _ := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	databaseURL := fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), databaseName)
	if query != "" {
		databaseURL += "?" + query
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if query == "" {
			separator = "?"
		}
		databaseURL = fmt.Sprintf("%s%ssslmode=disable", databaseURL, separator)
	}
	return databaseURL
}
