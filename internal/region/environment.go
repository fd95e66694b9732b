package region

import (
	"os"
	"time"
)

// EnvironmentProvider reports the resolved IANA timezone of the requester
type EnvironmentProvider interface {
	TimeZone() string
}

// StaticEnvironment is a timezone reported by the client, e.g. by the
// browser's Intl API and forwarded with the request.
type StaticEnvironment string

// TimeZone implements EnvironmentProvider
func (e StaticEnvironment) TimeZone() string {
	return string(e)
}

// SystemEnvironment resolves the timezone of the host process
type SystemEnvironment struct{}

// TimeZone implements EnvironmentProvider
func (SystemEnvironment) TimeZone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	return time.Local.String()
}
