package region

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"audit-portal-go/pkg/model"
)

func TestClassifyByTargetDomain(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want model.RegionID
	}{
		{"india ccTLD", "https://example.in", model.RegionIN},
		{"india second level", "https://shop.example.co.in/path?q=1", model.RegionIN},
		{"upper case host", "HTTPS://WWW.EXAMPLE.IN", model.RegionIN},
		{"trailing dot", "https://example.in./", model.RegionIN},
		{"with port", "http://example.in:8443", model.RegionIN},
		{"punycode idn tld", "https://example.xn--h2brj9c", model.RegionIN},
		{"unicode idn tld", "https://example.भारत", model.RegionIN},
		{"dot com", "https://example.com", model.RegionUS},
		{"suffix only in label", "https://india.com", model.RegionUS},
		{"tld containing in", "https://example.ink", model.RegionUS},
		{"ip address", "http://10.0.0.1", model.RegionUS},
		{"no scheme", "example.in", model.RegionUS},
		{"empty", "", model.RegionUS},
		{"malformed", "http://[::1", model.RegionUS},
		{"control characters", "https://exa\x7fmple.in", model.RegionUS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, ClassifyByTargetDomain(tt.url))
			})
		})
	}
}

func TestClassifyByUserLocale(t *testing.T) {
	tests := []struct {
		name string
		env  EnvironmentProvider
		want model.RegionID
	}{
		{"kolkata", StaticEnvironment("Asia/Kolkata"), model.RegionIN},
		{"legacy calcutta", StaticEnvironment("Asia/Calcutta"), model.RegionIN},
		{"new york", StaticEnvironment("America/New_York"), model.RegionUS},
		{"utc", StaticEnvironment("UTC"), model.RegionUS},
		{"empty", StaticEnvironment(""), model.RegionUS},
		{"garbage", StaticEnvironment("not/a/zone"), model.RegionUS},
		{"nil provider", nil, model.RegionUS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyByUserLocale(tt.env))
		})
	}
}

func TestSystemEnvironmentUsesTZ(t *testing.T) {
	t.Setenv("TZ", "Asia/Kolkata")
	assert.Equal(t, "Asia/Kolkata", SystemEnvironment{}.TimeZone())
	assert.Equal(t, model.RegionIN, ClassifyByUserLocale(SystemEnvironment{}))
}
