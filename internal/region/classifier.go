package region

import (
	"net/url"
	"strings"

	"audit-portal-go/pkg/model"
)

// ccTLDs whose targets are scanned from a non-default region
var domainSuffixRegions = map[string]model.RegionID{
	"in":          model.RegionIN,
	"xn--h2brj9c": model.RegionIN, // .भारत
	"भारत":        model.RegionIN,
}

// IANA timezones whose users are served by a non-default region
var timezoneRegions = map[string]model.RegionID{
	"Asia/Kolkata":  model.RegionIN,
	"Asia/Calcutta": model.RegionIN,
}

// ClassifyByTargetDomain maps the hostname suffix of rawURL to a region.
// Unparseable input and hosts without a designated suffix map to the default region.
func ClassifyByTargetDomain(rawURL string) model.RegionID {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return model.DefaultRegion
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return model.DefaultRegion
	}

	tld := host
	if i := strings.LastIndexByte(host, '.'); i >= 0 {
		tld = host[i+1:]
	}
	if id, ok := domainSuffixRegions[tld]; ok {
		return id
	}
	return model.DefaultRegion
}

// ClassifyByUserLocale maps the requester's timezone to a region
func ClassifyByUserLocale(env EnvironmentProvider) model.RegionID {
	if env == nil {
		return model.DefaultRegion
	}
	if id, ok := timezoneRegions[strings.TrimSpace(env.TimeZone())]; ok {
		return id
	}
	return model.DefaultRegion
}
