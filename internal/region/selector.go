package region

import "audit-portal-go/pkg/model"

// SelectionInput carries every signal used to pick a region.
// Empty fields mean "not supplied".
type SelectionInput struct {
	Override     model.RegionID
	TargetURL    string
	LocaleRegion model.RegionID
}

// Select picks one region, first match wins:
// explicit override, non-default target domain, locale, default.
func Select(in SelectionInput) model.RegionID {
	if in.Override != "" {
		return in.Override
	}
	if id := ClassifyByTargetDomain(in.TargetURL); id != model.DefaultRegion {
		return id
	}
	if in.LocaleRegion != "" {
		return in.LocaleRegion
	}
	return model.DefaultRegion
}
