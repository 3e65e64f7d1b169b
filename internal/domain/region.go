package domain

// RegionID is the canonical identity of a Region: the suffix-normalised
// short form of its name ("北京", "广西", "香港"). It is the sole join key
// between stored trips and rendered map regions.
type RegionID string

// RegionClass is the administrative class of a top-level region.
type RegionClass string

const (
	ClassMunicipality     RegionClass = "municipality"
	ClassProvince         RegionClass = "province"
	ClassAutonomousRegion RegionClass = "autonomous_region"
	ClassSAR              RegionClass = "special_administrative_region"
)

// Region is one of the fixed top-level administrative units.
// FullName is the authoritative long form ("广西壮族自治区"); DisplayName is
// the short form map renderers label regions with ("广西").
type Region struct {
	ID          RegionID    `json:"id"`
	FullName    string      `json:"fullName"`
	DisplayName string      `json:"displayName"`
	Class       RegionClass `json:"class"`
}
