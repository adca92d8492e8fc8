package config

// Feature names an optional built-in post-build task.
type Feature string

const (
	FeatureSitemap  Feature = "sitemap"
	FeatureFeed     Feature = "feed"
	FeatureSearch   Feature = "search"
	FeatureManifest Feature = "manifest"
)

// FeaturesConfig toggles built-in post-build tasks. Unset features are enabled.
type FeaturesConfig struct {
	Sitemap  *bool `yaml:"sitemap,omitempty"`
	Feed     *bool `yaml:"feed,omitempty"`
	Search   *bool `yaml:"search,omitempty"`
	Manifest *bool `yaml:"manifest,omitempty"`
}

// Enabled reports whether the feature is on.
func (f FeaturesConfig) Enabled(feature Feature) bool {
	flag := f.flag(feature)
	return flag == nil || *flag
}

func (f FeaturesConfig) flag(feature Feature) *bool {
	switch feature {
	case FeatureSitemap:
		return f.Sitemap
	case FeatureFeed:
		return f.Feed
	case FeatureSearch:
		return f.Search
	case FeatureManifest:
		return f.Manifest
	default:
		return nil
	}
}

func (f *FeaturesConfig) set(feature Feature, on bool) {
	v := on
	switch feature {
	case FeatureSitemap:
		f.Sitemap = &v
	case FeatureFeed:
		f.Feed = &v
	case FeatureSearch:
		f.Search = &v
	case FeatureManifest:
		f.Manifest = &v
	}
}
