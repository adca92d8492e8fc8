package config

import "git.home.luguber.info/inful/sitegen/internal/foundation/normalization"

var (
	subdirectoryModes = normalization.NewEnumNormalizer("navigation.subdirectories", map[string]SubdirectoryMode{
		"flat":     SubdirectoriesFlat,
		"dropdown": SubdirectoriesDropdown,
		"hidden":   SubdirectoriesHidden,
	}, SubdirectoriesHidden)

	lastmodStrategies = normalization.NewEnumNormalizer("sitemap.lastmod", map[string]LastmodStrategy{
		"mtime": LastmodMtime,
		"git":   LastmodGit,
		"none":  LastmodNone,
	}, LastmodMtime)

	retryBackoffModes = normalization.NewEnumNormalizer("build.retry.backoff", map[string]RetryBackoffMode{
		"fixed":       RetryBackoffFixed,
		"linear":      RetryBackoffLinear,
		"exponential": RetryBackoffExponential,
	}, RetryBackoffLinear)
)

// normalizeEnums rewrites enum settings to their canonical spelling
// ("Dropdown " becomes "dropdown") and rejects unknown values.
func normalizeEnums(cfg *Config) error {
	mode, err := subdirectoryModes.Normalize(string(cfg.Navigation.Subdirectories))
	if err != nil {
		return err
	}
	cfg.Navigation.Subdirectories = mode

	lastmod, err := lastmodStrategies.Normalize(string(cfg.Sitemap.Lastmod))
	if err != nil {
		return err
	}
	cfg.Sitemap.Lastmod = lastmod

	backoff, err := retryBackoffModes.Normalize(string(cfg.Build.Retry.Backoff))
	if err != nil {
		return err
	}
	cfg.Build.Retry.Backoff = backoff
	return nil
}
