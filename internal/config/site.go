package config

import "strings"

// SiteConfig holds per-site settings.
type SiteConfig struct {
	// Cookie is sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to the site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the default User-Agent for the site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Filters replaces the spider's filter chain with these built-in
	// filters, by name.
	Filters []string `yaml:"filters,omitempty"`

	// Browser renders the site's pages in headless Chrome.
	Browser bool `yaml:"browser,omitempty"`
}

// File is the structure of the .storyscraper configuration file.
type File struct {
	// Defaults apply to every site unless the site overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps a domain without "www." (e.g. "archiveofourown.org") to
	// its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the configuration for domain merged over the
// defaults. A leading "www." on domain is ignored.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.Sites[strings.TrimPrefix(strings.ToLower(domain), "www.")]
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	if len(site.Filters) > 0 {
		result.Filters = site.Filters
	}
	if site.Browser {
		result.Browser = true
	}
	return result
}
