// internal/discovery/types.go
package discovery

// Config holds the file selection patterns. Patterns use doublestar syntax
// and are matched against slash separated paths relative to the directory
// being searched.
type Config struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

// DefaultInclude selects every JavaScript file.
var DefaultInclude = []string{"**/*.js"}

// DefaultExclude skips vendored packages and minified bundles.
var DefaultExclude = []string{"**/node_modules/**", "**/bower_components/**", "**/*.min.js"}

// SetDefaults applies default values if they aren't set in the config file.
// A non-nil empty Exclude disables the default excludes.
func (c *Config) SetDefaults() {
	if len(c.Include) == 0 {
		c.Include = append([]string(nil), DefaultInclude...)
	}
	if c.Exclude == nil {
		c.Exclude = append([]string(nil), DefaultExclude...)
	}
}
