package dispatch

// Config defines company-level dispatch settings.
type Config struct {
	Name    string `json:"name"`
	Matcher string `json:"matcher"`
}

// DefaultName is used when no company name is configured.
const DefaultName = "ridedispatch"

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Matcher == "" {
		c.Matcher = MatcherFirstFit
	}
}
