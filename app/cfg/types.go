package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port         string
	TermsFile    string
	APIAccessKey string
	PerPage      int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
