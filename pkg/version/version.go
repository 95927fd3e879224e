package version

// Version is the current version of the leakwatch pipeline
const Version = "0.0.7"

// UserAgent returns the User-Agent string for HTTP requests
func UserAgent() string {
	return "leakwatch/" + Version
}
