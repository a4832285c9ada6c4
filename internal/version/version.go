package version

// Version is the current version of the StudyHub CLI.
// This value can be overridden at build time using:
//   go build -ldflags="-X 'github.com/HarshithaPadmanabha/StudyHub/internal/version.Version=v1.0.0'"
var Version = "dev"

// UserAgent identifies the client to the room server.
func UserAgent() string {
	return "studyhub-cli/" + Version
}
