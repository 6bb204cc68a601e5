//nolint:gochecknoglobals
package pkg

// Version is the semantic version of the dotenvy module.
// It is printed by the CLI when users request version information.
const Version = "0.1.0"

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text and default config paths.
	Name = "dotenvy"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Environment definition file parser and loader"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"fireproofsocks", "fireproofsocks@users.noreply.github.com"},
}
