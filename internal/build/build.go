package build

// Info is populated from linker flags at release time.
type Info struct {
	Version string
	Commit  string
	Date    string
}

type Key struct{}

// InfoKey stores *Info on the command context.
var InfoKey = Key{}
