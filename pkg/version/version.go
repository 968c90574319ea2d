package version

import (
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/helmcode/pestscan/pkg/version.Version=...".
// Empty values fall back to the module build info.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

const unknown = "dev"

// Build describes the running binary.
type Build struct {
	Name     string `json:"name" yaml:"name"`
	Version  string `json:"version" yaml:"version"`
	Commit   string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Date     string `json:"date,omitempty" yaml:"date,omitempty"`
	Dirty    bool   `json:"dirty,omitempty" yaml:"dirty,omitempty"`
	Go       string `json:"go" yaml:"go"`
	Platform string `json:"platform" yaml:"platform"`
}

// Get returns build details for the named binary.
func Get(name string) Build {
	b := Build{
		Name:     name,
		Version:  Version,
		Commit:   Commit,
		Date:     Date,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		b.fill(bi)
	}
	if b.Version == "" {
		b.Version = unknown
	}
	return b
}

func (b *Build) fill(bi *debug.BuildInfo) {
	if b.Version == "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	vcs := map[string]string{}
	for _, s := range bi.Settings {
		vcs[s.Key] = s.Value
	}
	if b.Commit == "" {
		b.Commit = vcs["vcs.revision"]
	}
	if b.Date == "" {
		b.Date = vcs["vcs.time"]
	}
	b.Dirty = vcs["vcs.modified"] == "true"
}

// String is the one-line form printed by `pestscan version`.
func (b Build) String() string {
	s := b.Version
	if c := b.Commit; c != "" {
		if len(c) > 7 {
			c = c[:7]
		}
		s += " (" + c
		if b.Dirty {
			s += ", dirty"
		}
		s += ")"
	}
	return s
}
