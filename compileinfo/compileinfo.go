// Package compileinfo reports which build of an rtslice tool is running, from
// the module and VCS data embedded by the Go toolchain.
package compileinfo

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

type CompileInfo struct {
	Tool       string
	Module     string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	commit := c.Commit
	if commit == "" {
		commit = "unknown"
	}

	mod := ""
	if c.Modified {
		mod = " (modified)"
	}

	return fmt.Sprintf("%s (%s) built with %s at commit %s%s %s", c.Tool, c.Module, c.GoVersion, commit, mod, c.CommitTime)
}

// Get collects build information for the named tool.
func Get(tool string) CompileInfo {
	out := CompileInfo{Tool: tool}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Module = z.Main.Path
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// Fprint writes the build line for tool to w.
func Fprint(w io.Writer, tool string) {
	fmt.Fprintln(w, Get(tool))
}

// PrintToStdErr writes the build line for tool to stderr.
func PrintToStdErr(tool string) {
	Fprint(os.Stderr, tool)
}
