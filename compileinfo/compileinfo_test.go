package compileinfo

import (
	"bytes"
	"strings"
	"testing"
)

func TestFprintNamesTool(t *testing.T) {
	var buf bytes.Buffer
	Fprint(&buf, "rtslice")

	if !strings.HasPrefix(buf.String(), "rtslice (") {
		t.Errorf("Unexpected build line %q", buf.String())
	}
}

func TestStringMarksModified(t *testing.T) {
	c := CompileInfo{Tool: "rtslice", Commit: "abc123", Modified: true}
	if !strings.Contains(c.String(), "abc123 (modified)") {
		t.Errorf("Unexpected string %q", c.String())
	}
}
