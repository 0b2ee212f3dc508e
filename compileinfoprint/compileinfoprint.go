// compileinfoprint is imported for the side effect of printing the build line
// of the running tool to os.Stderr
package compileinfoprint

import (
	"os"
	"path/filepath"

	"github.com/carbocation/rtslice/compileinfo"
)

func init() {
	compileinfo.PrintToStdErr(filepath.Base(os.Args[0]))
}
