package paths

import (
	"flag"
	"fmt"
	"strings"
)

// SpriteFlag registers a string flag on fs naming a sprite file. It defaults
// to wherever Find locates def, or to an empty string.
func SpriteFlag(fs *flag.FlagSet, name, def string) *string {
	usage := fmt.Sprintf("path to a %s sprite; short names are looked up in %s", Ext, strings.Join(SearchPath(), ", "))
	return fs.String(name, Find(def), usage)
}
