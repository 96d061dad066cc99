package fonts

import (
	"embed"
	"io/fs"
)

// Bundled fallback faces. The directory is populated at build time with the
// default text, math, and monospace families (see assets/README.md); any
// non-font file in it fails probing and is skipped.
//
//go:embed all:assets
var embeddedAssets embed.FS

// embeddedFS returns the bundled font tree rooted at the assets directory.
func embeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		// The subtree is part of the binary; this cannot fail at runtime.
		panic(err)
	}
	return sub
}
