package fonts

import (
	"fmt"

	"golang.org/x/image/font/sfnt"
)

// ProbeFunc extracts per-face metadata from raw font bytes. It returns one
// Info per face; collection formats (TTC/OTC) yield several.
type ProbeFunc func(data []byte) ([]Info, error)

// sfntProbe parses SFNT-flavored font data (TTF, OTF, TTC, OTC) and reads
// family and subfamily from the name table. Style and weight are classified
// from the subfamily string.
func sfntProbe(data []byte) ([]Info, error) {
	// ParseCollection accepts single fonts as a collection of one.
	coll, err := sfnt.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	var infos []Info
	var buf sfnt.Buffer
	for i := 0; i < coll.NumFonts(); i++ {
		face, err := coll.Font(i)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}

		family, err := face.Name(&buf, sfnt.NameIDFamily)
		if err != nil {
			return nil, fmt.Errorf("face %d family name: %w", i, err)
		}
		subfamily, err := face.Name(&buf, sfnt.NameIDSubfamily)
		if err != nil {
			subfamily = ""
		}

		infos = append(infos, Info{
			Family: family,
			Style:  classifyStyle(subfamily),
			Weight: classifyWeight(subfamily),
		})
	}
	return infos, nil
}
