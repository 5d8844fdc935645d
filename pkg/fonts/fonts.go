// Package fonts provides font faces for raster export.
//
// The Go fonts are compiled into golang.org/x/image, so the faces are
// available without files on disk. Parsed fonts are cached after first use;
// faces are cheap to create per size.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Family selects one of the bundled fonts.
type Family string

const (
	Mono    Family = "mono"
	Regular Family = "regular"
	Bold    Family = "bold"
)

// Families lists the accepted family names.
var Families = []Family{Mono, Regular, Bold}

var sources = map[Family][]byte{
	Mono:    gomono.TTF,
	Regular: goregular.TTF,
	Bold:    gobold.TTF,
}

// Cache for parsed fonts (parsed once on first access).
var (
	parsedMu sync.Mutex
	parsed   = map[Family]*truetype.Font{}
)

func load(f Family) (*truetype.Font, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()
	if ft, ok := parsed[f]; ok {
		return ft, nil
	}
	src, ok := sources[f]
	if !ok {
		return nil, fmt.Errorf("unknown font family %q", f)
	}
	ft, err := truetype.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s font: %w", f, err)
	}
	parsed[f] = ft
	return ft, nil
}

// Face returns a face of the given family at size points (72 DPI).
func Face(f Family, size float64) (font.Face, error) {
	ft, err := load(f)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(ft, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Valid reports whether f names a bundled font.
func Valid(f Family) bool {
	_, ok := sources[f]
	return ok
}
