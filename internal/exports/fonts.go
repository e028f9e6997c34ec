package exports

import (
	_ "embed"

	"github.com/go-pdf/fpdf"
)

// DejaVu Sans Condensed covers Latin, Greek, Cyrillic and the common symbol
// blocks. Runes outside it still reach the text layer through the identity
// ToUnicode map; they only render as blank glyphs.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

func registerFonts(pdf *fpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
}
