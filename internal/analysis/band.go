package analysis

// Band is the three-way classification of a score used by every view and export.
type Band string

const (
	BandGood     Band = "good"
	BandModerate Band = "moderate"
	BandPoor     Band = "poor"
)

const (
	goodThreshold     = 80
	moderateThreshold = 50
)

// RGB is an sRGB colour triple.
type RGB struct {
	R, G, B int
}

// BandFor classifies a score: >=80 good, 50-79 moderate, below 50 poor.
func BandFor(score int) Band {
	switch {
	case score >= goodThreshold:
		return BandGood
	case score >= moderateThreshold:
		return BandModerate
	default:
		return BandPoor
	}
}

// Label is the pt-BR name of the band.
func (b Band) Label() string {
	switch b {
	case BandGood:
		return "Bom"
	case BandModerate:
		return "Moderado"
	default:
		return "Crítico"
	}
}

// Color is the band colour used in rendered documents.
func (b Band) Color() RGB {
	switch b {
	case BandGood:
		return RGB{22, 163, 74}
	case BandModerate:
		return RGB{202, 138, 4}
	default:
		return RGB{220, 38, 38}
	}
}
