package tdr

import (
	"strings"
	"unicode/utf8"

	"github.com/jcondori/convoscraper/internal/textutil"
)

// MarkerSet holds the heading variants that open a technical-characteristics
// section and the section headings that end it. Matching is case- and
// accent-insensitive, so each variant is listed once in folded form; locale
// variants are additive.
type MarkerSet struct {
	Start []string
	End   []string
}

func DefaultMarkers() MarkerSet {
	return MarkerSet{
		Start: []string{
			"CARACTERISTICAS TECNICAS",
			"ESPECIFICACIONES TECNICAS",
			"CARACTERISTICAS MINIMAS",
			"TERMINOS DE REFERENCIA",
		},
		End: []string{
			"CONDICIONES GENERALES",
			"REQUISITOS DEL POSTOR",
			"REQUISITOS MINIMOS DEL POSTOR",
			"FORMA DE PAGO",
			"PLAZO DE EJECUCION",
			"PLAZO DE ENTREGA",
			"LUGAR DE ENTREGA",
			"CONFORMIDAD DEL SERVICIO",
			"ANEXOS",
		},
	}
}

const truncationMarker = " [TRUNCADO]"

// Segment cuts the technical block out of text: from the first start-marker
// occurrence to the nearest following end marker, or the end of the text.
// The cut is made on the original text so accents and casing survive; maxLen
// caps the result with a truncation marker. Empty result means no marker hit.
func (m MarkerSet) Segment(text string, maxLen int) string {
	folded, offsets := textutil.FoldIndexed(text)

	start := -1
	for _, marker := range m.Start {
		if i := strings.Index(folded, marker); i >= 0 && (start < 0 || i < start) {
			start = i
		}
	}
	if start < 0 {
		return ""
	}

	end := len(folded)
	// Search strictly after the heading itself so a heading that is also an
	// end marker cannot close its own section immediately.
	searchFrom := start + 1
	for _, marker := range m.End {
		if i := strings.Index(folded[searchFrom:], marker); i >= 0 && searchFrom+i < end {
			end = searchFrom + i
		}
	}

	segment := strings.TrimSpace(text[offsetAt(text, offsets, start):offsetAt(text, offsets, end)])
	if maxLen > 0 && len(segment) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(segment[cut]) {
			cut--
		}
		segment = segment[:cut] + truncationMarker
	}
	return segment
}

func offsetAt(orig string, offsets []int, i int) int {
	if i >= len(offsets) {
		return len(orig)
	}
	return offsets[i]
}
