package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcondori/convoscraper/internal/textutil"
	"github.com/jcondori/convoscraper/internal/types"
)

func TestParseHeadingLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		refID     string
		desc      string
		published string
	}{
		{
			name:      "combined heading",
			line:      "SOLICITUD DE COTIZACION N° 4017-2025 SERVICIO DE LIMPIEZA | Publicado el 10/12/2025 |",
			refID:     "4017-2025",
			desc:      "SERVICIO DE LIMPIEZA",
			published: "10/12/2025",
		},
		{
			name:  "heading only",
			line:  "SOLICITUD DE COTIZACION N° 3983-2025",
			refID: "3983-2025",
		},
		{
			name: "missing number keeps record",
			line: "SOLICITUD DE COTIZACION ADQUISICION DE CEMENTO",
			desc: "ADQUISICION DE CEMENTO",
		},
		{
			name:      "accented lowercase variant",
			line:      "Solicitud de Cotización N° 4020-2025 Adquisición de útiles | Publicado el 01/12/2025 |",
			refID:     "4020-2025",
			desc:      "Adquisición de útiles",
			published: "01/12/2025",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refID, desc, published := parseHeadingLine(tt.line)
			assert.Equal(t, tt.refID, refID)
			assert.Equal(t, tt.desc, desc)
			assert.Equal(t, tt.published, published)
		})
	}
}

func TestParseDeadline(t *testing.T) {
	tests := []struct {
		in     string
		date   string
		clock  string
		status string
	}{
		{"20/12/2025 4:30 PM (VIGENTE)", "20/12/2025", "4:30 PM", "VIGENTE"},
		{"14/11/2024 10:30 AM (VENCIDO)", "14/11/2024", "10:30 AM", "VENCIDO"},
		{"20/12/2025 (VIGENTE)", "20/12/2025", "", "VIGENTE"},
		{"4:30 pm (vigente)", "", "4:30 PM", "VIGENTE"},
		{"20/12/2025", "20/12/2025", "", ""},
	}
	for _, tt := range tests {
		date, clock, status := parseDeadline(textutil.Fold(tt.in))
		assert.Equal(t, tt.date, date, tt.in)
		assert.Equal(t, tt.clock, clock, tt.in)
		assert.Equal(t, tt.status, status, tt.in)
	}
}

func TestParseBlockScenario(t *testing.T) {
	block := RawBlock{Lines: []string{
		"SOLICITUD DE COTIZACION N° 4017-2025 SERVICIO DE LIMPIEZA | Publicado el 10/12/2025 |",
		"SERVICIO",
		"20/12/2025 4:30 PM (VIGENTE)",
	}}

	ann := ParseBlock(block, 3)

	assert.Equal(t, "4017-2025", ann.ReferenceID)
	assert.Equal(t, "SERVICIO DE LIMPIEZA", ann.Description)
	assert.Equal(t, "10/12/2025", ann.PublishedOn)
	assert.Equal(t, types.CategoryService, ann.Category)
	assert.Equal(t, "20/12/2025", ann.DeadlineDate)
	assert.Equal(t, "4:30 PM", ann.DeadlineTime)
	assert.Equal(t, types.StatusOpen, ann.Status)
	assert.Equal(t, 3, ann.SourcePage)
}

func TestParseBlockExpiredStatus(t *testing.T) {
	block := RawBlock{Lines: []string{
		"SOLICITUD DE COTIZACION N° 4017-2025 SERVICIO DE LIMPIEZA | Publicado el 10/12/2025 |",
		"SERVICIO",
		"20/12/2025 4:30 PM (VENCIDO)",
	}}

	ann := ParseBlock(block, 1)
	assert.Equal(t, types.StatusClosed, ann.Status)
}

func TestParseBlockLooseLines(t *testing.T) {
	// Line order and presence vary across site revisions: description on its
	// own line, publish date separated, category implied by the description.
	block := RawBlock{Lines: []string{
		"SOLICITUD DE COTIZACION N° 3983-2025",
		"SERVICIO DE ACONDICIONAMIENTO DE COBERTURAS",
		"| Publicado el 28/11/2025 |",
		"12/12/2025 4:30 PM (VIGENTE)",
	}}

	ann := ParseBlock(block, 1)

	require.Equal(t, types.StatusOpen, ann.Status)
	assert.Equal(t, "3983-2025", ann.ReferenceID)
	assert.Equal(t, "SERVICIO DE ACONDICIONAMIENTO DE COBERTURAS", ann.Description)
	assert.Equal(t, "28/11/2025", ann.PublishedOn)
	assert.Equal(t, types.CategoryService, ann.Category)
	assert.Equal(t, "12/12/2025", ann.DeadlineDate)
	assert.Equal(t, "4:30 PM", ann.DeadlineTime)
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, types.CategoryGoods, parseCategory("ADQUISICION DE BIENES VARIOS"))
	assert.Equal(t, types.CategoryService, parseCategory("SERVICIO DE LIMPIEZA"))
	assert.Equal(t, types.CategoryService, parseCategory("SERVICIOS GENERALES"))
	assert.Equal(t, types.CategoryUnknown, parseCategory("OBRA DE SANEAMIENTO"))
	// Substrings must not match: SERVICIO inside another word.
	assert.Equal(t, types.CategoryUnknown, parseCategory("POLISERVICIOSA"))
}
