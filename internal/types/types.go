package types

import (
	"encoding/json"
	"strings"
)

// Category is the procurement type of a tender (BIENES or SERVICIO on the site).
type Category int

const (
	CategoryUnknown Category = iota
	CategoryGoods
	CategoryService
)

func (c Category) String() string {
	switch c {
	case CategoryGoods:
		return "GOODS"
	case CategoryService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

func (c Category) MarshalJSON() ([]byte, error) {
	switch c {
	case CategoryGoods:
		return json.Marshal("BIENES")
	case CategoryService:
		return json.Marshal("SERVICIO")
	default:
		return json.Marshal("")
	}
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BIENES":
		*c = CategoryGoods
	case "SERVICIO", "SERVICIOS":
		*c = CategoryService
	default:
		*c = CategoryUnknown
	}
	return nil
}

// Status classifies the parenthesized state token on the deadline column.
// Only StatusOpen records make it into the snapshot.
type Status int

const (
	StatusOther Status = iota
	StatusOpen
	StatusClosed
)

// ParseStatus maps the site's status token to a Status. The token is expected
// already uppercased and trimmed.
func ParseStatus(token string) Status {
	switch token {
	case "VIGENTE":
		return StatusOpen
	case "VENCIDO":
		return StatusClosed
	default:
		return StatusOther
	}
}

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusClosed:
		return "CLOSED"
	default:
		return "OTHER"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusOpen:
		return json.Marshal("VIGENTE")
	case StatusClosed:
		return json.Marshal("VENCIDO")
	default:
		return json.Marshal("")
	}
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	*s = ParseStatus(strings.ToUpper(strings.TrimSpace(token)))
	return nil
}

// TechSummary is the optional AI-generated digest of a technical block.
type TechSummary struct {
	Points          []string `json:"puntos"`
	KeyRequirements []string `json:"requisitos_clave"`
}

// Attachment is the technical-requirements document (TDR) linked from an
// announcement. Its fields are flattened into the serialized announcement.
type Attachment struct {
	SourceURL      string       `json:"tdr_url,omitempty"`
	LocalFilename  string       `json:"tdr_filename,omitempty"`
	Downloaded     bool         `json:"tdr_downloaded"`
	TechnicalBlock string       `json:"caracteristicas_tecnicas,omitempty"`
	UsedOCR        bool         `json:"caracteristicas_tecnicas_ocr"`
	Summary        *TechSummary `json:"resumen_ia,omitempty"`
}

// Announcement is one tender entry scraped from the listing. ReferenceID may
// be empty when the heading did not carry a number; the record is kept anyway.
type Announcement struct {
	ReferenceID  string   `json:"numero"`
	TitleLine    string   `json:"titulo,omitempty"`
	Description  string   `json:"descripcion"`
	PublishedOn  string   `json:"publicado_el"`
	Category     Category `json:"tipo"`
	DeadlineDate string   `json:"fecha_limite"`
	DeadlineTime string   `json:"hora_limite"`
	Status       Status   `json:"estado"`
	SourcePage   int      `json:"pagina_origen"`

	*Attachment
}

// Metadata describes one scraper run.
type Metadata struct {
	Source       string `json:"source"`
	BaseURL      string `json:"base_url"`
	ScrapedAtUTC string `json:"scraped_at_utc"`
	Total        int    `json:"total"`
}

// Snapshot is the single output document of a run.
type Snapshot struct {
	Metadata      Metadata       `json:"metadata"`
	Announcements []Announcement `json:"convocatorias"`
}
