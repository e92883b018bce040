package extract

import (
	"regexp"
	"strings"

	"github.com/jcondori/convoscraper/internal/textutil"
	"github.com/jcondori/convoscraper/internal/types"
)

// Patterns run against folded text (uppercased, accents stripped), so they
// do not need to spell out accent or case variants.
var (
	reHeadingKeyword = regexp.MustCompile(`SOLICITUD\s+DE\s+COTIZACION`)
	reHeadingFull    = regexp.MustCompile(`SOLICITUD\s+DE\s+COTIZACION(?:\s*N[°º]?\s*([0-9]+(?:-[0-9]+)*))?`)
	rePublished      = regexp.MustCompile(`PUBLICADO\s+EL\s+([0-9]{2}/[0-9]{2}/[0-9]{4})`)
	reDate           = regexp.MustCompile(`[0-9]{2}/[0-9]{2}/[0-9]{4}`)
	reTime           = regexp.MustCompile(`([0-9]{1,2}:[0-9]{2})\s*([AP]M)`)
	reTrailingParen  = regexp.MustCompile(`\(([^()]*)\)\s*$`)
	reCategory       = regexp.MustCompile(`\b(BIENES|SERVICIOS?)\b`)
)

// ParseBlock turns one raw block into an announcement, classifying each line
// by its content rather than by position: line order and presence vary across
// site revisions, so nothing here assumes a fixed layout.
func ParseBlock(b RawBlock, page int) types.Announcement {
	ann := types.Announcement{SourcePage: page}
	var free []string

	for _, raw := range b.Lines {
		line := textutil.CollapseSpaces(raw)
		if line == "" {
			continue
		}
		folded := textutil.Fold(line)

		switch {
		case reHeadingKeyword.MatchString(folded):
			if ann.TitleLine == "" {
				ann.TitleLine = line
			}
			num, desc, pub := parseHeadingLine(line)
			if ann.ReferenceID == "" {
				ann.ReferenceID = num
			}
			if ann.Description == "" {
				ann.Description = desc
			}
			if ann.PublishedOn == "" {
				ann.PublishedOn = pub
			}
			// Collapsed layouts carry the deadline field on the heading line
			// itself, after the publish fragment.
			if m := rePublished.FindStringIndex(folded); m != nil {
				if tail := folded[m[1]:]; isDeadlineLine(tail) {
					date, clock, status := parseDeadline(tail)
					if ann.DeadlineDate == "" {
						ann.DeadlineDate = date
					}
					if ann.DeadlineTime == "" {
						ann.DeadlineTime = clock
					}
					if ann.Status == types.StatusOther && status != "" {
						ann.Status = types.ParseStatus(status)
					}
				}
			}
		case rePublished.MatchString(folded):
			if ann.PublishedOn == "" {
				ann.PublishedOn = rePublished.FindStringSubmatch(folded)[1]
			}
		case isDeadlineLine(folded):
			date, clock, status := parseDeadline(folded)
			if ann.DeadlineDate == "" {
				ann.DeadlineDate = date
			}
			if ann.DeadlineTime == "" {
				ann.DeadlineTime = clock
			}
			if ann.Status == types.StatusOther && status != "" {
				ann.Status = types.ParseStatus(status)
			}
		case isCategoryLine(folded):
			if ann.Category == types.CategoryUnknown {
				ann.Category = parseCategory(folded)
			}
		default:
			free = append(free, line)
		}
	}

	if ann.Description == "" {
		ann.Description = textutil.CollapseSpaces(strings.Join(free, " "))
	}
	if ann.Category == types.CategoryUnknown {
		ann.Category = parseCategory(textutil.Fold(b.Text()))
	}
	return ann
}

// parseHeadingLine splits a combined heading such as
//
//	SOLICITUD DE COTIZACION N° 4017-2025 SERVICIO DE LIMPIEZA | Publicado el 10/12/2025 |
//
// into identifier, description and publish date. Any of the three may be
// absent; the description is whatever sits between the heading prefix and the
// publish-date fragment.
func parseHeadingLine(line string) (refID, description, published string) {
	collapsed := textutil.CollapseSpaces(line)
	folded, offsets := textutil.FoldIndexed(collapsed)

	descStart, descEnd := 0, len(folded)
	if m := reHeadingFull.FindStringSubmatchIndex(folded); m != nil {
		if m[2] >= 0 {
			refID = folded[m[2]:m[3]]
		}
		descStart = m[1]
	}
	if m := rePublished.FindStringSubmatchIndex(folded); m != nil {
		published = folded[m[2]:m[3]]
		if m[0] >= descStart {
			descEnd = m[0]
		}
	}

	region := collapsed[byteOffset(collapsed, offsets, descStart):byteOffset(collapsed, offsets, descEnd)]
	region = strings.ReplaceAll(region, "|", " ")
	description = textutil.CollapseSpaces(region)
	return refID, description, published
}

// byteOffset maps an index in the folded text back to the original string.
func byteOffset(orig string, offsets []int, i int) int {
	if i >= len(offsets) {
		return len(orig)
	}
	return offsets[i]
}

// isDeadlineLine reports whether a folded line looks like the deadline/status
// field: it carries a date, a clock time, or a trailing parenthesized token
// that resolves to a known status.
func isDeadlineLine(folded string) bool {
	if reDate.MatchString(folded) || reTime.MatchString(folded) {
		return true
	}
	if m := reTrailingParen.FindStringSubmatch(folded); m != nil {
		return types.ParseStatus(strings.TrimSpace(m[1])) != types.StatusOther
	}
	return false
}

// parseDeadline pulls date, time and status out of a folded deadline field
// such as "20/12/2025 4:30 PM (VIGENTE)". Missing parts stay empty.
func parseDeadline(folded string) (date, clock, status string) {
	if m := reTrailingParen.FindStringSubmatch(folded); m != nil {
		status = strings.TrimSpace(m[1])
	}
	date = reDate.FindString(folded)
	if m := reTime.FindStringSubmatch(folded); m != nil {
		clock = m[1] + " " + m[2]
	}
	return date, clock, status
}

func isCategoryLine(folded string) bool {
	switch folded {
	case "BIENES", "SERVICIO", "SERVICIOS":
		return true
	}
	return false
}

// parseCategory returns the category of the first whole-word keyword match.
func parseCategory(folded string) types.Category {
	switch m := reCategory.FindString(folded); m {
	case "BIENES":
		return types.CategoryGoods
	case "SERVICIO", "SERVICIOS":
		return types.CategoryService
	default:
		return types.CategoryUnknown
	}
}
