package espn

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/gridiron/internal/model"
)

// ParseInjuries extracts one report per table row. Each team block on the
// page is a title followed by a table of name, position, date, status and
// comment cells.
func ParseInjuries(doc *goquery.Document, season, week int) []model.InjuryReport {
	var reports []model.InjuryReport

	doc.Find("div.ResponsiveTable").Each(func(_ int, block *goquery.Selection) {
		teamName := strings.TrimSpace(block.Find(".injuries__teamName").First().Text())
		abbr, ok := TeamAbbreviation(teamName)
		if !ok {
			return
		}

		block.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			name := cellText(row, "td.col-name")
			if name == "" {
				return
			}
			reports = append(reports, model.InjuryReport{
				Season:       season,
				Week:         week,
				Team:         abbr,
				Position:     cellText(row, "td.col-pos"),
				FullName:     name,
				ReportStatus: normalizeStatus(cellText(row, "td.col-stat")),
				Source:       "espn",
			})
		})
	})

	return reports
}

func cellText(row *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(row.Find(selector).First().Text()), " ")
}

// ESPN reports long-term designations that the weekly report calls Out.
func normalizeStatus(raw string) string {
	switch strings.ToLower(raw) {
	case "injured reserve", "ir", "physically unable to perform", "pup", "suspension", "suspended":
		return "Out"
	default:
		return raw
	}
}
