package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const injuriesPage = `<html><body>
<div class="ResponsiveTable Table__league-injuries">
  <div class="Table__Title"><span class="injuries__teamName ml2">Kansas City Chiefs</span></div>
  <table class="Table"><thead><tr><th>NAME</th><th>POS</th></tr></thead>
  <tbody class="Table__TBODY">
    <tr class="Table__TR"><td class="col-name Table__TD"><a href="#">Travis  Kelce</a></td><td class="col-pos Table__TD">TE</td><td class="col-date Table__TD">Sep 7</td><td class="col-stat Table__TD"><span>Questionable</span></td><td class="col-desc Table__TD">Knee</td></tr>
    <tr class="Table__TR"><td class="col-name Table__TD"><a href="#">Isiah Pacheco</a></td><td class="col-pos Table__TD">RB</td><td class="col-date Table__TD">Sep 7</td><td class="col-stat Table__TD"><span>Injured Reserve</span></td><td class="col-desc Table__TD">Ankle</td></tr>
  </tbody></table>
</div>
<div class="ResponsiveTable">
  <div class="Table__Title"><span class="injuries__teamName">Springfield Atoms</span></div>
  <table><tbody><tr><td class="col-name">Nobody</td></tr></tbody></table>
</div>
</body></html>`

func TestParseInjuries(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(injuriesPage))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	reports := ParseInjuries(doc, 2024, 3)
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports from known teams, got %d", len(reports))
	}

	kelce := reports[0]
	if kelce.FullName != "Travis Kelce" || kelce.Team != "KC" || kelce.Position != "TE" {
		t.Fatalf("unexpected first report %+v", kelce)
	}
	if kelce.ReportStatus != "Questionable" || kelce.Season != 2024 || kelce.Week != 3 {
		t.Fatalf("unexpected status fields %+v", kelce)
	}
	if reports[1].ReportStatus != "Out" {
		t.Fatalf("expected injured reserve to map to Out, got %q", reports[1].ReportStatus)
	}
}

func TestTeamAbbreviation(t *testing.T) {
	if abbr, ok := TeamAbbreviation(" Los Angeles Rams "); !ok || abbr != "LA" {
		t.Fatalf("expected LA, got %q (%v)", abbr, ok)
	}
	if _, ok := TeamAbbreviation("Oakland Raiders"); ok {
		t.Fatal("expected unknown team name to be rejected")
	}
}

func TestClientFetchInjuriesOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != UserAgent {
			t.Errorf("expected browser user agent, got %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(injuriesPage))
	}))
	defer srv.Close()

	client := New(srv.URL, NewHTTPRenderer(srv.Client()), nil)
	reports, err := client.FetchInjuries(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 || reports[0].Source != "espn" {
		t.Fatalf("unexpected reports %+v", reports)
	}
}

func TestClientFetchInjuriesEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
	}))
	defer srv.Close()

	client := New(srv.URL, NewHTTPRenderer(srv.Client()), nil)
	if _, err := client.FetchInjuries(context.Background(), 2024, 3); err == nil {
		t.Fatal("expected error when the page has no injury tables")
	}
}
