// internal/app/features/events/types.go
package events

import (
	"net/url"
	"strconv"
	"time"

	"github.com/dalemusser/pactomapa/internal/app/system/paging"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// completionPoints is what the feed announces for a completed mission.
const completionPoints = 20

// fortaleza is the program's local time. Ceará has no daylight saving.
var fortaleza = time.FixedZone("BRT", -3*60*60)

type eventVM struct {
	Title     string // "Prefeitura de {nome}"
	AvatarURL string
	Kind      string // css modifier
	Action    string
	Mission   string
	Points    int
	Badge     string
	When      string
}

type pageLinkVM struct {
	Label  int
	URL    string
	Active bool
}

type listVM struct {
	Events  []eventVM
	Empty   bool
	Range   paging.Range
	Total   int
	Pager   paging.Pager
	PrevURL string
	NextURL string
	Links   []pageLinkVM
	Filters models.EventQuery
}

func buildEvent(ev models.Event) eventVM {
	vm := eventVM{
		Title:     "Prefeitura de " + ev.Municipality.Name,
		AvatarURL: ev.Municipality.AvatarURL,
	}
	switch ev.Type {
	case models.EventMissionCompleted:
		vm.Kind = "concluida"
		vm.Action = "concluiu a missão"
		vm.Mission = ev.MissionDescription
		vm.Points = completionPoints
		vm.Badge = ev.Badge
	case models.EventMissionStarted:
		vm.Kind = "iniciada"
		vm.Action = "iniciou a missão"
		vm.Mission = ev.MissionDescription
	default:
		vm.Kind = "outro"
		vm.Action = "participou de uma atividade no Pacto Cearense da Primeira Infância"
	}
	if !ev.ChangedAt.IsZero() {
		vm.When = ev.ChangedAt.In(fortaleza).Format("02/01/2006 às 15:04")
	}
	return vm
}

// pageURL is the /eventos link for page n with the current filters kept.
func pageURL(q models.EventQuery, n int) string {
	v := url.Values{}
	if q.Type != "" {
		v.Set("tipo", q.Type)
	}
	if q.Municipality != "" {
		v.Set("municipio", q.Municipality)
	}
	if q.Sort != "" && q.Sort != models.SortDesc {
		v.Set("ordem", q.Sort)
	}
	base := "/eventos"
	if enc := v.Encode(); enc != "" {
		base += "?" + enc
	}
	return urlutil.AddOrSetQueryParams(base, map[string]string{"pagina": strconv.Itoa(n)})
}

func buildList(page models.EventPage, q models.EventQuery) listVM {
	vm := listVM{
		Empty:   len(page.Events) == 0,
		Total:   page.Pagination.Total,
		Filters: q,
	}
	for _, ev := range page.Events {
		vm.Events = append(vm.Events, buildEvent(ev))
	}

	pages := page.Pagination.Pages
	if pages == 0 {
		pages = models.PagesFor(page.Pagination.Total, q.Limit)
	}
	vm.Range = paging.ComputeRange(q.Page, q.Limit, len(page.Events))
	vm.Pager = paging.Build(page.Pagination.Total, q.Limit, q.Page, pages)
	if vm.Pager.HasPrev {
		vm.PrevURL = pageURL(q, vm.Pager.PrevPage)
	}
	if vm.Pager.HasNext {
		vm.NextURL = pageURL(q, vm.Pager.NextPage)
	}
	for _, l := range vm.Pager.Links {
		vm.Links = append(vm.Links, pageLinkVM{Label: l.Label, URL: pageURL(q, l.Number), Active: l.Active})
	}
	return vm
}
