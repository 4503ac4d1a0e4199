package events

import (
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	uierrors "github.com/dalemusser/pactomapa/internal/app/features/errors"
	"github.com/dalemusser/pactomapa/internal/app/store/staticdata"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"github.com/dalemusser/pactomapa/internal/testutil"
	"github.com/dalemusser/pactomapa/internal/testutil/apptest"
	"go.uber.org/zap"
)

func TestParseQuery(t *testing.T) {
	h := NewHandler(nil, 0, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	tests := []struct {
		name   string
		target string
		want   models.EventQuery
	}{
		{"defaults", "/eventos", models.EventQuery{Limit: 10, Sort: models.SortDesc}},
		{"all filters", "/eventos?pagina=2&tipo=mission_started&municipio=%20Abaiara%20&ordem=asc",
			models.EventQuery{Page: 2, Limit: 10, Type: models.EventMissionStarted, Municipality: "Abaiara", Sort: models.SortAsc}},
		{"unknown type dropped", "/eventos?tipo=drop_table", models.EventQuery{Limit: 10, Sort: models.SortDesc}},
		{"negative page", "/eventos?pagina=-3", models.EventQuery{Limit: 10, Sort: models.SortDesc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.parseQuery(testutil.NewRequest("GET", tt.target)); got != tt.want {
				t.Errorf("parseQuery = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewHandler_ClampsPageSize(t *testing.T) {
	if h := NewHandler(nil, 500, nil, zap.NewNop()); h.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", h.PageSize)
	}
	if h := NewHandler(nil, 25, nil, zap.NewNop()); h.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", h.PageSize)
	}
}

func TestBuildEvent(t *testing.T) {
	at := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ev   models.Event
		want eventVM
	}{
		{"completed", models.Event{
			Type: models.EventMissionCompleted, Municipality: models.Municipality{Name: "Abaiara"},
			MissionDescription: "Criar o comitê", Badge: "Gestão", ChangedAt: at,
		}, eventVM{Title: "Prefeitura de Abaiara", Kind: "concluida", Action: "concluiu a missão",
			Mission: "Criar o comitê", Points: 20, Badge: "Gestão", When: "02/05/2024 às 11:00"}},
		{"started", models.Event{
			Type: models.EventMissionStarted, Municipality: models.Municipality{Name: "Acarape"}, MissionDescription: "Capacitar",
		}, eventVM{Title: "Prefeitura de Acarape", Kind: "iniciada", Action: "iniciou a missão", Mission: "Capacitar"}},
		{"other", models.Event{Type: "profile_updated", Municipality: models.Municipality{Name: "Aracati"}},
			eventVM{Title: "Prefeitura de Aracati", Kind: "outro",
				Action: "participou de uma atividade no Pacto Cearense da Primeira Infância"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildEvent(tt.ev); got != tt.want {
				t.Errorf("buildEvent =\n %+v\nwant\n %+v", got, tt.want)
			}
		})
	}
}

func TestBuildList_PagerKeepsFilters(t *testing.T) {
	q := models.EventQuery{Page: 1, Limit: 10, Type: models.EventMissionCompleted, Sort: models.SortDesc}
	page := models.EventPage{
		Events:     make([]models.Event, 10),
		Pagination: models.Pagination{Total: 57, Page: 1, Limit: 10, Pages: 6},
	}
	vm := buildList(page, q)

	if !vm.Pager.Show || len(vm.Links) != 5 {
		t.Fatalf("pager = %+v", vm.Pager)
	}
	if vm.Range.Start != 11 || vm.Range.End != 20 {
		t.Errorf("range = %+v", vm.Range)
	}
	for _, u := range []string{vm.PrevURL, vm.NextURL, vm.Links[0].URL} {
		if !strings.HasPrefix(u, "/eventos?") || !strings.Contains(u, "tipo=mission_completed") {
			t.Errorf("link %q lost the filters", u)
		}
	}
	if !strings.Contains(vm.NextURL, "pagina=2") || !strings.Contains(vm.PrevURL, "pagina=0") {
		t.Errorf("prev/next = %q, %q", vm.PrevURL, vm.NextURL)
	}
	if !vm.Links[1].Active {
		t.Error("second link should be the active page")
	}
}

func TestBuildList_Empty(t *testing.T) {
	vm := buildList(models.EventPage{}, models.EventQuery{Limit: 10})
	if !vm.Empty || vm.Pager.Show {
		t.Errorf("vm = %+v", vm)
	}
}

func TestServeList_FallsBackToStaticFile(t *testing.T) {
	static := staticdata.NewFS(fstest.MapFS{
		staticdata.EventsFile: {Data: []byte(testutil.EventsJSON)},
	})
	a := apptest.New(t, static)
	a.API.Set("/eventos", http.StatusBadGateway, ``)
	h := NewHandler(a.Ctrl, 10, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	rec := testutil.NewRecorder()
	apptest.Render(func() { h.ServeList(rec, testutil.NewRequest("GET", "/eventos")) })
	if rec.Code == http.StatusBadGateway {
		t.Error("fallback file should have served the feed")
	}
}

func TestServeList_UpstreamFailure(t *testing.T) {
	a := apptest.New(t, nil)
	a.API.Set("/eventos", http.StatusBadGateway, ``)
	h := NewHandler(a.Ctrl, 10, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	rec := testutil.NewRecorder()
	apptest.Render(func() { h.ServeList(rec, testutil.NewRequest("GET", "/eventos")) })
	rec.AssertStatus(t, http.StatusBadGateway)
}
