package detail

import (
	"context"
	"net/http"
	"runtime"
	"testing"

	uierrors "github.com/dalemusser/pactomapa/internal/app/features/errors"
	"github.com/dalemusser/pactomapa/internal/app/panorama"
	"github.com/dalemusser/pactomapa/internal/testutil"
	"github.com/dalemusser/pactomapa/internal/testutil/apptest"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *apptest.App) {
	t.Helper()
	a := apptest.NewLoaded(t)
	return NewHandler(a.Ctrl, "https://pacto.example/adesao", uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop()), a
}

func serve(h *Handler, id string) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/municipios/"+id), "id", id)
	req.Header.Set("HX-Request", "true")
	apptest.Render(func() { h.ServeDetail(rec, req) })
	return rec
}

func TestServeDetail_BadID(t *testing.T) {
	h, _ := newTestHandler(t)
	serve(h, "abc").AssertStatus(t, http.StatusBadRequest)
}

func TestServeDetail_UnknownMunicipality(t *testing.T) {
	h, _ := newTestHandler(t)
	serve(h, "2399999").AssertStatus(t, http.StatusNotFound)
}

func TestServeDetail_SelectsAndTriggersRedraw(t *testing.T) {
	h, a := newTestHandler(t)
	rec := serve(h, testutil.AbaiaraID)

	if got := rec.Header().Get("HX-Trigger"); got != MapUpdatedEvent {
		t.Errorf("HX-Trigger = %q", got)
	}
	if a.Overlay.Selected() != testutil.AbaiaraID {
		t.Error("shape should be highlighted")
	}
}

func TestServeDetail_DirectNavigationRedirects(t *testing.T) {
	h, a := newTestHandler(t)
	rec := testutil.NewRecorder()
	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/municipios/"+testutil.AbaiaraID), "id", testutil.AbaiaraID)
	h.ServeDetail(rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if a.Ctrl.Selection().Municipality != testutil.AbaiaraID {
		t.Error("selection should be kept for the page to load")
	}
	if a.API.Hits("/municipios/"+testutil.AbaiaraID) != 0 {
		t.Error("a redirect should not fetch the detail")
	}
}

func TestServeDetail_UpstreamFailure(t *testing.T) {
	h, a := newTestHandler(t)
	a.API.Set("/municipios/"+testutil.AbaiaraID, http.StatusInternalServerError, `{}`)
	serve(h, testutil.AbaiaraID).AssertStatus(t, http.StatusBadGateway)
}

func TestServeDetail_SupersededReturnsNoContent(t *testing.T) {
	h, a := newTestHandler(t)
	release := a.API.Block("/municipios/" + testutil.AbaiaraID)

	done := make(chan *testutil.ResponseRecorder)
	go func() { done <- serve(h, testutil.AbaiaraID) }()

	// Wait until the first request is parked on the fake API.
	for a.API.Hits("/municipios/"+testutil.AbaiaraID) == 0 {
		runtime.Gosched()
	}
	if _, err := a.Ctrl.SelectMunicipality(testutil.AcarauID); err != nil {
		t.Fatal(err)
	}
	release()

	rec := <-done
	rec.AssertStatus(t, http.StatusNoContent)
	if rec.Body.Len() != 0 {
		t.Error("a superseded response must not carry a body")
	}
}

func TestBuildProfile(t *testing.T) {
	_, a := newTestHandler(t)
	ticket, _ := a.Ctrl.SelectMunicipality(testutil.AbaiaraID)
	d, err := a.Ctrl.LoadDetail(context.Background(), ticket)
	if err != nil {
		t.Fatal(err)
	}

	vm := buildProfile(d)
	if vm.Header.Name != "Abaiara" || vm.Header.Points != 120 || vm.Header.Level != 2 || vm.Header.Progress != 20 {
		t.Errorf("header = %+v", vm.Header)
	}
	if len(vm.Missions) != 2 {
		t.Fatalf("missions = %d", len(vm.Missions))
	}
	if vm.Missions[0].StatusLabel != "Concluída" || vm.Missions[1].StatusLabel != "Pendente" {
		t.Errorf("status labels = %q, %q", vm.Missions[0].StatusLabel, vm.Missions[1].StatusLabel)
	}
	if len(vm.Badges) != 3 || vm.Badges[1].Count != 2 || vm.Badges[0].Count != 0 {
		t.Errorf("badges = %+v", vm.Badges)
	}
}

func TestBuildMission(t *testing.T) {
	_, a := newTestHandler(t)
	if err := a.Ctrl.SelectMission(context.Background(), testutil.MissionID); err != nil {
		t.Fatal(err)
	}
	ticket, _ := a.Ctrl.SelectMunicipality(testutil.AbaiaraID)
	d, err := a.Ctrl.LoadDetail(context.Background(), ticket)
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != panorama.DetailMission {
		t.Fatalf("kind = %v", d.Kind)
	}

	vm := buildMission(d)
	if !vm.Completed || vm.StatusLabel != "Concluída" {
		t.Errorf("status = %q completed=%v", vm.StatusLabel, vm.Completed)
	}
	if len(vm.Requirements) != 2 || !vm.Requirements[0].Submitted || vm.Requirements[1].Submitted {
		t.Errorf("requirements = %+v", vm.Requirements)
	}
	if vm.Requirements[0].URL != "https://files.example/ata.pdf" {
		t.Errorf("evidence url = %q", vm.Requirements[0].URL)
	}
	if vm.CountValid != 1 || vm.CountPending != 1 {
		t.Errorf("counts = %d/%d/%d", vm.CountValid, vm.CountStarted, vm.CountPending)
	}
}

func TestBuildNotJoined(t *testing.T) {
	_, a := newTestHandler(t)
	ticket, _ := a.Ctrl.SelectMunicipality(testutil.AcarauID)
	d, err := a.Ctrl.LoadDetail(context.Background(), ticket)
	if err != nil {
		t.Fatal(err)
	}

	vm := buildNotJoined(d, "javascript:alert(1)")
	if vm.JoinURL != "" {
		t.Errorf("unsafe join url kept: %q", vm.JoinURL)
	}
	if vm.Header.Name != "Acaraú" || vm.Header.AvatarURL == "" {
		t.Errorf("header = %+v", vm.Header)
	}
}
