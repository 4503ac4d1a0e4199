package registry

import (
	"sync"
	"testing"

	"github.com/dalemusser/pactomapa/internal/domain/models"
)

var (
	id1001 = models.MustMunicipalityID(1001)
	id1002 = models.MustMunicipalityID(1002)
	id1003 = models.MustMunicipalityID(1003)
)

func TestEffective_NonParticipantIgnoresLevel(t *testing.T) {
	r := New()
	r.SetLevelData(
		map[models.MunicipalityID]models.Level{id1001: models.Level2, id1002: models.Level0},
		models.NewIDSet(id1001),
	)

	if got := r.Effective(id1001); got != models.Level2 {
		t.Errorf("1001 = %v, want 2", got)
	}
	if got := r.Effective(id1002); got != models.NotParticipating {
		t.Errorf("1002 = %v, want NP (not in participation set)", got)
	}
	if got := r.Effective(id1003); got != models.NotParticipating {
		t.Errorf("unknown id = %v, want NP", got)
	}
}

func TestEffective_ParticipantWithoutAssignmentIsLevelZero(t *testing.T) {
	r := New()
	r.SetLevelData(nil, models.NewIDSet(id1003))
	if got := r.Effective(id1003); got != models.Level0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestSetLevelData_CopiesInputs(t *testing.T) {
	r := New()
	levels := map[models.MunicipalityID]models.Level{id1001: models.Level1}
	set := models.NewIDSet(id1001)
	r.SetLevelData(levels, set)

	levels[id1001] = models.Level3
	delete(set, id1001)

	if got := r.Effective(id1001); got != models.Level1 {
		t.Errorf("registry should hold its own copy, got %v", got)
	}
}

func TestSnapshot_IsIndependent(t *testing.T) {
	r := New()
	r.SetLevelData(map[models.MunicipalityID]models.Level{id1001: models.Level1}, models.NewIDSet(id1001))
	snap := r.Snapshot()
	r.SetLevelData(nil, nil)

	if snap.Effective(id1001) != models.Level1 {
		t.Error("snapshot changed after registry was replaced")
	}
	if r.Effective(id1001) != models.NotParticipating {
		t.Error("registry should have been replaced")
	}
}

func TestMunicipalities_SortedAndMerged(t *testing.T) {
	r := New()
	r.SetMunicipalities([]models.Municipality{
		{ID: id1002, Name: "Acaraú"},
		{ID: id1001, Name: "Abaiara"},
		{ID: id1003, Name: "acarape"},
		{ID: "", Name: "dropped"},
	})
	r.SetMunicipalities([]models.Municipality{{ID: id1001, Name: "Abaiara", Points: 50}})

	got := r.Municipalities()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Name != "Abaiara" || got[1].Name != "acarape" || got[2].Name != "Acaraú" {
		t.Errorf("order = %q, %q, %q", got[0].Name, got[1].Name, got[2].Name)
	}
	if got[0].Points != 50 {
		t.Error("later list should update the record in place")
	}
}

func TestMunicipality_CarriesEffectiveLevel(t *testing.T) {
	r := New()
	r.SetMunicipalities([]models.Municipality{{ID: id1001, Name: "Abaiara"}})
	r.SetLevelData(map[models.MunicipalityID]models.Level{id1001: models.Level3}, models.NewIDSet(id1001))

	m, ok := r.Municipality(id1001)
	if !ok || m.Level != models.Level3 {
		t.Errorf("Municipality = %+v, %v", m, ok)
	}
	if _, ok := r.Municipality(id1002); ok {
		t.Error("unknown id should not be found")
	}
}

func TestLoaded(t *testing.T) {
	r := New()
	if r.Loaded() {
		t.Error("new registry should not be loaded")
	}
	r.SetMunicipalities([]models.Municipality{{ID: id1001, Name: "Abaiara"}})
	if r.Loaded() {
		t.Error("records alone should not count as loaded")
	}
	r.SetLevelData(nil, nil)
	if !r.Loaded() {
		t.Error("registry should be loaded")
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.SetLevelData(map[models.MunicipalityID]models.Level{id1001: models.Level(i % 4)}, models.NewIDSet(id1001))
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Effective(id1001)
			_ = r.Snapshot()
		}()
	}
	wg.Wait()
}

func TestUpdate(t *testing.T) {
	r := New()
	r.SetMunicipalities([]models.Municipality{{ID: id1001, Name: "Abaiara", Status: models.StatusParticipating}})

	ok := r.Update(id1001, func(m *models.Municipality) { m.Points = 99; m.ID = id1002 })
	if !ok {
		t.Fatal("Update reported unknown id")
	}
	m, _ := r.Municipality(id1001)
	if m.Points != 99 || m.Status != models.StatusParticipating {
		t.Errorf("record = %+v", m)
	}
	if _, ok := r.Municipality(id1002); ok {
		t.Error("Update must not move a record to another id")
	}
	if r.Update(id1003, func(*models.Municipality) {}) {
		t.Error("Update of unknown id should report false")
	}
}
