package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Municipality codes used by the fixtures.
const (
	AbaiaraID = "2300101" // participating, level 2
	AcarapeID = "2300150" // participating, level 0
	AcarauID  = "2300200" // not participating
)

// MissionID is the mission the fixtures describe.
const MissionID = "7"

// Route is one canned response of the fake API.
type Route struct {
	Status int
	Body   string
	gate   chan struct{}
}

// FakeAPI is an httptest server that answers like the program API, rooted
// at URL() (which ends in /api).
type FakeAPI struct {
	Server *httptest.Server

	mu     sync.Mutex
	routes map[string]Route
	hits   map[string]int
}

// NewFakeAPI starts a fake API preloaded with the default fixtures. The
// server is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{routes: map[string]Route{}, hits: map[string]int{}}
	for path, body := range defaultRoutes {
		f.routes[path] = Route{Status: http.StatusOK, Body: body}
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the API base URL to hand to upstream.New.
func (f *FakeAPI) URL() string { return f.Server.URL + "/api" }

// Set replaces the response for path (without the /api prefix).
func (f *FakeAPI) Set(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = Route{Status: status, Body: body}
}

// Block holds responses for path until release is called.
func (f *FakeAPI) Block(path string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.routes[path]
	r.gate = make(chan struct{})
	f.routes[path] = r
	var once sync.Once
	gate := r.gate
	return func() { once.Do(func() { close(gate) }) }
}

// Hits reports how many requests reached path.
func (f *FakeAPI) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if len(path) >= 4 && path[:4] == "/api" {
		path = path[4:]
	}

	f.mu.Lock()
	f.hits[path]++
	route, ok := f.routes[path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if route.gate != nil {
		select {
		case <-route.gate:
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(route.Status)
	_, _ = w.Write([]byte(route.Body))
}

// MunicipalitiesJSON is the /municipios response.
const MunicipalitiesJSON = `{"status":"success","data":[
 {"codIbge":2300101,"nome":"Abaiara","status":"Participante","points":120,"badges":2,"imagemAvatar":"https://drive.google.com/file/d/abc123/view"},
 {"codIbge":"2300150","nome":"Acarape","status":"Participante","points":40,"badges":0,"imagemAvatar":""},
 {"codIbge":2300200,"nome":"Acaraú","status":"Não participante","points":0,"badges":0}
]}`

// MapPanoramaJSON is the /dashboard/map-panorama response (no envelope).
const MapPanoramaJSON = `{"municipios":[
 {"codIbge":2300101,"desempenho":{"level":2}},
 {"codIbge":2300150,"desempenho":{"level":0}},
 {"codIbge":2300200,"desempenho":null}
],"levelDistribution":[{"level":2,"municipios":[2300101]},{"level":0,"municipios":[2300150]}]}`

// DetailJSON is the /municipios/2300101 response; data.json is a string.
const DetailJSON = `{"status":"success","data":{"json":"{\"data\":{\"municipio\":{\"codIbge\":\"2300101\",\"nome\":\"Abaiara\",\"imagem_avatar\":\"https://drive.google.com/file/d/abc123/view\"},\"missoesMunicipio\":{\"missoes\":[{\"status_de_validacao\":\"Validado\",\"missao\":{\"id\":7,\"id_categoria\":\"CTG-2\",\"descricao_da_categoria\":\"Gestão\",\"descrição_da_missao\":\"Criar o comitê municipal\",\"qnt_pontos\":20,\"link_formulario\":\"https://forms.example/7\"},\"evidencias\":[{\"title\":\"Ata\",\"description\":\"Ata de criação\",\"evidencia\":\"https://files.example/ata.pdf\"}]},{\"status_de_validacao\":\"Pendente\",\"missao\":{\"id\":8,\"id_categoria\":\"CTG-1\",\"descricao_da_categoria\":\"Formação\",\"descrição_da_missao\":\"Capacitar profissionais\",\"qnt_pontos\":30},\"evidencias\":[{\"title\":\"Lista\",\"description\":\"Lista de presença\"}]}]},\"insigniasMunicipio\":{\"points\":120,\"insignias\":[{\"category\":\"CTG-2\",\"nome\":\"Gestor\",\"number\":2}]}}}"}}`

// MunicipalityPanoramaJSON is the /dashboard/map-panorama/2300101 response.
const MunicipalityPanoramaJSON = `{"status":"success","data":{"mapPanorama":{"municipio":{"codIbge":2300101,"nome":"Abaiara","badges":2},"countValid":1,"countStarted":0,"countPending":1},"level":2,"totalPoints":120}}`

// MissionPanoramaJSON is the /dashboard/mission-panorama response.
const MissionPanoramaJSON = `{"status":"success","data":[
 {"missao":{"id":7,"categoria":"CTG2","descricao_da_categoria":"Gestão","descricao_da_missao":"Criar o comitê municipal","qnt_pontos":20},"countValid":1,"totalMunicipios":3},
 {"missao":{"id":8,"categoria":"CTG1","descricao_da_categoria":"Formação","descricao_da_missao":"Capacitar profissionais","qnt_pontos":30},"countValid":0,"totalMunicipios":3}
]}`

// MissionStatusJSON is the /dashboard/mission-panorama/7 response.
const MissionStatusJSON = `{"status":"success","data":{"completedMunicipios":[{"codIbge":2300101}],"startedMunicipios":[{"codIbge":"2300150"}],"pendingMunicipios":[]}}`

// MissionJSON is the /missoes/7 response.
const MissionJSON = `{"status":"success","data":{"id":7,"categoria":"CTG2","descricao_da_categoria":"Gestão","descricao_da_missao":"Criar o comitê municipal","qnt_pontos":20,"evidencias":[{"titulo":"Ata","descricao":"Ata de criação"},{"titulo":"Decreto","descricao":"Decreto publicado"}],"link_formulario":"https://forms.example/7"}}`

// PerformanceJSON is the /desempenhos/municipio/2300101/missao/7 response.
const PerformanceJSON = `{"status":"success","data":{"validation_status":"VALID","evidence":"[{\"title\":\"Ata\",\"evidencia\":\"https://files.example/ata.pdf\"}]","municipio":{"codIbge":2300101}}}`

// EventsJSON is the /eventos response.
const EventsJSON = `{"status":"success","data":[
 {"event":"mission_completed","municipio":{"codIbge":2300101,"nome":"Abaiara","points":120},"missao":{"id":7,"descricao_da_missao":"Criar o comitê municipal"},"emblema":"Gestão","data_alteracao":"2024-05-02T14:00:00Z"},
 {"event":"mission_started","municipio":{"codIbge":2300150,"nome":"Acarape","points":40},"missao":{"id":8,"descricao_da_missao":"Capacitar profissionais"},"data_alteracao":"2024-05-01T10:00:00Z"}
],"pagination":{"total":2,"page":0,"limit":10,"pages":1}}`

var defaultRoutes = map[string]string{
	"/municipios":                              MunicipalitiesJSON,
	"/municipios/" + AbaiaraID:                 DetailJSON,
	"/dashboard/map-panorama":                  MapPanoramaJSON,
	"/dashboard/map-panorama/" + AbaiaraID:     MunicipalityPanoramaJSON,
	"/dashboard/mission-panorama":              MissionPanoramaJSON,
	"/dashboard/mission-panorama/" + MissionID: MissionStatusJSON,
	"/missoes/" + MissionID:                    MissionJSON,
	"/desempenhos/municipio/" + AbaiaraID + "/missao/" + MissionID: PerformanceJSON,
	"/eventos": EventsJSON,
}

// GeoJSON is a feature collection with one square per fixture municipality.
const GeoJSON = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"id":"2300101","name":"Abaiara"},"geometry":{"type":"Polygon","coordinates":[[[-39.0,-7.3],[-39.1,-7.3],[-39.1,-7.4],[-39.0,-7.4],[-39.0,-7.3]]]}},
 {"type":"Feature","properties":{"id":2300150,"name":"Acarape"},"geometry":{"type":"Polygon","coordinates":[[[-38.7,-4.2],[-38.8,-4.2],[-38.8,-4.3],[-38.7,-4.3],[-38.7,-4.2]]]}},
 {"type":"Feature","properties":{"id":"2300200","name":"Acaraú"},"geometry":{"type":"Polygon","coordinates":[[[-40.1,-2.8],[-40.2,-2.8],[-40.2,-2.9],[-40.1,-2.9],[-40.1,-2.8]]]}}
]}`
