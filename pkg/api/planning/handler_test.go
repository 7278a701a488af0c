package planning_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"wealth_planner/pkg/api/planning"
	"wealth_planner/pkg/core/classify"
	"wealth_planner/pkg/core/pipeline"
	"wealth_planner/pkg/core/projection"
	"wealth_planner/pkg/core/store"
	"wealth_planner/pkg/core/validate"
	"wealth_planner/pkg/models"
)

var defaults = projection.Assumptions{Years: 10, GrowthRatePercent: 2.5, InflationRatePercent: 4}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	srv := httptest.NewServer(planning.NewRouter(planning.NewHandler(s, projection.NewEngine(), defaults)))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHandleKinds(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/kinds", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var kinds []classify.KindInfo
	decode(t, resp, &kinds)
	if len(kinds) != len(classify.CanonicalKinds()) {
		t.Errorf("expected %d kinds, got %d", len(classify.CanonicalKinds()), len(kinds))
	}
}

func TestHandleProjection(t *testing.T) {
	srv := newServer(t)

	body := `{
		"items": [
			{"kind": "isa", "ite": {"investmentValue": 10000}},
			{"id": "card", "kind": "credit_card", "ite": {"loan": {"balance": 500}}}
		],
		"highlight": {"card": false}
	}`
	resp := do(t, http.MethodPost, srv.URL+"/api/projection", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out planning.ProjectionResponse
	decode(t, resp, &out)
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out.Rows))
	}
	if math.Round(out.Rows[0].Future) != 12801 {
		t.Errorf("expected default assumptions to apply, got future %.2f", out.Rows[0].Future)
	}
	if out.Totals == nil || out.Totals.CurrentSum != 10000 {
		t.Errorf("expected excluded card to be left out of totals, got %+v", out.Totals)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}

func TestHandleProjection_LenientBody(t *testing.T) {
	srv := newServer(t)

	body := `{'items': [{'kind': 'car', 'ite': {'value': 8000,},},], 'assumptions': {'years': 0},}`
	resp := do(t, http.MethodPost, srv.URL+"/api/projection", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected repaired body to be accepted, got %d", resp.StatusCode)
	}

	var out planning.ProjectionResponse
	decode(t, resp, &out)
	if out.Rows[0].Kind != "other_valuable_item" || out.Rows[0].Future != 8000 {
		t.Errorf("unexpected row %+v", out.Rows[0])
	}
}

func TestHandleDefaults(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/assumptions", "")
	var a projection.Assumptions
	decode(t, resp, &a)
	if a.Years != 10 || a.GrowthRatePercent != 2.5 || a.InflationRatePercent != 4 {
		t.Errorf("expected service defaults, got %+v", a)
	}
}

func TestHandleValidate(t *testing.T) {
	srv := newServer(t)

	body := `{"items": [{"kind": "yacht", "ite": {"value": 1}}, {"kind": "isa", "ite": {"investmentValue": 5}}]}`
	resp := do(t, http.MethodPost, srv.URL+"/api/validate", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var issues []validate.Issue
	decode(t, resp, &issues)
	if len(issues) != 1 || issues[0].Index != 0 || !strings.Contains(issues[0].Message, "unknown kind") {
		t.Errorf("unexpected issues %+v", issues)
	}
}

func TestBalanceSheetLifecycle(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/api/teams/t1/clients/c1"

	resp := do(t, http.MethodGet, base+"/balance-sheet", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before save, got %d", resp.StatusCode)
	}

	put := `[
		{"id": "home", "kind": "buy_to_let", "ite": {"propertyValue": 200000, "rent": {"periodicAmount": 1000, "frequency": "monthly"}}},
		{"kind": "mortgage", "ite": {"loan": {"balance": 150000}}}
	]`
	resp = do(t, http.MethodPut, base+"/balance-sheet", put)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on save, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, base+"/balance-sheet", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after save, got %d", resp.StatusCode)
	}
	var raw []map[string]any
	decode(t, resp, &raw)
	if len(raw) != 2 || raw[0]["id"] != "home" {
		t.Fatalf("unexpected stored items %v", raw)
	}

	resp = do(t, http.MethodGet, base+"/projection?years=5&growth=0&inflation=0&mode.home=rent", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out planning.ProjectionResponse
	decode(t, resp, &out)
	if out.Rows[0].Mode != models.ModeRent || out.Rows[0].IncomeCurrent != 12000 {
		t.Errorf("expected rented property, got %+v", out.Rows[0])
	}
	if out.Totals.CurrentSum != 200000-150000+12000 {
		t.Errorf("unexpected current sum %.2f", out.Totals.CurrentSum)
	}
}

func TestBalanceSheet_AssignsIDsUsableAsOverrideKeys(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/api/teams/t1/clients/c2"

	put := `[{"kind": "main_residence", "ite": {"propertyValue": 300000, "rent": {"periodicAmount": 500, "frequency": "monthly"}}}]`
	resp := do(t, http.MethodPut, base+"/balance-sheet", put)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on save, got %d", resp.StatusCode)
	}
	var saved []map[string]any
	decode(t, resp, &saved)
	id, _ := saved[0]["id"].(string)
	if id == "" {
		t.Fatalf("expected the saved item to carry a server id, got %v", saved[0])
	}

	for i := 0; i < 2; i++ {
		resp = do(t, http.MethodGet, base+"/projection?years=1&growth=0&inflation=0&mode."+id+"=rent", "")
		var out planning.ProjectionResponse
		decode(t, resp, &out)
		if out.Rows[0].ItemRef != id || out.Rows[0].Mode != models.ModeRent || out.Rows[0].IncomeCurrent != 6000 {
			t.Errorf("request %d: expected override to reach stored item, got %+v", i, out.Rows[0])
		}
	}
}

func TestClientProjection_Formats(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/api/teams/t1/clients/c1"
	do(t, http.MethodPut, base+"/balance-sheet", `[{"kind": "isa", "description": "ISA", "ite": {"investmentValue": 1000}}]`)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"markdown", "text/markdown", "| ISA |"},
		{"html", "text/html", "<table>"},
		{"xlsx", "application/vnd.openxmlformats", "PK"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp := do(t, http.MethodGet, base+"/projection?format="+tt.format, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if !strings.HasPrefix(resp.Header.Get("Content-Type"), tt.contentType) {
				t.Errorf("expected content type %s, got %s", tt.contentType, resp.Header.Get("Content-Type"))
			}
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}

	resp := do(t, http.MethodGet, base+"/projection?format=pdf", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", resp.StatusCode)
	}
}

func TestClientProjection_BadQuery(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/api/teams/t1/clients/c1"
	do(t, http.MethodPut, base+"/balance-sheet", `[]`)

	for _, q := range []string{"years=ten", "growth=fast", "real=maybe", "growth.x=abc", "highlight.loan=perhaps"} {
		resp := do(t, http.MethodGet, base+"/projection?"+q, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, resp.StatusCode)
		}
	}
}

func TestHandleScenarios(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/api/teams/t1/clients/c1"

	resp := do(t, http.MethodPost, base+"/scenarios", `{"scenarios": {}}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 without a balance sheet, got %d", resp.StatusCode)
	}

	do(t, http.MethodPut, base+"/balance-sheet", `[{"kind": "isa", "ite": {"investmentValue": 10000}}]`)

	resp = do(t, http.MethodPost, base+"/scenarios", `{"scenarios": {"flat": {"assumptions": {"years": 10}}}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var results []pipeline.Result
	decode(t, resp, &results)
	if len(results) != 2 || results[0].Scenario != "base" || results[1].Scenario != "flat" {
		t.Fatalf("unexpected results %+v", results)
	}
	if math.Round(results[0].Totals.FutureSum) != 12801 {
		t.Errorf("base should use service defaults, got %.2f", results[0].Totals.FutureSum)
	}
	if results[1].Totals.FutureSum != 10000 {
		t.Errorf("flat scenario should not grow, got %.2f", results[1].Totals.FutureSum)
	}

	resp = do(t, http.MethodPost, base+"/scenarios", `not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context, string, string) ([]models.BalanceSheetItem, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Save(context.Context, string, string, []models.BalanceSheetItem) error {
	return errors.New("disk on fire")
}

func TestStoreFailures(t *testing.T) {
	srv := httptest.NewServer(planning.NewRouter(planning.NewHandler(failingStore{}, nil, defaults)))
	defer srv.Close()
	base := srv.URL + "/api/teams/t/clients/c"

	if resp := do(t, http.MethodGet, base+"/balance-sheet", ""); resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500 on load failure, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPut, base+"/balance-sheet", "[]"); resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500 on save failure, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodOptions, srv.URL+"/api/projection", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for preflight, got %d", resp.StatusCode)
	}
}
