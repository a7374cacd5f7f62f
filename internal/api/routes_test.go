package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/RMahshie/invols/internal/heka"
	"github.com/RMahshie/invols/internal/processing"
	"github.com/RMahshie/invols/internal/repository/memory"
	"github.com/RMahshie/invols/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampExport returns one sweep whose drive rises for 20 samples, 10 ms apart,
// with deflection following 2*position + 0.5 on the way in.
func rampExport() string {
	g := func(x float64) string { return strconv.FormatFloat(x, 'G', -1, 64) }
	var b strings.Builder
	b.WriteString("Series_1\nSweep_1_1\nIndex,Time[s],I-mon[A],Time[s],V-mon[V],Time[s],Vin0[V],Time[s],Z[V],Time[s],Lat[V]\n")
	for i := 0; i < 40; i++ {
		t := float64(i) / 100
		step := i
		if i > 20 {
			step = 40 - i
		}
		z := float64(step) / 100
		fmt.Fprintf(&b, "%d,%s,0,%s,0,%s,%s,%s,%s,%s,0\n",
			i+1, g(t), g(t), g(t), g(2*heka.Position(z)+0.5), g(t), g(z), g(t))
	}
	return b.String()
}

func newTestAPI(t *testing.T) humatest.TestAPI {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Invols API", "test"))
	svc := processing.NewProcessingService(memory.NewSessionRepository(0), nil)
	RegisterRoutes(api, svc, Options{MaxUploadBytes: 1 << 20})
	return humatest.Wrap(t, api)
}

func TestRoutes_SessionFlow(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/api/recordings?filename=tip.asc", "Content-Type: text/plain", strings.NewReader(rampExport()))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var summary models.RecordingSummary
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &summary))
	assert.Equal(t, 40, summary.Rows)
	assert.Equal(t, []int{0}, summary.Sweeps)
	base := "/api/recordings/" + summary.ID

	resp = api.Get(base + "/table?display=head")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var table models.TableResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &table))
	assert.Len(t, table.Rows, processing.TableRows)

	resp = api.Get(base + "/sweeps/0/chart?start=0&end=40")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var chartBody models.ChartResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &chartBody))
	assert.True(t, chartBody.FitEnabled)
	require.NotNil(t, chartBody.Chart.Selection)

	resp = api.Post(base+"/sweeps/0/fit", map[string]any{"start": "10", "end": "50"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var result models.FitResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, "Sensitivity: 0.50 nm/V", result.Display)

	resp = api.Post(base+"/sweeps/0/fit", map[string]any{"start": "ten", "end": "50"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Get(base + "/sweeps/0/render?format=png")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))

	resp = api.Get(base + "/table.xlsx")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "tip.xlsx")

	resp = api.Delete(base + "/sweeps/0")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = api.Get(base + "/sweeps/0/chart")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.Post(base + "/reset")
	require.Equal(t, http.StatusOK, resp.Code)
	resp = api.Get(base + "/sweeps/0/chart")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = api.Delete(base)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = api.Get(base)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRoutes_Errors(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/api/recordings?filename=tip.asc", "Content-Type: text/plain", strings.NewReader(""))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Upload a file to run the app...")

	resp = api.Get("/api/exports")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)

	resp = api.Get("/api/recordings/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
