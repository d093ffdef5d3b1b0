package server

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
)

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>optilab</title></head>
<body>
<h1>optilab</h1>
<p>Metaheuristic optimization service.</p>
<h2>Jobs</h2>
<table border="1" cellpadding="4">
<tr><th>ID</th><th>State</th><th>Function</th><th>Optimizer</th><th>Generation</th><th>Best cost</th></tr>
{{range .}}
<tr>
<td><a href="/api/v1/jobs/{{.ID}}/status">{{.ID}}</a></td>
<td>{{.State}}</td>
<td>{{.Config.Function}}</td>
<td>{{.Config.Optimizer}}</td>
<td>{{.Generation}}</td>
<td>{{printf "%.6g" .BestCost}}</td>
</tr>
{{end}}
</table>
<h2>API</h2>
<ul>
<li>GET /api/v1/functions</li>
<li>GET /api/v1/optimizers</li>
<li>POST /api/v1/jobs</li>
<li>GET /api/v1/jobs/{id}/status</li>
<li>GET /api/v1/jobs/{id}/trajectory</li>
<li>GET /api/v1/jobs/{id}/plot.png</li>
<li>GET /api/v1/jobs/{id}/stream (SSE)</li>
</ul>
</body>
</html>
`))

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, s.jobManager.ListJobs()); err != nil {
		slog.Error("Failed to render index", "error", err)
	}
}
