package report

import (
	"html/template"
	"io"
	"time"

	"github.com/25smoking/procfinder/internal/core"
)

const reportTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>procfinder scan report</title>
    <style>
        :root {
            --bg-color: #f8f9fa;
            --card-bg: #ffffff;
            --text-color: #333;
            --flagged: #dc3545;
            --error: #fd7e14;
            --unsupported: #6c757d;
            --clear: #28a745;
            --border-color: #dee2e6;
        }
        body { font-family: 'Segoe UI', sans-serif; background: var(--bg-color); color: var(--text-color); margin: 0; padding: 20px; }
        .container { max-width: 1200px; margin: 0 auto; }
        .header { text-align: center; margin-bottom: 30px; }
        .stats { display: flex; gap: 20px; margin-bottom: 20px; }
        .stat-card { flex: 1; background: var(--card-bg); padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); text-align: center; }
        .stat-num { font-size: 2em; font-weight: bold; }
        .flagged { color: var(--flagged); }
        .error { color: var(--error); }
        .unsupported { color: var(--unsupported); }
        .clear { color: var(--clear); }

        .finding-card { background: var(--card-bg); border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); margin-bottom: 15px; border-left: 5px solid #ccc; overflow: hidden; }
        .finding-card.flagged { border-left-color: var(--flagged); }
        .finding-card.error { border-left-color: var(--error); }
        .finding-card.unsupported { border-left-color: var(--unsupported); }
        .finding-card.clear { border-left-color: var(--clear); }

        .finding-header { padding: 15px; background: rgba(0,0,0,0.02); display: flex; justify-content: space-between; align-items: center; cursor: pointer; }
        .finding-title { font-weight: bold; display: flex; align-items: center; gap: 10px; }
        .badge { padding: 4px 8px; border-radius: 4px; color: white; font-size: 0.8em; text-transform: uppercase; }
        .bg-flagged { background: var(--flagged); }
        .bg-error { background: var(--error); }
        .bg-unsupported { background: var(--unsupported); }
        .bg-clear { background: var(--clear); }

        .finding-body { padding: 15px; display: none; border-top: 1px solid var(--border-color); }
        .finding-body.open { display: block; }
        .detail-row { margin-bottom: 10px; }
        .label { font-weight: bold; color: #666; }
        code { background: #eee; padding: 2px 5px; border-radius: 3px; word-break: break-all; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>procfinder scan report</h1>
            <p>{{ .Report.Host.Hostname }} &middot; {{ .Report.Host.Kernel }} &middot; scan {{ .Report.ScanID }}</p>
            <p>Generated {{ .GeneratedAt }}, {{ len .Report.PIDs }} processes inspected</p>
        </div>

        <div class="stats">
            <div class="stat-card">
                <div class="stat-num flagged">{{ index .Stats "flagged" }}</div>
                <div>Flagged</div>
            </div>
            <div class="stat-card">
                <div class="stat-num error">{{ index .Stats "error" }}</div>
                <div>Failed</div>
            </div>
            <div class="stat-card">
                <div class="stat-num unsupported">{{ index .Stats "unsupported" }}</div>
                <div>Unsupported</div>
            </div>
            <div class="stat-card">
                <div class="stat-num clear">{{ index .Stats "clear" }}</div>
                <div>Clear</div>
            </div>
        </div>

        <div id="findings">
            {{ range .Report.Results }}
            <div class="finding-card {{ .Status }}">
                <div class="finding-header" onclick="this.nextElementSibling.classList.toggle('open')">
                    <div class="finding-title">
                        <span class="badge bg-{{ .Status }}">{{ .Status }}</span>
                        {{ .Label }}: {{ .Summary }}
                    </div>
                    <div>▼</div>
                </div>
                <div class="finding-body">
                    {{ if .PIDs }}
                    <div class="detail-row"><span class="label">PIDs:</span> <code>{{ .PIDs }}</code></div>
                    {{ end }}
                    {{ $owners := .Owners }}
                    {{ range .Binaries }}
                    <div class="detail-row"><span class="label">Binary:</span> <code>{{ . }}</code>{{ with index $owners . }} ({{ . }}){{ end }}</div>
                    {{ end }}
                </div>
            </div>
            {{ end }}
        </div>
    </div>
</body>
</html>
`

type ReportData struct {
	GeneratedAt string
	Stats       map[string]int
	Report      *core.Report
}

var htmlTemplate = template.Must(template.New("report").Parse(reportTemplate))

// WriteHTML renders rep as a standalone HTML page.
func WriteHTML(w io.Writer, rep *core.Report) error {
	stats := make(map[string]int)
	for status, n := range rep.Counts() {
		stats[string(status)] = n
	}

	data := ReportData{
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Stats:       stats,
		Report:      rep,
	}
	return htmlTemplate.Execute(w, data)
}
