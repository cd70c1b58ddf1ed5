package dashboard

import (
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modtools/tubeguard/internal/domain"
	"github.com/modtools/tubeguard/internal/storage"
)

// StartServer serves the enforcement dashboard: outcome charts rendered from
// the journal, Prometheus metrics, and a health probe.
func StartServer(journalPath string, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		outcomes := storage.Load(journalPath)

		// 1. Outcome breakdown
		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: "Outcomes by Reason"}),
			charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		)

		reasonCounts := make(map[string]int)
		for _, o := range outcomes {
			reasonCounts[o.Reason]++
		}

		var pieItems []opts.PieData
		for k, v := range reasonCounts {
			pieItems = append(pieItems, opts.PieData{Name: k, Value: v})
		}
		pie.AddSeries("Outcomes", pieItems)

		// 2. Removals per subreddit
		bar := charts.NewBar()
		bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Removals per Subreddit"}))

		removalCounts := make(map[string]int)
		for _, o := range outcomes {
			if o.State == domain.StateRemoved {
				removalCounts[o.Subreddit]++
			}
		}

		var barX []string
		var barY []opts.BarData
		for k, v := range removalCounts {
			barX = append(barX, k)
			barY = append(barY, opts.BarData{Value: v})
		}
		bar.SetXAxis(barX).AddSeries("Removals", barY)

		pie.Render(w)
		bar.Render(w)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return http.ListenAndServe(addr, mux)
}
