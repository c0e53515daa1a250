package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const metricPrefix = "tasktree_"

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache metrics collected in this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.Tree.Root(cmd.Context()); err != nil {
				return err
			}
			gatherer := app.Metrics
			if gatherer == nil {
				gatherer = prometheus.DefaultGatherer
			}
			families, err := gatherer.Gather()
			if err != nil {
				return fmt.Errorf("gathering metrics: %w", err)
			}

			var rows [][]string
			for _, mf := range families {
				name := mf.GetName()
				if !strings.HasPrefix(name, metricPrefix) {
					continue
				}
				for _, m := range mf.GetMetric() {
					labels := make([]string, 0, len(m.GetLabel()))
					for _, lp := range m.GetLabel() {
						labels = append(labels, lp.GetName()+"="+lp.GetValue())
					}
					var value string
					switch {
					case m.GetCounter() != nil:
						value = formatFloat(m.GetCounter().GetValue())
					case m.GetGauge() != nil:
						value = formatFloat(m.GetGauge().GetValue())
					case m.GetHistogram() != nil:
						h := m.GetHistogram()
						value = fmt.Sprintf("%d (%.3fs)", h.GetSampleCount(), h.GetSampleSum())
					default:
						continue
					}
					rows = append(rows, []string{strings.TrimPrefix(name, metricPrefix), strings.Join(labels, ","), value})
				}
			}
			sort.SliceStable(rows, func(i, j int) bool {
				if rows[i][0] != rows[j][0] {
					return rows[i][0] < rows[j][0]
				}
				return rows[i][1] < rows[j][1]
			})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.KeyValue([][2]string{
				{"Tasks", strconv.Itoa(app.Tree.Size())},
				{"Last change", app.Tree.TimeOfLastModification().Format("2006-01-02 15:04:05.000")},
				{"Expired", strconv.FormatBool(app.Tree.IsExpired())},
			}))
			fmt.Fprintln(out)
			fmt.Fprintln(out, formatter.Header("Metrics"))
			fmt.Fprint(out, formatter.RenderTable([]string{"METRIC", "LABELS", "VALUE"}, rows, 2))
			return nil
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
