package cli

import (
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/vk/kubelower/internal/app"
)

// printSummary lists the resource manifests produced by a run.
func printSummary(w io.Writer, res *app.Result) {
	headerFmt := color.New(color.FgGreen, color.Bold).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Resource", "Type", "Bytes").
		WithWriter(w).
		WithHeaderFormatter(headerFmt).
		WithFirstColumnFormatter(columnFmt)
	for _, m := range res.Manifests {
		tbl.AddRow(m.Node, m.Type, len(m.YAML))
	}
	tbl.Print()
}
