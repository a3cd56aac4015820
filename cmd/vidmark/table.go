package main

import (
	"fmt"
	"strconv"

	"github.com/ideamans/go-l10n"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/user/vidmark/pkg/adapters/mp4probe"
	"github.com/user/vidmark/pkg/annotation"
	"github.com/user/vidmark/pkg/playlist"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range header {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func renderRecords(records []annotation.Record) string {
	if len(records) == 0 {
		return l10n.T("No records yet.")
	}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		end := ""
		if r.Closed {
			end = annotation.FormatTime(r.End)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(r.Kind),
			r.Behaviour,
			r.Role,
			annotation.FormatTime(r.Start),
			end,
			fmt.Sprintf("%.2f", r.Duration),
			r.Tag,
			r.Observations,
		})
	}
	return renderTable(
		[]string{"#", l10n.T("Type"), l10n.T("Behaviour"), l10n.T("Role"), l10n.T("Start"), l10n.T("End"), l10n.T("Duration"), l10n.T("Tag"), l10n.T("Observations")},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

func renderPlaylist(list *playlist.Playlist) string {
	rows := make([][]string, 0, list.Len())
	for i, path := range list.Paths() {
		marker := ""
		if i == list.Index() {
			marker = "▶"
		}
		rows = append(rows, []string{marker, strconv.Itoa(i + 1), path})
	}
	return renderTable([]string{"", "#", l10n.T("Video")}, rows, []columnAlignment{alignLeft, alignRight})
}

func renderProbe(path string, info mp4probe.Info) string {
	fragmented := l10n.T("no")
	if info.Fragmented {
		fragmented = l10n.T("yes")
	}
	return renderTable([]string{l10n.T("Field"), l10n.T("Value")}, [][]string{
		{l10n.T("File"), path},
		{l10n.T("Codec"), string(info.Codec)},
		{l10n.T("Size"), fmt.Sprintf("%dx%d", info.Width, info.Height)},
		{l10n.T("Frame rate"), fmt.Sprintf("%.3f fps", info.FrameRate)},
		{l10n.T("Frames"), strconv.Itoa(info.FrameCount)},
		{l10n.T("Duration"), fmt.Sprintf("%.3f s (%s)", info.Duration, annotation.FormatTime(info.Duration))},
		{l10n.T("Timescale"), strconv.FormatUint(uint64(info.Timescale), 10)},
		{l10n.T("Fragmented"), fragmented},
	}, nil)
}

func renderHelp() string {
	rows := make([][]string, 0, len(commandHelp))
	for _, c := range commandHelp {
		rows = append(rows, []string{c[0], c[1], l10n.T(c[2])})
	}
	return renderTable([]string{l10n.T("Command"), l10n.T("Arguments"), l10n.T("Description")}, rows, nil)
}

func renderJournal(entries []annotation.Entry) string {
	if len(entries) == 0 {
		return l10n.T("The journal is empty.")
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		pending := "-"
		if e.Pending != nil {
			pending = e.Pending.Behaviour
		}
		rows = append(rows, []string{
			e.Video,
			strconv.Itoa(len(e.Records)),
			pending,
			annotation.FormatTime(e.Position),
			e.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return renderTable(
		[]string{l10n.T("Video"), l10n.T("Records"), l10n.T("Open state"), l10n.T("Position"), l10n.T("Updated")},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
	)
}
