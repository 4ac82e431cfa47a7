package output

import (
	"io"

	"github.com/agentstation/peerreviews/internal/cmd/table"
	"github.com/agentstation/peerreviews/pkg/entries"
)

// FormatEntries writes entries in the given format. Tables get one row per
// entry; JSON and YAML get the entries as-is.
func FormatEntries(w io.Writer, list []entries.Entry, format Format) error {
	if list == nil {
		list = []entries.Entry{}
	}
	if format.IsTable() {
		return NewFormatter(format).Format(w, table.EntriesToTableData(list, format == FormatWide))
	}
	return NewFormatter(format).Format(w, list)
}

// FormatAny writes any value in the given format.
func FormatAny(w io.Writer, data any, format Format) error {
	return NewFormatter(format).Format(w, data)
}
