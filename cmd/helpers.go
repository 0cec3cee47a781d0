package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/plateful/plateful/internal/app"
)

// requireRemote validates the backend credentials and attaches the identity
// to the session so token-bearing calls work.
func requireRemote(deps *app.Deps) error {
	if err := deps.Config.ValidateRemote(); err != nil {
		return err
	}
	deps.Session.Attach(deps.Identity())
	return nil
}

// storeErr converts a failed store action into a command error using the
// store's display message.
func storeErr(action, msg string) error {
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("%s: %s", action, msg)
}

// printSimpleTable renders a simple table with headers using tablewriter.
// The fill callback is called with an add function taking row values.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// printKVTable renders a two-column key/value listing with aligned columns.
func printKVTable(w io.Writer, rows [][]string) {
	maxKey := 0
	for _, r := range rows {
		if len(r[0]) > maxKey {
			maxKey = len(r[0])
		}
	}
	for _, r := range rows {
		padding := strings.Repeat(" ", maxKey-len(r[0]))
		fmt.Fprintf(w, "  %s%s  %s\n", r[0], padding, r[1])
	}
}

// checkbox renders a completion marker for table cells.
func checkbox(done bool) string {
	if done {
		return "✓"
	}
	return "·"
}

// truncate shortens s for table display.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
