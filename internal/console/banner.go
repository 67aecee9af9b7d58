package console

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// ProjectURL is printed in the banner.
const ProjectURL = "https://github.com/nao1215/trafficgen"

const rule = "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~"

// BannerInfo holds what the startup banner announces.
type BannerInfo struct {
	MinDepth int
	MaxDepth int
	RootURLs int
	MinWait  time.Duration
	MaxWait  time.Duration

	// Egress describes the route traffic takes, e.g. "direct" or
	// "SOCKS5 127.0.0.1:9050". Empty omits the line.
	Egress string
}

// PrintBanner writes the startup banner to w.
func PrintBanner(w io.Writer, info BannerInfo, noColor bool) {
	title := color.New(color.FgHiCyan, color.Bold)
	if noColor {
		title.DisableColor()
	}

	fmt.Fprintln(w, rule)
	title.Fprintln(w, "Traffic generator started")
	fmt.Fprintln(w, ProjectURL)
	fmt.Fprintf(w, "Diving between %d and %d links deep into %d root URLs,\n",
		info.MinDepth, info.MaxDepth, info.RootURLs)
	fmt.Fprintf(w, "Waiting between %s and %s seconds between requests.\n",
		FormatSeconds(info.MinWait), FormatSeconds(info.MaxWait))
	if info.Egress != "" {
		fmt.Fprintf(w, "Routing traffic: %s\n", info.Egress)
	}
	fmt.Fprintln(w, "This program will run indefinitely. Ctrl+C to stop.")
}
