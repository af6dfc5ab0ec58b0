// Command cuss-log views and analyzes protocol log files.
//
// Log files are created by pointing the connection's protocol logger
// at a log.FileLogger, for example with cuss-kiosk's -protocol-log
// flag.
//
// Usage:
//
//	cuss-log <command> [flags] <file.clog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	cuss-log view kiosk.clog
//
//	# View only outgoing frames
//	cuss-log view -direction out -category frame kiosk.clog
//
//	# Export to JSONL
//	cuss-log export kiosk.clog
//
//	# Show statistics
//	cuss-log stats kiosk.clog
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/open-cuss/cuss2-go/pkg/log"
)

const usage = `cuss-log - Protocol Log Analyzer

Usage:
  cuss-log <command> [flags] <file.clog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL
  stats    Show statistics about the log file

Use "cuss-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// parseFilter builds a log filter from the shared flag values.
func parseFilter(direction, category, connID string) (log.Filter, error) {
	var filter log.Filter
	filter.ConnectionID = connID

	switch strings.ToLower(direction) {
	case "":
	case "in":
		d := log.DirectionIn
		filter.Direction = &d
	case "out":
		d := log.DirectionOut
		filter.Direction = &d
	default:
		return filter, fmt.Errorf("unknown direction %q (want in or out)", direction)
	}

	switch strings.ToLower(category) {
	case "":
	case "frame":
		c := log.CategoryFrame
		filter.Category = &c
	case "control":
		c := log.CategoryControl
		filter.Category = &c
	case "state":
		c := log.CategoryState
		filter.Category = &c
	case "error":
		c := log.CategoryError
		filter.Category = &c
	default:
		return filter, fmt.Errorf("unknown category %q (want frame, control, state or error)", category)
	}

	return filter, nil
}

func openReader(fs *flag.FlagSet, direction, category, connID string) (*log.Reader, error) {
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("log file path required")
	}
	filter, err := parseFilter(direction, category, connID)
	if err != nil {
		return nil, err
	}
	return log.NewFilteredReader(fs.Arg(0), filter)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (frame, control, state, error)")
	connID := fs.String("conn-id", "", "Filter by connection id")
	_ = fs.Parse(args)

	r, err := openReader(fs, *direction, *category, *connID)
	if err != nil {
		fatal(err)
	}
	defer r.Close()

	for {
		event, err := r.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			fatal(err)
		}
		fmt.Println(formatEvent(event))
	}
}

// formatEvent renders one event as a single line.
func formatEvent(e log.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-3s %-7s conn=%s",
		e.Timestamp.Format("15:04:05.000"), e.Direction, e.Category, short(e.ConnectionID))

	switch {
	case e.Frame != nil:
		if e.Frame.Directive != "" {
			fmt.Fprintf(&b, " directive=%s", e.Frame.Directive)
		}
		if e.Frame.MessageCode != "" {
			fmt.Fprintf(&b, " code=%s", e.Frame.MessageCode)
		}
		if e.Frame.ComponentID != nil {
			fmt.Fprintf(&b, " component=%d", *e.Frame.ComponentID)
		}
		if e.Frame.RequestID != "" {
			fmt.Fprintf(&b, " req=%s", short(e.Frame.RequestID))
		}
		fmt.Fprintf(&b, " size=%d", e.Frame.Size)
	case e.Control != nil:
		fmt.Fprintf(&b, " %s", e.Control.Type)
		if e.Control.AckCode != "" {
			fmt.Fprintf(&b, " ack=%s", e.Control.AckCode)
		}
	case e.StateChange != nil:
		fmt.Fprintf(&b, " %s %s -> %s", e.StateChange.Entity, e.StateChange.OldState, e.StateChange.NewState)
		if e.StateChange.ComponentID != nil {
			fmt.Fprintf(&b, " component=%d", *e.StateChange.ComponentID)
		}
	case e.Error != nil:
		fmt.Fprintf(&b, " %s (%s)", e.Error.Message, e.Error.Context)
	}
	return b.String()
}

// short abbreviates a UUID for display.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (frame, control, state, error)")
	connID := fs.String("conn-id", "", "Filter by connection id")
	out := fs.String("o", "", "Output file (default stdout)")
	_ = fs.Parse(args)

	r, err := openReader(fs, *direction, *category, *connID)
	if err != nil {
		fatal(err)
	}
	defer r.Close()

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	for {
		event, err := r.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			fatal(err)
		}
		if err := enc.Encode(event); err != nil {
			fatal(err)
		}
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fatal(fmt.Errorf("log file path required"))
	}
	r, err := log.NewReader(fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	defer r.Close()

	total := 0
	byCategory := map[string]int{}
	byDirective := map[string]int{}
	byCode := map[string]int{}
	connections := map[string]struct{}{}

	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fatal(err)
		}
		total++
		byCategory[event.Category.String()]++
		connections[event.ConnectionID] = struct{}{}
		if event.Frame != nil {
			if event.Frame.Directive != "" {
				byDirective[event.Frame.Directive]++
			}
			if event.Frame.MessageCode != "" {
				byCode[event.Frame.MessageCode]++
			}
		}
	}

	fmt.Printf("Events:      %d\n", total)
	fmt.Printf("Connections: %d\n", len(connections))
	printCounts("By category", byCategory)
	printCounts("By directive", byDirective)
	printCounts("By message code", byCode)
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("\n%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-40s %d\n", k, counts[k])
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
