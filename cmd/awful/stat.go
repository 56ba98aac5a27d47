package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/imagvfx/awful"
)

// maxNameLen is the length a job name is cut to in the table.
const maxNameLen = 50

func stat(args []string) {
	var asJSON bool
	fset := flag.NewFlagSet("stat", flag.ExitOnError)
	fset.BoolVar(&asJSON, "json", false, "print jobs as json")
	fset.Parse(args)

	c := dial()
	defer c.Close()
	infos, err := c.List()
	if err != nil {
		log.Fatal(err)
	}
	if asJSON {
		err = writeJSON(os.Stdout, infos)
		if err != nil {
			log.Fatal(err)
		}
		return
	}
	if len(infos) == 0 {
		fmt.Println("no job to show")
		return
	}
	fmt.Println(jobTable(infos))
}

// StatJob is a job printed as json.
type StatJob struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Command  string `json:"command"`
	Procs    int    `json:"procs"`
	Dir      string `json:"dir"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr,omitempty"`
	Status   string `json:"status"`
	Started  string `json:"started,omitempty"`
	Finished string `json:"finished,omitempty"`
}

func writeJSON(w io.Writer, infos []awful.JobInfo) error {
	jobs := make([]StatJob, 0, len(infos))
	for _, info := range infos {
		j := StatJob{
			ID:      string(info.ID),
			Name:    info.Name,
			Command: info.Command,
			Procs:   info.Procs,
			Dir:     info.Dir,
			Stdout:  info.Stdout,
			Stderr:  info.Stderr,
			Status:  info.Status.String(),
		}
		if !info.Started.IsZero() {
			j.Started = info.Started.Format(time.RFC3339)
		}
		if !info.Finished.IsZero() {
			j.Finished = info.Finished.Format(time.RFC3339)
		}
		jobs = append(jobs, j)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jobs)
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	runningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	finishedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

// statusCell renders a status with its color.
func statusCell(s awful.JobStatus) string {
	switch s {
	case awful.JobRunning:
		return runningStyle.Render(s.String())
	case awful.JobFinished:
		return finishedStyle.Render(s.String())
	}
	return s.String()
}

// jobTable renders jobs as a table of name, status, start and finish time.
func jobTable(infos []awful.JobInfo) *table.Table {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			cut(info.Name, maxNameLen),
			statusCell(info.Status),
			clock(info.Started),
			clock(info.Finished),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers("Job", "Status", "Start", "Finish").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// cut cuts s to n runes at most.
func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// clock returns local time of t as hh:mm:ss, or empty string for zero time.
func clock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("15:04:05")
}
