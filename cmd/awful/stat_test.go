package main

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/imagvfx/awful"
)

func TestCut(t *testing.T) {
	long := strings.Repeat("a", 60)
	cases := []struct {
		s    string
		n    int
		want string
	}{
		{"sleep1", 50, "sleep1"},
		{long, 50, strings.Repeat("a", 50)},
		{"렌더링작업", 3, "렌더링"},
	}
	for _, c := range cases {
		got := cut(c.s, c.n)
		if got != c.want {
			t.Fatalf("got: %v, want: %v", got, c.want)
		}
	}
}

func TestClock(t *testing.T) {
	if got := clock(time.Time{}); got != "" {
		t.Fatalf("zero time: got %q, want empty", got)
	}
	tm := time.Date(2020, 1, 2, 13, 4, 5, 0, time.Local)
	if got := clock(tm); got != "13:04:05" {
		t.Fatalf("got: %v, want: 13:04:05", got)
	}
}

func TestJobTable(t *testing.T) {
	infos := []awful.JobInfo{
		{Name: "job-1", Status: awful.JobRunning, Started: time.Now()},
		{Name: strings.Repeat("x", 60), Status: awful.JobQueuing},
	}
	out := jobTable(infos).String()
	for _, want := range []string{"Job", "Status", "Start", "Finish", "job-1", "Queuing", strings.Repeat("x", 50)} {
		if !strings.Contains(out, want) {
			t.Fatalf("table doesn't have %q:\n%v", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 51)) {
		t.Fatalf("long name should be cut:\n%v", out)
	}
}

func TestWriteJSON(t *testing.T) {
	started := time.Date(2020, 1, 2, 13, 4, 5, 0, time.UTC)
	infos := []awful.JobInfo{
		{ID: "c0ffee", Name: "sleep1", Command: "sleep 5", Procs: 1, Dir: "/tmp", Stdout: "/tmp/sleep1.out", Status: awful.JobRunning, Started: started},
	}
	buf := &bytes.Buffer{}
	err := writeJSON(buf, infos)
	if err != nil {
		t.Fatal(err)
	}
	var got []StatJob
	err = json.Unmarshal(buf.Bytes(), &got)
	if err != nil {
		t.Fatal(err)
	}
	want := []StatJob{
		{ID: "c0ffee", Name: "sleep1", Command: "sleep 5", Procs: 1, Dir: "/tmp", Stdout: "/tmp/sleep1.out", Status: "Running", Started: "2020-01-02T13:04:05Z"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got: %v, want: %v", got, want)
	}
}
