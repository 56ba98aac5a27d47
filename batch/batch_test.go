package batch

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/imagvfx/awful"
)

func TestRead(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	in := `
- name: job-1
  command: ./test_job
- name: job-2
  command: sleep 20
  dir: /tmp/awful
  combine: true
- command: sleep 20
  procs: 2
  dir: test_dir
  parallel: true
`
	got, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []awful.JobSpec{
		{Name: "job-1", Command: "./test_job", Dir: cwd},
		{Name: "job-2", Command: "sleep 20", Dir: "/tmp/awful", Combine: true},
		{Command: "sleep 20", Procs: 2, Dir: filepath.Join(cwd, "test_dir"), Parallel: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got: %v, want: %v", got, want)
	}
}

func TestReadEmpty(t *testing.T) {
	got, err := Read(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got: %v, want empty", got)
	}
}

func TestReadInvalid(t *testing.T) {
	cases := []struct {
		label string
		in    string
		want  error
	}{
		{
			label: "no command",
			in:    "- name: job-1\n",
			want:  awful.ErrInvalidJob,
		},
		{
			label: "unknown field",
			in:    "- command: ls\n  nprocs: 2\n",
		},
		{
			label: "not a list",
			in:    "command: ls\n",
		},
	}
	for _, c := range cases {
		_, err := Read(strings.NewReader(c.in))
		if err == nil {
			t.Fatalf("%v: want an error", c.label)
		}
		if c.want != nil && !errors.Is(err, c.want) {
			t.Fatalf("%v: got: %v, want: %v", c.label, err, c.want)
		}
	}
}
