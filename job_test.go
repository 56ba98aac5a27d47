package awful

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewJob(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		label      string
		spec       JobSpec
		wantProcs  int
		wantDir    string
		wantStdout string
		wantStderr string
	}{
		{
			label:      "defaults",
			spec:       JobSpec{Name: "job-1", Command: "./test_job"},
			wantProcs:  1,
			wantDir:    cwd,
			wantStdout: filepath.Join(cwd, "job-1.out"),
			wantStderr: filepath.Join(cwd, "job-1.err"),
		},
		{
			label:      "relative dir",
			spec:       JobSpec{Name: "job-4", Command: "sleep 20", Procs: 2, Dir: "test_dir"},
			wantProcs:  2,
			wantDir:    filepath.Join(cwd, "test_dir"),
			wantStdout: filepath.Join(cwd, "test_dir", "job-4.out"),
			wantStderr: filepath.Join(cwd, "test_dir", "job-4.err"),
		},
		{
			label:      "combined",
			spec:       JobSpec{Name: "job-3", Command: "sleep 20", Dir: "/tmp/awful", Combine: true},
			wantProcs:  1,
			wantDir:    "/tmp/awful",
			wantStdout: "/tmp/awful/job-3.out",
			wantStderr: "",
		},
	}
	for _, c := range cases {
		j, err := newJob("id", c.spec, DefaultOutputConfig())
		if err != nil {
			t.Fatalf("%v: %v", c.label, err)
		}
		if j.Procs != c.wantProcs {
			t.Fatalf("%v: Procs: got %v, want %v", c.label, j.Procs, c.wantProcs)
		}
		if j.Dir != c.wantDir {
			t.Fatalf("%v: Dir: got %v, want %v", c.label, j.Dir, c.wantDir)
		}
		if j.Stdout != c.wantStdout {
			t.Fatalf("%v: Stdout: got %v, want %v", c.label, j.Stdout, c.wantStdout)
		}
		if j.Stderr != c.wantStderr {
			t.Fatalf("%v: Stderr: got %v, want %v", c.label, j.Stderr, c.wantStderr)
		}
		if j.Status() != JobQueuing {
			t.Fatalf("%v: Status: got %v, want %v", c.label, j.Status(), JobQueuing)
		}
	}
}

func TestNewJobInvalid(t *testing.T) {
	cases := []struct {
		label string
		spec  JobSpec
		want  error
	}{
		{
			label: "empty command",
			spec:  JobSpec{Name: "a", Command: "  "},
			want:  ErrInvalidJob,
		},
		{
			label: "empty name",
			spec:  JobSpec{Command: "ls"},
			want:  ErrInvalidJob,
		},
		{
			label: "negative procs",
			spec:  JobSpec{Name: "a", Command: "ls", Procs: -1},
			want:  ErrInvalidResource,
		},
	}
	for _, c := range cases {
		_, err := newJob("id", c.spec, DefaultOutputConfig())
		if !errors.Is(err, c.want) {
			t.Fatalf("%v: got %v, want %v", c.label, err, c.want)
		}
	}
}

func TestResolveDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	os.Setenv("AWFUL_TEST_DIR", "/tmp/awful-test")
	defer os.Unsetenv("AWFUL_TEST_DIR")
	cases := []struct {
		dir  string
		want string
	}{
		{"~", home},
		{"~/runs/a", filepath.Join(home, "runs/a")},
		{"$AWFUL_TEST_DIR/b", "/tmp/awful-test/b"},
		{"/abs/./path/../dir", "/abs/dir"},
	}
	for _, c := range cases {
		got, err := ResolveDir(c.dir)
		if err != nil {
			t.Fatalf("%v: %v", c.dir, err)
		}
		if got != c.want {
			t.Fatalf("%v: got %v, want %v", c.dir, got, c.want)
		}
	}
}

func TestCommandLine(t *testing.T) {
	cases := []struct {
		job      *Job
		launcher string
		want     string
	}{
		{
			job:      &Job{Command: "./test_job", Procs: 1},
			launcher: "mpiexec -n",
			want:     "./test_job",
		},
		{
			job:      &Job{Command: "sleep 20", Procs: 1, Parallel: true},
			launcher: "mpiexec -n",
			want:     "mpiexec -n 1 sleep 20",
		},
		{
			job:      &Job{Command: "prog -v", Procs: 4, Parallel: true},
			launcher: "mpirun -np",
			want:     "mpirun -np 4 prog -v",
		},
	}
	for _, c := range cases {
		got := c.job.CommandLine(c.launcher)
		if got != c.want {
			t.Fatalf("got %q, want %q", got, c.want)
		}
	}
}

func TestJobStatusTransition(t *testing.T) {
	j, err := newJob("id", JobSpec{Name: "a", Command: "ls"}, DefaultOutputConfig())
	if err != nil {
		t.Fatal(err)
	}
	// cannot skip Running.
	err = j.setStatus(JobFinished)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Queuing -> Finished: got %v, want ErrInvalidTransition", err)
	}
	err = j.setStatus(JobRunning)
	if err != nil {
		t.Fatal(err)
	}
	info := j.Info()
	if info.Started.IsZero() || !info.Finished.IsZero() {
		t.Fatalf("running job should have only start time: %v, %v", info.Started, info.Finished)
	}
	err = j.setStatus(JobFinished)
	if err != nil {
		t.Fatal(err)
	}
	finished := j.Info()
	if finished.Finished.Before(finished.Started) {
		t.Fatalf("finish time is before start time: %v < %v", finished.Finished, finished.Started)
	}
	for _, s := range []JobStatus{JobQueuing, JobRunning, JobFinished} {
		err := j.setStatus(s)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Finished -> %v: got %v, want ErrInvalidTransition", s, err)
		}
	}
	if j.Info() != finished {
		t.Fatalf("finished job has changed: got %v, want %v", j.Info(), finished)
	}
}

func TestParseJobStatus(t *testing.T) {
	for _, s := range []JobStatus{JobQueuing, JobRunning, JobFinished} {
		got, err := ParseJobStatus(s.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Fatalf("got %v, want %v", got, s)
		}
	}
	_, err := ParseJobStatus("Deleted")
	if err == nil {
		t.Fatal("want error for unknown status")
	}
}
