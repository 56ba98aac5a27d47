package awful

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestShellRunnerOutputs(t *testing.T) {
	cases := []struct {
		label      string
		spec       JobSpec
		launcher   string
		wantStdout string
		wantStderr string
	}{
		{
			label:      "separate",
			spec:       JobSpec{Name: "sep", Command: "echo out; echo err 1>&2"},
			wantStdout: "out\n",
			wantStderr: "err\n",
		},
		{
			label:      "combined",
			spec:       JobSpec{Name: "comb", Command: "echo out; echo err 1>&2", Combine: true},
			wantStdout: "out\nerr\n",
		},
		{
			label:      "parallel",
			spec:       JobSpec{Name: "par", Command: "hello", Procs: 3, Parallel: true},
			launcher:   "echo",
			wantStdout: "3 hello\n",
			wantStderr: "",
		},
	}
	for _, c := range cases {
		dir := t.TempDir()
		c.spec.Dir = dir
		j, err := newJob("id", c.spec, DefaultOutputConfig())
		if err != nil {
			t.Fatalf("%v: %v", c.label, err)
		}
		r := &ShellRunner{Launcher: c.launcher}
		err = r.Run(j)
		if err != nil {
			t.Fatalf("%v: %v", c.label, err)
		}
		got := readFile(t, filepath.Join(dir, c.spec.Name+".out"))
		if got != c.wantStdout {
			t.Fatalf("%v: stdout: got %q, want %q", c.label, got, c.wantStdout)
		}
		errPath := filepath.Join(dir, c.spec.Name+".err")
		if c.spec.Combine {
			_, err := os.Stat(errPath)
			if !os.IsNotExist(err) {
				t.Fatalf("%v: combined job shouldn't create stderr file", c.label)
			}
			continue
		}
		got = readFile(t, errPath)
		if got != c.wantStderr {
			t.Fatalf("%v: stderr: got %q, want %q", c.label, got, c.wantStderr)
		}
	}
}

func TestShellRunnerAppend(t *testing.T) {
	cases := []struct {
		append bool
		want   string
	}{
		{append: false, want: "hi\n"},
		{append: true, want: "hi\nhi\n"},
	}
	for _, c := range cases {
		dir := t.TempDir()
		// patterns are left empty, they should fall back to the defaults.
		j, err := newJob("id", JobSpec{Name: "hi", Command: "echo hi", Dir: dir}, OutputConfig{Append: c.append})
		if err != nil {
			t.Fatal(err)
		}
		if j.Stdout != filepath.Join(dir, "hi.out") || j.Stderr != filepath.Join(dir, "hi.err") {
			t.Fatalf("append=%v: unexpected outputs: %v, %v", c.append, j.Stdout, j.Stderr)
		}
		r := &ShellRunner{}
		for i := 0; i < 2; i++ {
			err := r.Run(j)
			if err != nil {
				t.Fatal(err)
			}
		}
		got := readFile(t, j.Stdout)
		if got != c.want {
			t.Fatalf("append=%v: got %q, want %q", c.append, got, c.want)
		}
	}
}

func TestShellRunnerFailure(t *testing.T) {
	dir := t.TempDir()
	j, err := newJob("id", JobSpec{Name: "fail", Command: "exit 3", Dir: dir}, DefaultOutputConfig())
	if err != nil {
		t.Fatal(err)
	}
	err = (&ShellRunner{}).Run(j)
	if err == nil {
		t.Fatal("want an error from failed command")
	}
	j, err = newJob("id", JobSpec{Name: "nodir", Command: "true", Dir: filepath.Join(dir, "missing")}, DefaultOutputConfig())
	if err != nil {
		t.Fatal(err)
	}
	err = (&ShellRunner{}).Run(j)
	if err == nil {
		t.Fatal("want an error when the job directory doesn't exist")
	}
}

// Jobs running at the same time should each run in its own directory.
func TestSchedulerJobDirs(t *testing.T) {
	s, err := NewScheduler(Config{Procs: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Start()
	dirs := make([]string, 4)
	for i := range dirs {
		dirs[i] = t.TempDir()
		submit(t, s, JobSpec{Command: "sleep 0.2; pwd", Dir: dirs[i]})
	}
	infos, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	for _, info := range infos {
		waitStatus(t, s, info.Name, JobFinished)
	}
	s.Wait()
	for _, info := range infos {
		got := strings.TrimSpace(readFile(t, info.Stdout))
		want, err := filepath.EvalSymlinks(info.Dir)
		if err != nil {
			t.Fatal(err)
		}
		got, err = filepath.EvalSymlinks(got)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("%v: ran in %v, want %v", info.Name, got, want)
		}
	}
}

func TestSchedulerAppendOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "echoer.out")
	err := os.WriteFile(out, []byte("old\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewScheduler(Config{Procs: 1, Output: OutputConfig{Append: true}})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Start()
	submit(t, s, JobSpec{Name: "echoer", Command: "echo hi; echo oops 1>&2", Dir: dir})
	waitStatus(t, s, "echoer", JobFinished)
	s.Wait()
	got := readFile(t, out)
	if got != "old\nhi\n" {
		t.Fatalf("stdout: got %q, want %q", got, "old\nhi\n")
	}
	got = readFile(t, filepath.Join(dir, "echoer.err"))
	if got != "oops\n" {
		t.Fatalf("stderr: got %q, want %q", got, "oops\n")
	}
}
