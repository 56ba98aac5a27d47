package awful

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// JobID lets a Job distinguishes from others, even with the same name.
type JobID string

// JobStatus is a lifecycle status of a job.
// A job's status only moves forward: Queuing, Running, then Finished.
type JobStatus int

const (
	JobQueuing = JobStatus(iota)
	JobRunning
	JobFinished
)

func (s JobStatus) String() string {
	switch s {
	case JobQueuing:
		return "Queuing"
	case JobRunning:
		return "Running"
	case JobFinished:
		return "Finished"
	}
	return fmt.Sprintf("JobStatus(%d)", int(s))
}

// ParseJobStatus parses a string made by JobStatus.String.
func ParseJobStatus(s string) (JobStatus, error) {
	for _, st := range []JobStatus{JobQueuing, JobRunning, JobFinished} {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return -1, fmt.Errorf("unknown job status: %v", s)
}

// JobSpec is what user sends to the scheduler to submit a job.
type JobSpec struct {
	// Name is the unique name of the job.
	// The scheduler derives one from Command when it is empty.
	Name string

	// Command is a command line passed to the shell.
	Command string

	// Procs is number of processors the job uses while it runs.
	// Zero means one.
	Procs int

	// Dir is the directory the job runs in.
	// Empty Dir means the current directory of the submitter.
	// Environment variables and a leading ~ are expanded.
	Dir string

	// Combine sends stderr of the job to its stdout file.
	Combine bool

	// Parallel wraps the command with the parallel launcher,
	// which runs it with Procs processors.
	Parallel bool
}

// OutputConfig defines where the outputs of jobs go.
type OutputConfig struct {
	// Stdout and Stderr are file name patterns for the outputs.
	// {name} in them is replaced with the job's name.
	// Relative paths are relative to the job's directory.
	Stdout string
	Stderr string

	// Append makes the outputs appended to existing files,
	// instead of overwriting them.
	Append bool
}

// DefaultOutputConfig returns an OutputConfig writes {name}.out and {name}.err
// in a job's directory.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Stdout: "{name}.out",
		Stderr: "{name}.err",
	}
}

// withDefaults fills empty patterns from DefaultOutputConfig.
func (c OutputConfig) withDefaults() OutputConfig {
	def := DefaultOutputConfig()
	if c.Stdout == "" {
		c.Stdout = def.Stdout
	}
	if c.Stderr == "" {
		c.Stderr = def.Stderr
	}
	return c
}

// paths returns output paths for a job.
// stderr will be empty when combine is true.
func (c OutputConfig) paths(name, dir string, combine bool) (stdout, stderr string) {
	path := func(pattern string) string {
		p := strings.ReplaceAll(pattern, "{name}", name)
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		return p
	}
	stdout = path(c.Stdout)
	if !combine {
		stderr = path(c.Stderr)
	}
	return stdout, stderr
}

// Job is a job submitted to a scheduler.
type Job struct {
	// NOTE: Exported fields of this struct should be read-only after the initialization.
	// Only status related fields are changed, with the lock held.

	sync.Mutex

	// ID is generated when the job is submitted.
	ID JobID

	Name     string
	Command  string
	Procs    int
	Dir      string
	Combine  bool
	Parallel bool

	// Stdout and Stderr are resolved output paths of the job.
	// Stderr is empty when the outputs are combined.
	Stdout string
	Stderr string

	// Append makes the outputs appended to existing files.
	Append bool

	status   JobStatus
	started  time.Time
	finished time.Time
}

// newJob creates a Queuing job from a spec.
// The spec should have its name.
func newJob(id JobID, spec JobSpec, out OutputConfig) (*Job, error) {
	if strings.TrimSpace(spec.Command) == "" {
		return nil, fmt.Errorf("%w: empty command", ErrInvalidJob)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidJob)
	}
	if spec.Procs == 0 {
		spec.Procs = 1
	}
	if spec.Procs < 0 {
		return nil, fmt.Errorf("%w: procs should be positive, got %v", ErrInvalidResource, spec.Procs)
	}
	dir, err := ResolveDir(spec.Dir)
	if err != nil {
		return nil, err
	}
	j := &Job{
		ID:       id,
		Name:     spec.Name,
		Command:  spec.Command,
		Procs:    spec.Procs,
		Dir:      dir,
		Combine:  spec.Combine,
		Parallel: spec.Parallel,
		Append:   out.Append,
		status:   JobQueuing,
	}
	j.Stdout, j.Stderr = out.withDefaults().paths(j.Name, j.Dir, j.Combine)
	return j, nil
}

// ResolveDir returns absolute path of a job directory.
// It expands environment variables and a leading ~.
// Empty dir is resolved to the current directory.
func ResolveDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	dir = os.ExpandEnv(dir)
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %v: %w", dir, err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	return filepath.Abs(dir)
}

// CommandLine returns the command line that will be passed to the shell.
// A parallel job is wrapped with the launcher and its procs,
// for example "mpiexec -n 4 prog".
func (j *Job) CommandLine(launcher string) string {
	if !j.Parallel {
		return j.Command
	}
	return fmt.Sprintf("%s %d %s", launcher, j.Procs, j.Command)
}

// Status returns the current status of the job.
func (j *Job) Status() JobStatus {
	j.Lock()
	defer j.Unlock()
	return j.status
}

// setStatus moves the job to the next status, and records the time for it.
// It returns an error if the status isn't the very next one.
func (j *Job) setStatus(s JobStatus) error {
	j.Lock()
	defer j.Unlock()
	if s != j.status+1 {
		return fmt.Errorf("%w: %v: %v -> %v", ErrInvalidTransition, j.Name, j.status, s)
	}
	now := time.Now()
	switch s {
	case JobRunning:
		j.started = now
	case JobFinished:
		j.finished = now
	}
	j.status = s
	return nil
}

// Info returns a snapshot of the job.
func (j *Job) Info() JobInfo {
	j.Lock()
	defer j.Unlock()
	return JobInfo{
		ID:       j.ID,
		Name:     j.Name,
		Command:  j.Command,
		Procs:    j.Procs,
		Dir:      j.Dir,
		Combine:  j.Combine,
		Parallel: j.Parallel,
		Stdout:   j.Stdout,
		Stderr:   j.Stderr,
		Status:   j.status,
		Started:  j.started,
		Finished: j.finished,
	}
}

func (j *Job) String() string {
	return fmt.Sprintf("%v(%v)", j.Name, j.Status())
}

// JobInfo is a snapshot of a job.
// Started and Finished are zero until the job reaches the status.
type JobInfo struct {
	ID       JobID
	Name     string
	Command  string
	Procs    int
	Dir      string
	Combine  bool
	Parallel bool
	Stdout   string
	Stderr   string
	Status   JobStatus
	Started  time.Time
	Finished time.Time
}
