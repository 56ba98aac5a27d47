package awful

import (
	"fmt"
	"log"
	"os"
	"os/exec"
)

// Runner runs a job's command and blocks until it exits.
// Run is called concurrently for different jobs.
type Runner interface {
	Run(j *Job) error
}

// RunnerFunc is an adapter to use a function as a Runner.
type RunnerFunc func(j *Job) error

// Run calls f(j).
func (f RunnerFunc) Run(j *Job) error {
	return f(j)
}

// ShellRunner runs a job's command line with a shell.
// The job's directory and outputs are given only to the child process,
// so jobs running at the same time don't affect each other.
type ShellRunner struct {
	// Shell runs a command line with "-c" flag. Default is /bin/sh.
	Shell string

	// Launcher wraps commands of parallel jobs.
	// Default is "mpiexec -n".
	Launcher string
}

func (r *ShellRunner) shell() string {
	if r.Shell == "" {
		return "/bin/sh"
	}
	return r.Shell
}

func (r *ShellRunner) launcher() string {
	if r.Launcher == "" {
		return "mpiexec -n"
	}
	return r.Launcher
}

// openOutput opens an output file of a job.
// Existing file is truncated unless appending is true.
func openOutput(path string, appending bool) (*os.File, error) {
	flag := os.O_CREATE | os.O_WRONLY
	if appending {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}
	return os.OpenFile(path, flag, 0644)
}

// Run runs the job's command line and waits until it exits.
// It returns an error when the command couldn't be run or exited with failure.
func (r *ShellRunner) Run(j *Job) error {
	stdout, err := openOutput(j.Stdout, j.Append)
	if err != nil {
		return fmt.Errorf("open stdout: %w", err)
	}
	defer stdout.Close()
	stderr := stdout
	if !j.Combine {
		stderr, err = openOutput(j.Stderr, j.Append)
		if err != nil {
			return fmt.Errorf("open stderr: %w", err)
		}
		defer stderr.Close()
	}
	c := exec.Command(r.shell(), "-c", j.CommandLine(r.launcher()))
	c.Dir = j.Dir
	c.Stdout = stdout
	c.Stderr = stderr
	return c.Run()
}

// execute runs an admitted job and reports back to the scheduler when it's done.
// Failure of the command doesn't change anything, the job finishes anyway.
func (s *Scheduler) execute(j *Job) {
	defer s.executors.Done()
	log.Printf("job started: %v", j.Name)
	err := s.runner.Run(j)
	if err != nil {
		log.Printf("job %v: %v", j.Name, err)
	}
	s.finishJob(j)
}
