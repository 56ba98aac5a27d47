// Package batch reads a list of jobs from a yaml file.
//
// A batch file looks like
//
//	- name: job-1
//	  command: ./test_job
//	- command: sleep 20
//	  procs: 2
//	  dir: ~/runs
//	  combine: true
//	  parallel: true
package batch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/imagvfx/awful"
	"gopkg.in/yaml.v3"
)

// Job is a job in a batch file.
type Job struct {
	Name     string `yaml:"name"`
	Command  string `yaml:"command"`
	Procs    int    `yaml:"procs"`
	Dir      string `yaml:"dir"`
	Combine  bool   `yaml:"combine"`
	Parallel bool   `yaml:"parallel"`
}

// Spec returns the job spec of the batch job.
func (j Job) Spec() awful.JobSpec {
	return awful.JobSpec{
		Name:     j.Name,
		Command:  j.Command,
		Procs:    j.Procs,
		Dir:      j.Dir,
		Combine:  j.Combine,
		Parallel: j.Parallel,
	}
}

// Read reads job specs from r.
// Every job should have a command. Relative dirs are resolved
// against the current directory.
func Read(r io.Reader) ([]awful.JobSpec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var jobs []Job
	err := dec.Decode(&jobs)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []awful.JobSpec{}, nil
		}
		return nil, fmt.Errorf("parsing batch: %w", err)
	}
	specs := make([]awful.JobSpec, 0, len(jobs))
	for i, j := range jobs {
		if j.Command == "" {
			return nil, fmt.Errorf("%w: batch job %d: empty command", awful.ErrInvalidJob, i)
		}
		spec := j.Spec()
		spec.Dir, err = awful.ResolveDir(spec.Dir)
		if err != nil {
			return nil, fmt.Errorf("batch job %d: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// ReadFile reads job specs from a batch file.
func ReadFile(path string) ([]awful.JobSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	return Read(bytes.NewReader(data))
}
