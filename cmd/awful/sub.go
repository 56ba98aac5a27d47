package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/imagvfx/awful"
	"github.com/imagvfx/awful/batch"
)

func sub(args []string) {
	var (
		name      string
		procs     int
		parallel  bool
		dir       string
		combine   bool
		batchFile string
	)
	fset := flag.NewFlagSet("sub", flag.ExitOnError)
	fset.StringVar(&name, "name", "", "name of the job, derived from the command when empty")
	fset.IntVar(&procs, "n", 1, "number of processors the job uses")
	fset.BoolVar(&parallel, "m", false, "run the command with the parallel launcher")
	fset.StringVar(&dir, "d", "", "directory to run the job, default is the current directory")
	fset.BoolVar(&combine, "c", false, "combine stderr of the job into its stdout")
	fset.StringVar(&batchFile, "batch", "", "submit jobs in a yaml file instead")
	fset.Parse(args)

	specs := make([]awful.JobSpec, 0)
	if batchFile != "" {
		if fset.NArg() != 0 {
			log.Fatal("cannot submit a command with -batch")
		}
		var err error
		specs, err = batch.ReadFile(batchFile)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		cmd := strings.Join(fset.Args(), " ")
		if strings.TrimSpace(cmd) == "" {
			log.Fatal("need a command to submit")
		}
		// the daemon doesn't know where we are.
		d, err := awful.ResolveDir(dir)
		if err != nil {
			log.Fatal(err)
		}
		specs = append(specs, awful.JobSpec{
			Name:     name,
			Command:  cmd,
			Procs:    procs,
			Dir:      d,
			Combine:  combine,
			Parallel: parallel,
		})
	}

	c := dial()
	defer c.Close()
	for _, spec := range specs {
		name, err := c.Submit(spec)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(name)
	}
}
