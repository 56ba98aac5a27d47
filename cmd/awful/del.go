package main

import (
	"flag"
	"log"
)

func del(args []string) {
	fset := flag.NewFlagSet("del", flag.ExitOnError)
	fset.Parse(args)
	names := fset.Args()
	if len(names) == 0 {
		log.Fatal("need a job name to delete")
	}

	c := dial()
	defer c.Close()
	for _, name := range names {
		err := c.Delete(name)
		if err != nil {
			log.Fatal(err)
		}
	}
}
