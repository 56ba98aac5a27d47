package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/imagvfx/awful"
	"github.com/imagvfx/awful/sqlite"
)

func history(args []string) {
	var (
		dbPath string
		id     string
		kind   string
		since  time.Duration
	)
	fset := flag.NewFlagSet("history", flag.ExitOnError)
	fset.StringVar(&dbPath, "db", os.Getenv("AWFUL_JOURNAL"), "journal db of the daemon")
	fset.StringVar(&id, "id", "", "show events of the job id only")
	fset.StringVar(&kind, "kind", "", "show events of the kind only: submitted, started, finished or deleted")
	fset.DurationVar(&since, "since", 0, "show events happened in this duration, like 1h")
	fset.Parse(args)
	if dbPath == "" {
		log.Fatal("need a journal db: -db or AWFUL_JOURNAL")
	}
	if _, err := os.Stat(dbPath); err != nil {
		log.Fatal(err)
	}
	filter := awful.EventFilter{
		JobID: awful.JobID(id),
		Kind:  awful.JobEventKind(kind),
	}
	if since > 0 {
		filter.Since = time.Now().Add(-since)
	}
	if fset.NArg() != 0 {
		filter.Name = fset.Arg(0)
	}

	db, err := sqlite.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	events, err := sqlite.NewJournalService(db).FindEvents(filter)
	if err != nil {
		log.Fatal(err)
	}
	if len(events) == 0 {
		fmt.Println("no event to show")
		return
	}
	for _, e := range events {
		fmt.Printf("%v %-9v %v [%v] (%v procs) %v\n", e.Time.Format("2006-01-02 15:04:05"), e.Kind, e.Name, e.JobID, e.Procs, e.Command)
	}
}
