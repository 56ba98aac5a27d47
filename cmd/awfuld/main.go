package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/imagvfx/awful"
	"github.com/imagvfx/awful/batch"
	"github.com/imagvfx/awful/rpc"
	"github.com/imagvfx/awful/sqlite"
)

func main() {
	var (
		configPath string
		listen     string
		nprocs     int
		batchFile  string
	)
	flag.StringVar(&configPath, "config", os.Getenv("AWFUL_CONFIG"), "toml config file")
	flag.StringVar(&listen, "listen", "", "address to bind, overrides the config")
	flag.IntVar(&nprocs, "nprocs", -1, "number of processors to use, overrides the config")
	flag.StringVar(&batchFile, "batch", "", "yaml file of jobs to submit at start")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if nprocs >= 0 {
		cfg.NProcs = nprocs
	}
	err = run(cfg, batchFile)
	if err != nil {
		log.Fatal(err)
	}
}

// run runs the daemon until it gets an interrupt or terminate signal.
// It waits running jobs before return.
func run(cfg *Config, batchFile string) error {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	sc, err := cfg.SchedulerConfig()
	if err != nil {
		return err
	}
	if cfg.Journal != "" {
		db, err := sqlite.Open(cfg.Journal)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()
		sc.Journal = sqlite.NewJournalService(db)
	}
	sched, err := awful.NewScheduler(sc)
	if err != nil {
		return err
	}

	if batchFile != "" {
		specs, err := batch.ReadFile(batchFile)
		if err != nil {
			return err
		}
		for _, spec := range specs {
			_, err := sched.Submit(spec)
			if err != nil {
				return fmt.Errorf("submit %v: %w", spec.Command, err)
			}
		}
	}

	allow, err := rpc.ParseIPMatchers(cfg.Allow)
	if err != nil {
		return fmt.Errorf("allow: %w", err)
	}
	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	srv := rpc.NewGRPCServer(sched, allow)

	err = sched.Start()
	if err != nil {
		return err
	}
	addr := lis.Addr().String()
	err = rpc.WriteEndpoint(cfg.EndpointFile, addr)
	if err != nil {
		return err
	}
	defer rpc.RemoveEndpoint(cfg.EndpointFile, addr)
	log.Printf("awfuld listening on %v", addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sig
		log.Printf("got %v, stopping", s)
		srv.GracefulStop()
	}()

	err = srv.Serve(lis)
	sched.Close()
	log.Print("waiting for running jobs")
	sched.Wait()
	return err
}
