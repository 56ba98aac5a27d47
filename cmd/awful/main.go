package main

import (
	"log"
	"os"

	"github.com/imagvfx/awful/rpc"
)

func main() {
	log.SetFlags(0)
	args := os.Args[1:]
	if len(args) == 0 {
		log.Fatal("need a subcommand: [sub, stat, del, history]")
	}

	subcmd := args[0]
	switch subcmd {
	case "sub":
		sub(args[1:])
	case "stat":
		stat(args[1:])
	case "del":
		del(args[1:])
	case "history":
		history(args[1:])
	default:
		log.Fatalf("unknown subcommand: %s", subcmd)
	}
}

// dial connects to the daemon written in the endpoint file.
func dial() *rpc.Client {
	c, err := rpc.DialEndpoint(rpc.EndpointFile())
	if err != nil {
		log.Fatal(err)
	}
	return c
}
