package rpc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "awfuld.addr")
	_, err := ReadEndpoint(path)
	if !errors.Is(err, ErrNoDaemon) {
		t.Fatalf("got: %v, want: %v", err, ErrNoDaemon)
	}
	err = WriteEndpoint(path, "127.0.0.1:40001")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadEndpoint(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "127.0.0.1:40001" {
		t.Fatalf("got: %v, want: %v", got, "127.0.0.1:40001")
	}
	// another daemon's endpoint should be kept.
	err = RemoveEndpoint(path, "127.0.0.1:40002")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("endpoint file removed: %v", err)
	}
	err = RemoveEndpoint(path, "127.0.0.1:40001")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("endpoint file should be removed: %v", err)
	}
}

func TestEndpointFile(t *testing.T) {
	old, ok := os.LookupEnv("AWFUL_ENDPOINT")
	defer func() {
		if ok {
			os.Setenv("AWFUL_ENDPOINT", old)
		} else {
			os.Unsetenv("AWFUL_ENDPOINT")
		}
	}()
	os.Unsetenv("AWFUL_ENDPOINT")
	if got := EndpointFile(); got != DefaultEndpointFile {
		t.Fatalf("got: %v, want: %v", got, DefaultEndpointFile)
	}
	os.Setenv("AWFUL_ENDPOINT", "/tmp/other.addr")
	if got := EndpointFile(); got != "/tmp/other.addr" {
		t.Fatalf("got: %v, want: %v", got, "/tmp/other.addr")
	}
}
