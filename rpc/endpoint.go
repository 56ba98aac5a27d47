package rpc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultEndpointFile is where a daemon writes its address by default.
const DefaultEndpointFile = "/tmp/awfuld.addr"

// EndpointFile returns the endpoint file path,
// from AWFUL_ENDPOINT environment variable if it is set.
func EndpointFile() string {
	f := os.Getenv("AWFUL_ENDPOINT")
	if f == "" {
		f = DefaultEndpointFile
	}
	return f
}

// WriteEndpoint writes the address a daemon listens to the file.
// It writes a temporary file first then renames it,
// so readers never see a partial address.
func WriteEndpoint(path, addr string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write endpoint: %w", err)
	}
	_, err = tmp.WriteString(addr + "\n")
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write endpoint: %w", err)
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write endpoint: %w", err)
	}
	err = os.Rename(tmp.Name(), path)
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write endpoint: %w", err)
	}
	return nil
}

// ReadEndpoint reads the address of a daemon from the file.
func ReadEndpoint(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: endpoint file not found: %v", ErrNoDaemon, path)
		}
		return "", fmt.Errorf("read endpoint: %w", err)
	}
	addr := strings.TrimSpace(string(b))
	if addr == "" {
		return "", fmt.Errorf("%w: empty endpoint file: %v", ErrNoDaemon, path)
	}
	return addr, nil
}

// RemoveEndpoint removes the endpoint file, only when it still has addr.
// Another daemon might have overwritten it.
func RemoveEndpoint(path, addr string) error {
	got, err := ReadEndpoint(path)
	if err != nil {
		return nil
	}
	if got != addr {
		return nil
	}
	return os.Remove(path)
}
