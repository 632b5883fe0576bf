// Package assets ships the gateway's gRPC contract: the four .proto files
// embedded via go:embed. The -a/--assets CLI flag writes them to the working
// directory so local components can generate their own stubs against the
// exact contract this binary serves.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed proto/*.proto
var protoFS embed.FS

// ProtoFiles lists the embedded contract file names.
func ProtoFiles() ([]string, error) {
	entries, err := fs.ReadDir(protoFS, "proto")
	if err != nil {
		return nil, fmt.Errorf("listing embedded proto files: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// ReadProto returns the contents of one embedded contract file.
func ReadProto(name string) ([]byte, error) {
	data, err := fs.ReadFile(protoFS, "proto/"+name)
	if err != nil {
		return nil, fmt.Errorf("reading embedded proto file %q: %w", name, err)
	}
	return data, nil
}

// WriteAll writes every contract file into dir, overwriting existing files.
func WriteAll(dir string) error {
	names, err := ProtoFiles()
	if err != nil {
		return err
	}
	for _, name := range names {
		data, err := ReadProto(name)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
	}
	return nil
}
