package export

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// ZipEntry is one file of a report bundle.
type ZipEntry struct {
	Name string
	Data []byte
}

// ZipBundle packs the given files into a single zip archive.
func ZipBundle(entries []ZipEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("bundle requires at least one file")
	}
	buf := &bytes.Buffer{}
	archive := zip.NewWriter(buf)
	for _, entry := range entries {
		w, err := archive.Create(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("add %s to bundle: %w", entry.Name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("write %s to bundle: %w", entry.Name, err)
		}
	}
	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("close bundle: %w", err)
	}
	return buf.Bytes(), nil
}
