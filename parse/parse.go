// Package parse extracts and decodes the tabular files of a feed
// archive. Absent files are not an error: agencies routinely omit
// optional tables, and the importer proceeds with whatever is there.
package parse

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"
)

// Archive is an open feed zip.
type Archive struct {
	zr *zip.ReadCloser
}

func OpenArchive(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	return &Archive{zr: zr}, nil
}

func (a *Archive) Close() error {
	return a.zr.Close()
}

// File returns a reader for the named member, matching on basename
// since some agencies nest files in a subdirectory. Returns nil when
// the member is absent.
func (a *Archive) File(name string) (io.ReadCloser, error) {
	for _, f := range a.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		path := strings.Split(f.Name, "/")
		if path[len(path)-1] != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		return rc, nil
	}
	return nil, nil
}

// unmarshalCSV decodes into out. LazyCSVReader is required (at least)
// to survive sloppy use of quotes. The BOM reader strips unicode BOMs
// if present.
func unmarshalCSV(data io.Reader, out interface{}) error {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})
	return gocsv.Unmarshal(data, out)
}
