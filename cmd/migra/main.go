// Package main implements the migra inspection tool, a small operator
// utility for directories of versioned entity files.
//
// Given a storage directory it reports, per file, the entity id and the
// tagged schema version, so an operator can see at a glance which
// instances still carry historical versions. It also detects temp files
// left behind by writes that were interrupted before their atomic
// rename, and can remove them.
//
// Usage:
//
//	# List entity files and their tagged versions
//	migra -dir ~/.local/share/myapp/sessions
//
//	# TOML files under a custom version key
//	migra -dir ./state -format toml -version-key schema_version
//
//	# Remove stale temp files from interrupted writes
//	migra -dir ./state -clean
//
// Flags:
//   - -dir: storage directory to inspect (required)
//   - -format: file format, json, toml or yaml (default: json)
//   - -ext: filename extension (default: the format's own)
//   - -version-key: tag key holding the version (default: "version")
//   - -clean: remove stale temp files instead of only reporting them
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dreamware/migra/internal/atomicfile"
	"github.com/dreamware/migra/internal/codec"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

func main() {
	var (
		dir        = flag.String("dir", "", "storage directory to inspect (required)")
		format     = flag.String("format", "json", "file format: json, toml or yaml")
		ext        = flag.String("ext", "", "filename extension (default: the format's own)")
		versionKey = flag.String("version-key", "version", "tag key holding the version")
		clean      = flag.Bool("clean", false, "remove stale temp files instead of only reporting them")
	)
	flag.Parse()

	if *dir == "" {
		logFatal("missing required flag: -dir")
		return
	}

	c, err := codec.ForFormat(*format)
	if err != nil {
		logFatal("invalid -format: %v", err)
		return
	}

	extension := strings.TrimPrefix(*ext, ".")
	if extension == "" {
		extension = c.Extension()
	}

	report, err := inspect(*dir, c, extension, *versionKey)
	if err != nil {
		logFatal("inspecting %s: %v", *dir, err)
		return
	}

	for _, f := range report.Entities {
		fmt.Printf("%-40s %s\n", f.Name, f.Version)
	}
	if len(report.Entities) == 0 {
		fmt.Println("no entity files found")
	}

	for _, name := range report.Stale {
		if *clean {
			if err := os.Remove(filepath.Join(*dir, name)); err != nil {
				log.Printf("removing stale temp file %s: %v", name, err)
				continue
			}
			log.Printf("removed stale temp file %s", name)
		} else {
			log.Printf("stale temp file %s (run with -clean to remove)", name)
		}
	}
}

// entityFile is one inspected storage file.
type entityFile struct {
	Name    string // filename within the directory
	Version string // tagged version, or a note when the tag is unreadable
}

// report is the outcome of one directory inspection.
type report struct {
	Entities []entityFile
	Stale    []string // temp-file names from interrupted writes
}

// inspect scans a storage directory, decoding each file with the given
// codec and extracting the version tag. Unreadable or untagged files are
// reported rather than failing the scan; an operator tool should show as
// much of the directory as it can.
func inspect(dir string, c codec.Codec, extension, versionKey string) (*report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &atomicfile.IOError{Op: atomicfile.OpReadDir, Path: dir, Err: err}
	}

	var rep report
	suffix := "." + extension
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if atomicfile.IsTempName(name) {
			rep.Stale = append(rep.Stale, name)
			continue
		}
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		rep.Entities = append(rep.Entities, entityFile{
			Name:    name,
			Version: fileVersion(filepath.Join(dir, name), c, versionKey),
		})
	}

	sort.Slice(rep.Entities, func(i, j int) bool { return rep.Entities[i].Name < rep.Entities[j].Name })
	sort.Strings(rep.Stale)
	return &rep, nil
}

// fileVersion reads one file's version tag, returning a descriptive
// placeholder when it cannot.
func fileVersion(path string, c codec.Codec, versionKey string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("(unreadable: %v)", err)
	}

	var doc map[string]any
	if err := c.Unmarshal(content, &doc); err != nil {
		return "(not a " + c.Name() + " document)"
	}

	version, ok := doc[versionKey].(string)
	if !ok {
		return fmt.Sprintf("(no %q tag)", versionKey)
	}
	return version
}
