/*
Copyright © 2022 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public
License along with this program. If not, see
<http://www.gnu.org/licenses/>.
*/

package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ablomm/cpuasm/pkg/asmpipe"
	"github.com/ablomm/cpuasm/pkg/ast"
	"github.com/ablomm/cpuasm/pkg/parse"
	"github.com/ablomm/cpuasm/pkg/span"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [flags] source-file",
	Short: "Assemble a source file into 32-bit instruction words.",
	Long: `assemble runs the five-pass pipeline (import resolution, symbol
seeding, import wiring, address assignment, code generation) over a
source file and its imports, writing the resulting words to a binary
output file.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().StringP("output", "o", "", "output file (default: source file with .bin extension)")
	assembleCmd.Flags().StringP("import-dir", "I", "", "directory the source file's own import paths are resolved against (default: the source file's directory); imported files resolve their imports relative to their own directory")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log.SetLevel(log.DebugLevel)
	}

	rootPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}

	importDir, _ := cmd.Flags().GetString("import-dir")
	if importDir == "" {
		importDir = filepath.Dir(rootPath)
	}

	sources := make(map[string][]byte)
	resolve := func(fromID, importPath string) (string, error) {
		base := filepath.Dir(fromID)
		if fromID == rootPath {
			base = importDir
		}
		return filepath.Clean(filepath.Join(base, importPath)), nil
	}
	load := func(id string) (*ast.File, []span.Diag, error) {
		data, err := os.ReadFile(id)
		if err != nil {
			return nil, nil, err
		}
		sources[id] = data
		file, diags := parse.ParseFile(id, data)
		log.WithFields(log.Fields{"file": id, "bytes": len(data)}).Debug("loaded source file")
		return file, diags, nil
	}

	start := time.Now()
	words, diags := asmpipe.Assemble(rootPath, resolve, load)
	log.WithFields(log.Fields{
		"files":       len(sources),
		"words":       len(words),
		"diagnostics": len(diags),
		"elapsed":     time.Since(start),
	}).Debug("assembly finished")

	for _, d := range diags {
		logDiag(d, sources)
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = strings.TrimSuffix(rootPath, filepath.Ext(rootPath)) + ".bin"
	}
	if err := writeWords(outPath, words); err != nil {
		return err
	}

	if len(diags) > 0 {
		os.Exit(1)
	}
	return nil
}

func writeWords(path string, words []uint32) error {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint32(buf[i*4:], w)
	}
	return os.WriteFile(path, buf, 0o644)
}

// logDiag renders one diagnostic to structured log fields. The core
// never renders its own diagnostics; this CLI is the one place that
// turns a span into a human-readable line:col.
func logDiag(d span.Diag, sources map[string][]byte) {
	entry := log.WithFields(log.Fields{
		"file": d.Primary.SourceID,
		"at":   formatPos(d.Primary, sources),
	})
	if d.Severity == span.Warning {
		entry.Warn(d.Message)
	} else {
		entry.Error(d.Message)
	}
	for _, l := range d.Labels {
		log.WithField("at", formatPos(l.Span, sources)).Info(l.Text)
	}
	for _, n := range d.Notes {
		log.Info(n)
	}
	if d.Help != "" {
		log.Info(d.Help)
	}
}

func formatPos(s span.Span, sources map[string][]byte) string {
	src, ok := sources[s.SourceID]
	if !ok || s.Start > len(src) {
		return fmt.Sprintf("%s:?", s.SourceID)
	}
	line, col := 1, 1
	for _, b := range src[:s.Start] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return fmt.Sprintf("%s:%d:%d", s.SourceID, line, col)
}
