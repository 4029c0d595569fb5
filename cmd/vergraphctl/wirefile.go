package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/coldharbor-systems/vergraph"
)

// loadGraph opens path and decodes it, or returns a fresh empty graph bound
// to the configured --max-versions/--max-branches if path does not exist.
func loadGraph(path string) (*vergraph.VersionGraph, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return vergraph.New(viper.GetUint32("max-versions"), viper.GetUint32("max-branches"))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	g, err := vergraph.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return g, nil
}

func saveGraph(path string, g *vergraph.VersionGraph) error {
	data, err := g.Serialise()
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// parseVersionName parses "index:hexid", e.g.
// "3:6161...61" (128 hex characters, IDSize*2). An empty string parses to
// the uninitialized VersionName, used to mean "no parent" on the command
// line the same way it does in the library.
func parseVersionName(s string) (vergraph.VersionName, error) {
	if s == "" {
		return vergraph.VersionName{}, nil
	}
	idx, id, ok := strings.Cut(s, ":")
	if !ok {
		return vergraph.VersionName{}, fmt.Errorf("expected index:hex, got %q", s)
	}
	index, err := strconv.ParseUint(idx, 10, 64)
	if err != nil {
		return vergraph.VersionName{}, fmt.Errorf("bad index in %q: %w", s, err)
	}
	raw, err := hex.DecodeString(id)
	if err != nil {
		return vergraph.VersionName{}, fmt.Errorf("bad hex id in %q: %w", s, err)
	}
	if len(raw) != vergraph.IDSize {
		return vergraph.VersionName{}, fmt.Errorf("id in %q must be %d bytes, got %d", s, vergraph.IDSize, len(raw))
	}
	var name vergraph.VersionName
	name.Index = index
	copy(name.ID[:], raw)
	return name, nil
}

func formatVersionName(v vergraph.VersionName) string {
	return fmt.Sprintf("%d:%s", v.Index, hex.EncodeToString(v.ID[:]))
}
