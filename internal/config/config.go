package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/sarifnav/internal/debug"
	naverrors "github.com/standardbeagle/sarifnav/internal/errors"
)

// Defaults for the diagnostic surface and resolution behavior
const (
	// DefaultMaxPerFile caps displayed entries per file; the truncation
	// marker rides on top of it.
	DefaultMaxPerFile = 249
)

type Config struct {
	Version     int
	Diagnostics Diagnostics
	Resolution  Resolution
}

type Diagnostics struct {
	MaxPerFile int // Cap on displayed entries per file
}

type Resolution struct {
	PromptEnabled bool     // Allow the interactive resolution fallback
	Include       []string // doublestar globs limiting prompt suggestions
	Exclude       []string // doublestar globs removed from prompt suggestions
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Diagnostics: Diagnostics{
			MaxPerFile: DefaultMaxPerFile,
		},
		Resolution: Resolution{
			PromptEnabled: true,
			Include:       []string{},
			Exclude:       []string{"**/node_modules/**", "**/.git/**"},
		},
	}
}

// Load reads configuration from the given .sarifnav.kdl path, falling back
// to defaults when the file does not exist.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseKDL(string(content))
}

// LoadFromDir looks for .sarifnav.kdl in dir.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, ".sarifnav.kdl"))
}

// Simple KDL parser for sarifnav configuration
func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "diagnostics":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_per_file":
					if v, ok := firstIntArg(cn); ok && v > 0 {
						cfg.Diagnostics.MaxPerFile = v
					} else if ok {
						// Out-of-range values keep the default.
						debug.Printf("config: %v", naverrors.NewConfigError(
							"diagnostics.max_per_file", strconv.Itoa(v),
							errors.New("must be positive")))
					}
				}
			}
		case "resolution":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "prompt":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Resolution.PromptEnabled = b
					}
				case "include":
					cfg.Resolution.Include = collectStringArgs(cn)
				case "exclude":
					cfg.Resolution.Exclude = collectStringArgs(cn)
				}
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// Inline format: exclude "a" "b"
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block format: exclude { "a"; "b" } where strings arrive as child nodes
	// whose name is the value.
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}
