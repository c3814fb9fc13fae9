// Package linecmd parses ':' command lines into a fixed command set.
package linecmd

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Kind identifies a parsed command.
type Kind int

const (
	Unknown Kind = iota
	Quit
	Write
	WriteQuit
	Add
	Open
	Tags
	Help
	Search
	Refresh
	UndoList
	Earlier
	Later
	QuickfixOpen
	QuickfixClose
	QuickfixNext
	QuickfixPrev
	QuickfixDo
	Sort
	Library
	FilterTag
	ClearFilter
	Marks
	DeleteMarks
	Registers
	Macros
	Doctor
	Cite
	Bibtex
	Refs
	CitedBy
	Global
	Substitute
)

var kindNames = map[Kind]string{
	Unknown:       "unknown",
	Quit:          "quit",
	Write:         "write",
	WriteQuit:     "wq",
	Add:           "add",
	Open:          "open",
	Tags:          "tags",
	Help:          "help",
	Search:        "search",
	Refresh:       "refresh",
	UndoList:      "undolist",
	Earlier:       "earlier",
	Later:         "later",
	QuickfixOpen:  "copen",
	QuickfixClose: "cclose",
	QuickfixNext:  "cnext",
	QuickfixPrev:  "cprev",
	QuickfixDo:    "cdo",
	Sort:          "sort",
	Library:       "library",
	FilterTag:     "tag",
	ClearFilter:   "all",
	Marks:         "marks",
	DeleteMarks:   "delmarks",
	Registers:     "registers",
	Macros:        "macros",
	Doctor:        "doctor",
	Cite:          "cite",
	Bibtex:        "bibtex",
	Refs:          "refs",
	CitedBy:       "citedby",
	Global:        "global",
	Substitute:    "substitute",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// words maps every accepted command word to its kind.
var words = map[string]Kind{
	"q":         Quit,
	"quit":      Quit,
	"w":         Write,
	"write":     Write,
	"wq":        WriteQuit,
	"x":         WriteQuit,
	"add":       Add,
	"open":      Open,
	"tags":      Tags,
	"help":      Help,
	"h":         Help,
	"search":    Search,
	"find":      Search,
	"refresh":   Refresh,
	"undolist":  UndoList,
	"earlier":   Earlier,
	"later":     Later,
	"copen":     QuickfixOpen,
	"cclose":    QuickfixClose,
	"cnext":     QuickfixNext,
	"cn":        QuickfixNext,
	"cprev":     QuickfixPrev,
	"cp":        QuickfixPrev,
	"cdo":       QuickfixDo,
	"sort":      Sort,
	"library":   Library,
	"lib":       Library,
	"tag":       FilterTag,
	"all":       ClearFilter,
	"marks":     Marks,
	"delmarks":  DeleteMarks,
	"registers": Registers,
	"reg":       Registers,
	"macros":    Macros,
	"doctor":    Doctor,
	"cite":      Cite,
	"bibtex":    Bibtex,
	"refs":      Refs,
	"citedby":   CitedBy,
}

// Command is a parsed line.
type Command struct {
	Kind Kind
	// Name is the command word as typed.
	Name string
	// Arg is everything after the command word, trimmed.
	Arg string
	// Raw is the full line without the leading ':'.
	Raw string

	// Global and Substitute fields.
	Pattern     string
	Replacement string
	Action      string
	Invert      bool
	AllMatches  bool
	WholeList   bool
}

// Args splits Arg on whitespace.
func (c Command) Args() []string {
	return strings.Fields(c.Arg)
}

// Parse turns a command line into a Command. A leading ':' is optional.
// Lines that match nothing parse as Unknown.
func Parse(line string) Command {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	cmd := Command{Kind: Unknown, Raw: raw}
	if raw == "" {
		return cmd
	}

	if c, ok := parseGlobal(raw); ok {
		return c
	}
	if c, ok := parseSubstitute(raw); ok {
		return c
	}

	name, arg, _ := strings.Cut(raw, " ")
	cmd.Name = name
	cmd.Arg = strings.TrimSpace(arg)
	if kind, ok := words[name]; ok {
		cmd.Kind = kind
	}
	return cmd
}

// parseGlobal handles g/pattern/cmd and v/pattern/cmd. The pattern may not
// contain '/'.
func parseGlobal(raw string) (Command, bool) {
	invert := strings.HasPrefix(raw, "v/")
	if !invert && !strings.HasPrefix(raw, "g/") {
		return Command{}, false
	}
	parts := strings.SplitN(raw, "/", 3)
	if len(parts) < 3 {
		return Command{}, false
	}
	return Command{
		Kind:    Global,
		Name:    parts[0],
		Raw:     raw,
		Pattern: parts[1],
		Action:  strings.TrimSpace(parts[2]),
		Invert:  invert,
	}, true
}

// parseSubstitute handles s/pat/repl/[g] and %s/pat/repl/[g].
func parseSubstitute(raw string) (Command, bool) {
	whole := strings.HasPrefix(raw, "%s/")
	if !whole && !strings.HasPrefix(raw, "s/") {
		return Command{}, false
	}
	parts := strings.Split(raw, "/")
	if len(parts) < 3 {
		return Command{}, false
	}
	cmd := Command{
		Kind:        Substitute,
		Name:        parts[0],
		Raw:         raw,
		Pattern:     parts[1],
		Replacement: parts[2],
		WholeList:   whole,
	}
	if len(parts) > 3 {
		cmd.AllMatches = strings.Contains(parts[3], "g")
	}
	return cmd, true
}

// Suggest returns the known command word closest to name, if any is within
// edit distance 2.
func Suggest(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	best, bestDist := "", 3
	for word := range words {
		if len(word) < 2 {
			continue
		}
		d := levenshtein.ComputeDistance(name, word)
		if d < bestDist || (d == bestDist && word < best) {
			best, bestDist = word, d
		}
	}
	return best, best != ""
}
