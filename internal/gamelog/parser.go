// Package gamelog parses the player logs written by the supported game
// clients and locates their installation directories. The exchange-record
// panel uses it to find the web-cache file that holds the record URL.
package gamelog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// Entry is one structured assignment line from a client log.
// Example: Mono path[0] = 'D:/Games/Client/Client_Data/Managed'
type Entry struct {
	Key   []string `parser:"@(Word | Int)+"`
	Index *int     `parser:"(LBracket @Int RBracket)?"`
	Value *Value   `parser:"Eq @@"`
}

// Value is the right-hand side of an assignment, quoted or bare.
type Value struct {
	Quoted *string  `parser:"  @Quoted"`
	Bare   []string `parser:"| @(Word | Int)+"`
}

// KeyString returns the key words joined the way they appear in the log.
func (e *Entry) KeyString() string {
	return strings.Join(e.Key, " ")
}

// ValueString returns the assignment value with quotes stripped.
func (e *Entry) ValueString() string {
	if e.Value == nil {
		return ""
	}
	if e.Value.Quoted != nil {
		return strings.Trim(*e.Value.Quoted, "'")
	}
	return strings.Join(e.Value.Bare, " ")
}

// Parser parses client log lines.
type Parser struct {
	parser *participle.Parser[Entry]
}

// NewParser creates a new log line parser instance.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[Entry](
		participle.Lexer(LogLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// ParseLine parses one log line as an assignment entry.
func (p *Parser) ParseLine(line string) (*Entry, error) {
	entry, err := p.parser.ParseString("", strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return entry, nil
}

// ParseLog reads r line by line and returns the assignment entries found,
// skipping everything that does not match the grammar. Real logs are a mix
// of free-form output and assignments; only the latter carry structure.
func (p *Parser) ParseLog(r io.Reader) ([]*Entry, error) {
	var entries []*Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "=") {
			continue
		}
		entry, err := p.ParseLine(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return entries, fmt.Errorf("read log: %w", err)
	}
	return entries, nil
}

// ParseLogFile parses the log at path.
func (p *Parser) ParseLogFile(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return p.ParseLog(f)
}
