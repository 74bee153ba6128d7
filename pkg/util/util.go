package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/hdc-lang/hdc/pkg/token"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	caretMark  = color.New(color.FgGreen)
)

// SourceFileRecord tracks the name and content of the source file being
// compiled, kept for rich error messages.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

var sourceFile SourceFileRecord

// SetSourceFile stores the source code of the input file for rich error messages.
func SetSourceFile(name, content string) {
	sourceFile = SourceFileRecord{Name: name, Content: []rune(content)}
}

// printErrorLine prints the source line and a caret indicating the error position.
func printErrorLine(stream *os.File, tok token.Token) {
	if tok.Line == 0 || len(sourceFile.Content) == 0 {
		return
	}

	content := sourceFile.Content
	lineNum := tok.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(stream, "  %s\n", string(content[lineStart:lineEnd]))

	marker := "^"
	if tok.Len > 1 {
		marker += strings.Repeat("~", tok.Len-1)
	}
	fmt.Fprintf(stream, "  %s%s\n", strings.Repeat(" ", tok.Column-1), caretMark.Sprint(marker))
}

// Report prints a formatted error message with the offending source line.
func Report(tok token.Token, format string, args ...interface{}) {
	if tok.Line > 0 {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: ", sourceFile.Name, tok.Line, tok.Column)
	} else {
		fmt.Fprintf(os.Stderr, "%s: ", sourceFile.Name)
	}
	fmt.Fprintf(os.Stderr, "%s ", errorLabel.Sprint("error:"))
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	printErrorLine(os.Stderr, tok)
}
