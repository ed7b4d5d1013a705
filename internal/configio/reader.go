package configio

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\xEF\xBB\xBF"

// maxLineLength bounds a single config line.
const maxLineLength = 1 << 20

// Line is one logical line of a config file.
type Line struct {
	Number int // 1-based
	Text   string
}

// SkipMode decides which lines ReadLines drops.
type SkipMode int

const (
	// SkipEmpty drops zero-length lines only. The command CSV uses it.
	SkipEmpty SkipMode = iota
	// SkipBlankAndComments also drops whitespace-only lines and lines whose
	// first non-blank character is '#'.
	SkipBlankAndComments
)

// ReadLines consumes r fully. The first line loses its BOM, every line loses
// a trailing '\r'. Skipped lines still advance the line counter.
func ReadLines(r io.Reader, mode SkipMode) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var lines []Line
	number := 0
	for scanner.Scan() {
		number++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if number == 1 {
			text = strings.TrimPrefix(text, utf8BOM)
		}
		if skip(text, mode) {
			continue
		}
		lines = append(lines, Line{Number: number, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config stream: %w", err)
	}
	return lines, nil
}

func skip(text string, mode SkipMode) bool {
	if text == "" {
		return true
	}
	if mode == SkipEmpty {
		return false
	}
	trimmed := strings.TrimLeft(text, " \t")
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}
