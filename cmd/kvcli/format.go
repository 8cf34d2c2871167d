package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ananthvk/memkv/internal/resp"
)

var errUnbalancedQuotes = errors.New("unbalanced quotes")

// FormatValue renders a reply the way redis-cli does
func FormatValue(v resp.Value) string {
	return formatValue(v, "")
}

func formatValue(v resp.Value, indent string) string {
	switch v.Type {
	case resp.ValueTypeSimpleString:
		return string(v.Buffer)
	case resp.ValueTypeSimpleError:
		return "(error) " + string(v.Buffer)
	case resp.ValueTypeInteger:
		return "(integer) " + strconv.FormatInt(v.Integer, 10)
	case resp.ValueTypeBulkString:
		return strconv.Quote(string(v.Buffer))
	case resp.ValueTypeArray:
		if len(v.Array) == 0 {
			return "(empty array)"
		}
		width := len(strconv.Itoa(len(v.Array)))
		var sb strings.Builder
		for i, elem := range v.Array {
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			if i > 0 {
				sb.WriteString("\n")
				sb.WriteString(indent)
			}
			sb.WriteString(prefix)
			sb.WriteString(formatValue(elem, indent+strings.Repeat(" ", len(prefix))))
		}
		return sb.String()
	}
	return "(nil)"
}

// SplitArgs splits a command line on whitespace. Single or double quotes group
// words, and inside double quotes the usual backslash escapes apply.
func SplitArgs(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	inArg := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == ' ' || ch == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		case ch == '"':
			end := i + 1
			for ; end < len(line); end++ {
				if line[end] == '\\' {
					end++
					continue
				}
				if line[end] == '"' {
					break
				}
			}
			if end >= len(line) {
				return nil, errUnbalancedQuotes
			}
			text, err := strconv.Unquote(line[i : end+1])
			if err != nil {
				return nil, err
			}
			current.WriteString(text)
			inArg = true
			i = end
		case ch == '\'':
			end := strings.IndexByte(line[i+1:], '\'')
			if end < 0 {
				return nil, errUnbalancedQuotes
			}
			current.WriteString(line[i+1 : i+1+end])
			inArg = true
			i += end + 1
		default:
			current.WriteByte(ch)
			inArg = true
		}
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
