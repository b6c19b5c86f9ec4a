package compiler

import (
	_ "embed"
	"fmt"
	"strings"
)

// builtinsSource is the built-in operator catalog: a static table of
// (name, arg_types, return_type, handle_template, code_template) records,
// loaded at startup rather than hard-coded as Go literals — the catalog is
// part of the language specification, not user-configurable, grounded on
// original_source/src/lang_consts.rs's include_str!-loaded table.
//
//go:embed builtins.txt
var builtinsSource string

// loadBuiltins parses builtinsSource into the catalog consumed by dispatch
// (Manager.resolveBuiltin) and emission (emitBuiltIn). Records are
// separated by blank lines; each record is a small key: value block. An
// empty handle/code value means "" (a no-op template), matching the
// prototype's empty HANDLE_STRINGS/CODE_STRINGS entries for print.
func loadBuiltins(text string) ([]BuiltIn, error) {
	var out []BuiltIn
	for _, block := range splitBlocks(text) {
		b, err := parseBuiltinBlock(block)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func splitBlocks(text string) []string {
	var blocks []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}

func parseBuiltinBlock(block string) (BuiltIn, error) {
	var b BuiltIn
	var sawName, sawArgs, sawRet bool
	lines := strings.Split(block, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		key, val, ok := splitKeyValue(line)
		if !ok {
			return BuiltIn{}, fmt.Errorf("malformed builtin catalog line: %q", line)
		}
		switch key {
		case "name":
			b.Name = strings.TrimSpace(val)
			sawName = true
		case "args":
			b.ArgTypes = parseTypeList(val)
			sawArgs = true
		case "ret":
			t, ok := primitiveTypeByName(strings.TrimSpace(val))
			if !ok {
				return BuiltIn{}, fmt.Errorf("unknown return type in builtin catalog: %q", val)
			}
			b.ReturnType = t
			sawRet = true
		case "handle":
			b.HandleTemplate = strings.TrimSpace(val)
		case "code":
			// Code may continue onto following non-keyed lines.
			parts := []string{strings.TrimSpace(val)}
			for i+1 < len(lines) {
				if _, _, ok := splitKeyValue(lines[i+1]); ok {
					break
				}
				parts = append(parts, lines[i+1])
				i++
			}
			code := strings.TrimRight(strings.Join(parts, "\n"), "\n")
			if code != "" {
				code += "\n"
			}
			b.CodeTemplate = code
		default:
			return BuiltIn{}, fmt.Errorf("unknown builtin catalog key: %q", key)
		}
	}
	if !sawName || !sawArgs || !sawRet {
		return BuiltIn{}, fmt.Errorf("incomplete builtin catalog entry: %q", block)
	}
	return b, nil
}

func splitKeyValue(line string) (key, val string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), line[idx+1:], true
}

func parseTypeList(val string) []Type {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	var out []Type
	for _, part := range strings.Split(val, ",") {
		t, ok := primitiveTypeByName(strings.TrimSpace(part))
		if !ok {
			panic(fmt.Sprintf("unknown type in builtin catalog signature: %q", part))
		}
		out = append(out, t)
	}
	return out
}
