package permission

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// BashCommand is one simple command extracted from a shell command line.
type BashCommand struct {
	Name   string   // command name (e.g. "rm", "git")
	Args   []string // arguments, including flags
	Redirs []string // rendered redirections (e.g. ">/tmp/out", "2>&1")

	// WritesFile is set when any redirection targets a file for
	// writing. Allow-list patterns cannot soundly exclude output
	// redirections on their own, so the decision layer denies these
	// commands outright.
	WritesFile bool
}

// String renders the command, redirections included, the way allow-list
// patterns see it.
func (c BashCommand) String() string {
	parts := make([]string, 0, 1+len(c.Args)+len(c.Redirs))
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	parts = append(parts, c.Redirs...)
	return strings.Join(parts, " ")
}

// ParseBashCommand splits a command line into its simple commands, so a
// pipeline or && chain is only allowed when every command in it is.
func ParseBashCommand(command string) ([]BashCommand, error) {
	parser := syntax.NewParser(
		syntax.Variant(syntax.LangBash),
		syntax.KeepComments(false),
	)

	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse command: %w", err)
	}

	var commands []BashCommand
	syntax.Walk(file, func(node syntax.Node) bool {
		if stmt, ok := node.(*syntax.Stmt); ok {
			if call, ok := stmt.Cmd.(*syntax.CallExpr); ok {
				if cmd := extractCommand(call, stmt.Redirs); cmd != nil {
					commands = append(commands, *cmd)
				}
			}
		}
		return true
	})

	return commands, nil
}

func extractCommand(call *syntax.CallExpr, redirs []*syntax.Redirect) *BashCommand {
	if len(call.Args) == 0 {
		return nil
	}

	cmd := &BashCommand{Name: wordToString(call.Args[0])}
	if cmd.Name == "" {
		return nil
	}
	for _, arg := range call.Args[1:] {
		cmd.Args = append(cmd.Args, wordToString(arg))
	}
	for _, r := range redirs {
		cmd.Redirs = append(cmd.Redirs, renderRedirect(r))
		if redirectWritesFile(r) {
			cmd.WritesFile = true
		}
	}
	return cmd
}

// renderRedirect flattens a redirection so it stays visible in the
// rendered command.
func renderRedirect(r *syntax.Redirect) string {
	prefix := ""
	if r.N != nil {
		prefix = r.N.Value
	}
	target := ""
	if r.Word != nil {
		target = wordToString(r.Word)
	}
	return prefix + r.Op.String() + target
}

// redirectWritesFile reports whether a redirection can create or modify
// a file. Input forms and duplications onto another descriptor (2>&1,
// >&2) cannot.
func redirectWritesFile(r *syntax.Redirect) bool {
	switch r.Op {
	case syntax.RdrOut, syntax.AppOut, syntax.RdrAll, syntax.AppAll, syntax.ClbOut, syntax.RdrInOut:
		return true
	case syntax.DplOut:
		// >&N duplicates a descriptor; >&word opens word as a file.
		target := ""
		if r.Word != nil {
			target = wordToString(r.Word)
		}
		if target == "" || target == "-" {
			return false
		}
		for _, ch := range target {
			if ch < '0' || ch > '9' {
				return true
			}
		}
		return false
	}
	return false
}

// wordToString flattens a shell word. Dynamic parts stay visible as
// placeholders so a pattern cannot be satisfied by hiding a command
// inside an expansion.
func wordToString(word *syntax.Word) string {
	var sb strings.Builder
	for _, part := range word.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, qp := range p.Parts {
				switch q := qp.(type) {
				case *syntax.Lit:
					sb.WriteString(q.Value)
				case *syntax.ParamExp:
					sb.WriteString("$" + q.Param.Value)
				case *syntax.CmdSubst:
					sb.WriteString("$()")
				}
			}
		case *syntax.ParamExp:
			sb.WriteString("$" + p.Param.Value)
		case *syntax.CmdSubst:
			sb.WriteString("$()")
		}
	}
	return sb.String()
}
