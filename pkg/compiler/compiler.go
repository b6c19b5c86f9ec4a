package compiler

import (
	"go.uber.org/zap"

	"github.com/ha1tch/sxc/pkg/lexer"
)

// Options configures a single Compile call. Log may be nil.
type Options struct {
	Log *zap.SugaredLogger
}

// Compile runs the full pipeline over source and returns the emitted TI-84
// Plus BASIC program text, plus the Manager built along the way (handy for
// callers that want to inspect the AST, e.g. the sxc `ast` subcommand and
// the compile command's -d/-D dump). Stage order is fixed and load-bearing: each stage assumes
// the previous one has already populated the fields it reads. Grounded on
// original_source's main.rs driver, which calls the equivalent Rust stages
// in the same order.
func Compile(source string, opts Options) (string, *Manager, error) {
	m := NewManager(source, opts.Log)
	log := m.Log().With("sourceBytes", len(source))

	builtins, err := loadBuiltins(builtinsSource)
	if err != nil {
		log.Errorw("loadBuiltins", "err", err)
		return "", m, err
	}
	m.Builtins = builtins
	log.Debugw("loadBuiltins", "builtins", len(builtins))

	toks := lexer.Tokenize(source)
	log.Debugw("tokenize", "tokens", len(toks))
	if err := Parse(m, toks); err != nil {
		log.Errorw("parse", "err", diagText(err))
		return "", m, err
	}
	log.Infow("parse", "nodes", len(m.Nodes), "topLevel", len(m.TopLevel))

	if err := initializeTypeInfo(m); err != nil {
		log.Errorw("initializeTypeInfo", "err", diagText(err))
		return "", m, err
	}
	log.Debugw("initializeTypeInfo", "nodes", len(m.Nodes))

	if err := createAllScopes(m); err != nil {
		log.Errorw("createAllScopes", "err", diagText(err))
		return "", m, err
	}
	log.Debugw("createAllScopes", "scopes", len(m.Scopes))

	if err := typeCheckAll(m); err != nil {
		log.Errorw("typeCheckAll", "err", diagText(err))
		return "", m, err
	}
	log.Infow("typeCheckAll", "nodes", len(m.Nodes), "funcs", len(m.Funcs), "structs", len(m.Structs))

	if err := allocateVariables(m); err != nil {
		log.Errorw("allocateVariables", "err", diagText(err))
		return "", m, err
	}
	log.Debugw("allocateVariables", "nodes", len(m.Nodes))

	out, err := Emit(m)
	if err != nil {
		log.Errorw("emit", "err", diagText(err))
		return "", m, err
	}
	log.Infow("emit", "outputBytes", len(out))
	return out, m, nil
}

// diagText extracts the plain diagnostic message from a pipeline error for
// logging, without the caret-underlined source readout (that belongs on the
// CLI's stderr, not in a structured log field).
func diagText(err error) string {
	if d, ok := err.(*Diag); ok {
		return d.Error()
	}
	return err.Error()
}
