// Package diag implements the shared diagnostic sink threaded through every
// compiler phase: source manager, lexer, parser, and typer all append to the
// same sink rather than returning Go errors for anything a user can trigger.
package diag

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StagePreprocessor Stage = "preprocessor"
	StageLexer        Stage = "lexer"
	StageParser       Stage = "parser"
	StageTyper        Stage = "typer"
	StageInternal     Stage = "internal"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic, one per spec error sub-case.
type Code string

const (
	// Preprocessor errors.
	CodeIncludeCycle    Code = "PP_INCLUDE_CYCLE"
	CodeIncludeNotFound Code = "PP_INCLUDE_NOT_FOUND"
	CodeBadDirective    Code = "PP_BAD_DIRECTIVE"
	CodeSourceIO        Code = "PP_SOURCE_IO"

	// Lexical errors.
	CodeLexUnterminatedComment Code = "LEX_UNTERMINATED_COMMENT"
	CodeLexUnterminatedString  Code = "LEX_UNTERMINATED_STRING"
	CodeLexUnterminatedChar    Code = "LEX_UNTERMINATED_CHAR"
	CodeLexBadEscape           Code = "LEX_BAD_ESCAPE"
	CodeLexIllegalChar         Code = "LEX_ILLEGAL_CHAR"

	// Syntactic errors.
	CodeParseUnexpectedToken Code = "PARSE_UNEXPECTED_TOKEN"
	CodeParseMissingDelim    Code = "PARSE_MISSING_DELIM"

	// Name resolution errors.
	CodeNameUndefinedIdent      Code = "NAME_UNDEFINED_IDENT"
	CodeNameUndefinedType       Code = "NAME_UNDEFINED_TYPE"
	CodeNameUndefinedConstr     Code = "NAME_UNDEFINED_CONSTR"
	CodeNameDuplicateDef        Code = "NAME_DUPLICATE_DEF"
	CodeNameConstrArityMismatch Code = "NAME_CONSTR_ARITY_MISMATCH"

	// Type errors.
	CodeTypeUnifyFailure  Code = "TYPE_UNIFY_FAILURE"
	CodeTypeOccursCheck   Code = "TYPE_OCCURS_CHECK"
	CodeTypeOperatorArity Code = "TYPE_OPERATOR_ARITY"

	// Internal invariant violations (kind 7, fatal; shares the Code
	// namespace for consistency even though it never reaches the sink).
	CodeInternalInvariant Code = "INTERNAL_INVARIANT_VIOLATION"

	// CodeUnimplementedPhase is a SeverityNote, not a failure: it marks a
	// compilation step this frontend accepts (to satisfy CLI ordering
	// rules) but does not implement, e.g. --ir/--asm.
	CodeUnimplementedPhase Code = "UNIMPLEMENTED_PHASE"
)

// Span represents a location in source code. FileID indexes the filename
// registry owned by the source manager / Sink rather than carrying the
// filename inline, per the data model's file_id indirection.
type Span struct {
	FileID int
	Line   int
	Column int
	Start  int
	End    int
}

// IsValid reports whether the span carries real position information.
func (s Span) IsValid() bool { return s.Line > 0 && s.Column > 0 }

// Diagnostic is a compiler diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	Notes    []string
}
