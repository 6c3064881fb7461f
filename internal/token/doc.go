// Package token defines the lexical token kinds consumed by the folding
// engine.
// Invariants:
//   - Token.Text is the source text the span covers, materialized at scan
//     time.
//   - Token.Span matches Text exactly (Start..End).
//   - Region markers (#region / #endregion) are classified at lex time and
//     never appear as plain Comment tokens.
//   - The lexer does not interpret here-string interiors beyond keeping
//     block comments inert there; tokens between a HereStringOpen and its
//     closer are produced naively and later masked by the folding engine.
package token
