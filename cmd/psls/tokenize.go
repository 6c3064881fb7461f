package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"psls/internal/driver"
	"psls/internal/observ"
	"psls/internal/token"
)

var tokenizeCmd = &cobra.Command{
	Use:          "tokenize [flags] file.ps1",
	Short:        "Dump the significant tokens of a script file",
	Long:         `Tokenize shows the tokens the folding engine sees: brackets, comments, region markers, and here-string delimiters`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type tokenReport struct {
	Kind        string `json:"kind"`
	Line        uint32 `json:"line"`
	Col         uint32 `json:"col"`
	Text        string `json:"text"`
	FirstOnLine bool   `json:"first_on_line,omitempty"`
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")

	timer := observ.NewTimer()
	scanPhase := timer.Begin("tokenize")
	result, err := driver.Tokenize(args[0])
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	timer.End(scanPhase, fmt.Sprintf("%d tokens", len(result.Tokens)))

	if timings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	switch format {
	case "pretty":
		return writeTokensPretty(cmd, result)
	case "json":
		return writeTokensJSON(os.Stdout, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeTokensPretty(cmd *cobra.Command, result *driver.TokenizeResult) error {
	colored := useColor(cmd, os.Stdout)
	posColor := color.New(color.FgGreen)
	bracketColor := color.New(color.FgCyan)
	commentColor := color.New(color.FgYellow)
	stringColor := color.New(color.FgMagenta)
	plainColor := color.New(color.FgWhite)
	if !colored {
		posColor.DisableColor()
		bracketColor.DisableColor()
		commentColor.DisableColor()
		stringColor.DisableColor()
		plainColor.DisableColor()
	}

	shown := 0
	for _, tok := range result.Tokens {
		if tok.Kind == token.Text {
			continue
		}
		kindColor := plainColor
		switch {
		case tok.IsBracket():
			kindColor = bracketColor
		case tok.IsComment():
			kindColor = commentColor
		case tok.Kind.IsHereStringOpen() || tok.Kind.IsHereStringClose():
			kindColor = stringColor
		}
		lc := result.File.LineCol(tok.Span.Start)
		pos := fmt.Sprintf("%d:%d", lc.Line, lc.Col)
		fmt.Fprintf(os.Stdout, "%s %s %s\n",
			posColor.Sprintf("%8s", pos),
			kindColor.Sprintf("%-22s", tok.Kind),
			strconv.Quote(tok.Text))
		shown++
	}
	fmt.Fprintf(os.Stdout, "%d tokens across %d lines\n", shown, result.File.LineCount())
	return nil
}

func writeTokensJSON(out *os.File, result *driver.TokenizeResult) error {
	reports := make([]tokenReport, 0, len(result.Tokens))
	for _, tok := range result.Tokens {
		lc := result.File.LineCol(tok.Span.Start)
		reports = append(reports, tokenReport{
			Kind:        tok.Kind.String(),
			Line:        lc.Line,
			Col:         lc.Col,
			Text:        tok.Text,
			FirstOnLine: tok.FirstOnLine,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}
