package folding

import (
	"reflect"
	"strings"
	"testing"

	"psls/internal/lexer"
	"psls/internal/source"
	"psls/internal/token"
)

func computeSrc(t *testing.T, src string, opts Options) []Range {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ps1", []byte(src))
	f := fs.Get(id)
	ranges, err := Compute(f, lexer.Scan(f, lexer.Options{}), opts)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	return ranges
}

func hasRange(ranges []Range, startLine, endLine uint32, kind string) bool {
	for _, r := range ranges {
		if r.StartLine == startLine && r.EndLine == endLine && r.Kind == kind {
			return true
		}
	}
	return false
}

func TestSharedCloserDisambiguation(t *testing.T) {
	src := strings.Join([]string{
		"foreach ($1 in $2) {",
		"    $x = @{",
		"        'a' = 'b'",
		"    }",
		"}",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	if len(ranges) != 2 {
		t.Fatalf("expected 2 generic ranges, got %d: %+v", len(ranges), ranges)
	}
	if !hasRange(ranges, 0, 4, "") {
		t.Errorf("missing outer brace fold: %+v", ranges)
	}
	if !hasRange(ranges, 1, 3, "") {
		t.Errorf("missing inner hashtable fold: %+v", ranges)
	}
}

func TestBracketCharacterOffsets(t *testing.T) {
	src := strings.Join([]string{
		"if ($x) {",
		"    y",
		"}",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	want := Range{StartLine: 0, StartCharacter: 9, EndLine: 2, EndCharacter: 0}
	if len(ranges) != 1 || ranges[0] != want {
		t.Fatalf("expected %+v, got %+v", want, ranges)
	}
}

func TestSingleLineBracesDoNotFold(t *testing.T) {
	ranges := computeSrc(t, "if ($x) { y } @( 1, 2 )", Options{IncludeLastLine: true})
	if len(ranges) != 0 {
		t.Fatalf("expected no ranges for single-line blocks, got %+v", ranges)
	}
}

func TestUnmatchedBracketsFoldNothing(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unterminated opens", "{\n(\n@{\n"},
		{"stray closers", "}\n)\n]\n"},
		{"close then open", "}\n{\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if ranges := computeSrc(t, tc.src, Options{IncludeLastLine: true}); len(ranges) != 0 {
				t.Fatalf("expected no ranges, got %+v", ranges)
			}
		})
	}
}

func TestRegionEndToEnd(t *testing.T) {
	src := strings.Join([]string{
		"#region A",
		"x = 1",
		"#endregion",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	if len(ranges) != 1 {
		t.Fatalf("expected exactly 1 range, got %+v", ranges)
	}
	got := ranges[0]
	want := Range{StartLine: 0, StartCharacter: 0, EndLine: 2, EndCharacter: 10, Kind: KindRegion}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestDanglingEndRegion(t *testing.T) {
	if ranges := computeSrc(t, "x = 1\n#endregion\ny = 2\n", Options{IncludeLastLine: true}); len(ranges) != 0 {
		t.Fatalf("expected no ranges for dangling #endregion, got %+v", ranges)
	}
}

func TestExtraEndRegionAfterMatchedPair(t *testing.T) {
	src := strings.Join([]string{
		"#region first",
		"x = 1",
		"#endregion",
		"#endregion extra",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	if len(ranges) != 1 {
		t.Fatalf("expected exactly 1 range, got %+v", ranges)
	}
	if !hasRange(ranges, 0, 2, KindRegion) {
		t.Fatalf("expected the matched pair to fold, got %+v", ranges)
	}
}

func TestNestedRegions(t *testing.T) {
	src := strings.Join([]string{
		"#region outer",
		"#region inner",
		"x",
		"#endregion",
		"#endregion",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	if len(ranges) != 2 {
		t.Fatalf("expected 2 region ranges, got %+v", ranges)
	}
	if !hasRange(ranges, 0, 4, KindRegion) || !hasRange(ranges, 1, 3, KindRegion) {
		t.Fatalf("expected nested region pairs, got %+v", ranges)
	}
}

func TestUnmatchedRegionOpenFoldsNothing(t *testing.T) {
	if ranges := computeSrc(t, "#region lonely\nx = 1\n", Options{IncludeLastLine: true}); len(ranges) != 0 {
		t.Fatalf("expected no ranges, got %+v", ranges)
	}
}

func TestRegionMarkersCaseInsensitive(t *testing.T) {
	src := strings.Join([]string{
		"#Region mixed",
		"x",
		"#ENDREGION",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	if !hasRange(ranges, 0, 2, KindRegion) {
		t.Fatalf("expected case-insensitive markers to fold, got %+v", ranges)
	}
}

func TestCommentRunThreshold(t *testing.T) {
	t.Run("two lines fold", func(t *testing.T) {
		ranges := computeSrc(t, "# one\n# two\nx = 1\n", Options{IncludeLastLine: true})
		if len(ranges) != 1 || !hasRange(ranges, 0, 1, KindComment) {
			t.Fatalf("expected one comment fold over lines 0-1, got %+v", ranges)
		}
	})
	t.Run("single line does not fold", func(t *testing.T) {
		if ranges := computeSrc(t, "# alone\nx = 1\n", Options{IncludeLastLine: true}); len(ranges) != 0 {
			t.Fatalf("expected no ranges, got %+v", ranges)
		}
	})
	t.Run("region marker breaks a run", func(t *testing.T) {
		src := strings.Join([]string{
			"# one",
			"# two",
			"#region r",
			"# three",
			"# four",
		}, "\n")
		ranges := computeSrc(t, src, Options{IncludeLastLine: true})
		if !hasRange(ranges, 0, 1, KindComment) {
			t.Errorf("missing first run fold: %+v", ranges)
		}
		if !hasRange(ranges, 3, 4, KindComment) {
			t.Errorf("missing second run fold: %+v", ranges)
		}
		for _, r := range ranges {
			if r.Kind == KindComment && r.StartLine <= 2 && r.EndLine >= 2 {
				t.Errorf("run folded across a region marker: %+v", r)
			}
		}
	})
	t.Run("blank line breaks a run", func(t *testing.T) {
		ranges := computeSrc(t, "# one\n\n# two\n", Options{IncludeLastLine: true})
		if len(ranges) != 0 {
			t.Fatalf("expected no ranges, got %+v", ranges)
		}
	})
	t.Run("trailing comment does not join a run", func(t *testing.T) {
		src := strings.Join([]string{
			"# one",
			"x = 1 # trailing",
			"# two",
		}, "\n")
		if ranges := computeSrc(t, src, Options{IncludeLastLine: true}); len(ranges) != 0 {
			t.Fatalf("expected no ranges, got %+v", ranges)
		}
	})
}

func TestBlockCommentFolds(t *testing.T) {
	src := strings.Join([]string{
		"<#",
		".SYNOPSIS",
		"Does things { with } brackets",
		"#>",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	if len(ranges) != 1 || !hasRange(ranges, 0, 3, KindComment) {
		t.Fatalf("expected one comment fold over the block, got %+v", ranges)
	}
}

func TestSingleLineBlockCommentDoesNotFold(t *testing.T) {
	if ranges := computeSrc(t, "<# compact #>\nx\n", Options{IncludeLastLine: true}); len(ranges) != 0 {
		t.Fatalf("expected no ranges, got %+v", ranges)
	}
}

func TestUnterminatedBlockCommentDropped(t *testing.T) {
	if ranges := computeSrc(t, "<#\nnever closed\n", Options{IncludeLastLine: true}); len(ranges) != 0 {
		t.Fatalf("expected no ranges, got %+v", ranges)
	}
}

func TestHereStringFoldsInteriorOnly(t *testing.T) {
	src := strings.Join([]string{
		"$x = @\"",
		"line one",
		"line two",
		"\"@",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	if len(ranges) != 1 {
		t.Fatalf("expected one here-string fold, got %+v", ranges)
	}
	got := ranges[0]
	if got.Kind != "" {
		t.Errorf("here-string fold must be generic, got kind %q", got.Kind)
	}
	// Starts just past @" on line 0, ends just before "@ — i.e. at the end
	// of the last interior line.
	want := Range{StartLine: 0, StartCharacter: 7, EndLine: 2, EndCharacter: 8}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestHereStringMasksInterior(t *testing.T) {
	src := strings.Join([]string{
		"$x = @'",
		"{ ( [ unbalanced",
		"#region not a marker",
		"# not",
		"# a run",
		"'@",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	if len(ranges) != 1 {
		t.Fatalf("expected only the here-string fold, got %+v", ranges)
	}
	if ranges[0].Kind != "" {
		t.Fatalf("expected a generic fold, got %+v", ranges)
	}
}

func TestUnterminatedHereStringFoldsNothing(t *testing.T) {
	src := strings.Join([]string{
		"$x = @\"",
		"{ still inside",
		"# even this",
	}, "\n")
	if ranges := computeSrc(t, src, Options{IncludeLastLine: true}); len(ranges) != 0 {
		t.Fatalf("expected no ranges, got %+v", ranges)
	}
}

func TestHereStringQuoteKindsDoNotCrossMatch(t *testing.T) {
	src := strings.Join([]string{
		"$x = @\"",
		"'@",
		"\"@",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	// '@ cannot close @" — the literal runs to "@ on line 2.
	if len(ranges) != 1 {
		t.Fatalf("expected one fold, got %+v", ranges)
	}
	if ranges[0].EndLine != 1 {
		t.Fatalf("expected fold ending on the last interior line, got %+v", ranges)
	}
}

func TestBlockCommentOpenInsideHereString(t *testing.T) {
	src := strings.Join([]string{
		"$x = @\"",
		"a <# b",
		"\"@",
		"$y = (",
		"    1",
		")",
	}, "\n")
	ranges := computeSrc(t, src, Options{IncludeLastLine: true})
	// The <# is interior prose: it must not start a comment scan that eats
	// the "@ closer, and code after the literal keeps folding.
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %+v", ranges)
	}
	if want := (Range{StartLine: 0, StartCharacter: 7, EndLine: 1, EndCharacter: 6}); ranges[0] != want {
		t.Errorf("here-string fold: expected %+v, got %+v", want, ranges[0])
	}
	if want := (Range{StartLine: 3, StartCharacter: 6, EndLine: 5, EndCharacter: 0}); ranges[1] != want {
		t.Errorf("paren fold after literal: expected %+v, got %+v", want, ranges[1])
	}
}

func TestEmptyDocument(t *testing.T) {
	for _, src := range []string{"", "   \n\t\n"} {
		ranges := computeSrc(t, src, Options{IncludeLastLine: true})
		if len(ranges) != 0 {
			t.Fatalf("expected empty result for %q, got %+v", src, ranges)
		}
	}
}

func TestDeterminism(t *testing.T) {
	src := strings.Join([]string{
		"#region top",
		"function Get-Thing {",
		"    # doc one",
		"    # doc two",
		"    $h = @{",
		"        a = 1",
		"    }",
		"}",
		"#endregion",
	}, "\n")
	first := computeSrc(t, src, Options{IncludeLastLine: true})
	second := computeSrc(t, src, Options{IncludeLastLine: true})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input produced different output:\n%+v\n%+v", first, second)
	}
	if len(first) == 0 {
		t.Fatal("expected a non-trivial document to fold")
	}
}

func TestLineEndingIndependence(t *testing.T) {
	lines := []string{
		"#region A",
		"if ($x) {",
		"    y",
		"}",
		"#endregion",
	}
	lf := computeSrc(t, strings.Join(lines, "\n"), Options{IncludeLastLine: true})
	crlf := computeSrc(t, strings.Join(lines, "\r\n"), Options{IncludeLastLine: true})
	if !reflect.DeepEqual(lf, crlf) {
		t.Fatalf("line endings changed output:\nLF:   %+v\nCRLF: %+v", lf, crlf)
	}
}

func TestIncludeLastLineAdjustment(t *testing.T) {
	src := strings.Join([]string{
		"#region A",
		"x = 1",
		"#endregion",
	}, "\n")
	with := computeSrc(t, src, Options{IncludeLastLine: true})
	without := computeSrc(t, src, Options{IncludeLastLine: false})
	if len(with) != 1 || len(without) != 1 {
		t.Fatalf("expected one range each, got %+v / %+v", with, without)
	}
	if without[0].EndLine != with[0].EndLine-1 {
		t.Errorf("expected EndLine shifted by one, got %+v vs %+v", without[0], with[0])
	}
	if without[0].EndCharacter != with[0].EndCharacter {
		t.Errorf("EndCharacter must not be adjusted: %+v vs %+v", without[0], with[0])
	}
}

func TestMatcherOrderIdempotence(t *testing.T) {
	src := strings.Join([]string{
		"#region A",
		"if ($x) {",
		"    y",
		"}",
		"#endregion",
	}, "\n")
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ps1", []byte(src))
	f := fs.Get(id)
	toks := lexer.Scan(f, lexer.Options{})
	mask := buildHereStringMask(toks)

	forward := append(matchBrackets(f, toks, mask), matchRegions(f, toks, mask)...)
	backward := append(matchRegions(f, toks, mask), matchBrackets(f, toks, mask)...)
	if !reflect.DeepEqual(dedupeAndSort(forward), dedupeAndSort(backward)) {
		t.Fatalf("matcher order changed output:\n%+v\n%+v",
			dedupeAndSort(forward), dedupeAndSort(backward))
	}
}

func TestDedupePrefersSemanticKind(t *testing.T) {
	merged := dedupeAndSort([]Range{
		{StartLine: 0, StartCharacter: 9, EndLine: 4, EndCharacter: 1},
		{StartLine: 0, StartCharacter: 0, EndLine: 4, EndCharacter: 10, Kind: KindRegion},
	})
	if len(merged) != 1 {
		t.Fatalf("expected ranges merged, got %+v", merged)
	}
	want := Range{StartLine: 0, StartCharacter: 0, EndLine: 4, EndCharacter: 10, Kind: KindRegion}
	if merged[0] != want {
		t.Fatalf("expected %+v, got %+v", want, merged[0])
	}
}

func TestSortOrder(t *testing.T) {
	sorted := dedupeAndSort([]Range{
		{StartLine: 5, StartCharacter: 2, EndLine: 9},
		{StartLine: 1, StartCharacter: 7, EndLine: 3},
		{StartLine: 1, StartCharacter: 0, EndLine: 8},
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.StartLine > cur.StartLine ||
			prev.StartLine == cur.StartLine && prev.StartCharacter > cur.StartCharacter {
			t.Fatalf("unsorted output: %+v", sorted)
		}
	}
}

func TestMalformedTokenStream(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ps1", []byte("{}"))
	f := fs.Get(id)

	bad := []token.Token{{
		Kind: token.LBrace,
		Span: source.Span{File: f.ID, Start: 10, End: 99},
	}}
	if _, err := Compute(f, bad, Options{}); err == nil {
		t.Fatal("expected an error for out-of-bounds span")
	}

	wrongFile := []token.Token{{
		Kind: token.LBrace,
		Span: source.Span{File: f.ID + 1, Start: 0, End: 1},
	}}
	if _, err := Compute(f, wrongFile, Options{}); err == nil {
		t.Fatal("expected an error for a foreign file ID")
	}
}
