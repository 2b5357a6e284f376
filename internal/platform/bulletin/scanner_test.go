package bulletin

import "testing"

func TestScan_HeadingsAndFields(t *testing.T) {
	text := "NAIROBI REGION\n" +
		"PARTS OF NAIROBI COUNTY\n" +
		"AREA: Dandora Phase 3, 4 & 5\n" +
		"DATE: MONDAY 05.01.2026\n" +
		"TIME: 9.00 A.M. - 5.00 P.M.\n" +
		"Location One, Location Two ENDOFLOCATIONS\n"

	tokens, err := Scan(text)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	wantTypes := []TokenType{
		TokenRegion, TokenCounty, TokenArea, TokenDate, TokenTime,
		TokenIdentifier, TokenComma, TokenIdentifier, TokenEndOfAreaLocations,
		TokenEOF,
	}
	if len(tokens) != len(wantTypes) {
		t.Fatalf("Scan() produced %d tokens, want %d: %+v", len(tokens), len(wantTypes), tokens)
	}
	for i, want := range wantTypes {
		if tokens[i].Type != want {
			t.Errorf("token[%d].Type = %s, want %s", i, tokens[i].Type, want)
		}
	}

	dateTok := tokens[3]
	if dateTok.Day != 5 || dateTok.Month != 1 || dateTok.Year != 2026 {
		t.Errorf("date token = %+v, want day=5 month=1 year=2026", dateTok)
	}

	timeTok := tokens[4]
	if timeTok.StartRaw != "9.00 A.M." || timeTok.EndRaw != "5.00 P.M." {
		t.Errorf("time token = %+v", timeTok)
	}
}

func TestScan_MalformedDateLineErrors(t *testing.T) {
	_, err := Scan("DATE: not-a-date\n")
	if err == nil {
		t.Fatal("expected error for malformed DATE line")
	}
	if _, ok := err.(*ErrValidation); !ok {
		t.Fatalf("expected *ErrValidation, got %T", err)
	}
}

func TestScan_MalformedTimeLineErrors(t *testing.T) {
	_, err := Scan("TIME: nonsense\n")
	if err == nil {
		t.Fatal("expected error for malformed TIME line")
	}
}

func TestScanLocationLine_SplitsOnCommaAndDetectsSentinel(t *testing.T) {
	tokens := scanLocationLine("Moi Ave, Tom Mboya St ENDOFLOCATIONS")
	want := []TokenType{TokenIdentifier, TokenComma, TokenIdentifier, TokenEndOfAreaLocations}
	if len(tokens) != len(want) {
		t.Fatalf("scanLocationLine() = %+v, want types %v", tokens, want)
	}
	if tokens[0].Text != "Moi Avenue" {
		t.Errorf("expected acronym expansion, got %q", tokens[0].Text)
	}
}
