package analyzer

import (
	"reflect"
	"testing"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("Press the MENU button, then hold RESET for 5 seconds.")
	expected := []string{"press", "menu", "button", "then", "hold", "reset", "seconds"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("expected %v, got %v", expected, tokens)
	}
}

func TestTokenizer_StopwordRemoval(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("the quick brown fox")
	for _, token := range tokens {
		if token == "the" {
			t.Errorf("stopword 'the' should be removed, got %v", tokens)
		}
	}
}

func TestTokenizer_ShortWordRemoval(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("a I x 7")
	if len(tokens) != 0 {
		t.Errorf("expected no tokens, got %v", tokens)
	}
}

func TestTokenizer_Unicode(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("température réglée")
	expected := []string{"température", "réglée"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("expected %v, got %v", expected, tokens)
	}
}

func TestTokenizer_Features(t *testing.T) {
	tok := NewTokenizer()

	features := tok.Features("reset the thermostat schedule")
	expected := []string{"reset", "thermostat", "schedule", "reset_thermostat", "thermostat_schedule"}
	if !reflect.DeepEqual(features, expected) {
		t.Errorf("expected %v, got %v", expected, features)
	}

	if got := tok.Features("reset"); !reflect.DeepEqual(got, []string{"reset"}) {
		t.Errorf("single word should have no bigrams, got %v", got)
	}
}
