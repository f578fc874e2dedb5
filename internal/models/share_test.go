package models

import (
	"encoding/json"
	"strings"
	"testing"

	lzstring "github.com/daku10/go-lz-string"
)

func TestShareTokenRoundTrip(t *testing.T) {
	world := DefaultWorld()
	token, err := EncodeShareToken(world)
	if err != nil {
		t.Fatalf("EncodeShareToken: %v", err)
	}
	if strings.ContainsAny(token, "&?# ") {
		t.Errorf("Token is not URL safe: %q", token)
	}
	got := DecodeShareToken(token)
	if got == nil {
		t.Fatal("Expected a world")
	}
	if got.Title != world.Title || len(got.Characters) != len(world.Characters) {
		t.Errorf("World did not round trip: %s, %d characters", got.Title, len(got.Characters))
	}
	if got.Characters[2].Locked != true {
		t.Errorf("Locked flag lost")
	}
}

func TestDecodeShareTokenFailsClosed(t *testing.T) {
	compress := func(s string) string {
		token, err := lzstring.CompressToEncodedURIComponent(s)
		if err != nil {
			t.Fatal(err)
		}
		return token
	}
	noChars, _ := json.Marshal(WorldConfig{Title: "空"})
	noTitle, _ := json.Marshal(WorldConfig{Characters: []Character{{ID: "a", Name: "甲"}}})

	for name, token := range map[string]string{
		"empty":         "",
		"garbage":       "%%%not-a-token",
		"not json":      compress("hello"),
		"no characters": compress(string(noChars)),
		"no title":      compress(string(noTitle)),
	} {
		if got := DecodeShareToken(token); got != nil {
			t.Errorf("%s: expected nil, got %+v", name, got)
		}
	}
}

func TestShareURL(t *testing.T) {
	world := DefaultWorld()
	link, err := BuildShareURL("https://example.com/play?old=1#top", world)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(link, "old=1") || !strings.Contains(link, "?w=") {
		t.Errorf("Unexpected link %s", link)
	}
	got := SharedConfigFromURL(link)
	if got == nil || got.Title != world.Title {
		t.Errorf("Expected world from link, got %+v", got)
	}
	if SharedConfigFromURL("https://example.com/play") != nil {
		t.Errorf("Expected nil for link without token")
	}
}
