package model

import (
	"encoding/json"
	"testing"
)

func TestTokenMetadataDefaultImage(t *testing.T) {
	meta := TokenMetadata{Name: "Nani", Symbol: "NNF", Description: "NANIFUN Token"}

	got := meta.WithDefaultImage()
	if got.Image != PlaceholderImage {
		t.Fatalf("image mismatch: %q", got.Image)
	}
	if meta.Image != "" {
		t.Fatalf("original metadata mutated")
	}

	meta.Image = "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	if got := meta.WithDefaultImage(); got.Image != meta.Image {
		t.Fatalf("explicit image replaced: %q", got.Image)
	}
}

func TestTokenMetadataJSONFieldOrder(t *testing.T) {
	meta := TokenMetadata{
		Name:        "Nani",
		Symbol:      "NNF",
		Description: "d",
		Image:       PlaceholderImage,
	}

	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"name":"Nani","symbol":"NNF","description":"d","image":"ipfs://QmbHoD9UJ1L2xfv5oFvhANsWzf1tMzN2Lr8YrPDACXt1aE"}`
	if string(data) != want {
		t.Fatalf("json mismatch:\n got %s\nwant %s", data, want)
	}
}

func TestContentRefCID(t *testing.T) {
	if cid := PlaceholderImage.CID(); cid != "QmbHoD9UJ1L2xfv5oFvhANsWzf1tMzN2Lr8YrPDACXt1aE" {
		t.Fatalf("cid mismatch: %s", cid)
	}
}

func TestTokenRecordJSONNullables(t *testing.T) {
	record := TokenRecord{
		ID:          7,
		Name:        "Nani",
		Symbol:      "NNF",
		Description: OptionalString(""),
		Website:     OptionalString("https://nanifun.com"),
		ImageURL:    string(PlaceholderImage),
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded["description"] != nil {
		t.Fatalf("description should be null")
	}
	if decoded["website"] != "https://nanifun.com" {
		t.Fatalf("website mismatch: %v", decoded["website"])
	}
	if _, ok := decoded["token_address"]; !ok {
		t.Fatalf("token_address should be present")
	}
}
