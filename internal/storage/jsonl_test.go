package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"tokenLauncher/internal/model"
)

func TestJsonlReconcilerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "unpersisted.jsonl")
	sink := NewJsonlReconciler(path)

	first := model.UnpersistedLaunch{
		Record: model.TokenRecord{
			Name:         "Nani",
			Symbol:       "NNF",
			TokenAddress: model.OptionalString("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"),
			ImageURL:     "https://x/y.png",
		},
		CoinID: "518549371164290052917428446279580862098069531373",
		TxHash: "0xabc",
		Error:  "connection refused",
	}
	second := first
	second.Record.Symbol = "NNG"

	if err := sink.PutUnpersisted([]model.UnpersistedLaunch{first}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := sink.PutUnpersisted([]model.UnpersistedLaunch{second}); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if err := sink.PutUnpersisted(nil); err != nil {
		t.Fatalf("empty write: %v", err)
	}

	entries, err := ReadUnpersisted(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Record.Symbol != "NNF" || entries[1].Record.Symbol != "NNG" {
		t.Fatalf("entries out of order: %+v", entries)
	}
	if *entries[0].Record.TokenAddress != *first.Record.TokenAddress {
		t.Fatalf("token address lost")
	}
}

func TestValidateRecord(t *testing.T) {
	cases := []struct {
		name   string
		record *model.TokenRecord
		ok     bool
	}{
		{"nil", nil, false},
		{"missing symbol", &model.TokenRecord{Name: "Nani", ImageURL: "x"}, false},
		{"missing image", &model.TokenRecord{Name: "Nani", Symbol: "NNF"}, false},
		{"valid", &model.TokenRecord{Name: "Nani", Symbol: "NNF", ImageURL: "x"}, true},
	}
	for _, tc := range cases {
		err := ValidateRecord(tc.record)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}
