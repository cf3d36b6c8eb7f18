package pinning

import (
	"testing"

	"tokenLauncher/internal/model"
)

func TestValidateCID(t *testing.T) {
	valid := []string{
		"QmbHoD9UJ1L2xfv5oFvhANsWzf1tMzN2Lr8YrPDACXt1aE",
		"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		"bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
	}
	for _, cid := range valid {
		if err := ValidateCID(cid); err != nil {
			t.Fatalf("expected %s to be valid: %v", cid, err)
		}
	}

	invalid := []string{
		"",
		"Qm123",
		"QmbHoD9UJ1L2xfv5oFvhANsWzf1tMzN2Lr8YrPDACXt10l",
		"bafyBEIG",
		"zdj7WWeQ43G6JJvLWQWZpyHuAMq6uYWRjkBXFad11vE2LHhQ7",
	}
	for _, cid := range invalid {
		if err := ValidateCID(cid); err == nil {
			t.Fatalf("expected %q to be rejected", cid)
		}
	}
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef(string(model.PlaceholderImage))
	if err != nil {
		t.Fatalf("parse placeholder: %v", err)
	}
	if ref != model.PlaceholderImage {
		t.Fatalf("ref mismatch: %s", ref)
	}
	if _, err := ParseRef("https://ipfs.io/ipfs/QmbHoD9UJ1L2xfv5oFvhANsWzf1tMzN2Lr8YrPDACXt1aE"); err == nil {
		t.Fatalf("expected error for gateway url")
	}
}
