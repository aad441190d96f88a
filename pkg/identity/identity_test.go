package identity

import (
	"encoding/json"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		bank    string
		account string
		want    ID
	}{
		{"plain", "BCA", "1", ID{Bank: "BCA", Account: "1"}},
		{"normalized", "  bca ", " 12a ", ID{Bank: "BCA", Account: "12A"}},
		{"empty account", "BCA", "", Cash},
		{"empty bank", "", "123", Cash},
		{"dash", "-", "123", Cash},
		{"empty marker", "MANDIRI", "empty", Cash},
		{"nan bank", "nan", "123", Cash},
		{"nan account", "BNI", "NaN", Cash},
		{"whitespace only", "   ", "123", Cash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.bank, tt.account); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %v, want %v", tt.bank, tt.account, got, tt.want)
			}
		})
	}
}

func TestResolveEntity(t *testing.T) {
	if got := ResolveEntity(" pt maju "); got != (ID{Account: "PT MAJU"}) {
		t.Errorf("ResolveEntity() = %v", got)
	}
	for _, in := range []string{"", "-", "EMPTY", "nan"} {
		if got := ResolveEntity(in); got != EntityCash {
			t.Errorf("ResolveEntity(%q) = %v, want %v", in, got, EntityCash)
		}
	}
}

func TestSentinelCollapse(t *testing.T) {
	// Two rows from different owners with missing counterparts share the sentinel.
	a := Resolve("", "")
	b := Resolve("BRI", "-")
	if a != b || !a.IsCash() {
		t.Errorf("sentinels differ: %v vs %v", a, b)
	}
	if Cash.String() != "CASH|KAS_BESAR" {
		t.Errorf("Cash.String() = %q", Cash.String())
	}
	if EntityCash.String() != "KAS BESAR" {
		t.Errorf("EntityCash.String() = %q", EntityCash.String())
	}
}

func TestSeparatorCollision(t *testing.T) {
	// "A|B" + "C" and "A" + "B|C" print the same but are different identities.
	x := Resolve("A|B", "C")
	y := Resolve("A", "B|C")
	if x == y {
		t.Fatal("IDs with separator in fields must not be equal")
	}
	if x.String() != y.String() {
		t.Errorf("printed forms expected to match: %q vs %q", x, y)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{"BCA|1", ID{Bank: "BCA", Account: "1"}},
		{"bca|1", ID{Bank: "BCA", Account: "1"}},
		{"CASH|KAS_BESAR", Cash},
		{"KAS BESAR", EntityCash},
		{"PT Maju", ID{Account: "PT MAJU"}},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestPrefix(t *testing.T) {
	if p := Resolve("BCA", "1").Prefix(); p != "BCA" {
		t.Errorf("Prefix() = %q, want BCA", p)
	}
	if p := ResolveEntity("PT MAJU").Prefix(); p != "PT MAJU" {
		t.Errorf("Prefix() = %q, want PT MAJU", p)
	}
}

func TestCompare(t *testing.T) {
	a := ID{Bank: "BCA", Account: "2"}
	b := ID{Bank: "BCA", Account: "10"}
	c := ID{Bank: "BNI", Account: "1"}
	if Compare(a, b) <= 0 {
		t.Error("expected BCA|2 > BCA|10 lexically")
	}
	if Compare(a, c) >= 0 {
		t.Error("expected BCA < BNI")
	}
	if Compare(a, a) != 0 {
		t.Error("expected equal")
	}
}

func TestParseMode(t *testing.T) {
	if m, ok := ParseMode("entity"); !ok || m != ModeEntity {
		t.Errorf("ParseMode(entity) = %v, %v", m, ok)
	}
	if m, ok := ParseMode(""); !ok || m != ModeAccount {
		t.Errorf("ParseMode(\"\") = %v, %v", m, ok)
	}
	if _, ok := ParseMode("bank"); ok {
		t.Error("ParseMode(bank) should fail")
	}
	if ModeEntity.Cash() != EntityCash || ModeAccount.Cash() != Cash {
		t.Error("Mode.Cash() mismatch")
	}
}

func TestTextMarshalling(t *testing.T) {
	in := map[ID]float64{Resolve("BCA", "1"): 5}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"BCA|1":5}` {
		t.Errorf("Marshal = %s", data)
	}
	var out map[ID]float64
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out[Resolve("BCA", "1")] != 5 {
		t.Errorf("round trip lost key: %v", out)
	}
}
