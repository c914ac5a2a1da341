package traffic

import "testing"

func TestAttachAndReadCategory(t *testing.T) {
	cases := []struct {
		name string
		cat  Category
		want string
	}{
		{"normal", Normal, "Normal"},
		{"malicious", Malicious, "Malicious"},
		{"interfering", Interfering, "Interfering"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Packet{Src: 1, Dst: 0, Size: 512}
			Attach(p, tc.cat)
			if got := ReadCategory(p); got != tc.cat {
				t.Fatalf("ReadCategory() = %v, want %v", got, tc.cat)
			}
			if got := ReadCategory(p).String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReadCategoryDefaultsToNormal(t *testing.T) {
	if got := ReadCategory(&Packet{}); got != Normal {
		t.Errorf("untagged packet read as %v, want Normal", got)
	}
	if got := ReadCategory(nil); got != Normal {
		t.Errorf("nil packet read as %v, want Normal", got)
	}
}

func TestTagSurvivesRepeatedReads(t *testing.T) {
	p := &Packet{Src: 3, Dst: 0, Size: 512}
	Attach(p, Malicious)
	for i := 0; i < 100; i++ {
		if got := ReadCategory(p); got != Malicious {
			t.Fatalf("read %d returned %v, want Malicious", i, got)
		}
	}
}
