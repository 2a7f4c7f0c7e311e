package variant

import (
	"errors"
	"strings"
	"testing"

	"github.com/goplus/mrjar/pkgs/unit"
)

func TestDerive(t *testing.T) {
	base := mainUnit()
	test := &unit.Unit{Name: "test", Test: true}

	var seen []string
	p, err := Derive(8, []Declaration{
		{Unit: base, AlternateVersions: []int{17, 9}},
		{Unit: test, AlternateVersions: []int{17}, Actions: []Action{
			func(d Details) {
				seen = append(seen, d.Base.Name+":"+d.Variant.Name)
			},
		}},
	})
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	c, ok := p.Chain(unit.Main)
	if !ok {
		t.Fatal("Chain(main) not found")
	}
	if got := c.Versions(); len(got) != 2 || got[0] != 9 || got[1] != 17 {
		t.Errorf("main versions = %v, want [9 17]", got)
	}
	if c.At(1).Unit.CompileClasspath == nil {
		t.Error("chain was not composed")
	}
	if len(p.Chains()) != 2 {
		t.Errorf("Chains() = %d, want 2", len(p.Chains()))
	}
	if len(seen) != 1 || seen[0] != "test:testJava17" {
		t.Errorf("actions saw %v, want [test:testJava17]", seen)
	}
}

func TestDeriveRejectsAll(t *testing.T) {
	_, err := Derive(10, []Declaration{
		{Unit: &unit.Unit{Name: "main"}, AlternateVersions: []int{9}},
		{Unit: &unit.Unit{Name: "test"}, AlternateVersions: []int{10}},
		{Unit: &unit.Unit{Name: "other"}, AlternateVersions: []int{17}},
	})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("Derive() error = %v, want ErrInvalidConfiguration", err)
	}
	for _, name := range []string{`"main"`, `"test"`} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Derive() error %q does not mention %s", err, name)
		}
	}
}

func TestDeriveNameCollision(t *testing.T) {
	_, err := Derive(8, []Declaration{
		{Unit: &unit.Unit{Name: "main"}, AlternateVersions: []int{11}},
		{Unit: &unit.Unit{Name: "java11"}},
	})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("Derive() error = %v, want ErrInvalidConfiguration", err)
	}
}
