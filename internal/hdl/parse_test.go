// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl_test

import (
	"reflect"
	"testing"

	"github.com/iclabs/vbsim/internal/hdl"
)

func TestParseIOSpec(t *testing.T) {
	td := []struct {
		in  string
		out []string
		err bool
	}{
		{"", nil, false},
		{"a", []string{"a"}, false},
		{" a , b,c ", []string{"a", "b", "c"}, false},
		{"in[2], sel", []string{"in[0]", "in[1]", "sel"}, false},
		{"rst, incr[3]", []string{"rst", "incr[0]", "incr[1]", "incr[2]"}, false},
		{"a b", nil, true},
		{"a[0]", nil, true},
		{"a[1..2]", nil, true},
		{"a[", nil, true},
		{"a,", []string{"a"}, false},
		{"2a", nil, true},
	}
	for _, d := range td {
		out, err := hdl.ParseIOSpec(d.in)
		if d.err {
			if err == nil {
				t.Errorf("%q: expected error, got %v", d.in, out)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", d.in, err)
			continue
		}
		if !reflect.DeepEqual(out, d.out) {
			t.Errorf("%q: expected %v, got %v", d.in, d.out, out)
		}
	}
}

func TestParseConnections(t *testing.T) {
	asg, err := hdl.ParseConnections("a=x, b[0..3]=y[4..7], c[2]=true")
	if err != nil {
		t.Fatal(err)
	}
	exp := []string{"a=x", "b[0..3]=y[4..7]", "c[2]=true"}
	if len(asg) != len(exp) {
		t.Fatalf("expected %d assignments, got %d", len(exp), len(asg))
	}
	for i, a := range asg {
		if got := a.LHS.String() + "=" + a.RHS.String(); got != exp[i] {
			t.Errorf("assignment %d: expected %s, got %s", i, exp[i], got)
		}
	}
	if !asg[1].LHS.IsRange() || asg[2].LHS.IsRange() || !asg[2].LHS.IsBus() || asg[0].RHS.IsBus() {
		t.Error("bad pin classification")
	}

	for _, bad := range []string{"a", "a=", "=b", "a=b=c", "a[3..1]=b", "a[x]=b", "a=b;"} {
		if _, err := hdl.ParseConnections(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}
