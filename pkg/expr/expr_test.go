package expr

import "testing"

func TestTermEval(t *testing.T) {
	r := 100.0
	top := 5.0
	bot := 0.0

	term := Term{Coeff: 1, Num: []*float64{&top}, Den: []*float64{}}
	v, err := term.Eval()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 5.0 {
		t.Fatalf("expected 5.0, got %v", v)
	}

	div := Term{Coeff: 1, Num: []*float64{&top, &top}, Den: []*float64{&r}}
	v, err = div.Eval()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0.25 {
		t.Fatalf("expected 0.25, got %v", v)
	}

	_ = bot
}

func TestTermDivisionByZero(t *testing.T) {
	zero := 0.0
	one := 1.0
	term := Term{Coeff: 1, Num: []*float64{&one}, Den: []*float64{&zero}}
	_, err := term.Eval()
	if err != ErrDivisionByZero {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestExpressionSum(t *testing.T) {
	a := 2.0
	b := 3.0
	e := Expression{Ref(&a), Scaled(-1, &b)}
	v, err := e.Eval()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != -1.0 {
		t.Fatalf("expected -1.0, got %v", v)
	}
}

func TestExpressionEmpty(t *testing.T) {
	var e Expression
	if !e.Empty() {
		t.Fatalf("expected empty expression")
	}
	if e.MustEval() != 0 {
		t.Fatalf("expected zero eval for empty expression")
	}
}

func TestFuncTerm(t *testing.T) {
	called := false
	term := Term{Coeff: 2, Fn: func() float64 {
		called = true
		return 3
	}}
	v, err := term.Eval()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called || v != 6 {
		t.Fatalf("expected fn to be called and result 6, got %v", v)
	}
}
