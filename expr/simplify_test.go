package expr

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestSimplifyBasics(t *testing.T) {
	assert := require.New(t)

	for _, tc := range []struct {
		in   string
		want *Expression
	}{
		{"1 + 2", Integer(3)},
		{"1/2 + 1/2", Integer(1)},
		{"4/2", Integer(2)},
		{"2+0", Integer(2)},
		{"0+2", Integer(2)},
		{"2*0", Integer(0)},
		{"0*2", Integer(0)},
		{"2*1", Integer(2)},
		{"1*2", Integer(2)},
		{"5-0", Integer(5)},
		{"0-5", Integer(-5)},
		{"3/1", Integer(3)},
		{"0/5", Integer(0)},
		{"a/a", Integer(1)},
		{"a-a", Integer(0)},
		{"a+a", Product(Integer(2), Var("a"))},
		{"a/-1", Neg(Var("a"))},
		{"a--a", Product(Integer(2), Var("a"))},
		{"(-a)--a", Integer(0)},
		{"(-a)-a", Product(Integer(-2), Var("a"))},
		{"-a + -a", Product(Integer(-2), Var("a"))},
		{"1/2 + 1", Ratio(3, 2)},
		{"5 - 2^2", Integer(1)},
		{"(1/3) ^ 2", Ratio(1, 9)},
		{"1/2 * 2", Integer(1)},
		{"1/2 / 2", Ratio(1, 4)},
		{"5x -- 2x", Product(Integer(7), Var("x"))},
		{"5x + 2x", Product(Integer(7), Var("x"))},
		{"x^1", Var("x")},
		{"x^0", Integer(1)},
		{"x^-1", Quotient(Integer(1), Var("x"))},
		{"x*x", Power(Var("x"), Integer(2))},
		{"sqrt(x^2)", Abs(Var("x"))},
		{"sqrt(4)", Integer(2)},
		{"abs(-x)", Abs(Var("x"))},
		{"sqrt(3.5 + 1/2)", Integer(2)},
	} {
		got, err := Parse(tc.in, true)
		assert.NoError(err, tc.in)
		assert.True(got.Equal(tc.want), "%s: got %s, want %s", tc.in, got, tc.want)
	}
}

func TestSimplifyEquation(t *testing.T) {
	assert := require.New(t)

	got := MustParse("12 + 1 / 3 = 37/3")
	want := Equal(Ratio(37, 3), Ratio(37, 3))
	assert.True(got.Equal(want), "got %s", got)
}

func TestSimplifyLeavesInputAlone(t *testing.T) {
	assert := require.New(t)

	in, err := Parse("1 + 2", false)
	assert.NoError(err)
	out := in.Simplify()
	assert.True(in.Equal(Sum(Integer(1), Integer(2))))
	assert.True(out.Equal(Integer(3)))
}

// genExpression builds small random trees over a couple of variables and
// constants.
func genExpression(depth int) gopter.Gen {
	leaves := gen.OneGenOf(
		gen.OneConstOf(Var("x"), Var("y"), Var("z")),
		gen.Int64Range(-20, 20).Map(Integer),
		gen.OneConstOf(Ratio(1, 2), Ratio(-3, 4), Ratio(7, 5)),
	)
	if depth <= 0 {
		return leaves
	}
	child := genExpression(depth - 1)
	binary := func(mk func(a, b *Expression) *Expression) gopter.Gen {
		return gopter.CombineGens(child, child).Map(func(vs []interface{}) *Expression {
			return mk(vs[0].(*Expression), vs[1].(*Expression))
		})
	}
	return gen.OneGenOf(
		leaves,
		binary(Sum),
		binary(Difference),
		binary(Product),
		binary(Quotient),
		gopter.CombineGens(child, gen.Int64Range(0, 3)).Map(func(vs []interface{}) *Expression {
			return Power(vs[0].(*Expression), Integer(vs[1].(int64)))
		}),
		child.Map(Neg),
		child.Map(Abs),
		child.Map(func(e *Expression) *Expression { return Sqrt(e, false) }),
	)
}

func TestSimplifyRewrittenChildren(t *testing.T) {
	assert := require.New(t)

	// The two-negations rule builds a Sum node that was never visited by
	// the bottom-up pass. Folding inside it must still happen in the same
	// Simplify call.
	got := Sum(Neg(Var("x")), Neg(Var("x"))).Simplify()
	want := Product(Integer(-2), Var("x"))
	assert.True(got.Equal(want), "got %s, want %s", got, want)
	assert.True(got.Equal(got.Simplify()))
}

func TestSimplifyIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	properties.Property("simplify(simplify(e)) == simplify(e)", prop.ForAll(
		func(e *Expression) bool {
			once := e.Simplify()
			twice := once.Simplify()
			return once.Equal(twice)
		},
		genExpression(4),
	))
	properties.Property("hash agrees with structural equality", prop.ForAll(
		func(e *Expression) bool {
			s := e.Simplify()
			return s.Hash() == s.clone().Hash()
		},
		genExpression(3),
	))

	properties.TestingRun(t)
}
