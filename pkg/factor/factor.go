package factor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Factor is a non-negative real-valued table over the joint assignments of
// an ordered scope of variables. The order only matters for table indexing;
// two factors over the same set of variables in different orders describe
// the same function, and Product aligns them.
//
// The table is dense and row-major with the last scope variable fastest:
// the flat index of an assignment is the mixed-radix number
// sum_k assignment[k] * stride[k], stride[len-1] = 1.
type Factor struct {
	scope   []Variable
	table   []float64
	strides []int
}

// New constructs a factor over the given scope. The table length must equal
// the product of the scope's domain sizes, and every entry must be
// non-negative; tables may be unnormalized. The table is copied, so the
// caller keeps ownership of its slice.
func New(scope []Variable, table []float64) (*Factor, error) {
	size := 1
	for _, v := range scope {
		if v.Card <= 0 {
			return nil, fmt.Errorf("scope variable %d: %w", v.ID, ErrInvalidDomain)
		}
		size *= v.Card
	}
	if len(table) != size {
		return nil, fmt.Errorf("table has %d entries, scope needs %d: %w", len(table), size, ErrShapeMismatch)
	}
	for i, x := range table {
		if x < 0 {
			return nil, fmt.Errorf("table entry %d is %g: %w", i, x, ErrInvalidTable)
		}
	}
	f := &Factor{
		scope: append([]Variable(nil), scope...),
		table: append([]float64(nil), table...),
	}
	f.strides = stridesFor(f.scope)
	return f, nil
}

func stridesFor(scope []Variable) []int {
	strides := make([]int, len(scope))
	s := 1
	for k := len(scope) - 1; k >= 0; k-- {
		strides[k] = s
		s *= scope[k].Card
	}
	return strides
}

// Scope returns a copy of the factor's ordered scope.
func (f *Factor) Scope() []Variable {
	return append([]Variable(nil), f.scope...)
}

// Arity is the number of variables in the factor's scope.
func (f *Factor) Arity() int {
	return len(f.scope)
}

// Size is the number of entries in the factor's table.
func (f *Factor) Size() int {
	return len(f.table)
}

// Table returns a copy of the factor's flat table.
func (f *Factor) Table() []float64 {
	return append([]float64(nil), f.table...)
}

// At returns the table entry for a full assignment of the scope, given in
// scope order.
func (f *Factor) At(assignment []int) float64 {
	idx := 0
	for k, a := range assignment {
		idx += a * f.strides[k]
	}
	return f.table[idx]
}

// Sum returns the total mass of the table.
func (f *Factor) Sum() float64 {
	return floats.Sum(f.table)
}

// HasVariable reports whether the given variable id is in the scope.
func (f *Factor) HasVariable(id int) bool {
	return f.position(id) >= 0
}

func (f *Factor) position(id int) int {
	for k, v := range f.scope {
		if v.ID == id {
			return k
		}
	}
	return -1
}

// ScopeKey returns a canonical key for the scope as a set, used to detect
// duplicate-scope factors.
func (f *Factor) ScopeKey() string {
	ids := make([]int, len(f.scope))
	for k, v := range f.scope {
		ids[k] = v.ID
	}
	// Insertion sort; scopes are tiny.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	key := ""
	for _, id := range ids {
		key += fmt.Sprintf("%d,", id)
	}
	return key
}

// Product returns a new factor over the union of the two scopes whose entry
// at every joint assignment is the product of each input's entry at the
// restriction of that assignment to the input's scope. Shared variables are
// aligned by id regardless of scope order. Neither input is modified.
//
// The result's scope is a's scope followed by b's variables not in a.
func Product(a, b *Factor) *Factor {
	scope := append([]Variable(nil), a.scope...)
	for _, v := range b.scope {
		if a.position(v.ID) < 0 {
			scope = append(scope, v)
		}
	}

	out := &Factor{scope: scope}
	out.strides = stridesFor(scope)
	size := 1
	for _, v := range scope {
		size *= v.Card
	}
	out.table = make([]float64, size)

	sa := projectStrides(a, scope)
	sb := projectStrides(b, scope)

	assign := make([]int, len(scope))
	ia, ib := 0, 0
	for i := range out.table {
		out.table[i] = a.table[ia] * b.table[ib]
		// Advance the mixed-radix assignment, keeping each input's flat
		// index in step.
		for k := len(scope) - 1; k >= 0; k-- {
			assign[k]++
			ia += sa[k]
			ib += sb[k]
			if assign[k] < scope[k].Card {
				break
			}
			assign[k] = 0
			ia -= sa[k] * scope[k].Card
			ib -= sb[k] * scope[k].Card
		}
	}
	return out
}

// projectStrides maps each position of the joint scope to the stride of the
// corresponding variable inside f, or 0 when f does not contain it. A zero
// stride makes absent variables contribute nothing to f's flat index, which
// is exactly the restriction of the joint assignment to f's scope.
func projectStrides(f *Factor, scope []Variable) []int {
	out := make([]int, len(scope))
	for k, v := range scope {
		if p := f.position(v.ID); p >= 0 {
			out[k] = f.strides[p]
		}
	}
	return out
}

// Marginalize returns a new factor over the scope minus the removed
// variables, summing the table over every value of the removed ones.
// Removing the entire scope yields a scalar factor whose single entry is the
// table's total mass. Removed variables not present in the scope are
// ignored.
func Marginalize(f *Factor, remove ...Variable) *Factor {
	removed := make(map[int]bool, len(remove))
	for _, v := range remove {
		removed[v.ID] = true
	}

	keep := make([]Variable, 0, len(f.scope))
	for _, v := range f.scope {
		if !removed[v.ID] {
			keep = append(keep, v)
		}
	}

	out := &Factor{scope: keep}
	out.strides = stridesFor(keep)
	size := 1
	for _, v := range keep {
		size *= v.Card
	}
	out.table = make([]float64, size)

	proj := projectStrides(out, f.scope)
	assign := make([]int, len(f.scope))
	io := 0
	for _, x := range f.table {
		out.table[io] += x
		for k := len(f.scope) - 1; k >= 0; k-- {
			assign[k]++
			io += proj[k]
			if assign[k] < f.scope[k].Card {
				break
			}
			assign[k] = 0
			io -= proj[k] * f.scope[k].Card
		}
	}
	return out
}

// Normalized returns a copy of the factor scaled so its table sums to one.
// A zero-mass factor carries no information and comes back uniform.
func (f *Factor) Normalized() *Factor {
	out := &Factor{
		scope:   append([]Variable(nil), f.scope...),
		table:   append([]float64(nil), f.table...),
		strides: append([]int(nil), f.strides...),
	}
	s := floats.Sum(out.table)
	if s <= 0 {
		u := 1.0 / float64(len(out.table))
		for i := range out.table {
			out.table[i] = u
		}
		return out
	}
	floats.Scale(1/s, out.table)
	return out
}
