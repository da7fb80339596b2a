// Math functions, grounded on
// original_source/crates/fhirpath-registry/src/operations/math/*.rs,
// implemented over apd/v3 for arbitrary-precision decimal semantics the way
// value/value.go's arithmetic already does.
package functions

import (
	"context"

	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/diagnostics"
	"fhirpath-go/registry"
	"fhirpath-go/value"
)

func registerMath(reg *registry.Registry) {
	dec1 := func(name string, f func(apdCtx *apd.Context, out, in *apd.Decimal) error) {
		reg.Register(registry.Func{
			Name: name, Category: registry.CategoryMath, Pure: true,
			Arity: registry.Arity{Min: 0, Max: 0},
			Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
				v, ok := singleton(call.Focus)
				if !ok {
					return nil, nil
				}
				d, ok := v.AsDecimal()
				if !ok {
					return nil, diagnostics.Newf(diagnostics.TypeError, "%s requires a numeric operand", name)
				}
				out := new(apd.Decimal)
				apdCtx := apd.BaseContext.WithPrecision(34)
				if err := f(apdCtx, out, d); err != nil {
					return nil, diagnostics.Wrap(diagnostics.TypeError, name+" failed", err)
				}
				return value.Of(value.Dec(out)), nil
			},
		})
	}
	dec1("abs", func(_ *apd.Context, out, in *apd.Decimal) error { out.Abs(in); return nil })
	dec1("sqrt", func(c *apd.Context, out, in *apd.Decimal) error { _, err := c.Sqrt(out, in); return err })
	dec1("ln", func(c *apd.Context, out, in *apd.Decimal) error { _, err := c.Ln(out, in); return err })
	dec1("exp", func(c *apd.Context, out, in *apd.Decimal) error { _, err := c.Exp(out, in); return err })
	dec1("ceiling", func(c *apd.Context, out, in *apd.Decimal) error { _, err := c.Ceil(out, in); return err })
	dec1("floor", func(c *apd.Context, out, in *apd.Decimal) error { _, err := c.Floor(out, in); return err })
	dec1("truncate", func(c *apd.Context, out, in *apd.Decimal) error {
		trunc := *c
		trunc.Rounding = apd.RoundDown
		_, err := trunc.Quantize(out, in, 0)
		return err
	})

	reg.Register(registry.Func{
		Name: "log", Category: registry.CategoryMath, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			v, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			d, ok := v.AsDecimal()
			if !ok {
				return nil, nil
			}
			baseV, ok := singleton(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			base, ok := baseV.AsDecimal()
			if !ok {
				return nil, nil
			}
			apdCtx := apd.BaseContext.WithPrecision(34)
			lnD, lnBase := new(apd.Decimal), new(apd.Decimal)
			if _, err := apdCtx.Ln(lnD, d); err != nil {
				return nil, diagnostics.Wrap(diagnostics.TypeError, "log failed", err)
			}
			if _, err := apdCtx.Ln(lnBase, base); err != nil {
				return nil, diagnostics.Wrap(diagnostics.TypeError, "log failed", err)
			}
			out := new(apd.Decimal)
			if _, err := apdCtx.Quo(out, lnD, lnBase); err != nil {
				return nil, diagnostics.Wrap(diagnostics.TypeError, "log failed", err)
			}
			return value.Of(value.Dec(out)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "power", Category: registry.CategoryMath, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			v, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			d, ok := v.AsDecimal()
			if !ok {
				return nil, nil
			}
			expV, ok := singleton(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			exp, ok := expV.AsDecimal()
			if !ok {
				return nil, nil
			}
			apdCtx := apd.BaseContext.WithPrecision(34)
			out := new(apd.Decimal)
			if _, err := apdCtx.Pow(out, d, exp); err != nil {
				return nil, nil // non-real result (e.g. negative base, fractional exponent): FHIRPath returns {}
			}
			if _, ok := v.Int(); ok {
				if ei, eok := expV.Int(); eok && ei >= 0 {
					if iv, err := out.Int64(); err == nil {
						return value.Of(value.Int(iv)), nil
					}
				}
			}
			return value.Of(value.Dec(out)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "round", Category: registry.CategoryMath, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			v, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			d, ok := v.AsDecimal()
			if !ok {
				return nil, nil
			}
			precision := 0
			if len(call.ArgValues) == 1 {
				p, err := singleIntArg(call.ArgValues[0], "round")
				if err != nil {
					return nil, err
				}
				precision = p
			}
			apdCtx := apd.BaseContext.WithPrecision(34)
			apdCtx.Rounding = apd.RoundHalfUp
			out := new(apd.Decimal)
			_, err := apdCtx.Quantize(out, d, int32(-precision))
			if err != nil {
				return nil, diagnostics.Wrap(diagnostics.TypeError, "round failed", err)
			}
			return value.Of(value.Dec(out)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "precision", Category: registry.CategoryMath, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			v, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			d, ok := v.AsDecimal()
			if !ok {
				return nil, nil
			}
			return value.Of(value.Int(int64(len(d.Coeff.String())))), nil
		},
	})
}
