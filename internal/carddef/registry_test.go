package carddef

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func validDef(cardType string) *CardDef {
	return &CardDef{
		Type:   cardType,
		Entity: "test",
		Fields: []*FieldDef{
			{Name: "id", Kind: KindInteger, Repeat: 1},
			{Name: "value", Kind: KindReal, Repeat: 1},
		},
	}
}

func TestRegister_ValidVariant(t *testing.T) {
	t.Parallel()
	reg := New()

	def := validDef("CFOO")
	require.NoError(t, reg.Register(def))

	got, err := reg.Lookup("CFOO")
	require.NoError(t, err)
	require.Same(t, def, got)
	require.True(t, reg.Has("CFOO"))
	require.False(t, reg.Has("CBAR"))

	require.Equal(t, "id", def.IDField().Name)
	require.Nil(t, def.ListField())
	require.Same(t, def.Fields[1], def.Field("value"))
	require.Nil(t, def.Field("missing"))
	i, ok := def.FieldIndex("value")
	require.True(t, ok)
	require.Equal(t, 1, i)
}

func TestRegister_UnknownTypeError(t *testing.T) {
	t.Parallel()
	reg := New()

	_, err := reg.Lookup("CNOPE")
	var unknownErr *UnknownVariantError
	require.ErrorAs(t, err, &unknownErr)
	require.Equal(t, "CNOPE", unknownErr.Type)
}

func TestRegister_DuplicateVariant(t *testing.T) {
	t.Parallel()
	reg := New()

	require.NoError(t, reg.Register(validDef("CDUP")))
	err := reg.Register(validDef("CDUP"))
	require.ErrorContains(t, err, "variant registered twice")
}

func TestRegister_RejectsInvalidSchemas(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		def     *CardDef
		wantMsg string
	}{
		{
			name:    "empty type name",
			def:     &CardDef{Entity: "test", Fields: []*FieldDef{{Name: "id", Kind: KindInteger, Repeat: 1}}},
			wantMsg: "card type name is empty",
		},
		{
			name:    "empty entity class",
			def:     &CardDef{Type: "CX", Fields: []*FieldDef{{Name: "id", Kind: KindInteger, Repeat: 1}}},
			wantMsg: "entity class is empty",
		},
		{
			name:    "no fields",
			def:     &CardDef{Type: "CX", Entity: "test"},
			wantMsg: "schema has no fields",
		},
		{
			name: "field name is not an identifier",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "Id", Kind: KindInteger, Repeat: 1},
			}},
			wantMsg: "not a valid identifier",
		},
		{
			name: "field declared twice",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindInteger, Repeat: 1},
				{Name: "id", Kind: KindReal, Repeat: 1},
			}},
			wantMsg: "declared twice",
		},
		{
			name: "zero repeat",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindInteger, Repeat: 1},
				{Name: "x", Kind: KindReal},
			}},
			wantMsg: "repeat mask must cover at least one slot",
		},
		{
			name: "list before the final field",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindInteger, Repeat: 1},
				{Name: "g", Kind: KindInteger, Repeat: 1, List: true},
				{Name: "x", Kind: KindReal, Repeat: 1},
			}},
			wantMsg: "list-tail must be the final field",
		},
		{
			name: "list with repeat mask",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindInteger, Repeat: 1},
				{Name: "g", Kind: KindInteger, Repeat: 3, List: true},
			}},
			wantMsg: "list-tail cannot carry a repeat mask",
		},
		{
			name: "label list",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindInteger, Repeat: 1},
				{Name: "names", Kind: KindLabel, Repeat: 1, List: true},
			}},
			wantMsg: "list-tail must be integer or real",
		},
		{
			name: "blank filler with a check",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindInteger, Repeat: 1},
				{Name: "pad", Kind: KindBlank, Repeat: 1, Check: "positive"},
			}},
			wantMsg: "blank filler cannot reference, check, or list",
		},
		{
			name: "reference on a real field",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindInteger, Repeat: 1},
				{Name: "t", Kind: KindReal, Repeat: 1, Ref: &RefDef{Target: "GRID", HandleName: "t_ref"}},
			}},
			wantMsg: "cross-reference requires an integer field",
		},
		{
			name: "max_chars on an integer field",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindInteger, Repeat: 1, MaxChars: 8},
			}},
			wantMsg: "max_chars applies to label fields only",
		},
		{
			name: "default label over max_chars",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindInteger, Repeat: 1},
				{Name: "mat", Kind: KindLabel, Repeat: 1, MaxChars: 4, DefLabel: "TITANIUM"},
			}},
			wantMsg: "default label exceeds max_chars",
		},
		{
			name: "unregistered check name",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindInteger, Repeat: 1, Check: "sacred"},
			}},
			wantMsg: `check "sacred" has no registered function`,
		},
		{
			name: "real identifier field",
			def: &CardDef{Type: "CX", Entity: "test", Fields: []*FieldDef{
				{Name: "id", Kind: KindReal, Repeat: 1},
			}},
			wantMsg: "identifier field must be a scalar integer",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			reg := New()

			err := reg.Register(tc.def)

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			require.ErrorContains(t, err, tc.wantMsg)
		})
	}
}

func TestRegister_FrozenRegistryRejectsChanges(t *testing.T) {
	t.Parallel()
	reg := New()
	require.NoError(t, reg.Register(validDef("CFRZ")))

	reg.Freeze()

	require.True(t, reg.Frozen())
	require.ErrorContains(t, reg.Register(validDef("CNEW")), "frozen")
	require.ErrorContains(t, reg.RegisterCheck("late", func(any) error { return nil }), "frozen")

	// Lookups keep working after the freeze.
	_, err := reg.Lookup("CFRZ")
	require.NoError(t, err)
}

func TestRegisterCheck_Validation(t *testing.T) {
	t.Parallel()
	reg := New()

	require.ErrorContains(t, reg.RegisterCheck("", func(any) error { return nil }), "name and a function")
	require.ErrorContains(t, reg.RegisterCheck("nil-fn", nil), "name and a function")
	require.ErrorContains(t, reg.RegisterCheck("positive", func(any) error { return nil }), "registered twice")

	even := func(v any) error {
		if n, ok := v.(int64); ok && n%2 != 0 {
			return fmt.Errorf("must be even, got %d", n)
		}
		return nil
	}
	require.NoError(t, reg.RegisterCheck("even", even))

	fn, ok := reg.Check("even")
	require.True(t, ok)
	require.Error(t, fn(int64(3)))
	require.NoError(t, fn(int64(4)))

	// A schema may now name the custom check.
	def := validDef("CEVN")
	def.Fields[0].Check = "even"
	require.NoError(t, reg.Register(def))
}

func TestChecksFor_CollectsNamedChecks(t *testing.T) {
	t.Parallel()
	reg := New()

	def := &CardDef{Type: "CCHK", Entity: "test", Fields: []*FieldDef{
		{Name: "id", Kind: KindInteger, Repeat: 1, Check: "positive"},
		{Name: "n", Kind: KindInteger, Repeat: 1, Check: "non-negative"},
		{Name: "x", Kind: KindReal, Repeat: 1},
	}}
	require.NoError(t, reg.Register(def))

	checks := reg.ChecksFor(def)
	require.Len(t, checks, 2)
	require.Contains(t, checks, "positive")
	require.Contains(t, checks, "non-negative")

	require.Nil(t, reg.ChecksFor(validDef("CNON")))
}

func TestTypesAndEntities_ReportRegistrations(t *testing.T) {
	t.Parallel()
	reg := New()

	beam := validDef("CBEAM9")
	beam.Entity = "beam"
	bar := validDef("CBAR9")
	bar.Entity = "beam"
	grid := validDef("GRID9")
	grid.Entity = "grid"
	require.NoError(t, reg.Register(beam))
	require.NoError(t, reg.Register(bar))
	require.NoError(t, reg.Register(grid))

	require.Equal(t, []string{"CBEAM9", "CBAR9", "GRID9"}, reg.Types(), "registration order")
	require.Equal(t, []string{"beam", "grid"}, reg.Entities(), "distinct, sorted")
}

func TestKind_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{KindInteger, KindReal, KindLabel, KindBlank} {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok)
		require.Equal(t, k, parsed)
	}

	_, ok := ParseKind("complex")
	require.False(t, ok)
	require.Equal(t, "Kind(99)", Kind(99).String())
}

func TestBuiltinChecks(t *testing.T) {
	t.Parallel()
	reg := New()

	testCases := []struct {
		check   string
		value   any
		wantErr string
	}{
		{check: "positive", value: int64(1)},
		{check: "positive", value: int64(0), wantErr: "must be positive"},
		{check: "positive", value: float64(0.5)},
		{check: "positive", value: float64(-1), wantErr: "must be positive"},
		{check: "positive", value: "abc", wantErr: "does not apply"},
		{check: "non-negative", value: int64(0)},
		{check: "non-negative", value: int64(-1), wantErr: "must not be negative"},
		{check: "non-negative", value: float64(2.5)},
		{check: "dof-code", value: int64(0)},
		{check: "dof-code", value: int64(123)},
		{check: "dof-code", value: int64(123456)},
		{check: "dof-code", value: int64(7), wantErr: "outside 1..6"},
		{check: "dof-code", value: int64(112), wantErr: "repeats digit 1"},
		{check: "dof-code", value: int64(-3), wantErr: "may not be negative"},
		{check: "dof-code", value: float64(1), wantErr: "requires an integer"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("%s_%v", tc.check, tc.value), func(t *testing.T) {
			t.Parallel()

			fn, ok := reg.Check(tc.check)
			require.True(t, ok)

			err := fn(tc.value)
			if tc.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}
