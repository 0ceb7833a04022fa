package validate_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/validate"
)

type appendBlock struct {
	Payload []string `json:"payload" validate:"required,max=3,dive,required"`
}

func Test_Check(t *testing.T) {
	type table struct {
		name   string
		val    appendBlock
		fields []string
	}

	tt := []table{
		{name: "valid", val: appendBlock{Payload: []string{"Alice -> Bob: 10"}}},
		{name: "missing", val: appendBlock{}, fields: []string{"payload"}},
		{name: "toomany", val: appendBlock{Payload: []string{"a", "b", "c", "d"}}, fields: []string{"payload"}},
		{name: "emptyitem", val: appendBlock{Payload: []string{"a", ""}}, fields: []string{"payload[1]"}},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			err := validate.Check(tst.val)
			if len(tst.fields) == 0 {
				if err != nil {
					t.Fatalf("Test %s:\tShould be able to validate the value: %v", tst.name, err)
				}
				return
			}

			if !validate.IsFieldErrors(err) {
				t.Fatalf("Test %s:\tShould get back field errors: %v", tst.name, err)
			}

			fields := validate.GetFieldErrors(err).Fields()
			for _, fld := range tst.fields {
				if _, exists := fields[fld]; !exists {
					t.Logf("Test %s:\tgot: %v", tst.name, fields)
					t.Logf("Test %s:\texp: %s", tst.name, fld)
					t.Fatalf("Test %s:\tShould get back the failing field.", tst.name)
				}
			}
		}

		t.Run(tst.name, f)
	}
}
