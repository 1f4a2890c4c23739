package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesValidReferences(t *testing.T) {
	billIDs := []uint64{0, 1, 42, 999, 1000, 4200, 123456789}
	clientIDs := []uint64{0, 1, 419, 580, 999, 1000000}
	years := []int{0, 1999, 2024, 9999}

	for _, billID := range billIDs {
		for _, clientID := range clientIDs {
			for _, year := range years {
				ref := Generate(billID, clientID, year)
				require.Len(t, ref, 17)
				assert.True(t, Valid(ref), "generated reference %q must carry valid check digits", ref)
			}
		}
	}
}

func TestGenerateSegments(t *testing.T) {
	ref := Generate(1, 1, 2024)
	// RF + check digits + YYYY Y CCC K BBBB
	assert.Equal(t, "RF", ref[:2])
	assert.Equal(t, "2024", ref[4:8])
	assert.Equal(t, byte('Y'), ref[8])
	assert.Equal(t, "421", ref[9:12], "client segment is (client_id + 420) mod 1000")
	assert.Equal(t, byte('K'), ref[12])
	assert.Equal(t, "4201", ref[13:17], "bill segment is (bill_id + 4200) mod 10000")
}

func TestGenerateDistinctBillIDs(t *testing.T) {
	a := Generate(1, 7, 2024)
	b := Generate(2, 7, 2024)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a[13:17], b[13:17], "references for different bills differ in the bill segment")
}

func TestGenerateUnassignedClient(t *testing.T) {
	// client id 0 still yields a valid, provisional reference
	ref := Generate(12, 0, 2024)
	assert.True(t, Valid(ref))
	assert.Equal(t, "420", ref[9:12])
}

func TestGenerateYearWraps(t *testing.T) {
	assert.True(t, Valid(Generate(1, 1, 12024)))
	assert.True(t, Valid(Generate(1, 1, -1)))
}

func TestGeneratorOffsets(t *testing.T) {
	gen := NewGenerator(0, 0)
	ref := gen.Generate(1, 1, 2024)
	assert.Equal(t, "001", ref[9:12])
	assert.Equal(t, "0001", ref[13:17])
	assert.True(t, Valid(ref))
}

func TestValid(t *testing.T) {
	tests := []struct {
		ref   string
		valid bool
	}{
		{"RF18539007547034", true},
		{"RF18 5390 0754 7034", true},
		{"rf18539007547034", true},
		{"RF19539007547034", false},
		{"RF18539007547035", false},
		{"XX18539007547034", false},
		{"RF18", false},
		{"", false},
		{"RF18539007547034TOOLONGTOOLONG", false},
		{"RF18-5390-0754-7034", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, Valid(tt.ref), "Valid(%q)", tt.ref)
	}
}
