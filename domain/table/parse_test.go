package table

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRowCountMatchesDataLines(t *testing.T) {
	header := []string{"fecha", "peaje", "sentido_1", "sentido_2", "total", "tipo_dia"}
	for _, n := range []int{0, 1, 7, 50} {
		t.Run(fmt.Sprintf("%d rows", n), func(t *testing.T) {
			var b strings.Builder
			b.WriteString(strings.Join(header, ","))
			for i := 0; i < n; i++ {
				fmt.Fprintf(&b, "\n2023-01-%02d,Sachica,%d,%d,%d,laboral", i%28+1, i, i*2, i*3)
			}

			tbl := Parse(b.String())

			require.Equal(t, n, tbl.Len())
			assert.Equal(t, header, tbl.Header)
			for _, row := range tbl.Rows {
				assert.Len(t, row, len(header))
				for _, h := range header {
					_, ok := row[h]
					assert.True(t, ok, "row missing key %s", h)
				}
			}
		})
	}
}

func TestParseDropsBlankLines(t *testing.T) {
	text := "a,b\n1,2\n\n   \n3,4\r\n\r\n5,6\n"
	tbl := Parse(text)

	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, Row{"a": "5", "b": "6"}, tbl.Rows[2])
}

func TestParseLineEndings(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unix", "x,y\n1,2\n3,4"},
		{"windows", "x,y\r\n1,2\r\n3,4\r\n"},
		{"old mac", "x,y\r1,2\r3,4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := Parse(tt.text)
			require.Equal(t, 2, tbl.Len())
			assert.Equal(t, []string{"x", "y"}, tbl.Header)
			assert.Equal(t, "4", tbl.Rows[1]["y"])
		})
	}
}

func TestParseShortAndLongRows(t *testing.T) {
	tbl := Parse(" a , b , c \n1\n1,2,3,4,5\n")

	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	assert.Equal(t, Row{"a": "1", "b": "", "c": ""}, tbl.Rows[0])
	assert.Equal(t, Row{"a": "1", "b": "2", "c": "3"}, tbl.Rows[1])
}

func TestParseEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\r\n"} {
		tbl := Parse(text)
		assert.Empty(t, tbl.Header)
		assert.Empty(t, tbl.Rows)
		assert.NotNil(t, tbl.Rows)
	}
}

func TestParseQuotedFieldsAreNotSpecial(t *testing.T) {
	tbl := Parse("peaje,total\n\"Tunel, Linea\",10\n")

	assert.Equal(t, `"Tunel`, tbl.Rows[0]["peaje"])
	assert.Equal(t, `Linea"`, tbl.Rows[0]["total"])
}

func TestRoundTrip(t *testing.T) {
	text := "modelo,peaje,target,rmse_test\nprophet,Sachica,sentido_1,120.5\nsarima,Cerritos,sentido_2,\nlstm,La Parada,,abc\n"

	first := Parse(text)
	second := Parse(first.Encode())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestFromRecords(t *testing.T) {
	tbl := FromRecords([][]string{{"Mes ", " Peaje"}, {"Enero2022", "Sachica", "extra"}, {"Febrero2022"}})

	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, Row{"Mes": "Enero2022", "Peaje": "Sachica"}, tbl.Rows[0])
	assert.Equal(t, Row{"Mes": "Febrero2022", "Peaje": ""}, tbl.Rows[1])

	assert.Equal(t, 0, FromRecords(nil).Len())
}
