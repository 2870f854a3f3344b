package refcheck

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-bridge/bridgeflow/internal/fault"
	"github.com/data-bridge/bridgeflow/internal/format"
	"github.com/data-bridge/bridgeflow/internal/record"
)

// fourLines has 4 lines, 3 hands and 2 boards.
const fourLines = "vg|Match|\nqx|o1|md|x|\nqx|c1|md|x|\nqx|o2|md|x|\n"

func writeSource(t *testing.T, body, ref string) format.FileRecord {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "100.lin")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	if ref != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "100.ref"), []byte(ref), 0o644))
	}
	rec, ok := format.NewFileRecord(path)
	require.True(t, ok)
	return rec
}

func TestCheck_NoReferenceFile(t *testing.T) {
	src := writeSource(t, fourLines, "")
	res, err := Check(src, true)
	require.NoError(t, err)
	assert.Equal(t, Standard, res.Directive)
	assert.True(t, res.Validate)
	assert.False(t, res.Skip)
	assert.False(t, res.HasComments)
	assert.Empty(t, res.Edits)
	assert.Equal(t, Baseline{Lines: 4, Hands: 3, Boards: 2}, res.Baseline)
}

func TestCheck_HeaderReconciles(t *testing.T) {
	src := writeSource(t, fourLines, "% vugraph archive\nskip {ERR_LIN_VG_SIZE(4,1,3,2)}\n")
	res, err := Check(src, false)
	require.NoError(t, err)
	assert.True(t, res.Skip)
	assert.True(t, res.HasComments)
	require.NotNil(t, res.Header)
	assert.Equal(t, "ERR_LIN_VG_SIZE", res.Header.Tag)
}

func TestCheck_HeaderMismatchNamesBothSides(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"extra line", fourLines + "pg||\n"},
		{"extra hand", fourLines + "qx|c2|md|x|\n"},
		{"extra board on same line count", "vg|Match|\nqx|o1|md|x|\nqx|o2|md|x|\nqx|o3|md|x|\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := writeSource(t, tt.body, "noval {ERR_LIN_VG_SIZE(4,1,3,2)}\n")
			res, err := Check(src, false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, fault.ErrReconcile))
			assert.False(t, fault.IsFatal(err))

			var mm *Mismatch
			require.True(t, errors.As(err, &mm))
			assert.Equal(t, Count{4, 1, 3, 2}, mm.Declared)
			assert.Equal(t, res.Baseline.Count(), mm.Actual)
			assert.NotEqual(t, mm.Declared, mm.Actual)
			assert.Contains(t, err.Error(), mm.Declared.String())
			assert.Contains(t, err.Error(), mm.Actual.String())
			assert.False(t, res.Validate)
		})
	}
}

func TestCheck_Directives(t *testing.T) {
	tests := []struct {
		ref       string
		directive Directive
		validate  bool
		order     record.Order
	}{
		{"noval\n", NoValidate, false, record.OrderUnknown},
		{"orderCOCO\n", OrderCOCO, true, record.OrderCOCO},
		{"orderOOCC\n", OrderOOCC, true, record.OrderOOCC},
		{"% only comments\n\n", Standard, true, record.OrderUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.directive.String(), func(t *testing.T) {
			res, err := Check(writeSource(t, fourLines, tt.ref), false)
			require.NoError(t, err)
			assert.Equal(t, tt.directive, res.Directive)
			assert.Equal(t, tt.validate, res.Validate)
			assert.Equal(t, tt.order, res.Order)
		})
	}
}

func TestCheck_LedgerSumsSameTag(t *testing.T) {
	ref := strings.Join([]string{
		`replaceLIN 2 "qx|o1" {ERR_LIN_QX_ROOM(2,1,2,1)}`,
		`replaceLIN 4 "qx|o2" {ERR_LIN_QX_ROOM(2,1,1,1)}`,
		`delete 7 {ERR_LIN_TRAILING}`,
		`insert 1 "%" {ERR_LIN_HEADER}`,
	}, "\n")
	res, err := Check(writeSource(t, fourLines, ref), true)
	require.NoError(t, err)
	assert.True(t, res.HasComments)
	require.Len(t, res.Edits, 4)
	assert.Equal(t, "LIN", res.Edits[0].Format)
	assert.Equal(t, `2 "qx|o1"`, res.Edits[0].Args)
	assert.Equal(t, Count{2, 1, 1, 1}, res.Edits[1].Count)
}

func TestCheck_LedgerMismatch(t *testing.T) {
	ref := "replace 2 \"x\" {ERR_LIN_QX_ROOM(2,1,2,1)}\nreplace 3 \"y\" {ERR_LIN_QX_ROOM(1,1,1,1)}\n"
	_, err := Check(writeSource(t, fourLines, ref), false)
	var mm *Mismatch
	require.True(t, errors.As(err, &mm))
	assert.Equal(t, "ERR_LIN_QX_ROOM", mm.Tag)
	assert.Equal(t, Count{3, 1, 3, 2}, mm.Declared)
}

func TestCheck_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"garbage", "this is not a directive\n"},
		{"second control", "skip\nnoval\n"},
		{"edit without tag", "replace 3 \"x\"\n"},
		{"partial counts", "replace 3 \"x\" {ERR_X(1,2)}\n"},
		{"lower-case tag", "delete 3 {err_x}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Check(writeSource(t, fourLines, tt.ref), false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, fault.ErrReference))
			assert.False(t, fault.IsFatal(err))
		})
	}
}

func TestCheck_EditsOnlyOnRequest(t *testing.T) {
	ref := "delete 3 {ERR_X}\n"
	res, err := Check(writeSource(t, fourLines, ref), false)
	require.NoError(t, err)
	assert.True(t, res.HasComments)
	assert.Empty(t, res.Edits)
}

func TestParse_ControlAfterEdits(t *testing.T) {
	f, err := Parse(strings.NewReader("delete 3 {ERR_X}\norderOOCC\n"))
	require.NoError(t, err)
	assert.Equal(t, OrderOOCC, f.Directive)
	assert.Len(t, f.Ledger()["ERR_X"], 1)
}

func TestResolveOrder(t *testing.T) {
	ids := []record.CaseID{
		{Segment: 1, Board: 1, Room: record.RoomClosed},
		{Segment: 1, Board: 1, Room: record.RoomOpen},
	}
	assert.Equal(t, record.OrderCOCO, Result{}.ResolveOrder(ids))
	assert.Equal(t, record.OrderOOCC, Result{Order: record.OrderOOCC}.ResolveOrder(ids),
		"a forced order skips inference")
}
