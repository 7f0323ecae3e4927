package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDiscoverColumns(t *testing.T) {
	testCases := []struct {
		header   []string
		expected Columns
	}{
		{
			header:   []string{"序号", "用户昵称", "真实姓名", "学校名称"},
			expected: Columns{Nickname: 1, RealName: 2, School: 3},
		},
		{
			header:   []string{"Nickname", "Team"},
			expected: Columns{Nickname: 0, RealName: NotFound, School: NotFound},
		},
		{
			header:   []string{"nick name", "姓名", "工作单位"},
			expected: Columns{Nickname: 0, RealName: 1, School: 2},
		},
		{
			// "昵称" outranks "nick" even when "nick" appears first
			header:   []string{"nick_old", "昵称"},
			expected: Columns{Nickname: 1, RealName: NotFound, School: NotFound},
		},
		{
			// the leftmost matching header wins, whichever keyword it matched
			header:   []string{"昵称", "姓名", "真实姓名", "单位", "学校"},
			expected: Columns{Nickname: 0, RealName: 1, School: 3},
		},
		{
			header:   []string{"Team", "Nick", "nick2"},
			expected: Columns{Nickname: 1, RealName: NotFound, School: NotFound},
		},
	}

	for _, test := range testCases {
		cols, err := DiscoverColumns(test.header, DefaultKeywords())
		require.NoError(t, err, test.header)
		require.Equal(t, test.expected, cols, test.header)
	}
}

func TestDiscoverColumnsNoNickname(t *testing.T) {
	_, err := DiscoverColumns([]string{"姓名", "学校"}, DefaultKeywords())
	require.ErrorIs(t, err, ErrNoNicknameColumn)
}

func TestDiscoverColumnsCustomKeywords(t *testing.T) {
	cols, err := DiscoverColumns([]string{"handle", "org"}, Keywords{
		Nickname: []string{"handle"},
		School:   []string{"org"},
	})
	require.NoError(t, err)
	require.Equal(t, Columns{Nickname: 0, RealName: NotFound, School: 1}, cols)
}

func TestFromRecords(t *testing.T) {
	table, err := FromRecords([][]string{
		{"\ufeff昵称", "学校"},
		{" alice ", "MIT"},
		{"", "", ""},
		{"bob"},
		{"", "Stanford"},
	}, DefaultKeywords())
	require.NoError(t, err)

	require.Equal(t, []Row{
		{Nickname: " alice ", School: "MIT"},
		{Nickname: "bob"},
		{Nickname: "", School: "Stanford"},
	}, table.Rows)
}

func TestFromRecordsEmpty(t *testing.T) {
	_, err := FromRecords(nil, DefaultKeywords())
	require.ErrorIs(t, err, ErrEmptySheet)
}

func TestReadFileWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.xlsx")

	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &[]any{"昵称", "真实姓名", "学校"}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A2", &[]any{"alice", "Alice A", "MIT"}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A3", &[]any{"bob", "", "CMU"}))
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	table, err := ReadFile(path, DefaultKeywords())
	require.NoError(t, err)
	require.Equal(t, []Row{
		{Nickname: "alice", RealName: "Alice A", School: "MIT"},
		{Nickname: "bob", RealName: "", School: "CMU"},
	}, table.Rows)
}

func TestReadFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	contents := strings.Join([]string{
		"\ufeffnick,school",
		"alice,MIT",
		`"b ob",CMU`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	table, err := ReadFile(path, Keywords{
		Nickname: []string{"nick"},
		School:   []string{"school"},
	})
	require.NoError(t, err)
	require.Equal(t, Columns{Nickname: 0, RealName: NotFound, School: 1}, table.Columns)
	require.Equal(t, []Row{
		{Nickname: "alice", School: "MIT"},
		{Nickname: "b ob", School: "CMU"},
	}, table.Rows)
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.xlsx"), DefaultKeywords())
	require.ErrorIs(t, err, ErrInputNotFound)

	unknown := filepath.Join(dir, "input.ods")
	require.NoError(t, os.WriteFile(unknown, []byte("not a workbook"), 0644))
	_, err = ReadFile(unknown, DefaultKeywords())
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	// .xls goes through the legacy decoder, a corrupt file is an error and never a panic
	legacy := filepath.Join(dir, "input.xls")
	require.NoError(t, os.WriteFile(legacy, []byte("not a workbook"), 0644))
	require.NotPanics(t, func() {
		_, err = ReadFile(legacy, DefaultKeywords())
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnsupportedFormat)

	noNick := filepath.Join(dir, "no_nick.csv")
	require.NoError(t, os.WriteFile(noNick, []byte("姓名,学校\nalice,MIT\n"), 0644))
	_, err = ReadFile(noNick, DefaultKeywords())
	require.ErrorIs(t, err, ErrNoNicknameColumn)
}
