package workbook

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell(t *testing.T) {
	row := []string{" a ", "b"}
	assert.Equal(t, "a", Cell(row, 0))
	assert.Equal(t, "b", Cell(row, 1))
	assert.Equal(t, "", Cell(row, 5))
	assert.Equal(t, "", Cell(row, -1))
	assert.Equal(t, "", Cell(nil, 0))
}

func TestInt(t *testing.T) {
	assert.Equal(t, 3, Int("3", 1))
	assert.Equal(t, 3, Int("2.5", 1))
	assert.Equal(t, 2, Int("2.4", 1))
	assert.Equal(t, 1, Int("", 1))
	assert.Equal(t, 7, Int("abc", 7))
	assert.Equal(t, -1, Int(" ", -1))
}

func TestDate(t *testing.T) {
	d, ok := Date("45000")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), d)

	d, ok = Date("45000.75")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), d)

	d, ok = Date("15.03.2023")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "  ", "soon", "-4", "0"} {
		_, ok := Date(bad)
		assert.False(t, ok, bad)
	}
}

func TestClock(t *testing.T) {
	c, ok := Clock("0.375")
	require.True(t, ok)
	assert.Equal(t, 9*time.Hour, c)

	c, ok = Clock("45000.5625")
	require.True(t, ok)
	assert.Equal(t, 13*time.Hour+30*time.Minute, c)

	c, ok = Clock("10:15")
	require.True(t, ok)
	assert.Equal(t, 10*time.Hour+15*time.Minute, c)

	_, ok = Clock("")
	assert.False(t, ok)
	_, ok = Clock("noon")
	assert.False(t, ok)
}

func TestDirSource_Rows(t *testing.T) {
	root := t.TempDir()
	name := "Участники_import/участники-4.xlsx"
	require.NoError(t, WriteFile(filepath.Join(root, name), [][]interface{}{
		{"ФИО", "Почта", "Дата рождения"},
		{"Иван Иванов", "ivan@example.com", 33000},
	}))

	src := NewDirSource(root)
	rows, err := src.Rows(context.Background(), name)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Иван Иванов", rows[1][0])
	assert.Equal(t, "33000", rows[1][2])
}

func TestDirSource_Missing(t *testing.T) {
	src := NewDirSource(t.TempDir())
	_, err := src.Rows(context.Background(), "Cтраны_import.xlsx")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Cтраны_import.xlsx")
}

type fakeObjects struct {
	objects map[string][]byte
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Source_Rows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.xlsx")
	require.NoError(t, WriteFile(path, [][]interface{}{{"id", "", "Город"}, {1, "", "Moscow"}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	src := NewS3SourceWithClient(&fakeObjects{objects: map[string][]byte{
		"imports/2024/Город_import.xlsx": data,
	}}, "imports", "2024/")

	rows, err := src.Rows(context.Background(), "Город_import.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Moscow", rows[1][2])

	_, err = src.Rows(context.Background(), "missing.xlsx")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestValuesToRows(t *testing.T) {
	rows := valuesToRows([][]interface{}{
		{"Russia", nil, "RU"},
		{45000.0, 0.375, true},
	})
	assert.Equal(t, [][]string{
		{"Russia", "", "RU"},
		{"45000", "0.375", "true"},
	}, rows)
}
