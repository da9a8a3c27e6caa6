package disk

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/lintang-b-s/bpm/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteFile(t *testing.T) {
	dm, err := NewDiskManager(t.TempDir())
	require.NoError(t, err)
	defer dm.Close()

	faker := gofakeit.New(0)
	payload := []byte(faker.LetterN(lib.PAGE_SIZE))

	pageID := dm.AllocatePage()
	assert.Equal(t, PageID(1), pageID)

	err = dm.WritePage(pageID, payload)
	require.NoError(t, err)

	pageReader := make([]byte, lib.PAGE_SIZE)
	err = dm.ReadPage(pageID, pageReader)
	require.NoError(t, err)
	assert.Equal(t, payload, pageReader)

	assert.Equal(t, int64(1), dm.NumWrites())
	assert.Equal(t, int64(1), dm.NumReads())
}

func TestReadUnwrittenPage(t *testing.T) {
	dm, err := NewDiskManager(t.TempDir())
	require.NoError(t, err)
	defer dm.Close()

	buf := make([]byte, lib.PAGE_SIZE)
	for i := range buf {
		buf[i] = 0xff
	}

	// page 7 belum pernah ditulis -> dibaca sebagai nol
	err = dm.ReadPage(7, buf)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, lib.PAGE_SIZE), buf)
}

func TestInvalidPageID(t *testing.T) {
	dm, err := NewDiskManager(t.TempDir())
	require.NoError(t, err)
	defer dm.Close()

	buf := make([]byte, lib.PAGE_SIZE)
	assert.ErrorIs(t, dm.ReadPage(META_PAGE_ID, buf), ErrInvalidPageID)
	assert.ErrorIs(t, dm.WritePage(INVALID_PAGE_ID, buf), ErrInvalidPageID)
	assert.Equal(t, int64(0), dm.NumReads())
	assert.Equal(t, int64(0), dm.NumWrites())
}

func TestAllocateDeallocate(t *testing.T) {
	dm, err := NewDiskManager(t.TempDir())
	require.NoError(t, err)
	defer dm.Close()

	assert.Equal(t, PageID(1), dm.AllocatePage())
	assert.Equal(t, PageID(2), dm.AllocatePage())
	assert.Equal(t, PageID(3), dm.AllocatePage())

	dm.DeallocatePage(2)
	dm.DeallocatePage(2) // double release diabaikan
	dm.DeallocatePage(10)

	assert.Equal(t, PageID(2), dm.AllocatePage())
	assert.Equal(t, PageID(4), dm.AllocatePage())
}

func TestReopenRestoresFreelist(t *testing.T) {
	dir := t.TempDir()

	dm, err := NewDiskManager(dir)
	require.NoError(t, err)
	assert.True(t, dm.IsNew())

	for i := 0; i < 5; i++ {
		dm.AllocatePage()
	}
	dm.DeallocatePage(3)

	data := make([]byte, lib.PAGE_SIZE)
	copy(data, "lintang")
	require.NoError(t, dm.WritePage(4, data))
	require.NoError(t, dm.Close())

	dm, err = NewDiskManager(dir)
	require.NoError(t, err)
	defer dm.Close()

	assert.False(t, dm.IsNew())
	assert.Equal(t, PageID(5), dm.Freelist().MaxPage())
	assert.Equal(t, []PageID{3}, dm.Freelist().ReleasedPages())

	got := make([]byte, lib.PAGE_SIZE)
	require.NoError(t, dm.ReadPage(4, got))
	assert.Equal(t, data, got)

	assert.Equal(t, PageID(3), dm.AllocatePage())
	assert.Equal(t, PageID(6), dm.AllocatePage())
}

func TestReopenKeepsMaxPageWhenFreelistOverflows(t *testing.T) {
	dir := t.TempDir()

	dm, err := NewDiskManager(dir)
	require.NoError(t, err)

	for i := 0; i < 1100; i++ {
		dm.AllocatePage()
	}
	for i := 1; i <= 520; i++ {
		dm.DeallocatePage(PageID(i))
	}

	data := make([]byte, lib.PAGE_SIZE)
	copy(data, "lintang")
	require.NoError(t, dm.WritePage(1050, data))
	require.NoError(t, dm.Close())

	dm, err = NewDiskManager(dir)
	require.NoError(t, err)
	defer dm.Close()

	maxReleased := (lib.PAGE_SIZE - freelistHeaderSize) / pageIDSize
	assert.Equal(t, PageID(1100), dm.Freelist().MaxPage())
	assert.Len(t, dm.Freelist().ReleasedPages(), maxReleased)

	// page id yang masih dipakai tidak pernah di allocate ulang
	for i := 0; i < 600; i++ {
		pageID := dm.AllocatePage()
		assert.NotEqual(t, PageID(1050), pageID)
		if i < maxReleased {
			assert.LessOrEqual(t, pageID, PageID(520))
		} else {
			assert.Greater(t, pageID, PageID(1100))
		}
	}

	got := make([]byte, lib.PAGE_SIZE)
	require.NoError(t, dm.ReadPage(1050, got))
	assert.Equal(t, data, got)
}
