package disk

import (
	"encoding/binary"
	"errors"
	"slices"
	"sync"
)

const (
	freelistHeaderSize = 8 + 4 // maxPage + jumlah released pages
	pageIDSize         = 8
)

var ErrFreelistOverflow = errors.New("released pages do not fit in meta page")

// Freelist. allocator page id. page id yang di release dipakai ulang duluan, kalau kosong naikin maxPage.
type Freelist struct {
	maxPage       PageID
	releasedPages []PageID
	latch         sync.Mutex
}

func NewFreelist() *Freelist {
	return &Freelist{
		maxPage:       META_PAGE_ID,
		releasedPages: []PageID{},
	}
}

func (fr *Freelist) MaxPage() PageID {
	fr.latch.Lock()
	defer fr.latch.Unlock()
	return fr.maxPage
}

func (fr *Freelist) ReleasedPages() []PageID {
	fr.latch.Lock()
	defer fr.latch.Unlock()
	return slices.Clone(fr.releasedPages)
}

// GetNextPage. return page id yang terakhir di release, atau maxPage+1 kalau tidak ada.
func (fr *Freelist) GetNextPage() PageID {
	fr.latch.Lock()
	defer fr.latch.Unlock()

	if len(fr.releasedPages) != 0 {
		pageID := fr.releasedPages[len(fr.releasedPages)-1]
		fr.releasedPages = fr.releasedPages[:len(fr.releasedPages)-1]
		return pageID
	}
	fr.maxPage += 1
	return fr.maxPage
}

// ReleasePage. simpan page id biar bisa dipakai ulang. page id yang belum pernah di allocate / sudah di release diabaikan.
func (fr *Freelist) ReleasePage(page PageID) bool {
	fr.latch.Lock()
	defer fr.latch.Unlock()

	if !page.IsValid() || page > fr.maxPage || slices.Contains(fr.releasedPages, page) {
		return false
	}
	fr.releasedPages = append(fr.releasedPages, page)
	return true
}

/*
serialize. tulis maxPage & released pages ke buf. maxPage selalu ditulis. released pages yang tidak muat
di buf dibuang (page id tsb bocor, tidak pernah dipakai ulang) & jumlahnya direturn.
*/
func (fr *Freelist) serialize(buf []byte) int {
	fr.latch.Lock()
	defer fr.latch.Unlock()

	released := fr.releasedPages
	dropped := 0
	if maxReleased := (len(buf) - freelistHeaderSize) / pageIDSize; len(released) > maxReleased {
		dropped = len(released) - maxReleased
		released = released[:maxReleased]
	}

	pos := 0
	binary.LittleEndian.PutUint64(buf[pos:], uint64(fr.maxPage))
	pos += 8

	binary.LittleEndian.PutUint32(buf[pos:], uint32(len(released)))
	pos += 4

	for _, page := range released {
		binary.LittleEndian.PutUint64(buf[pos:], uint64(page))
		pos += pageIDSize
	}
	return dropped
}

func (fr *Freelist) deserialize(buf []byte) error {
	fr.latch.Lock()
	defer fr.latch.Unlock()

	pos := 0
	fr.maxPage = PageID(binary.LittleEndian.Uint64(buf[pos:]))
	pos += 8

	releasedPagesCount := int(binary.LittleEndian.Uint32(buf[pos:]))
	pos += 4
	if freelistHeaderSize+releasedPagesCount*pageIDSize > len(buf) {
		return ErrFreelistOverflow
	}

	fr.releasedPages = make([]PageID, 0, releasedPagesCount)
	for i := 0; i < releasedPagesCount; i++ {
		fr.releasedPages = append(fr.releasedPages, PageID(binary.LittleEndian.Uint64(buf[pos:])))
		pos += pageIDSize
	}
	return nil
}
