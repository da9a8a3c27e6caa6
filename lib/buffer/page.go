package buffer

import (
	"github.com/lintang-b-s/bpm/lib"
	"github.com/lintang-b-s/bpm/lib/disk"
)

// Page . satu frame di buffer pool: data page dari disk (PAGE_SIZE bytes) + metadata.
// metadata cuma diubah buffer pool manager selama latch nya dipegang.
type Page struct {
	data     [lib.PAGE_SIZE]byte
	pageID   disk.PageID // page yang lagi resident di frame ini
	pinCount int
	isDirty  bool // dirty flag buat nandain kalo page diupdate (harus diwrite ke disk sebelum frame dipakai page lain)
}

// GetData. return data page. hanya valid selama page masih di pin.
func (p *Page) GetData() []byte {
	return p.data[:]
}

func (p *Page) GetPageID() disk.PageID {
	return p.pageID
}

func (p *Page) GetPinCount() int {
	return p.pinCount
}

func (p *Page) IsDirty() bool {
	return p.isDirty
}

// ResetMemory. zero data page.
func (p *Page) ResetMemory() {
	clear(p.data[:])
}

func (p *Page) init(pageID disk.PageID) {
	p.pageID = pageID
	p.pinCount = 1
	p.isDirty = false
}
