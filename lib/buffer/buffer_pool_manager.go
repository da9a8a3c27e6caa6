package buffer

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"sync"

	"github.com/lintang-b-s/bpm/lib/disk"
	"github.com/puzpuzpuz/xsync/v3"
)

// https://15445.courses.cs.cmu.edu/fall2019/project1/

var (
	ErrPageNotFound     = errors.New("page not in buffer pool")
	ErrNoAvailableFrame = errors.New("all pages are pinned")
	ErrPagePinned       = errors.New("page is pinned")
	ErrInvalidPoolSize  = errors.New("invalid pool size")
	ErrReplacerTooSmall = errors.New("replacer capacity smaller than pool size")
)

type DiskManager interface {
	ReadPage(pageID disk.PageID, data []byte) error
	WritePage(pageID disk.PageID, data []byte) error
	AllocatePage() disk.PageID
	DeallocatePage(pageID disk.PageID)
}

// LogManager. disimpan buffer pool manager, belum dipanggil (reserved buat WAL).
type LogManager interface {
	Flush(lsn int) error
}

// BufferPoolStats. counter buffer pool manager sejak dibuat.
type BufferPoolStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Flushes   int64
}

type BufferPoolManager struct {
	latch       sync.Mutex
	pages       []Page // frame buffer pool, index = frameID.
	poolSize    int
	pageTable   map[disk.PageID]int // mapping antara pageID dengan frameID. {pageID: frameID}
	freeList    []int               // list frame yang tidak hold any page data.
	replacer    Replacer            // buat evict frame dengan pin count 0 dari buffer pool.
	diskManager DiskManager
	logManager  LogManager

	hits      *xsync.Counter
	misses    *xsync.Counter
	evictions *xsync.Counter
	flushes   *xsync.Counter
}

// NewBufferPoolManager. initialize buffer pool manager dengan LRU replacer.
func NewBufferPoolManager(poolSize int, diskManager DiskManager,
	logManager LogManager) *BufferPoolManager {
	if poolSize <= 0 {
		panic(ErrInvalidPoolSize)
	}
	return NewBufferPoolManagerWithReplacer(poolSize, NewLRUReplacer(poolSize), diskManager, logManager)
}

// NewBufferPoolManagerWithReplacer. initialize buffer pool manager dengan replacement policy lain.
// capacity replacer minimal poolSize, kalau tidak frame evictable bisa hilang dari replacer.
func NewBufferPoolManagerWithReplacer(poolSize int, replacer Replacer, diskManager DiskManager,
	logManager LogManager) *BufferPoolManager {
	if poolSize <= 0 {
		panic(ErrInvalidPoolSize)
	}
	if replacer.Capacity() < poolSize {
		panic(ErrReplacerTooSmall)
	}

	// awalnya semua frame ada di free list
	fl := make([]int, poolSize)
	for i := 0; i < poolSize; i++ {
		fl[i] = i
	}

	pages := make([]Page, poolSize)
	for i := range pages {
		pages[i].pageID = disk.INVALID_PAGE_ID
	}

	return &BufferPoolManager{
		pages:       pages,
		poolSize:    poolSize,
		pageTable:   make(map[disk.PageID]int, poolSize),
		freeList:    fl,
		replacer:    replacer,
		diskManager: diskManager,
		logManager:  logManager,
		hits:        xsync.NewCounter(),
		misses:      xsync.NewCounter(),
		evictions:   xsync.NewCounter(),
		flushes:     xsync.NewCounter(),
	}
}

func (bpm *BufferPoolManager) PoolSize() int {
	return bpm.poolSize
}

func (bpm *BufferPoolManager) Stats() BufferPoolStats {
	return BufferPoolStats{
		Hits:      bpm.hits.Value(),
		Misses:    bpm.misses.Value(),
		Evictions: bpm.evictions.Value(),
		Flushes:   bpm.flushes.Value(),
	}
}

// isAllPinned. true kalau free list kosong & tidak ada frame yang bisa di evict.
func (bpm *BufferPoolManager) isAllPinned() bool {
	return len(bpm.freeList) == 0 && bpm.replacer.Size() == 0
}

/*
findReplace. ambil frame dari free list, kalau free list kosong evict victim dari replacer.
victim yang dirty diwrite ke disk dulu, lalu mapping page lama dihapus dari page table.
caller harus pegang latch.
*/
func (bpm *BufferPoolManager) findReplace() (int, error) {
	if len(bpm.freeList) != 0 {
		frameID := bpm.freeList[0]
		bpm.freeList = bpm.freeList[1:]
		return frameID, nil
	}

	frameID, ok := bpm.replacer.Victim()
	if !ok {
		return -1, ErrNoAvailableFrame
	}

	victim := &bpm.pages[frameID]
	if victim.isDirty {
		if err := bpm.diskManager.WritePage(victim.pageID, victim.GetData()); err != nil {
			// victim tetap resident & evictable, tapi masuk lagi di front LRU (jadi most recently unpinned)
			bpm.replacer.Unpin(frameID)
			return -1, fmt.Errorf("flush victim page %d: %w", victim.pageID, err)
		}
		victim.isDirty = false
		bpm.flushes.Inc()
	}

	delete(bpm.pageTable, victim.pageID)
	bpm.evictions.Inc()
	return frameID, nil
}

/*
FetchPage. fetch page dengan pageID dari buffer pool. kalau page tidak ada di buffer pool, ambil frame dari
free list / victim replacer lalu read page dari disk ke frame tsb. page yang direturn sudah di pin.
*/
func (bpm *BufferPoolManager) FetchPage(pageID disk.PageID) (*Page, error) {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	if frameID, ok := bpm.pageTable[pageID]; ok {
		page := &bpm.pages[frameID]

		// pin count cuma di set ke 1 kalau sebelumnya 0, fetch berikutnya share pin yang sama
		if page.pinCount == 0 {
			page.pinCount = 1
		}
		bpm.replacer.Pin(frameID) // remove from LRU, biar gak di evict dari buffer pool
		bpm.hits.Inc()
		return page, nil
	}

	bpm.misses.Inc()
	if bpm.isAllPinned() {
		return nil, ErrNoAvailableFrame
	}

	frameID, err := bpm.findReplace()
	if err != nil {
		return nil, err
	}

	page := &bpm.pages[frameID]
	page.init(pageID)
	if err := bpm.diskManager.ReadPage(pageID, page.GetData()); err != nil {
		bpm.releaseFrame(frameID)
		return nil, fmt.Errorf("fetch page %d: %w", pageID, err)
	}

	bpm.pageTable[pageID] = frameID
	return page, nil
}

// UnpinPage. decrement pin count page. page dengan pin count 0 bisa di evict. dirty flag tidak pernah di clear disini.
func (bpm *BufferPoolManager) UnpinPage(pageID disk.PageID, isDirty bool) error {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	frameID, ok := bpm.pageTable[pageID]
	if !ok {
		return ErrPageNotFound
	}

	page := &bpm.pages[frameID]
	if page.pinCount > 0 {
		page.pinCount--
	}

	if page.pinCount == 0 {
		// kalau pinCount = 0, unpin di replacer
		bpm.replacer.Unpin(frameID)
	}

	page.isDirty = page.isDirty || isDirty
	return nil
}

// FlushPage. write page ke disk (walaupun tidak dirty) & clear dirty flag.
func (bpm *BufferPoolManager) FlushPage(pageID disk.PageID) error {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	return bpm.flushPage(pageID)
}

func (bpm *BufferPoolManager) flushPage(pageID disk.PageID) error {
	frameID, ok := bpm.pageTable[pageID]
	if !ok {
		return ErrPageNotFound
	}

	page := &bpm.pages[frameID]
	if err := bpm.diskManager.WritePage(pageID, page.GetData()); err != nil {
		return fmt.Errorf("flush page %d: %w", pageID, err)
	}
	page.isDirty = false
	bpm.flushes.Inc()
	return nil
}

/*
NewPage. allocate page id baru di disk & put page kosong ke buffer pool.
pageID hanya diisi kalau berhasil. kalau semua frame di pin, page id tidak di allocate.
*/
func (bpm *BufferPoolManager) NewPage(pageID *disk.PageID) (*Page, error) {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	if bpm.isAllPinned() {
		return nil, ErrNoAvailableFrame
	}

	// page id yang sudah resident (di fetch sebelum di allocate) dilewati, page tsb tetap milik frame lamanya
	newPageID := bpm.diskManager.AllocatePage()
	for {
		if _, ok := bpm.pageTable[newPageID]; !ok {
			break
		}
		newPageID = bpm.diskManager.AllocatePage()
	}

	frameID, err := bpm.findReplace()
	if err != nil {
		bpm.diskManager.DeallocatePage(newPageID)
		return nil, err
	}

	page := &bpm.pages[frameID]
	page.init(newPageID)
	page.ResetMemory()

	bpm.pageTable[newPageID] = frameID
	*pageID = newPageID
	return page, nil
}

/*
DeletePage. hapus page dari buffer pool & deallocate page id di disk.
page yang tidak ada di buffer pool dianggap sudah dihapus. page yang masih di pin tidak dihapus.
*/
func (bpm *BufferPoolManager) DeletePage(pageID disk.PageID) error {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	frameID, ok := bpm.pageTable[pageID]
	if !ok {
		bpm.diskManager.DeallocatePage(pageID)
		return nil
	}

	if bpm.pages[frameID].pinCount > 0 {
		// page masih di pin
		return fmt.Errorf("delete page %d: %w", pageID, ErrPagePinned)
	}

	bpm.replacer.Pin(frameID)
	delete(bpm.pageTable, pageID)
	bpm.releaseFrame(frameID)

	bpm.diskManager.DeallocatePage(pageID)
	return nil
}

// FlushAllPages. flush semua page yang ada di page table. page yang gagal di flush di log & tidak menghentikan flush page lain.
func (bpm *BufferPoolManager) FlushAllPages() error {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	var err error
	for _, pageID := range slices.Sorted(maps.Keys(bpm.pageTable)) {
		if e := bpm.flushPage(pageID); e != nil {
			log.Printf("flush page id: %d failed: %v", pageID, e)
			err = errors.Join(err, e)
		}
	}
	return err
}

// releaseFrame. reset frame & kembalikan ke free list. caller harus pegang latch.
func (bpm *BufferPoolManager) releaseFrame(frameID int) {
	page := &bpm.pages[frameID]
	page.ResetMemory()
	page.pageID = disk.INVALID_PAGE_ID
	page.pinCount = 0
	page.isDirty = false
	bpm.freeList = append(bpm.freeList, frameID)
}
