package disk

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/bpm/lib"
	"github.com/puzpuzpuz/xsync/v3"
)

var ErrInvalidPageID = errors.New("invalid page id")

// DiskManager. read/write page berukuran PAGE_SIZE ke satu page file & alokasi page id.
type DiskManager struct {
	dbDir     string
	file      *os.File
	freelist  *Freelist
	isNew     bool
	numReads  *xsync.Counter
	numWrites *xsync.Counter
}

// NewDiskManager. buka (atau buat) page file di dbDir. kalau file sudah ada, freelist dibaca dari meta page.
func NewDiskManager(dbDir string) (*DiskManager, error) {
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir %s: %w", dbDir, err)
	}

	filename := filepath.Join(dbDir, lib.PAGE_FILE_NAME)
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open page file %s: %w", filename, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	dm := &DiskManager{
		dbDir:     dbDir,
		file:      f,
		freelist:  NewFreelist(),
		isNew:     fi.Size() < lib.PAGE_SIZE,
		numReads:  xsync.NewCounter(),
		numWrites: xsync.NewCounter(),
	}

	if dm.isNew {
		// meta page ditulis duluan biar page 0 tidak pernah ketimpa page data
		if err := dm.writeMeta(); err != nil {
			f.Close()
			return nil, err
		}
		return dm, nil
	}

	if err := dm.readMeta(); err != nil {
		f.Close()
		return nil, err
	}
	return dm, nil
}

// ReadPage. membaca satu page dari disk ke data. page yang belum pernah ditulis (di luar ukuran file) dibaca sebagai nol.
func (dm *DiskManager) ReadPage(pageID PageID, data []byte) error {
	if !pageID.IsValid() {
		return fmt.Errorf("read page %d: %w", pageID, ErrInvalidPageID)
	}

	n, err := dm.file.ReadAt(data[:lib.PAGE_SIZE], int64(pageID)*lib.PAGE_SIZE)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read page %d: %w", pageID, err)
	}
	clear(data[n:lib.PAGE_SIZE])

	dm.numReads.Inc()
	return nil
}

// WritePage. menulis satu page ke disk pada offset pageID * PAGE_SIZE.
func (dm *DiskManager) WritePage(pageID PageID, data []byte) error {
	if !pageID.IsValid() {
		return fmt.Errorf("write page %d: %w", pageID, ErrInvalidPageID)
	}

	if _, err := dm.file.WriteAt(data[:lib.PAGE_SIZE], int64(pageID)*lib.PAGE_SIZE); err != nil {
		return fmt.Errorf("write page %d: %w", pageID, err)
	}

	dm.numWrites.Inc()
	return nil
}

// AllocatePage. reserve page id baru.
func (dm *DiskManager) AllocatePage() PageID {
	return dm.freelist.GetNextPage()
}

// DeallocatePage. release page id biar bisa dipakai ulang oleh AllocatePage.
func (dm *DiskManager) DeallocatePage(pageID PageID) {
	dm.freelist.ReleasePage(pageID)
}

func (dm *DiskManager) readMeta() error {
	buf := make([]byte, lib.PAGE_SIZE)
	if _, err := dm.file.ReadAt(buf, int64(META_PAGE_ID)); err != nil {
		return fmt.Errorf("read meta page: %w", err)
	}
	return dm.freelist.deserialize(buf)
}

func (dm *DiskManager) writeMeta() error {
	buf := make([]byte, lib.PAGE_SIZE)
	if dropped := dm.freelist.serialize(buf); dropped > 0 {
		log.Printf("meta page full, %d released page ids are not persisted", dropped)
	}
	if _, err := dm.file.WriteAt(buf, int64(META_PAGE_ID)); err != nil {
		return fmt.Errorf("write meta page: %w", err)
	}
	return nil
}

// Close. write freelist ke meta page, sync & close page file.
func (dm *DiskManager) Close() error {
	if dm.file == nil {
		return nil
	}

	var err error
	if e := dm.writeMeta(); e != nil {
		err = errors.Join(err, e)
	}
	if e := dm.file.Sync(); e != nil {
		err = errors.Join(err, fmt.Errorf("sync page file: %w", e))
	}
	if e := dm.file.Close(); e != nil {
		err = errors.Join(err, fmt.Errorf("close page file: %w", e))
	}
	dm.file = nil
	return err
}

func (dm *DiskManager) NumReads() int64 {
	return dm.numReads.Value()
}

func (dm *DiskManager) NumWrites() int64 {
	return dm.numWrites.Value()
}

func (dm *DiskManager) IsNew() bool {
	return dm.isNew
}

func (dm *DiskManager) GetDBDir() string {
	return dm.dbDir
}

func (dm *DiskManager) Freelist() *Freelist {
	return dm.freelist
}
