package lib

const (
	PAGE_SIZE = 4096

	DEFAULT_BUFFER_POOL_SIZE_IN_MB = 16
	DEFAULT_BUFFER_POOL_SIZE       = DEFAULT_BUFFER_POOL_SIZE_IN_MB * 1024 * 1024 / PAGE_SIZE

	DB_DIR         = "go_bpm_db"
	PAGE_FILE_NAME = "go_bpm.page"
)

// Options. konfigurasi buat buka disk manager & buffer pool manager.
type Options struct {
	DBDir          string
	BufferPoolSize int // jumlah frame di buffer pool
}

var DefaultOptions = &Options{
	DBDir:          DB_DIR,
	BufferPoolSize: DEFAULT_BUFFER_POOL_SIZE,
}
