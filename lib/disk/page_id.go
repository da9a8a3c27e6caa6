package disk

// PageID. identifier page di page file. offset page di file = PageID * PAGE_SIZE.
type PageID int64

const (
	INVALID_PAGE_ID PageID = -1
	META_PAGE_ID    PageID = 0 // page 0 isinya freelist, tidak pernah di allocate
)

func (p PageID) IsValid() bool {
	return p > META_PAGE_ID
}
